// internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"stars-wallet/pkg/db"
)

// AppConfig holds all application-wide configurations. Values are parsed from
// the environment once at startup and handed to components as constructor
// inputs; nothing reads the environment after this point.
type AppConfig struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	DB         db.Config
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}
