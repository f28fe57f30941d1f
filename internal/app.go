// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "stars-wallet/internal/api"
	"stars-wallet/internal/api/handler"
	"stars-wallet/internal/config"
	"stars-wallet/internal/repository"
	"stars-wallet/internal/repository/postgres"
	"stars-wallet/internal/service"
	"stars-wallet/internal/util"
	"stars-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	AccountRepository repository.AccountRepository
	LedgerRepository  repository.LedgerRepository

	// Services
	BalanceService service.BalanceService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()

	// 2. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.AccountRepository = postgres.NewAccountRepository(app.DB)
	app.LedgerRepository = postgres.NewLedgerRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Services
	app.BalanceService = service.NewBalanceService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor for non-transactional reads
		app.AccountRepository,
		app.LedgerRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	accountHandler := handler.NewAccountHandler(app.BalanceService, app.Logger)
	paymentHandler := handler.NewPaymentHandler(app.BalanceService, app.Logger)
	app.HTTPHandler = router.NewRouter(accountHandler, paymentHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
