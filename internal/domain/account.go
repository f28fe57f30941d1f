// internal/domain/account.go
package domain

import "time"

// Account is the balance-holding entity, keyed by the external Telegram user id.
// Balance is stored in the smallest currency unit and is mutated only through
// the balance adjustment transaction in the service layer.
type Account struct {
	TelegramID int64     `db:"telegram_id" json:"telegram_id"` // External stable id, assigned by the caller
	Username   string    `db:"username" json:"username"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Balance    int64     `db:"balance" json:"balance"`       // Signed; negative balances are permitted
	CreatedAt  time.Time `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"` // Refreshed on every profile or balance mutation
}

// NewAccount creates a new Account instance with a zero balance.
func NewAccount(telegramID int64, username, firstName, lastName string) *Account {
	now := time.Now().UTC()
	return &Account{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Balance:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
