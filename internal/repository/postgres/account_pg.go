// internal/repository/postgres/account_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stars-wallet/internal/domain"
	"stars-wallet/internal/repository"
	"stars-wallet/internal/util"

	"github.com/jmoiron/sqlx"
)

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct {
	// Methods receive a DBExecutor directly, so nothing is stored here.
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{}
}

// UpsertProfile creates or updates an account using the provided DBExecutor.
// On conflict only the display fields and updated_at change; the balance column
// is left alone.
func (r *AccountRepository) UpsertProfile(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `INSERT INTO users (telegram_id, username, first_name, last_name, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, 0, $5, $5)
              ON CONFLICT (telegram_id)
              DO UPDATE SET username = EXCLUDED.username,
                            first_name = EXCLUDED.first_name,
                            last_name = EXCLUDED.last_name,
                            updated_at = EXCLUDED.updated_at
              RETURNING telegram_id, username, first_name, last_name, balance, created_at, updated_at`

	err := q.QueryRowContext(ctx, query,
		account.TelegramID,
		account.Username,
		account.FirstName,
		account.LastName,
		time.Now().UTC(),
	).Scan(
		&account.TelegramID,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account %d: %w", account.TelegramID, err)
	}
	return nil
}

// GetByTelegramID retrieves an account by its Telegram id using the provided DBExecutor.
func (r *AccountRepository) GetByTelegramID(ctx context.Context, q repository.DBExecutor, telegramID int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT telegram_id, username, first_name, last_name, balance, created_at, updated_at
              FROM users WHERE telegram_id = $1`
	err := q.GetContext(ctx, &account, query, telegramID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by telegram id %d: %w", telegramID, err)
	}
	return &account, nil
}

// AdjustBalance applies a signed delta to an account's balance in a single
// statement and returns the resulting balance. The row update takes a row-level
// lock, so concurrent adjustments of the same account serialize inside their
// transactions instead of racing on a read-modify-write.
func (r *AccountRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, telegramID, delta int64) (int64, error) {
	var newBalance int64
	query := `UPDATE users SET balance = balance + $1, updated_at = $2 WHERE telegram_id = $3 RETURNING balance`
	err := q.QueryRowContext(ctx, query, delta, time.Now().UTC(), telegramID).Scan(&newBalance)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, util.ErrNotFound
		}
		return 0, fmt.Errorf("failed to adjust balance for telegram id %d: %w", telegramID, err)
	}
	return newBalance, nil
}
