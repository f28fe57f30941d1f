// internal/repository/postgres/ledger_pg.go
package postgres

import (
	"context"
	"fmt"

	"stars-wallet/internal/domain"
	"stars-wallet/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements repository.LedgerRepository for PostgreSQL.
// The backing table is insert-only; no update or delete statements exist here.
type LedgerRepository struct {
	// Methods receive a DBExecutor directly, so nothing is stored here.
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) repository.LedgerRepository {
	return &LedgerRepository{}
}

// Append inserts a new ledger entry using the provided DBExecutor.
func (r *LedgerRepository) Append(ctx context.Context, q repository.DBExecutor, entry *domain.LedgerEntry) error {
	query := `INSERT INTO transactions (telegram_id, amount, transaction_type, description, created_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		entry.TelegramID,
		entry.Amount,
		entry.Category,
		entry.Description,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// ListByTelegramID retrieves a paginated list of ledger entries for an account,
// newest first. It performs two queries: one for the page and one for the total count.
func (r *LedgerRepository) ListByTelegramID(ctx context.Context, q repository.DBExecutor, telegramID int64, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	entries := []domain.LedgerEntry{}

	query := `
		SELECT id, telegram_id, amount, transaction_type, description, created_at
		FROM transactions
		WHERE telegram_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &entries, query, telegramID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ledger entries for telegram id %d: %w", telegramID, err)
	}

	var totalCount int64
	countQuery := `
		SELECT COUNT(*)
		FROM transactions
		WHERE telegram_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, telegramID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries for telegram id %d: %w", telegramID, err)
	}

	return entries, totalCount, nil
}

// SumByTelegramID returns the sum of all entry amounts for an account.
// SUM over a bigint column comes back as numeric, so it is scanned as a decimal.
func (r *LedgerRepository) SumByTelegramID(ctx context.Context, q repository.DBExecutor, telegramID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE telegram_id = $1`
	err := q.GetContext(ctx, &sum, query, telegramID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum ledger entries for telegram id %d: %w", telegramID, err)
	}
	return sum, nil
}
