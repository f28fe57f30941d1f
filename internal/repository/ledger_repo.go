// internal/repository/ledger_repo.go
package repository

import (
	"context"

	"stars-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// LedgerRepository defines the interface for the append-only ledger.
// There are deliberately no update or delete operations: immutability is what
// keeps the account history auditable independently of the live balance.
type LedgerRepository interface {
	// Append inserts one immutable ledger entry using the provided DBExecutor.
	// Any signed amount and any category are accepted; only infrastructure
	// failures are errors.
	Append(ctx context.Context, q DBExecutor, entry *domain.LedgerEntry) error
	// ListByTelegramID retrieves a page of ledger entries for an account,
	// newest first, along with the total entry count.
	ListByTelegramID(ctx context.Context, q DBExecutor, telegramID int64, limit, offset int) ([]domain.LedgerEntry, int64, error)
	// SumByTelegramID returns the sum of all entry amounts for an account.
	// Postgres SUM over bigint yields numeric, hence the decimal result.
	SumByTelegramID(ctx context.Context, q DBExecutor, telegramID int64) (decimal.Decimal, error)
}
