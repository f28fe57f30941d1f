// internal/repository/account_repo.go
package repository

import (
	"context"

	"stars-wallet/internal/domain"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	// UpsertProfile creates the account with a zero balance if absent, or
	// overwrites its display fields (last-write-wins) if present. The balance
	// is never touched by an upsert. The account argument is refreshed with
	// the resulting row.
	UpsertProfile(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetByTelegramID retrieves an account by its Telegram id.
	GetByTelegramID(ctx context.Context, q DBExecutor, telegramID int64) (*domain.Account, error)
	// AdjustBalance atomically adds delta (which may be negative) to the
	// stored balance and returns the post-adjustment value. Returns
	// util.ErrNotFound when no such account exists.
	AdjustBalance(ctx context.Context, q DBExecutor, telegramID, delta int64) (int64, error)
}
