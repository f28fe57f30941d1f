// internal/service/balance_service.go
package service

import (
	"context"
	"fmt"

	"stars-wallet/internal/domain"
	"stars-wallet/internal/repository"
	"stars-wallet/internal/util"
	"stars-wallet/pkg/db"
)

// StarExchangeRate is the number of balance units credited per Telegram Star.
const StarExchangeRate = 10

// BalanceService defines the business logic around accounts and their ledger.
// Adjust is the core operation: a balance mutation and its ledger entry commit
// together or not at all.
type BalanceService interface {
	UpsertProfile(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.Account, error)
	GetAccount(ctx context.Context, telegramID int64) (*domain.Account, error)
	Adjust(ctx context.Context, telegramID, delta int64, category domain.EntryCategory, description string) (int64, error)
	CreditStars(ctx context.Context, telegramID, starsAmount int64) (newBalance, added int64, err error)
	GetLedgerHistory(ctx context.Context, telegramID int64, limit, offset int) ([]domain.LedgerEntry, int64, error)
}

// balanceService implements the BalanceService interface.
type balanceService struct {
	dbBeginner  db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor  repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	beginTx     db.BeginTxFunc    // Injected dependency for beginning transactions
	commitTx    db.CommitTxFunc   // Injected dependency for committing transactions
	rollbackTx  db.RollbackTxFunc // Injected dependency for rolling back transactions
}

// NewBalanceService creates a new instance of BalanceService.
func NewBalanceService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) BalanceService {
	return &balanceService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
	}
}

// Adjust applies a signed delta to an account's balance and appends the
// matching ledger entry inside one database transaction. Either both writes
// commit or neither does: a failure on the ledger append rolls the balance
// change back, and an unknown account aborts before any ledger write.
//
// Deltas that drive the balance negative are allowed, and a zero delta still
// produces a ledger entry.
func (s *balanceService) Adjust(ctx context.Context, telegramID, delta int64, category domain.EntryCategory, description string) (int64, error) {
	if telegramID == 0 {
		return 0, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return 0, fmt.Errorf("adjust: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return 0, fmt.Errorf("adjust: transaction controller does not implement DBExecutor")
	}

	newBalance, err := s.accountRepo.AdjustBalance(ctx, txExecutor, telegramID, delta)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return 0, util.ErrAccountNotFound
		}
		return 0, fmt.Errorf("adjust: failed to update balance for account %d: %w", telegramID, err)
	}

	entry := domain.NewLedgerEntry(telegramID, delta, category, description)
	if err := s.ledgerRepo.Append(ctx, txExecutor, entry); err != nil {
		return 0, fmt.Errorf("adjust: failed to append ledger entry: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return 0, fmt.Errorf("adjust: failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// CreditStars converts a Telegram Stars payment into a balance credit.
// The added amount is starsAmount * StarExchangeRate and the ledger entry is
// categorized as a payment.
func (s *balanceService) CreditStars(ctx context.Context, telegramID, starsAmount int64) (int64, int64, error) {
	if telegramID == 0 || starsAmount <= 0 {
		return 0, 0, util.ErrInvalidInput
	}

	added := starsAmount * StarExchangeRate
	description := fmt.Sprintf("Stars top-up: %d", starsAmount)

	newBalance, err := s.Adjust(ctx, telegramID, added, domain.CategoryPayment, description)
	if err != nil {
		return 0, 0, err
	}

	return newBalance, added, nil
}

// UpsertProfile creates the account with a zero balance if absent, or refreshes
// its display fields (last-write-wins) if present. The balance is never touched.
// A single upsert statement is atomic on its own, so no explicit transaction is
// opened here.
func (s *balanceService) UpsertProfile(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.Account, error) {
	if telegramID == 0 {
		return nil, util.ErrInvalidInput
	}

	account := domain.NewAccount(telegramID, username, firstName, lastName)
	if err := s.accountRepo.UpsertProfile(ctx, s.dbExecutor, account); err != nil {
		return nil, fmt.Errorf("upsert profile: failed to upsert account %d: %w", telegramID, err)
	}
	return account, nil
}

// GetAccount returns the account snapshot for a Telegram id.
func (s *balanceService) GetAccount(ctx context.Context, telegramID int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetByTelegramID(ctx, s.dbExecutor, telegramID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: failed to get account %d: %w", telegramID, err)
	}
	return account, nil
}

// GetLedgerHistory retrieves a page of ledger entries for an account.
func (s *balanceService) GetLedgerHistory(ctx context.Context, telegramID int64, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	// First, check that the account exists
	if _, err := s.accountRepo.GetByTelegramID(ctx, s.dbExecutor, telegramID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, 0, util.ErrAccountNotFound
		}
		return nil, 0, fmt.Errorf("failed to check account existence: %w", err)
	}

	entries, totalCount, err := s.ledgerRepo.ListByTelegramID(ctx, s.dbExecutor, telegramID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve ledger history: %w", err)
	}

	return entries, totalCount, nil
}
