// internal/service/balance_service_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"stars-wallet/internal/domain"
	"stars-wallet/internal/repository"
	"stars-wallet/internal/util"
	"stars-wallet/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockAccountRepository is a mock implementation of repository.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) UpsertProfile(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	args := m.Called(ctx, q, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByTelegramID(ctx context.Context, q repository.DBExecutor, telegramID int64) (*domain.Account, error) {
	args := m.Called(ctx, q, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, telegramID, delta int64) (int64, error) {
	args := m.Called(ctx, q, telegramID, delta)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerRepository is a mock implementation of repository.LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, q repository.DBExecutor, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, q, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByTelegramID(ctx context.Context, q repository.DBExecutor, telegramID int64, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	args := m.Called(ctx, q, telegramID, limit, offset)
	return args.Get(0).([]domain.LedgerEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) SumByTelegramID(ctx context.Context, q repository.DBExecutor, telegramID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, q, telegramID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController that also
// satisfies repository.DBExecutor by embedding MockDBExecutor, mirroring how
// *sqlx.Tx plays both roles in production.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// newTestService wires a balanceService around the given mocks, substituting
// the transactional scope with the mock controller.
func newTestService(
	beginner *MockDBBeginner,
	executor *MockDBExecutor,
	accountRepo *MockAccountRepository,
	ledgerRepo *MockLedgerRepository,
	txController *MockTxController,
) BalanceService {
	return NewBalanceService(
		beginner,
		executor,
		accountRepo,
		ledgerRepo,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return txController, nil
		},
		func(tx db.TxController) error {
			return txController.Commit()
		},
		func(tx db.TxController) {
			_ = txController.Rollback()
		},
	)
}

func TestAdjust(t *testing.T) {
	telegramID := int64(42)

	t.Run("SuccessfulAdjust", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		mockTxController.On("Commit").Return(nil).Once()
		mockTxController.On("Rollback").Return(sql.ErrTxDone).Maybe() // Deferred rollback after a successful commit

		mockAccountRepo.On("AdjustBalance", ctx, mock.Anything, telegramID, int64(20)).Return(int64(70), nil).Once()

		var appended *domain.LedgerEntry
		mockLedgerRepo.On("Append", ctx, mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).
			Run(func(args mock.Arguments) {
				appended = args.Get(2).(*domain.LedgerEntry)
			}).Return(nil).Once()

		newBalance, err := svc.Adjust(ctx, telegramID, 20, domain.CategoryGame, "round won")

		assert.NoError(t, err)
		assert.Equal(t, int64(70), newBalance)
		assert.NotNil(t, appended)
		assert.Equal(t, telegramID, appended.TelegramID)
		assert.Equal(t, int64(20), appended.Amount)
		assert.Equal(t, domain.CategoryGame, appended.Category)
		assert.Equal(t, "round won", appended.Description)

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		// Balance update misses, so the whole operation aborts before any
		// ledger write and the transaction rolls back.
		mockAccountRepo.On("AdjustBalance", ctx, mock.Anything, telegramID, int64(5)).Return(int64(0), util.ErrNotFound).Once()
		mockTxController.On("Rollback").Return(nil).Once()

		newBalance, err := svc.Adjust(ctx, telegramID, 5, domain.CategoryGame, "")

		assert.ErrorIs(t, err, util.ErrAccountNotFound)
		assert.Equal(t, int64(0), newBalance)

		mockLedgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
		mockTxController.AssertNotCalled(t, "Commit")

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})

	t.Run("LedgerAppendFailureRollsBack", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		// The balance update succeeds but the ledger append fails; the
		// transaction must roll back so neither effect survives.
		mockAccountRepo.On("AdjustBalance", ctx, mock.Anything, telegramID, int64(10)).Return(int64(110), nil).Once()
		mockLedgerRepo.On("Append", ctx, mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).Return(errors.New("db error")).Once()
		mockTxController.On("Rollback").Return(nil).Once()

		newBalance, err := svc.Adjust(ctx, telegramID, 10, domain.CategoryGame, "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to append ledger entry")
		assert.Equal(t, int64(0), newBalance)

		mockTxController.AssertNotCalled(t, "Commit")

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})

	t.Run("NegativeDeltaNotClamped", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		mockTxController.On("Commit").Return(nil).Once()
		mockTxController.On("Rollback").Return(sql.ErrTxDone).Maybe()

		mockAccountRepo.On("AdjustBalance", ctx, mock.Anything, telegramID, int64(-30)).Return(int64(20), nil).Once()

		var appended *domain.LedgerEntry
		mockLedgerRepo.On("Append", ctx, mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).
			Run(func(args mock.Arguments) {
				appended = args.Get(2).(*domain.LedgerEntry)
			}).Return(nil).Once()

		newBalance, err := svc.Adjust(ctx, telegramID, -30, domain.CategoryGame, "round lost")

		assert.NoError(t, err)
		assert.Equal(t, int64(20), newBalance)
		assert.Equal(t, int64(-30), appended.Amount)

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})

	t.Run("MissingTelegramID", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		newBalance, err := svc.Adjust(ctx, 0, 10, domain.CategoryGame, "")

		assert.ErrorIs(t, err, util.ErrInvalidInput)
		assert.Equal(t, int64(0), newBalance)

		// No transaction is begun on an early validation failure.
		mockDBBeginner.AssertNotCalled(t, "BeginTxx", mock.Anything, mock.Anything)
		mockTxController.AssertNotCalled(t, "Commit")
		mockTxController.AssertNotCalled(t, "Rollback")

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})
}

func TestCreditStars(t *testing.T) {
	telegramID := int64(42)

	t.Run("SuccessfulCredit", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		mockTxController.On("Commit").Return(nil).Once()
		mockTxController.On("Rollback").Return(sql.ErrTxDone).Maybe()

		// 5 stars at 10 units per star on a zero balance.
		mockAccountRepo.On("AdjustBalance", ctx, mock.Anything, telegramID, int64(50)).Return(int64(50), nil).Once()

		var appended *domain.LedgerEntry
		mockLedgerRepo.On("Append", ctx, mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).
			Run(func(args mock.Arguments) {
				appended = args.Get(2).(*domain.LedgerEntry)
			}).Return(nil).Once()

		newBalance, added, err := svc.CreditStars(ctx, telegramID, 5)

		assert.NoError(t, err)
		assert.Equal(t, int64(50), newBalance)
		assert.Equal(t, int64(50), added)
		assert.Equal(t, int64(50), appended.Amount)
		assert.Equal(t, domain.CategoryPayment, appended.Category)
		assert.Equal(t, "Stars top-up: 5", appended.Description)

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})

	t.Run("NonPositiveStars", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		for _, stars := range []int64{0, -3} {
			newBalance, added, err := svc.CreditStars(ctx, telegramID, stars)
			assert.ErrorIs(t, err, util.ErrInvalidInput)
			assert.Equal(t, int64(0), newBalance)
			assert.Equal(t, int64(0), added)
		}

		mockDBBeginner.AssertNotCalled(t, "BeginTxx", mock.Anything, mock.Anything)
		mockAccountRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})

	t.Run("MissingTelegramID", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		_, _, err := svc.CreditStars(ctx, 0, 5)

		assert.ErrorIs(t, err, util.ErrInvalidInput)
		mockDBBeginner.AssertNotCalled(t, "BeginTxx", mock.Anything, mock.Anything)

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})
}

func TestUpsertProfile(t *testing.T) {
	telegramID := int64(42)

	t.Run("BalancePreservedOnUpdate", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		// The repository refreshes the snapshot from the stored row; an
		// existing account keeps its balance across a profile upsert.
		mockAccountRepo.On("UpsertProfile", ctx, mock.Anything, mock.AnythingOfType("*domain.Account")).
			Run(func(args mock.Arguments) {
				account := args.Get(2).(*domain.Account)
				account.Balance = 120
			}).Return(nil).Once()

		account, err := svc.UpsertProfile(ctx, telegramID, "new_name", "First", "Last")

		assert.NoError(t, err)
		assert.Equal(t, int64(120), account.Balance)
		assert.Equal(t, "new_name", account.Username)

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})

	t.Run("MissingTelegramID", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		account, err := svc.UpsertProfile(ctx, 0, "name", "", "")

		assert.ErrorIs(t, err, util.ErrInvalidInput)
		assert.Nil(t, account)
		mockAccountRepo.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything, mock.Anything)

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})
}

func TestGetLedgerHistory(t *testing.T) {
	telegramID := int64(42)

	t.Run("AccountNotFound", func(t *testing.T) {
		ctx := context.Background()
		mockAccountRepo := new(MockAccountRepository)
		mockLedgerRepo := new(MockLedgerRepository)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		svc := newTestService(mockDBBeginner, mockDBExecutor, mockAccountRepo, mockLedgerRepo, mockTxController)

		mockAccountRepo.On("GetByTelegramID", ctx, mock.Anything, telegramID).Return(nil, util.ErrNotFound).Once()

		entries, total, err := svc.GetLedgerHistory(ctx, telegramID, 10, 0)

		assert.ErrorIs(t, err, util.ErrAccountNotFound)
		assert.Nil(t, entries)
		assert.Equal(t, int64(0), total)
		mockLedgerRepo.AssertNotCalled(t, "ListByTelegramID", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		mock.AssertExpectationsForObjects(t, mockDBBeginner, mockDBExecutor, mockTxController, mockAccountRepo, mockLedgerRepo)
	})
}
