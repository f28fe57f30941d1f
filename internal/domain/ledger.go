// internal/domain/ledger.go
package domain

import "time"

// EntryCategory tags the cause of a ledger entry. The set is open: any string
// is accepted by the ledger, these are the categories the API itself produces.
type EntryCategory string

const (
	CategoryPayment EntryCategory = "payment"
	CategoryGame    EntryCategory = "game"
)

// LedgerEntry is one immutable record of a balance-affecting event.
// Entries are only ever created as a side effect of a successful balance
// adjustment; there are no update or delete operations.
type LedgerEntry struct {
	ID          int64         `db:"id" json:"id"`                   // Primary key, BIGSERIAL in DB
	TelegramID  int64         `db:"telegram_id" json:"telegram_id"` // Account the entry belongs to
	Amount      int64         `db:"amount" json:"amount"`           // Signed delta: positive = credit, negative = debit
	Category    EntryCategory `db:"transaction_type" json:"transaction_type"`
	Description string        `db:"description" json:"description"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"` // Set at append time, immutable thereafter
}

// NewLedgerEntry creates a new LedgerEntry instance.
func NewLedgerEntry(telegramID, amount int64, category EntryCategory, description string) *LedgerEntry {
	return &LedgerEntry{
		TelegramID:  telegramID,
		Amount:      amount,
		Category:    category,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
