// internal/api/handler/account.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"stars-wallet/internal/api/types"
	"stars-wallet/internal/domain"
	"stars-wallet/internal/service"
	"stars-wallet/internal/util"
)

// AccountHandler handles HTTP requests for account profiles, balance
// adjustments and ledger history.
type AccountHandler struct {
	service  service.BalanceService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc service.BalanceService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		service:  svc,
		logger:   logger,
		validate: validator.New(),
	}
}

// GetAccount handles the account lookup request.
// GET /user?telegram_id=
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	telegramIDStr := r.URL.Query().Get("telegram_id")
	if telegramIDStr == "" {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	telegramID, err := strconv.ParseInt(telegramIDStr, 10, 64)
	if err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	account, err := h.service.GetAccount(r.Context(), telegramID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, account)
}

// UpsertAccountRequest represents the request body for the profile upsert.
type UpsertAccountRequest struct {
	TelegramID int64  `json:"telegram_id" validate:"required"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// UpsertAccount handles the create-or-update-profile request. The balance is
// untouched: 0 on creation, preserved on update.
// POST /user
func (h *AccountHandler) UpsertAccount(w http.ResponseWriter, r *http.Request) {
	var req UpsertAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	account, err := h.service.UpsertProfile(r.Context(), req.TelegramID, req.Username, req.FirstName, req.LastName)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, account)
}

// AdjustBalanceRequest represents the request body for a generic balance
// adjustment. A missing balance_change means a zero delta, which is not
// rejected; a missing transaction_type defaults to "game".
type AdjustBalanceRequest struct {
	TelegramID      int64  `json:"telegram_id" validate:"required"`
	BalanceChange   int64  `json:"balance_change"`
	TransactionType string `json:"transaction_type"`
	Description     string `json:"description"`
}

// AdjustBalance handles the generic balance adjustment request (game winnings,
// losses, and other signed deltas).
// PUT /user
func (h *AccountHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	category := domain.EntryCategory(req.TransactionType)
	if category == "" {
		category = domain.CategoryGame
	}

	newBalance, err := h.service.Adjust(r.Context(), req.TelegramID, req.BalanceChange, category, req.Description)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]int64{"balance": newBalance})
}

// GetLedgerHistory handles the ledger history request.
// GET /user/transactions?telegram_id=&limit=&offset=
func (h *AccountHandler) GetLedgerHistory(w http.ResponseWriter, r *http.Request) {
	telegramIDStr := r.URL.Query().Get("telegram_id")
	if telegramIDStr == "" {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	telegramID, err := strconv.ParseInt(telegramIDStr, 10, 64)
	if err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	entries, totalCount, err := h.service.GetLedgerHistory(r.Context(), telegramID, limit, offset)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, types.PaginatedResponse[domain.LedgerEntry]{
		Data:       entries,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
