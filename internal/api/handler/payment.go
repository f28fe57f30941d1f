// internal/api/handler/payment.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"stars-wallet/internal/service"
	"stars-wallet/internal/util"
)

// PaymentHandler handles the Telegram Stars payment callback.
type PaymentHandler struct {
	service  service.BalanceService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc service.BalanceService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  svc,
		logger:   logger,
		validate: validator.New(),
	}
}

// CreditPaymentRequest represents the payment completion callback body.
type CreditPaymentRequest struct {
	TelegramID  int64 `json:"telegram_id" validate:"required"`
	StarsAmount int64 `json:"stars_amount" validate:"required,gt=0"`
}

// CreditPayment credits a completed Stars purchase to the account's balance.
// POST /payment
func (h *PaymentHandler) CreditPayment(w http.ResponseWriter, r *http.Request) {
	var req CreditPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	newBalance, added, err := h.service.CreditStars(r.Context(), req.TelegramID, req.StarsAmount)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"new_balance": newBalance,
		"added":       added,
	})
}
