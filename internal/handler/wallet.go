package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/slotarena/platform/internal/auth"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/service"
)

// WalletHandler handles wallet deposit, withdrawal and read endpoints.
type WalletHandler struct {
	wallets *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	id, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid subject")
	}
	return id, nil
}

// Topup handles POST /wallet/topup.
func (h *WalletHandler) Topup(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.TopupInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.wallets.Deposit(r.Context(), userID, input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"balance":     result.Wallet.Balance,
		"transaction": result.Transaction,
	})
}

// withdrawRequest is the shape of POST /wallet/withdraw.
type withdrawRequest struct {
	Amount int64 `json:"amount"`
}

// Withdraw handles POST /wallet/withdraw.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input withdrawRequest
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.wallets.Withdraw(r.Context(), userID, input.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"balance":     result.Wallet.Balance,
		"transaction": result.Transaction,
	})
}

// History handles GET /wallet/history. Never a hard error: the service
// degrades to an empty list when the store is unreachable.
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries := h.wallets.History(r.Context(), userID, limit)
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"transactions": entries,
	})
}

// GetBalance handles GET /wallet/balance.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	wallet, err := h.wallets.Balance(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"balance":        wallet.Balance,
		"totalDeposited": wallet.TotalDeposited,
		"totalWithdrawn": wallet.TotalWithdrawn,
	})
}
