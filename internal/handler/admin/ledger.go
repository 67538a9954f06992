package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/handler"
	"github.com/slotarena/platform/internal/service"
)

// LedgerAdminHandler exposes the ledger replay verifier.
type LedgerAdminHandler struct {
	wallets *service.WalletService
}

// NewLedgerAdminHandler creates a new LedgerAdminHandler.
func NewLedgerAdminHandler(wallets *service.WalletService) *LedgerAdminHandler {
	return &LedgerAdminHandler{wallets: wallets}
}

// Replay handles GET /admin/wallets/{userId}/replay. It folds the user's
// ledger in creation order and reports whether it reproduces the stored
// running balance.
func (h *LedgerAdminHandler) Replay(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid user id"))
		return
	}

	result, err := h.wallets.Replay(r.Context(), userID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"replay":  result,
	})
}
