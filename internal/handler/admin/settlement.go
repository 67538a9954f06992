package admin

import (
	"net/http"

	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/handler"
	"github.com/slotarena/platform/internal/settlement"
)

// SettlementHandler handles winner selection, prize distribution and the
// cancellation refund sweep.
type SettlementHandler struct {
	settlement *settlement.Service
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(svc *settlement.Service) *SettlementHandler {
	return &SettlementHandler{settlement: svc}
}

// winnersRequest is the shape of POST /admin/tournaments/{id}/winners.
type winnersRequest struct {
	Winners []domain.RankedEntry `json:"winners"`
}

// SelectWinners handles POST /admin/tournaments/{id}/winners.
func (h *SettlementHandler) SelectWinners(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var input winnersRequest
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	winners, err := h.settlement.SelectWinners(r.Context(), id, input.Winners)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"winners": winners,
	})
}

// DistributePrizes handles POST /admin/tournaments/{id}/distribute.
// The per-winner result set is returned as-is: partial failure is a valid
// outcome and the operation is safe to re-run.
func (h *SettlementHandler) DistributePrizes(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	results, err := h.settlement.DistributePrizes(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// RefundCancelled handles POST /admin/tournaments/{id}/refunds.
func (h *SettlementHandler) RefundCancelled(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	results, err := h.settlement.RefundCancelled(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}
