// Package admin holds the administrative collaborator surface: tournament
// lifecycle management and settlement.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/handler"
	"github.com/slotarena/platform/internal/repository"
)

// TournamentAdminHandler handles tournament creation and lifecycle
// transitions.
type TournamentAdminHandler struct {
	pool        *pgxpool.Pool
	tournaments repository.TournamentRepository
	outbox      repository.OutboxRepository
}

// NewTournamentAdminHandler creates a new TournamentAdminHandler.
func NewTournamentAdminHandler(pool *pgxpool.Pool, tournaments repository.TournamentRepository, outbox repository.OutboxRepository) *TournamentAdminHandler {
	return &TournamentAdminHandler{pool: pool, tournaments: tournaments, outbox: outbox}
}

func tournamentIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid tournament id")
	}
	return id, nil
}

// createRequest is the shape of POST /admin/tournaments.
type createRequest struct {
	Name            string            `json:"name"`
	EntryFee        int64             `json:"entryFee"`
	MaxParticipants int               `json:"maxParticipants"`
	RewardType      domain.RewardType `json:"rewardType"`
	PerKillAmount   int64             `json:"perKillAmount"`
	Prizes          domain.PrizeTable `json:"prizes"`
}

// Create handles POST /admin/tournaments, pre-seeding the full unbooked
// slot table in the same transaction as the tournament row.
func (h *TournamentAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createRequest
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if input.Name == "" {
		handler.RespondError(w, domain.ErrValidation("name is required"))
		return
	}
	if input.EntryFee < 0 {
		handler.RespondError(w, domain.ErrValidation("entryFee must not be negative"))
		return
	}
	if input.MaxParticipants <= 0 {
		input.MaxParticipants = domain.MaxParticipants
	}
	if input.MaxParticipants > domain.MaxParticipants {
		handler.RespondError(w, domain.ErrValidation("maxParticipants exceeds the supported slot table size"))
		return
	}
	if input.RewardType == "" {
		input.RewardType = domain.RewardSurvival
	}
	if (input.RewardType == domain.RewardPerKill || input.RewardType == domain.RewardHybrid) && input.PerKillAmount <= 0 {
		handler.RespondError(w, domain.ErrValidation("perKillAmount must be positive for kill-based rewards"))
		return
	}

	t := &domain.Tournament{
		ID:              uuid.New(),
		Name:            input.Name,
		EntryFee:        input.EntryFee,
		PrizePool:       input.Prizes.First + input.Prizes.Second + input.Prizes.Third,
		MaxParticipants: input.MaxParticipants,
		Status:          domain.TournamentUpcoming,
		RewardType:      input.RewardType,
		PerKillAmount:   input.PerKillAmount,
		Prizes:          input.Prizes,
	}
	if _, err := domain.PolicyFor(t); err != nil {
		handler.RespondError(w, domain.ErrValidation(err.Error()))
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("begin tx", err))
		return
	}
	defer tx.Rollback(r.Context())

	if err := h.tournaments.Create(r.Context(), tx, t); err != nil {
		handler.RespondError(w, domain.ErrInternal("create tournament", err))
		return
	}
	if err := tx.Commit(r.Context()); err != nil {
		handler.RespondError(w, domain.ErrInternal("commit tx", err))
		return
	}

	handler.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"tournament": t,
	})
}

// transitionRequest is the shape of PATCH /admin/tournaments/{id}/status.
type transitionRequest struct {
	Status domain.TournamentStatus `json:"status"`
}

// Transition handles PATCH /admin/tournaments/{id}/status. The lifecycle
// only moves forward; the conditional update keyed on the current status
// makes concurrent transitions lose cleanly.
func (h *TournamentAdminHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var input transitionRequest
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if !domain.ValidStatus(input.Status) {
		handler.RespondError(w, domain.ErrValidation("unknown tournament status"))
		return
	}

	t, err := h.tournaments.FindByID(r.Context(), h.pool, id)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("find tournament", err))
		return
	}
	if t == nil {
		handler.RespondError(w, domain.ErrNotFound("tournament", id.String()))
		return
	}
	if !domain.CanTransition(t.Status, input.Status) {
		handler.RespondError(w, domain.ErrValidation("invalid status transition"))
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("begin tx", err))
		return
	}
	defer tx.Rollback(r.Context())

	applied, err := h.tournaments.TransitionStatus(r.Context(), tx, id, t.Status, input.Status)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("transition status", err))
		return
	}
	if !applied {
		handler.RespondError(w, domain.ErrConflict("tournament status changed concurrently"))
		return
	}
	if err := h.outbox.Insert(r.Context(), tx, domain.NewTournamentStatusEvent(id, t.Status, input.Status)); err != nil {
		handler.RespondError(w, domain.ErrInternal("insert status event", err))
		return
	}
	if err := tx.Commit(r.Context()); err != nil {
		handler.RespondError(w, domain.ErrInternal("commit tx", err))
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  input.Status,
	})
}

// ListAll handles GET /admin/tournaments, every status included.
func (h *TournamentAdminHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournaments.ListByStatus(r.Context(), h.pool,
		domain.TournamentUpcoming, domain.TournamentLocked, domain.TournamentLive,
		domain.TournamentCompleted, domain.TournamentCancelled)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list tournaments", err))
		return
	}
	if tournaments == nil {
		tournaments = []domain.Tournament{}
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"tournaments": tournaments,
	})
}
