package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/slotarena/platform/internal/booking"
	"github.com/slotarena/platform/internal/domain"
)

// TournamentHandler handles tournament listing, detail and slot booking.
type TournamentHandler struct {
	booking *booking.Service
}

// NewTournamentHandler creates a new TournamentHandler.
func NewTournamentHandler(bookingSvc *booking.Service) *TournamentHandler {
	return &TournamentHandler{booking: bookingSvc}
}

func tournamentIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid tournament id")
	}
	return id, nil
}

// List handles GET /tournaments.
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.booking.ListJoinable(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	if tournaments == nil {
		tournaments = []domain.Tournament{}
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"tournaments": tournaments,
	})
}

// Detail handles GET /tournaments/{id}, deriving userJoined for the
// requesting identity.
func (h *TournamentHandler) Detail(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	t, joined, err := h.booking.Detail(r.Context(), tournamentID, userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"tournament": t,
		"userJoined": joined,
	})
}

// Slots handles GET /tournaments/{id}/slots.
func (h *TournamentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	slots, err := h.booking.GetSlots(r.Context(), tournamentID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"slots":   slots,
	})
}

// bookRequest is the shared body of the book and confirm endpoints.
type bookRequest struct {
	SlotNumber     int    `json:"slotNumber"`
	GamingUsername string `json:"gamingUsername"`
}

func (h *TournamentHandler) bookingInput(r *http.Request) (booking.Input, error) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		return booking.Input{}, err
	}
	userID, err := userIDFromContext(r)
	if err != nil {
		return booking.Input{}, err
	}
	var body bookRequest
	if err := DecodeJSON(r, &body); err != nil {
		return booking.Input{}, domain.ErrValidation("invalid request body")
	}
	return booking.Input{
		TournamentID:   tournamentID,
		SlotNumber:     body.SlotNumber,
		GamingUsername: body.GamingUsername,
		UserID:         userID,
	}, nil
}

// Book handles POST /tournaments/{id}/book.
func (h *TournamentHandler) Book(w http.ResponseWriter, r *http.Request) {
	input, err := h.bookingInput(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.booking.BookSlot(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	respondBooking(w, result)
}

// Confirm handles POST /tournaments/{id}/confirm, the acknowledgement path
// after a username-mismatch warning.
func (h *TournamentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	input, err := h.bookingInput(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.booking.ConfirmSlotBooking(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	respondBooking(w, result)
}

func respondBooking(w http.ResponseWriter, result *booking.Result) {
	if result.Step != "" {
		RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":         false,
			"step":            result.Step,
			"profileUsername": result.ProfileUsername,
		})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"booking": result.Booking,
	})
}
