package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types published via the outbox.
type EventType string

const (
	EventSlotBooked        EventType = "arena.tournament.slot.booked"
	EventTournamentStatus  EventType = "arena.tournament.status.changed"
	EventWinnersSelected   EventType = "arena.tournament.winners.selected"
	EventPrizeCredited     EventType = "arena.tournament.prize.credited"
	EventTransactionPosted EventType = "arena.wallet.transaction.posted"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateTournament AggregateType = "tournament"
	AggregateWallet     AggregateType = "wallet"
)

// OutboxDraft is the payload written to the event_outbox table inside the
// same DB transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func newDraft(agg AggregateType, aggID string, typ EventType, payload interface{}) OutboxDraft {
	data, err := json.Marshal(payload)
	if err != nil {
		data = json.RawMessage(fmt.Sprintf(`{"marshal_error":%q}`, err.Error()))
	}
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   aggID,
		EventType:     typ,
		Payload:       data,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewTransactionPostedEvent announces a new ledger entry.
func NewTransactionPostedEvent(tx *WalletTransaction) OutboxDraft {
	return newDraft(AggregateWallet, tx.UserID.String(), EventTransactionPosted, tx)
}

// NewSlotBookedEvent announces a successful slot claim.
func NewSlotBookedEvent(p *Participant) OutboxDraft {
	return newDraft(AggregateTournament, p.TournamentID.String(), EventSlotBooked, p)
}

// NewTournamentStatusEvent announces a lifecycle transition.
func NewTournamentStatusEvent(tournamentID uuid.UUID, from, to TournamentStatus) OutboxDraft {
	return newDraft(AggregateTournament, tournamentID.String(), EventTournamentStatus, map[string]string{
		"from": string(from),
		"to":   string(to),
	})
}

// NewWinnersSelectedEvent announces a recorded podium.
func NewWinnersSelectedEvent(tournamentID uuid.UUID, winners []Winner) OutboxDraft {
	return newDraft(AggregateTournament, tournamentID.String(), EventWinnersSelected, winners)
}

// NewPrizeCreditedEvent announces one winner's credited payout.
func NewPrizeCreditedEvent(tournamentID uuid.UUID, w *Winner) OutboxDraft {
	return newDraft(AggregateTournament, tournamentID.String(), EventPrizeCredited, w)
}
