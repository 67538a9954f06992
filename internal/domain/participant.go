package domain

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantStatus enumerates the lifecycle of a join record.
type ParticipantStatus string

const (
	ParticipantJoined       ParticipantStatus = "joined"
	ParticipantDisqualified ParticipantStatus = "disqualified"
	ParticipantWinner       ParticipantStatus = "winner"
)

// Participant is the authoritative join record, one per (tournament, user).
// The store enforces the composite uniqueness; application pre-checks are
// advisory only.
type Participant struct {
	ID             uuid.UUID         `json:"id"`
	TournamentID   uuid.UUID         `json:"tournamentId"`
	UserID         uuid.UUID         `json:"userId"`
	SlotNumber     int               `json:"slotNumber"`
	GamingUsername string            `json:"gamingUsername"`
	Status         ParticipantStatus `json:"status"`
	Rank           int               `json:"rank"`
	PrizeAmount    int64             `json:"prizeAmount"`
	JoinedAt       time.Time         `json:"joinedAt"`
}
