package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxParticipants is the fixed slot-table size for every tournament.
const MaxParticipants = 50

// TournamentStatus enumerates the tournament lifecycle states.
// Transitions only move forward: upcoming → locked → live → completed,
// or any pre-completed state → cancelled.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentLocked    TournamentStatus = "locked"
	TournamentLive      TournamentStatus = "live"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCancelled TournamentStatus = "cancelled"
)

// statusOrder ranks the forward-only lifecycle. Cancelled is terminal and
// reachable from any non-terminal state.
var statusOrder = map[TournamentStatus]int{
	TournamentUpcoming:  0,
	TournamentLocked:    1,
	TournamentLive:      2,
	TournamentCompleted: 3,
}

// ValidStatus reports whether s is a known tournament status.
func ValidStatus(s TournamentStatus) bool {
	if s == TournamentCancelled {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// CanTransition reports whether a tournament may move from → to.
func CanTransition(from, to TournamentStatus) bool {
	if from == TournamentCancelled || from == to {
		return false
	}
	if to == TournamentCancelled {
		return from != TournamentCompleted
	}
	fromRank, okFrom := statusOrder[from]
	toRank, okTo := statusOrder[to]
	return okFrom && okTo && toRank > fromRank
}

// Joinable reports whether slot booking is open for this status.
func (s TournamentStatus) Joinable() bool {
	return s == TournamentUpcoming || s == TournamentLocked
}

// Tournament represents a tournaments row. The slot table lives in
// tournament_slots, one row per seat, and is attached on read.
type Tournament struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	EntryFee        int64            `json:"entryFee"`
	PrizePool       int64            `json:"prizePool"`
	MaxParticipants int              `json:"maxParticipants"`
	Status          TournamentStatus `json:"status"`
	RewardType      RewardType       `json:"rewardType"`
	PerKillAmount   int64            `json:"perKillAmount"`
	Prizes          PrizeTable       `json:"prizes"`
	ParticipantCnt  int              `json:"registeredCount"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`

	Slots []Slot `json:"slots,omitempty"`
}

// PrizeTable holds the flat prize amounts for the top three positions.
type PrizeTable struct {
	First  int64 `json:"first"`
	Second int64 `json:"second"`
	Third  int64 `json:"third"`
}

// ForPosition returns the flat prize for a 1-based position, zero if unplaced.
func (p PrizeTable) ForPosition(position int) int64 {
	switch position {
	case 1:
		return p.First
	case 2:
		return p.Second
	case 3:
		return p.Third
	default:
		return 0
	}
}

// Slot is one numbered seat in a tournament's fixed slot table
// (tournament_slots row, PK (tournament_id, slot_number)).
type Slot struct {
	TournamentID   uuid.UUID  `json:"-"`
	SlotNumber     int        `json:"slotNumber"`
	UserID         *uuid.UUID `json:"userId,omitempty"`
	GamingUsername *string    `json:"gamingUsername,omitempty"`
	BookedAt       *time.Time `json:"bookedAt,omitempty"`
	IsBooked       bool       `json:"isBooked"`
}

// Winner is a settled podium entry (tournament_winners row).
type Winner struct {
	TournamentID  uuid.UUID  `json:"-"`
	UserID        uuid.UUID  `json:"userId"`
	Position      int        `json:"position"`
	Kills         int        `json:"kills"`
	Reward        int64      `json:"reward"`
	PrizeCredited bool       `json:"prizeCredited"`
	TransactionID *uuid.UUID `json:"transactionId,omitempty"`
}

// RankedEntry is the settlement input for one podium position.
type RankedEntry struct {
	UserID   uuid.UUID `json:"userId"`
	Position int       `json:"position"`
	Kills    int       `json:"kills"`
}
