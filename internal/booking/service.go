// Package booking implements the slot-booking dialogue: a client-driven,
// server-stateless exchange where every call re-validates from scratch and
// the only synchronization points are the store's conditional primitives.
package booking

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/ledger"
	"github.com/slotarena/platform/internal/repository"
)

// StepConfirmUsernameMismatch asks the client to acknowledge that the
// entered in-game name differs from the profile username. Nothing has been
// reserved or debited when this step is returned.
const StepConfirmUsernameMismatch = "confirm_username_mismatch"

// Service orchestrates eligibility checks, the conditional slot claim, the
// entry-fee debit and the join-record insert as one logical unit.
type Service struct {
	pool         *pgxpool.Pool
	tournaments  repository.TournamentRepository
	participants repository.ParticipantRepository
	users        repository.UserRepository
	wallets      repository.WalletRepository
	outbox       repository.OutboxRepository
	engine       *ledger.Engine
	logger       *slog.Logger
}

// NewService creates a booking service.
func NewService(
	pool *pgxpool.Pool,
	tournaments repository.TournamentRepository,
	participants repository.ParticipantRepository,
	users repository.UserRepository,
	wallets repository.WalletRepository,
	outbox repository.OutboxRepository,
	engine *ledger.Engine,
	logger *slog.Logger,
) *Service {
	return &Service{
		pool:         pool,
		tournaments:  tournaments,
		participants: participants,
		users:        users,
		wallets:      wallets,
		outbox:       outbox,
		engine:       engine,
		logger:       logger,
	}
}

// Input identifies one booking attempt. The same input drives both BookSlot
// and ConfirmSlotBooking; the client resubmits it unchanged after the
// mismatch warning.
type Input struct {
	TournamentID   uuid.UUID
	SlotNumber     int
	GamingUsername string
	UserID         uuid.UUID
}

// Booking describes a committed reservation.
type Booking struct {
	SlotNumber       int    `json:"slotNumber"`
	GamingUsername   string `json:"gamingUsername"`
	RemainingBalance int64  `json:"remainingBalance"`
}

// Result is the outcome of BookSlot/ConfirmSlotBooking. Either Step is set
// (non-committing mismatch warning) or Booking is set (committed).
type Result struct {
	Step            string   `json:"step,omitempty"`
	ProfileUsername string   `json:"profileUsername,omitempty"`
	Booking         *Booking `json:"booking,omitempty"`
}

// GetSlots returns a read-only snapshot of the tournament's slot table.
func (s *Service) GetSlots(ctx context.Context, tournamentID uuid.UUID) ([]domain.Slot, error) {
	t, err := s.tournaments.FindByID(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("find tournament", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("tournament", tournamentID.String())
	}
	slots, err := s.tournaments.Slots(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("load slots", err)
	}
	return slots, nil
}

// Detail returns the tournament with its slot table plus whether userID has
// already joined.
func (s *Service) Detail(ctx context.Context, tournamentID, userID uuid.UUID) (*domain.Tournament, bool, error) {
	t, err := s.tournaments.FindByID(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, false, domain.ErrInternal("find tournament", err)
	}
	if t == nil {
		return nil, false, domain.ErrNotFound("tournament", tournamentID.String())
	}
	t.Slots, err = s.tournaments.Slots(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, false, domain.ErrInternal("load slots", err)
	}
	p, err := s.participants.FindByTournamentAndUser(ctx, s.pool, tournamentID, userID)
	if err != nil {
		return nil, false, domain.ErrInternal("find participant", err)
	}
	return t, p != nil, nil
}

// ListJoinable returns tournaments currently open for booking.
func (s *Service) ListJoinable(ctx context.Context) ([]domain.Tournament, error) {
	ts, err := s.tournaments.ListByStatus(ctx, s.pool, domain.TournamentUpcoming, domain.TournamentLocked)
	if err != nil {
		return nil, domain.ErrInternal("list tournaments", err)
	}
	return ts, nil
}

// BookSlot runs the full precondition chain and either commits the booking
// or, when the entered in-game name differs from the stored profile username
// (case-sensitive byte comparison), returns the non-committing mismatch step.
func (s *Service) BookSlot(ctx context.Context, in Input) (*Result, error) {
	_, user, err := s.checkPreconditions(ctx, in, true)
	if err != nil {
		return nil, err
	}

	if in.GamingUsername != user.Username {
		return &Result{
			Step:            StepConfirmUsernameMismatch,
			ProfileUsername: user.Username,
		}, nil
	}

	return s.commit(ctx, in)
}

// ConfirmSlotBooking is the explicit acknowledgement path after the mismatch
// warning. It re-runs the precondition chain (every call is an independent,
// untrusted request) and commits regardless of mismatch.
func (s *Service) ConfirmSlotBooking(ctx context.Context, in Input) (*Result, error) {
	if _, _, err := s.checkPreconditions(ctx, in, true); err != nil {
		return nil, err
	}
	return s.commit(ctx, in)
}

// checkPreconditions applies the ordered advisory checks, short-circuiting
// on the first failure. The slot and balance reads here only filter out
// hopeless attempts; the commit re-verifies both conditionally.
func (s *Service) checkPreconditions(ctx context.Context, in Input, validateUsername bool) (*domain.Tournament, *domain.User, error) {
	// 1. Tournament exists and registration is open.
	t, err := s.tournaments.FindByID(ctx, s.pool, in.TournamentID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find tournament", err)
	}
	if t == nil {
		return nil, nil, domain.ErrNotFound("tournament", in.TournamentID.String())
	}
	if !t.Status.Joinable() || t.ParticipantCnt >= t.MaxParticipants {
		return nil, nil, domain.ErrTournamentNotJoinable(t.Status)
	}

	// 2. Not already registered (advisory; the unique index is authoritative).
	existing, err := s.participants.FindByTournamentAndUser(ctx, s.pool, in.TournamentID, in.UserID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find participant", err)
	}
	if existing != nil {
		return nil, nil, domain.ErrAlreadyRegistered()
	}

	// 3. Slot addressable and currently unbooked.
	if err := domain.ValidateSlotNumber(in.SlotNumber, t.MaxParticipants); err != nil {
		return nil, nil, err
	}
	slot, err := s.tournaments.FindSlot(ctx, s.pool, in.TournamentID, in.SlotNumber)
	if err != nil {
		return nil, nil, domain.ErrInternal("find slot", err)
	}
	if slot == nil || slot.IsBooked {
		return nil, nil, domain.ErrSlotUnavailable(in.SlotNumber)
	}

	// 4. In-game name length.
	if validateUsername {
		if err := domain.ValidateGamingUsername(in.GamingUsername); err != nil {
			return nil, nil, err
		}
	}

	// 5. Balance covers the entry fee (advisory; re-checked at debit time).
	wallet, err := s.wallets.FindByUser(ctx, s.pool, in.UserID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find wallet", err)
	}
	if wallet == nil {
		return nil, nil, domain.ErrNotFound("wallet", in.UserID.String())
	}
	if wallet.Balance < t.EntryFee {
		return nil, nil, domain.ErrInsufficientFunds()
	}

	user, err := s.users.FindByID(ctx, s.pool, in.UserID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, nil, domain.ErrNotFound("user", in.UserID.String())
	}

	return t, user, nil
}

// commit performs the atomic booking: locked tournament re-read, conditional
// slot claim, join-record insert under the unique index, guarded fee debit
// and the outbox event, all in one DB transaction. Any failure rolls back
// every prior step, so the compensating release is the transaction itself. A
// retried commit after a success observes its own claim and fails with
// SlotUnavailable (or AlreadyRegistered), never a second debit.
func (s *Service) commit(ctx context.Context, in Input) (*Result, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin booking tx", err)
	}
	defer tx.Rollback(ctx)

	// Re-read under the row lock: the advisory joinable/capacity check may
	// be stale by now (a status transition or a rival booking in between).
	t, err := s.tournaments.LockForUpdate(ctx, tx, in.TournamentID)
	if err != nil {
		return nil, domain.ErrInternal("lock tournament", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("tournament", in.TournamentID.String())
	}
	if !t.Status.Joinable() || t.ParticipantCnt >= t.MaxParticipants {
		return nil, domain.ErrTournamentNotJoinable(t.Status)
	}

	slot, err := s.tournaments.ClaimSlot(ctx, tx, in.TournamentID, in.SlotNumber, in.UserID, in.GamingUsername)
	if err != nil {
		return nil, domain.ErrInternal("claim slot", err)
	}
	if slot == nil {
		return nil, domain.ErrSlotUnavailable(in.SlotNumber)
	}

	participant := &domain.Participant{
		ID:             uuid.New(),
		TournamentID:   in.TournamentID,
		UserID:         in.UserID,
		SlotNumber:     in.SlotNumber,
		GamingUsername: in.GamingUsername,
		Status:         domain.ParticipantJoined,
	}
	if err := s.participants.Insert(ctx, tx, participant); err != nil {
		if repository.IsUniqueViolation(err) {
			// Concurrent duplicate join slipped past the advisory check.
			return nil, domain.ErrAlreadyRegistered()
		}
		return nil, domain.ErrInternal("insert participant", err)
	}

	var remaining int64
	if t.EntryFee > 0 {
		meta, _ := json.Marshal(map[string]interface{}{
			"slotNumber":     in.SlotNumber,
			"gamingUsername": in.GamingUsername,
		})
		result, err := s.engine.ExecuteEntryDebit(ctx, tx, domain.EntryDebitParams{
			UserID:       in.UserID,
			TournamentID: in.TournamentID,
			Amount:       t.EntryFee,
			Metadata:     meta,
		})
		if err != nil {
			return nil, err
		}
		remaining = result.Wallet.Balance
	} else {
		wallet, err := s.wallets.FindByUser(ctx, tx, in.UserID)
		if err != nil || wallet == nil {
			return nil, domain.ErrInternal("load wallet", err)
		}
		remaining = wallet.Balance
	}

	if err := s.tournaments.AdjustParticipantCount(ctx, tx, in.TournamentID, 1); err != nil {
		return nil, domain.ErrInternal("adjust participant count", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewSlotBookedEvent(participant)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit booking tx", err)
	}

	s.logger.Info("slot booked",
		"tournament_id", in.TournamentID,
		"slot_number", in.SlotNumber,
		"user_id", in.UserID,
	)

	return &Result{
		Booking: &Booking{
			SlotNumber:       in.SlotNumber,
			GamingUsername:   in.GamingUsername,
			RemainingBalance: remaining,
		},
	}, nil
}
