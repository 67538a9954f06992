package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/slotarena/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// TournamentRepository provides access to tournaments and tournament_slots.
type TournamentRepository interface {
	// FindByID returns a tournament without its slot table.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Tournament, error)

	// LockForUpdate acquires a row-level lock on the tournament.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Tournament, error)

	// ListByStatus returns tournaments in any of the given statuses.
	ListByStatus(ctx context.Context, db DBTX, statuses ...domain.TournamentStatus) ([]domain.Tournament, error)

	// Create inserts the tournament and pre-seeds its full slot table unbooked.
	Create(ctx context.Context, tx pgx.Tx, t *domain.Tournament) error

	// Slots returns the ordered slot table.
	Slots(ctx context.Context, db DBTX, tournamentID uuid.UUID) ([]domain.Slot, error)

	// FindSlot returns one slot row, nil if absent.
	FindSlot(ctx context.Context, db DBTX, tournamentID uuid.UUID, slotNumber int) (*domain.Slot, error)

	// ClaimSlot marks one slot booked only if it is currently unbooked.
	// Returns nil with no error when the conditional update did not apply,
	// i.e. the slot was already taken.
	ClaimSlot(ctx context.Context, tx pgx.Tx, tournamentID uuid.UUID, slotNumber int, userID uuid.UUID, gamingUsername string) (*domain.Slot, error)

	// TransitionStatus applies a lifecycle transition only while the
	// tournament is still in the expected current status.
	TransitionStatus(ctx context.Context, db DBTX, id uuid.UUID, from, to domain.TournamentStatus) (bool, error)

	// AdjustParticipantCount moves the registered-player aggregate.
	AdjustParticipantCount(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) error
}

// ParticipantRepository provides access to tournament_participants.
// The (tournament_id, user_id) unique index is the authoritative
// de-duplication constraint.
type ParticipantRepository interface {
	// Insert creates the join record. A duplicate join surfaces the store's
	// unique violation; callers detect it with IsUniqueViolation.
	Insert(ctx context.Context, tx pgx.Tx, p *domain.Participant) error

	// FindByTournamentAndUser returns the join record, nil if absent.
	FindByTournamentAndUser(ctx context.Context, db DBTX, tournamentID, userID uuid.UUID) (*domain.Participant, error)

	// ListByTournament returns all join records, slot order.
	ListByTournament(ctx context.Context, db DBTX, tournamentID uuid.UUID) ([]domain.Participant, error)

	// RecordResult stores rank, prize amount and status after settlement.
	RecordResult(ctx context.Context, tx pgx.Tx, tournamentID, userID uuid.UUID, rank int, prize int64, status domain.ParticipantStatus) error
}

// WinnerRepository provides access to tournament_winners.
type WinnerRepository interface {
	// Replace overwrites the winner list for a tournament.
	Replace(ctx context.Context, tx pgx.Tx, tournamentID uuid.UUID, winners []domain.Winner) error

	// ListByTournament returns winners ordered by position.
	ListByTournament(ctx context.Context, db DBTX, tournamentID uuid.UUID) ([]domain.Winner, error)

	// AnyCredited reports whether any winner has already been paid.
	AnyCredited(ctx context.Context, db DBTX, tournamentID uuid.UUID) (bool, error)

	// MarkCredited flips prize_credited false → true, linking the paying
	// transaction. Returns false when the flag was already set, which is the
	// skip signal for idempotent re-runs.
	MarkCredited(ctx context.Context, tx pgx.Tx, tournamentID, userID uuid.UUID, transactionID uuid.UUID) (bool, error)
}

// UserRepository provides access to users.
type UserRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error)
	Create(ctx context.Context, db DBTX, user *domain.User) error
}

// WalletRepository provides access to wallets.
type WalletRepository interface {
	// FindByUser returns the wallet, nil if absent.
	FindByUser(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.Wallet, error)

	// Create inserts a zeroed wallet.
	Create(ctx context.Context, db DBTX, wallet *domain.Wallet) error

	// ApplyUpdate atomically moves wallet columns with server-side
	// arithmetic. A guarded update that does not apply (balance below the
	// guard) returns nil with no error.
	ApplyUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, update domain.WalletUpdate) (*domain.Wallet, error)
}

// TransactionRepository provides access to wallet_transactions.
type TransactionRepository interface {
	// Insert creates a ledger entry with its balance snapshot.
	Insert(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams, balanceAfter int64) (*domain.WalletTransaction, error)

	// ListByUser returns entries newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.WalletTransaction, error)

	// ListForReplay returns all entries oldest first.
	ListForReplay(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.WalletTransaction, error)

	// FindByTournamentAndType returns the oldest entry of the given type a user
	// posted against a tournament, nil if absent.
	FindByTournamentAndType(ctx context.Context, db DBTX, tournamentID, userID uuid.UUID, typ domain.TransactionType) (*domain.WalletTransaction, error)
}

// OutboxRepository writes events to the event_outbox table. The relay side
// reads and marks the table directly over the pool (infra.OutboxRelay).
type OutboxRepository interface {
	// Insert writes an outbox event within the caller's transaction.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, the signal that a concurrent duplicate slipped past a pre-check.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
