package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/infra"
)

type tournamentRepo struct{}

// NewTournamentRepository returns a pgx-backed TournamentRepository.
func NewTournamentRepository() TournamentRepository {
	return &tournamentRepo{}
}

const tournamentColumns = `id, name, entry_fee, prize_pool, max_participants, status,
	reward_type, per_kill_amount, prize_first, prize_second, prize_third,
	participant_count, created_at, updated_at`

func (r *tournamentRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Tournament, error) {
	row := db.QueryRow(ctx, `
		SELECT `+tournamentColumns+`
		FROM tournaments WHERE id = $1`, id)
	return scanTournament(row)
}

func (r *tournamentRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Tournament, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+tournamentColumns+`
		FROM tournaments WHERE id = $1 FOR UPDATE`, id)
	return scanTournament(row)
}

func (r *tournamentRepo) ListByStatus(ctx context.Context, db DBTX, statuses ...domain.TournamentStatus) ([]domain.Tournament, error) {
	args := make([]string, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, string(s))
	}
	rows, err := db.Query(ctx, `
		SELECT `+tournamentColumns+`
		FROM tournaments WHERE status = ANY($1)
		ORDER BY created_at DESC`, args)
	if err != nil {
		return nil, fmt.Errorf("query tournaments: %w", err)
	}
	defer rows.Close()

	var ts []domain.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		ts = append(ts, *t)
	}
	return ts, rows.Err()
}

// Create inserts the tournament row and pre-seeds all slots unbooked, so the
// slot table length is fixed from the start and booking only ever flips
// existing rows.
func (r *tournamentRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Tournament) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO tournaments
		  (id, name, entry_fee, prize_pool, max_participants, status,
		   reward_type, per_kill_amount, prize_first, prize_second, prize_third,
		   participant_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, now(), now())`,
		t.ID, t.Name,
		infra.Int64ToNumeric(t.EntryFee),
		infra.Int64ToNumeric(t.PrizePool),
		t.MaxParticipants,
		string(t.Status),
		string(t.RewardType),
		infra.Int64ToNumeric(t.PerKillAmount),
		infra.Int64ToNumeric(t.Prizes.First),
		infra.Int64ToNumeric(t.Prizes.Second),
		infra.Int64ToNumeric(t.Prizes.Third),
	)
	if err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO tournament_slots (tournament_id, slot_number, is_booked)
		SELECT $1, n, false FROM generate_series(1, $2) AS n`,
		t.ID, t.MaxParticipants)
	if err != nil {
		return fmt.Errorf("seed slots: %w", err)
	}
	return nil
}

func (r *tournamentRepo) Slots(ctx context.Context, db DBTX, tournamentID uuid.UUID) ([]domain.Slot, error) {
	rows, err := db.Query(ctx, `
		SELECT tournament_id, slot_number, user_id, gaming_username, booked_at, is_booked
		FROM tournament_slots
		WHERE tournament_id = $1
		ORDER BY slot_number ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	var slots []domain.Slot
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.TournamentID, &s.SlotNumber, &s.UserID, &s.GamingUsername, &s.BookedAt, &s.IsBooked); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *tournamentRepo) FindSlot(ctx context.Context, db DBTX, tournamentID uuid.UUID, slotNumber int) (*domain.Slot, error) {
	row := db.QueryRow(ctx, `
		SELECT tournament_id, slot_number, user_id, gaming_username, booked_at, is_booked
		FROM tournament_slots
		WHERE tournament_id = $1 AND slot_number = $2`, tournamentID, slotNumber)

	var s domain.Slot
	err := row.Scan(&s.TournamentID, &s.SlotNumber, &s.UserID, &s.GamingUsername, &s.BookedAt, &s.IsBooked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return &s, nil
}

// ClaimSlot is the single conditional primitive that closes the booking race:
// the is_booked = false predicate makes concurrent claims mutually exclusive
// at the store, so exactly one of N racing requests sees a returned row.
func (r *tournamentRepo) ClaimSlot(ctx context.Context, tx pgx.Tx, tournamentID uuid.UUID, slotNumber int, userID uuid.UUID, gamingUsername string) (*domain.Slot, error) {
	row := tx.QueryRow(ctx, `
		UPDATE tournament_slots
		SET is_booked = true, user_id = $3, gaming_username = $4, booked_at = now()
		WHERE tournament_id = $1 AND slot_number = $2 AND is_booked = false
		RETURNING tournament_id, slot_number, user_id, gaming_username, booked_at, is_booked`,
		tournamentID, slotNumber, userID, gamingUsername)

	var s domain.Slot
	err := row.Scan(&s.TournamentID, &s.SlotNumber, &s.UserID, &s.GamingUsername, &s.BookedAt, &s.IsBooked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("claim slot: %w", err)
	}
	return &s, nil
}

// TransitionStatus only applies while the tournament still holds the expected
// current status, so concurrent transitions cannot skip or repeat states.
func (r *tournamentRepo) TransitionStatus(ctx context.Context, db DBTX, id uuid.UUID, from, to domain.TournamentStatus) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE tournaments SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("transition status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *tournamentRepo) AdjustParticipantCount(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) error {
	_, err := tx.Exec(ctx, `
		UPDATE tournaments
		SET participant_count = participant_count + $2, updated_at = now()
		WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("adjust participant count: %w", err)
	}
	return nil
}

func scanTournament(row pgx.Row) (*domain.Tournament, error) {
	var t domain.Tournament
	var feeNum, poolNum, perKillNum, p1Num, p2Num, p3Num pgtype.Numeric
	err := row.Scan(
		&t.ID, &t.Name, &feeNum, &poolNum, &t.MaxParticipants, &t.Status,
		&t.RewardType, &perKillNum, &p1Num, &p2Num, &p3Num,
		&t.ParticipantCnt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan tournament: %w", err)
	}

	for _, conv := range []struct {
		dst *int64
		src pgtype.Numeric
	}{
		{&t.EntryFee, feeNum},
		{&t.PrizePool, poolNum},
		{&t.PerKillAmount, perKillNum},
		{&t.Prizes.First, p1Num},
		{&t.Prizes.Second, p2Num},
		{&t.Prizes.Third, p3Num},
	} {
		v, convErr := infra.NumericToInt64(conv.src)
		if convErr != nil {
			return nil, fmt.Errorf("convert tournament amount: %w", convErr)
		}
		*conv.dst = v
	}
	return &t, nil
}
