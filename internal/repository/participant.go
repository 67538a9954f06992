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

type participantRepo struct{}

// NewParticipantRepository returns a pgx-backed ParticipantRepository.
func NewParticipantRepository() ParticipantRepository {
	return &participantRepo{}
}

const participantColumns = `id, tournament_id, user_id, slot_number, gaming_username,
	status, rank, prize_amount, joined_at`

// Insert relies on the uq_participants_tournament_user index: a concurrent
// duplicate join fails here with a unique violation even when the advisory
// pre-check passed.
func (r *participantRepo) Insert(ctx context.Context, tx pgx.Tx, p *domain.Participant) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO tournament_participants
		  (id, tournament_id, user_id, slot_number, gaming_username, status, rank, prize_amount, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, now())`,
		p.ID, p.TournamentID, p.UserID, p.SlotNumber, p.GamingUsername, string(p.Status))
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *participantRepo) FindByTournamentAndUser(ctx context.Context, db DBTX, tournamentID, userID uuid.UUID) (*domain.Participant, error) {
	row := db.QueryRow(ctx, `
		SELECT `+participantColumns+`
		FROM tournament_participants
		WHERE tournament_id = $1 AND user_id = $2`, tournamentID, userID)
	return scanParticipant(row)
}

func (r *participantRepo) ListByTournament(ctx context.Context, db DBTX, tournamentID uuid.UUID) ([]domain.Participant, error) {
	rows, err := db.Query(ctx, `
		SELECT `+participantColumns+`
		FROM tournament_participants
		WHERE tournament_id = $1
		ORDER BY slot_number ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var ps []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, *p)
	}
	return ps, rows.Err()
}

func (r *participantRepo) RecordResult(ctx context.Context, tx pgx.Tx, tournamentID, userID uuid.UUID, rank int, prize int64, status domain.ParticipantStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE tournament_participants
		SET rank = $3, prize_amount = $4, status = $5
		WHERE tournament_id = $1 AND user_id = $2`,
		tournamentID, userID, rank, infra.Int64ToNumeric(prize), string(status))
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func scanParticipant(row pgx.Row) (*domain.Participant, error) {
	var p domain.Participant
	var prizeNum pgtype.Numeric
	err := row.Scan(&p.ID, &p.TournamentID, &p.UserID, &p.SlotNumber, &p.GamingUsername,
		&p.Status, &p.Rank, &prizeNum, &p.JoinedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	var convErr error
	p.PrizeAmount, convErr = infra.NumericToInt64(prizeNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert prize_amount: %w", convErr)
	}
	return &p, nil
}
