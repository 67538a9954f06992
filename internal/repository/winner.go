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

type winnerRepo struct{}

// NewWinnerRepository returns a pgx-backed WinnerRepository.
func NewWinnerRepository() WinnerRepository {
	return &winnerRepo{}
}

func (r *winnerRepo) Replace(ctx context.Context, tx pgx.Tx, tournamentID uuid.UUID, winners []domain.Winner) error {
	_, err := tx.Exec(ctx, `DELETE FROM tournament_winners WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("clear winners: %w", err)
	}
	for _, w := range winners {
		_, err := tx.Exec(ctx, `
			INSERT INTO tournament_winners
			  (tournament_id, user_id, position, kills, reward, prize_credited)
			VALUES ($1, $2, $3, $4, $5, false)`,
			tournamentID, w.UserID, w.Position, w.Kills, infra.Int64ToNumeric(w.Reward))
		if err != nil {
			return fmt.Errorf("insert winner position %d: %w", w.Position, err)
		}
	}
	return nil
}

func (r *winnerRepo) ListByTournament(ctx context.Context, db DBTX, tournamentID uuid.UUID) ([]domain.Winner, error) {
	rows, err := db.Query(ctx, `
		SELECT tournament_id, user_id, position, kills, reward, prize_credited, transaction_id
		FROM tournament_winners
		WHERE tournament_id = $1
		ORDER BY position ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("query winners: %w", err)
	}
	defer rows.Close()

	var ws []domain.Winner
	for rows.Next() {
		var w domain.Winner
		var rewardNum pgtype.Numeric
		if err := rows.Scan(&w.TournamentID, &w.UserID, &w.Position, &w.Kills, &rewardNum, &w.PrizeCredited, &w.TransactionID); err != nil {
			return nil, fmt.Errorf("scan winner: %w", err)
		}
		var convErr error
		w.Reward, convErr = infra.NumericToInt64(rewardNum)
		if convErr != nil {
			return nil, fmt.Errorf("convert reward: %w", convErr)
		}
		ws = append(ws, w)
	}
	return ws, rows.Err()
}

func (r *winnerRepo) AnyCredited(ctx context.Context, db DBTX, tournamentID uuid.UUID) (bool, error) {
	var credited bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM tournament_winners
			WHERE tournament_id = $1 AND prize_credited = true)`,
		tournamentID).Scan(&credited)
	if err != nil {
		return false, fmt.Errorf("check credited winners: %w", err)
	}
	return credited, nil
}

// MarkCredited is the conditional primitive that makes prize distribution
// idempotent per winner: the prize_credited = false predicate lets a retry
// observe the first successful credit and skip.
func (r *winnerRepo) MarkCredited(ctx context.Context, tx pgx.Tx, tournamentID, userID uuid.UUID, transactionID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE tournament_winners
		SET prize_credited = true, transaction_id = $3
		WHERE tournament_id = $1 AND user_id = $2 AND prize_credited = false`,
		tournamentID, userID, transactionID)
	if err != nil {
		return false, fmt.Errorf("mark credited: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
