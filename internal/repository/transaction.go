package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/infra"
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

const transactionColumns = `id, user_id, type, status, amount, balance_after,
	tournament_id, payment_method, metadata, created_at`

func (r *transactionRepo) Insert(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams, balanceAfter int64) (*domain.WalletTransaction, error) {
	meta := params.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO wallet_transactions
		  (user_id, type, status, amount, balance_after, tournament_id, payment_method, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+transactionColumns,
		params.UserID,
		string(params.Type),
		string(params.Status),
		infra.Int64ToNumeric(params.Amount),
		infra.Int64ToNumeric(balanceAfter),
		params.TournamentID,
		params.Method,
		meta,
	)
	return scanWalletTransaction(row)
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *transactionRepo) ListForReplay(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.WalletTransaction, error) {
	rows, err := db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query replay transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *transactionRepo) FindByTournamentAndType(ctx context.Context, db DBTX, tournamentID, userID uuid.UUID, typ domain.TransactionType) (*domain.WalletTransaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE user_id = $1 AND tournament_id = $2 AND type = $3
		ORDER BY created_at ASC
		LIMIT 1`,
		userID, tournamentID, string(typ))
	return scanWalletTransaction(row)
}

func scanWalletTransaction(row pgx.Row) (*domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	var amountNum, balNum pgtype.Numeric
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Status, &amountNum, &balNum,
		&t.TournamentID, &t.Method, &t.Metadata, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	var convErr error
	t.Amount, convErr = infra.NumericToInt64(amountNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert amount: %w", convErr)
	}
	t.BalanceAfter, convErr = infra.NumericToInt64(balNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert balance_after: %w", convErr)
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.WalletTransaction, error) {
	var txs []domain.WalletTransaction
	for rows.Next() {
		t, err := scanWalletTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}
