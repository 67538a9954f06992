package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/infra"
)

type walletRepo struct{}

// NewWalletRepository returns a pgx-backed WalletRepository.
func NewWalletRepository() WalletRepository {
	return &walletRepo{}
}

func (r *walletRepo) FindByUser(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.Wallet, error) {
	row := db.QueryRow(ctx, `
		SELECT user_id, balance, total_deposited, total_withdrawn, created_at, updated_at
		FROM wallets WHERE user_id = $1`, userID)
	return scanWallet(row)
}

func (r *walletRepo) Create(ctx context.Context, db DBTX, wallet *domain.Wallet) error {
	_, err := db.Exec(ctx, `
		INSERT INTO wallets (user_id, balance, total_deposited, total_withdrawn, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())`,
		wallet.UserID,
		infra.Int64ToNumeric(wallet.Balance),
		infra.Int64ToNumeric(wallet.TotalDeposited),
		infra.Int64ToNumeric(wallet.TotalWithdrawn),
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// ApplyUpdate uses server-side arithmetic with dynamic SET clauses. When the
// update is guarded the balance >= predicate rides in the same statement, so
// the invariant check and the debit are one operation, never a read-then-write
// pair. A guarded update that found the balance short returns (nil, nil).
func (r *walletRepo) ApplyUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, update domain.WalletUpdate) (*domain.Wallet, error) {
	setClauses := []string{"updated_at = now()"}
	args := []interface{}{}
	argIdx := 1

	if update.HasBalanceDelta() {
		setClauses = append(setClauses, fmt.Sprintf("balance = balance + $%d", argIdx))
		args = append(args, infra.Int64ToNumeric(update.Balance))
		argIdx++
	}
	if update.HasDepositedDelta() {
		setClauses = append(setClauses, fmt.Sprintf("total_deposited = total_deposited + $%d", argIdx))
		args = append(args, infra.Int64ToNumeric(update.TotalDeposited))
		argIdx++
	}
	if update.HasWithdrawnDelta() {
		setClauses = append(setClauses, fmt.Sprintf("total_withdrawn = total_withdrawn + $%d", argIdx))
		args = append(args, infra.Int64ToNumeric(update.TotalWithdrawn))
		argIdx++
	}

	where := fmt.Sprintf("user_id = $%d", argIdx)
	args = append(args, userID)
	argIdx++

	if update.Guarded() {
		where += fmt.Sprintf(" AND balance >= $%d", argIdx)
		args = append(args, infra.Int64ToNumeric(update.RequireBalance))
	}

	query := fmt.Sprintf(`
		UPDATE wallets SET %s
		WHERE %s
		RETURNING user_id, balance, total_deposited, total_withdrawn, created_at, updated_at`,
		strings.Join(setClauses, ", "), where)

	row := tx.QueryRow(ctx, query, args...)
	return scanWallet(row)
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	var balNum, depNum, wdNum pgtype.Numeric
	err := row.Scan(&w.UserID, &balNum, &depNum, &wdNum, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}

	var convErr error
	w.Balance, convErr = infra.NumericToInt64(balNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert balance: %w", convErr)
	}
	w.TotalDeposited, convErr = infra.NumericToInt64(depNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert total_deposited: %w", convErr)
	}
	w.TotalWithdrawn, convErr = infra.NumericToInt64(wdNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert total_withdrawn: %w", convErr)
	}
	return &w, nil
}
