package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/slotarena/platform/internal/domain"
)

// ExecuteRefund returns a previously debited entry fee, used when a
// tournament is cancelled after bookings were taken.
func (e *Engine) ExecuteRefund(ctx context.Context, tx pgx.Tx, params domain.RefundParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	entry, wallet, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID: params.UserID,
		Type:   domain.TxRefund,
		Status: domain.TxCompleted,
		Amount: params.Amount,
		WalletUpdate: domain.WalletUpdate{
			Balance: params.Amount,
		},
		TournamentID: &params.TournamentID,
		Metadata:     ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("refund: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: wallet}, nil
}
