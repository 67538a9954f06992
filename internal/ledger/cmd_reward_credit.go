package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/slotarena/platform/internal/domain"
)

// ExecuteRewardCredit pays a winner's prize into the wallet. Exactly-once
// semantics come from the caller flipping the winner's prize_credited flag
// in the same transaction, not from this command.
func (e *Engine) ExecuteRewardCredit(ctx context.Context, tx pgx.Tx, params domain.RewardCreditParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	entry, wallet, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID: params.UserID,
		Type:   domain.TxTournamentAward,
		Status: domain.TxCompleted,
		Amount: params.Amount,
		WalletUpdate: domain.WalletUpdate{
			Balance: params.Amount,
		},
		TournamentID: &params.TournamentID,
		Metadata:     ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("reward credit: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: wallet}, nil
}
