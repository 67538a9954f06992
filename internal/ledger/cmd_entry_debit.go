package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/slotarena/platform/internal/domain"
)

// ExecuteEntryDebit takes the tournament entry fee. The guard re-checks
// balance >= fee at debit time; the earlier service-level read is advisory.
// Runs inside the booking commit transaction, after the slot claim.
func (e *Engine) ExecuteEntryDebit(ctx context.Context, tx pgx.Tx, params domain.EntryDebitParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	entry, wallet, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID: params.UserID,
		Type:   domain.TxTournamentEntry,
		Status: domain.TxCompleted,
		Amount: params.Amount,
		WalletUpdate: domain.WalletUpdate{
			Balance:        -params.Amount,
			RequireBalance: params.Amount,
		},
		TournamentID: &params.TournamentID,
		Metadata:     ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, err
	}

	return &domain.CommandResult{Transaction: entry, Wallet: wallet}, nil
}
