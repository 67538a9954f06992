package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/slotarena/platform/internal/domain"
)

// ExecuteWithdraw debits the wallet and lifts totalWithdrawn. The balance
// guard rides in the same update, so the amount <= balance check holds at
// debit time, not at some earlier read. The entry stays pending until
// external settlement, which is outside this system.
func (e *Engine) ExecuteWithdraw(ctx context.Context, tx pgx.Tx, params domain.WithdrawParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}
	if params.Amount < e.limits.MinWithdraw {
		return nil, domain.ErrValidation("amount is below the minimum withdrawal")
	}

	entry, wallet, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID: params.UserID,
		Type:   domain.TxWithdraw,
		Status: domain.TxPending,
		Amount: params.Amount,
		WalletUpdate: domain.WalletUpdate{
			Balance:        -params.Amount,
			TotalWithdrawn: params.Amount,
			RequireBalance: params.Amount,
		},
		Metadata: ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, err
	}

	return &domain.CommandResult{Transaction: entry, Wallet: wallet}, nil
}
