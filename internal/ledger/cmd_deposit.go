package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/slotarena/platform/internal/domain"
)

// ExecuteDeposit credits the wallet and lifts totalDeposited together.
// The deposit entry is recorded completed immediately.
func (e *Engine) ExecuteDeposit(ctx context.Context, tx pgx.Tx, params domain.DepositParams) (*domain.CommandResult, error) {
	if err := domain.ValidateAmountBounds(params.Amount, e.limits.MinDeposit, e.limits.MaxDeposit); err != nil {
		return nil, err
	}

	entry, wallet, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID: params.UserID,
		Type:   domain.TxDeposit,
		Status: domain.TxCompleted,
		Amount: params.Amount,
		WalletUpdate: domain.WalletUpdate{
			Balance:        params.Amount,
			TotalDeposited: params.Amount,
		},
		Method:   strPtr(params.Method),
		Metadata: ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: wallet}, nil
}
