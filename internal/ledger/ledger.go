package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/repository"
)

// Limits holds the domain-configured wallet bounds (integer minor units).
type Limits struct {
	MinDeposit  int64
	MaxDeposit  int64
	MinWithdraw int64
}

// Engine provides the wallet commands. Every command funnels through
// PostEntry, the single atomic write primitive: a server-side balance update
// paired with an append-only ledger entry and an outbox event, all within
// the caller's transaction.
type Engine struct {
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
	limits       Limits
}

// NewEngine creates a ledger engine with the given repositories and bounds.
func NewEngine(
	wallets repository.WalletRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	limits Limits,
) *Engine {
	return &Engine{
		wallets:      wallets,
		transactions: transactions,
		outbox:       outbox,
		limits:       limits,
	}
}

// PostEntry atomically moves wallet columns and appends the paired ledger
// entry. A guarded update that does not apply means the balance fell below
// the required amount between the advisory check and the write; the caller
// gets ErrInsufficientFunds and nothing is recorded.
func (e *Engine) PostEntry(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams) (*domain.WalletTransaction, *domain.Wallet, error) {
	wallet, err := e.wallets.ApplyUpdate(ctx, tx, params.UserID, params.WalletUpdate)
	if err != nil {
		return nil, nil, fmt.Errorf("apply wallet update: %w", err)
	}
	if wallet == nil {
		if params.WalletUpdate.Guarded() {
			return nil, nil, domain.ErrInsufficientFunds()
		}
		return nil, nil, domain.ErrNotFound("wallet", params.UserID.String())
	}

	entry, err := e.transactions.Insert(ctx, tx, params, wallet.Balance)
	if err != nil {
		return nil, nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewTransactionPostedEvent(entry)); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, wallet, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ensureJSON(data json.RawMessage) json.RawMessage {
	if data == nil {
		return json.RawMessage(`{}`)
	}
	return data
}
