package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/repository"
)

// ReplayResult reports whether a wallet's running balance can be rebuilt
// from its ledger, and where the snapshot trail ends.
type ReplayResult struct {
	UserID          uuid.UUID `json:"userId"`
	EntryCount      int       `json:"entryCount"`
	ComputedBalance int64     `json:"computedBalance"`
	StoredBalance   int64     `json:"storedBalance"`
	SnapshotParity  bool      `json:"snapshotParity"`
	Consistent      bool      `json:"consistent"`
}

// Replay folds a user's balance-affecting ledger entries in creation order
// and compares the result against the stored running balance. Completed
// entries and pending withdrawals count; failed entries never do. The last
// entry's balance snapshot must also match the wallet row.
func (e *Engine) Replay(ctx context.Context, db repository.DBTX, userID uuid.UUID) (*ReplayResult, error) {
	wallet, err := e.wallets.FindByUser(ctx, db, userID)
	if err != nil {
		return nil, fmt.Errorf("replay load wallet: %w", err)
	}
	if wallet == nil {
		return nil, domain.ErrNotFound("wallet", userID.String())
	}

	entries, err := e.transactions.ListForReplay(ctx, db, userID)
	if err != nil {
		return nil, fmt.Errorf("replay load entries: %w", err)
	}

	var computed int64
	var lastSnapshot *int64
	count := 0
	for i := range entries {
		entry := &entries[i]
		if !entry.AffectsBalance() {
			continue
		}
		computed += entry.SignedAmount()
		snap := entry.BalanceAfter
		lastSnapshot = &snap
		count++
	}

	parity := lastSnapshot == nil || *lastSnapshot == wallet.Balance

	return &ReplayResult{
		UserID:          userID,
		EntryCount:      count,
		ComputedBalance: computed,
		StoredBalance:   wallet.Balance,
		SnapshotParity:  parity,
		Consistent:      computed == wallet.Balance && parity,
	}, nil
}
