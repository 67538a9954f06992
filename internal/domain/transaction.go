package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates all wallet ledger entry types. Amounts are
// stored as positive magnitudes; the type carries the sign.
type TransactionType string

const (
	TxDeposit         TransactionType = "deposit"
	TxWithdraw        TransactionType = "withdraw"
	TxTournamentEntry TransactionType = "tournament_entry"
	TxTournamentAward TransactionType = "tournament_reward"
	TxRefund          TransactionType = "refund"
)

// Debits reports whether this type reduces the spendable balance.
func (t TransactionType) Debits() bool {
	return t == TxWithdraw || t == TxTournamentEntry
}

// TransactionStatus enumerates ledger entry statuses. Entries are immutable
// after creation except the pending → completed/failed transition.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
)

// WalletTransaction represents a wallet_transactions row (append-only
// ledger entry with a post-update balance snapshot).
type WalletTransaction struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"userId"`
	Type         TransactionType   `json:"type"`
	Status       TransactionStatus `json:"status"`
	Amount       int64             `json:"amount"`
	BalanceAfter int64             `json:"balanceAfter"`
	TournamentID *uuid.UUID        `json:"tournamentId,omitempty"`
	Method       *string           `json:"paymentMethod,omitempty"`
	Metadata     json.RawMessage   `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// SignedAmount returns the balance delta this entry represents when replayed.
func (t *WalletTransaction) SignedAmount() int64 {
	if t.Type.Debits() {
		return -t.Amount
	}
	return t.Amount
}

// AffectsBalance reports whether this entry moved the running balance.
// Completed entries always did; a withdrawal debits at creation and stays
// pending until external settlement, so it counts too. Failed entries never do.
func (t *WalletTransaction) AffectsBalance() bool {
	if t.Status == TxCompleted {
		return true
	}
	return t.Status == TxPending && t.Type == TxWithdraw
}
