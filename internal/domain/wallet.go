package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Totals represents the wallet columns (integer minor units, numeric(15,0)).
type Totals struct {
	Balance        int64 `json:"balance"`
	TotalDeposited int64 `json:"totalDeposited"`
	TotalWithdrawn int64 `json:"totalWithdrawn"`
}

// Wallet represents a wallets row. Balance is a running value; every
// mutation pairs with a wallet_transactions ledger entry.
type Wallet struct {
	UserID uuid.UUID `json:"userId"`
	Totals
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User holds the profile fields the booking flow needs.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WalletUpdate describes which wallet columns to move and by how much.
// The repository renders it as a single server-side arithmetic UPDATE; when
// RequireBalance is set the statement carries a balance >= guard so the
// invariant check and the debit apply in the same operation.
type WalletUpdate struct {
	Balance        int64
	TotalDeposited int64
	TotalWithdrawn int64

	// RequireBalance guards the update: it only applies while
	// balance >= RequireBalance still holds at write time.
	RequireBalance int64
}

// HasBalanceDelta reports whether the spendable balance moves.
func (u WalletUpdate) HasBalanceDelta() bool { return u.Balance != 0 }

// HasDepositedDelta reports whether the lifetime deposit total moves.
func (u WalletUpdate) HasDepositedDelta() bool { return u.TotalDeposited != 0 }

// HasWithdrawnDelta reports whether the lifetime withdrawal total moves.
func (u WalletUpdate) HasWithdrawnDelta() bool { return u.TotalWithdrawn != 0 }

// Guarded reports whether the update carries a minimum-balance condition.
func (u WalletUpdate) Guarded() bool { return u.RequireBalance > 0 }

// PostEntryParams is the input to the atomic PostEntry operation.
type PostEntryParams struct {
	UserID       uuid.UUID
	Type         TransactionType
	Status       TransactionStatus
	Amount       int64
	WalletUpdate WalletUpdate
	TournamentID *uuid.UUID
	Method       *string
	Metadata     json.RawMessage
}

// CommandResult is the return value from all wallet commands.
type CommandResult struct {
	Transaction *WalletTransaction
	Wallet      *Wallet
}

// DepositParams holds the input for ExecuteDeposit.
type DepositParams struct {
	UserID   uuid.UUID
	Amount   int64
	Method   string
	Metadata json.RawMessage
}

// WithdrawParams holds the input for ExecuteWithdraw.
type WithdrawParams struct {
	UserID   uuid.UUID
	Amount   int64
	Metadata json.RawMessage
}

// EntryDebitParams holds the input for ExecuteEntryDebit.
type EntryDebitParams struct {
	UserID       uuid.UUID
	TournamentID uuid.UUID
	Amount       int64
	Metadata     json.RawMessage
}

// RewardCreditParams holds the input for ExecuteRewardCredit.
type RewardCreditParams struct {
	UserID       uuid.UUID
	TournamentID uuid.UUID
	Amount       int64
	Metadata     json.RawMessage
}

// RefundParams holds the input for ExecuteRefund.
type RefundParams struct {
	UserID       uuid.UUID
	TournamentID uuid.UUID
	Amount       int64
	Metadata     json.RawMessage
}
