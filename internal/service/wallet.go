package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/ledger"
	"github.com/slotarena/platform/internal/repository"
)

// WalletService wraps the ledger commands in their own committed
// transactions and serves the read paths.
type WalletService struct {
	pool         *pgxpool.Pool
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
	engine       *ledger.Engine
	logger       *slog.Logger
}

// NewWalletService creates a new WalletService.
func NewWalletService(pool *pgxpool.Pool, wallets repository.WalletRepository, transactions repository.TransactionRepository, engine *ledger.Engine, logger *slog.Logger) *WalletService {
	return &WalletService{pool: pool, wallets: wallets, transactions: transactions, engine: engine, logger: logger}
}

// TopupInput holds the deposit request fields.
type TopupInput struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
	TransactionID string `json:"transactionId"`
}

// Deposit credits the wallet. The external payment reference travels in the
// entry's metadata.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, input TopupInput) (*domain.CommandResult, error) {
	var meta json.RawMessage
	if input.TransactionID != "" {
		meta, _ = json.Marshal(map[string]string{"externalRef": input.TransactionID})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin deposit tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.engine.ExecuteDeposit(ctx, tx, domain.DepositParams{
		UserID:   userID,
		Amount:   input.Amount,
		Method:   input.PaymentMethod,
		Metadata: meta,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit deposit tx", err)
	}

	s.logger.Info("deposit posted", "user_id", userID, "amount", input.Amount, "method", input.PaymentMethod)
	return result, nil
}

// Withdraw debits the wallet, leaving the entry pending until external
// settlement confirms it.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount int64) (*domain.CommandResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin withdraw tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.engine.ExecuteWithdraw(ctx, tx, domain.WithdrawParams{
		UserID: userID,
		Amount: amount,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit withdraw tx", err)
	}

	s.logger.Info("withdrawal posted", "user_id", userID, "amount", amount)
	return result, nil
}

// Balance returns the wallet snapshot.
func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.wallets.FindByUser(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find wallet", err)
	}
	if wallet == nil {
		return nil, domain.ErrNotFound("wallet", userID.String())
	}
	return wallet, nil
}

// History returns recent entries newest first. History is advisory, not
// authoritative for balance, so a store failure degrades to an empty list
// instead of failing the caller.
func (s *WalletService) History(ctx context.Context, userID uuid.UUID, limit int) []domain.WalletTransaction {
	entries, err := s.transactions.ListByUser(ctx, s.pool, userID, limit)
	if err != nil {
		s.logger.Warn("history degraded to empty list", "user_id", userID, "error", err)
		return []domain.WalletTransaction{}
	}
	if entries == nil {
		entries = []domain.WalletTransaction{}
	}
	return entries
}

// Replay rebuilds a wallet's balance from its ledger and reports whether it
// matches the stored value.
func (s *WalletService) Replay(ctx context.Context, userID uuid.UUID) (*ledger.ReplayResult, error) {
	return s.engine.Replay(ctx, s.pool, userID)
}
