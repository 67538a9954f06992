package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- strPtr Tests ---

func TestStrPtr(t *testing.T) {
	t.Run("non-empty string", func(t *testing.T) {
		p := strPtr("card")
		require.NotNil(t, p)
		assert.Equal(t, "card", *p)
	})

	t.Run("empty string returns nil", func(t *testing.T) {
		assert.Nil(t, strPtr(""))
	})
}

// --- ensureJSON Tests ---

func TestEnsureJSON(t *testing.T) {
	t.Run("nil returns empty object", func(t *testing.T) {
		assert.Equal(t, json.RawMessage(`{}`), ensureJSON(nil))
	})

	t.Run("non-nil passthrough", func(t *testing.T) {
		data := json.RawMessage(`{"externalRef":"pay_123"}`)
		assert.Equal(t, data, ensureJSON(data))
	})
}

// --- Replay Tests ---

// stubWalletRepo serves a fixed wallet on the read path.
type stubWalletRepo struct {
	wallet *domain.Wallet
}

func (s *stubWalletRepo) FindByUser(ctx context.Context, db repository.DBTX, userID uuid.UUID) (*domain.Wallet, error) {
	return s.wallet, nil
}

func (s *stubWalletRepo) Create(ctx context.Context, db repository.DBTX, wallet *domain.Wallet) error {
	return nil
}

func (s *stubWalletRepo) ApplyUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, update domain.WalletUpdate) (*domain.Wallet, error) {
	return nil, nil
}

// stubTxRepo serves a fixed ledger on the read path.
type stubTxRepo struct {
	entries []domain.WalletTransaction
}

func (s *stubTxRepo) Insert(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams, balanceAfter int64) (*domain.WalletTransaction, error) {
	return nil, nil
}

func (s *stubTxRepo) ListByUser(ctx context.Context, db repository.DBTX, userID uuid.UUID, limit int) ([]domain.WalletTransaction, error) {
	return s.entries, nil
}

func (s *stubTxRepo) ListForReplay(ctx context.Context, db repository.DBTX, userID uuid.UUID) ([]domain.WalletTransaction, error) {
	return s.entries, nil
}

func (s *stubTxRepo) FindByTournamentAndType(ctx context.Context, db repository.DBTX, tournamentID, userID uuid.UUID, typ domain.TransactionType) (*domain.WalletTransaction, error) {
	return nil, nil
}

func newReplayEngine(wallet *domain.Wallet, entries []domain.WalletTransaction) *Engine {
	return NewEngine(&stubWalletRepo{wallet: wallet}, &stubTxRepo{entries: entries}, nil, Limits{MinDeposit: 10, MaxDeposit: 10000, MinWithdraw: 50})
}

func entry(txType domain.TransactionType, status domain.TransactionStatus, amount, balanceAfter int64) domain.WalletTransaction {
	return domain.WalletTransaction{
		ID:           uuid.New(),
		Type:         txType,
		Status:       status,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
}

func TestReplayConsistentLedger(t *testing.T) {
	userID := uuid.New()
	wallet := &domain.Wallet{UserID: userID}
	wallet.Balance = 130

	entries := []domain.WalletTransaction{
		entry(domain.TxDeposit, domain.TxCompleted, 200, 200),
		entry(domain.TxTournamentEntry, domain.TxCompleted, 50, 150),
		entry(domain.TxWithdraw, domain.TxPending, 60, 90),
		entry(domain.TxTournamentAward, domain.TxCompleted, 40, 130),
	}

	result, err := newReplayEngine(wallet, entries).Replay(context.Background(), nil, userID)
	require.NoError(t, err)

	assert.Equal(t, 4, result.EntryCount)
	assert.Equal(t, int64(130), result.ComputedBalance)
	assert.Equal(t, int64(130), result.StoredBalance)
	assert.True(t, result.SnapshotParity)
	assert.True(t, result.Consistent)
}

func TestReplaySkipsFailedEntries(t *testing.T) {
	userID := uuid.New()
	wallet := &domain.Wallet{UserID: userID}
	wallet.Balance = 200

	entries := []domain.WalletTransaction{
		entry(domain.TxDeposit, domain.TxCompleted, 200, 200),
		entry(domain.TxWithdraw, domain.TxFailed, 500, 200),
	}

	result, err := newReplayEngine(wallet, entries).Replay(context.Background(), nil, userID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.EntryCount)
	assert.Equal(t, int64(200), result.ComputedBalance)
	assert.True(t, result.Consistent)
}

func TestReplayDetectsDrift(t *testing.T) {
	userID := uuid.New()
	wallet := &domain.Wallet{UserID: userID}
	wallet.Balance = 999

	entries := []domain.WalletTransaction{
		entry(domain.TxDeposit, domain.TxCompleted, 200, 200),
	}

	result, err := newReplayEngine(wallet, entries).Replay(context.Background(), nil, userID)
	require.NoError(t, err)

	assert.Equal(t, int64(200), result.ComputedBalance)
	assert.Equal(t, int64(999), result.StoredBalance)
	assert.False(t, result.SnapshotParity)
	assert.False(t, result.Consistent)
}

func TestReplayEmptyLedger(t *testing.T) {
	userID := uuid.New()
	wallet := &domain.Wallet{UserID: userID}

	result, err := newReplayEngine(wallet, nil).Replay(context.Background(), nil, userID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.EntryCount)
	assert.Equal(t, int64(0), result.ComputedBalance)
	assert.True(t, result.SnapshotParity)
	assert.True(t, result.Consistent)
}

func TestReplayMissingWallet(t *testing.T) {
	eng := newReplayEngine(nil, nil)
	_, err := eng.Replay(context.Background(), nil, uuid.New())
	require.Error(t, err)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
