//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/slotarena/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopup_CreditsBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("topup@test.com", "topupguy", "securepass123")

	resp := env.AuthPOST("/wallet/topup", map[string]interface{}{
		"amount":        5000,
		"paymentMethod": "upi",
		"transactionId": "ext_abc123",
	}, token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Success bool  `json:"success"`
		Balance int64 `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, int64(5000), result.Balance)

	testutil.AssertWalletBalance(t, env, userID, 5000)
}

func TestTopup_MultipleAdditive(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("topupadd@test.com", "topupadd", "securepass123")

	env.Topup(token, 3000)
	env.Topup(token, 2000)

	testutil.AssertWalletBalance(t, env, userID, 5000)
}

func TestTopup_CreatesLedgerEntry(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("topuptx@test.com", "topuptx", "securepass123")

	env.Topup(token, 5000)

	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID, "deposit"))
}

func TestTopup_SnapshotMatchesBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("topupsnap@test.com", "topupsnap", "securepass123")

	env.Topup(token, 2500)
	env.Topup(token, 1500)

	var balAfter int64
	err := env.Pool.QueryRow(context.Background(),
		"SELECT balance_after FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1",
		userID).Scan(&balAfter)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), balAfter)
}

func TestTopup_OutboxEventWritten(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("topupoutbox@test.com", "topupoutbox", "securepass123")

	env.Topup(token, 5000)

	assert.GreaterOrEqual(t, testutil.CountOutboxEvents(t, env, userID.String()), 1)
}

func TestTopup_BelowMinimum(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("topupmin@test.com", "topupmin", "securepass123")

	resp := env.AuthPOST("/wallet/topup", map[string]interface{}{
		"amount": testutil.TestMinDeposit - 1,
	}, token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertWalletBalance(t, env, userID, 0)
}

func TestTopup_AboveMaximum(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("topupmax@test.com", "topupmax", "securepass123")

	resp := env.AuthPOST("/wallet/topup", map[string]interface{}{
		"amount": testutil.TestMaxDeposit + 1,
	}, token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWithdraw_DebitsImmediately(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("wd@test.com", "wdguy", "securepass123")
	env.Topup(token, 10000)

	resp := env.AuthPOST("/wallet/withdraw", map[string]interface{}{"amount": 4000}, token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.AssertWalletBalance(t, env, userID, 6000)
}

func TestWithdraw_EntryIsPending(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("wdpend@test.com", "wdpend", "securepass123")
	env.Topup(token, 10000)

	resp := env.AuthPOST("/wallet/withdraw", map[string]interface{}{"amount": 4000}, token)
	resp.Body.Close()

	var status string
	err := env.Pool.QueryRow(context.Background(),
		"SELECT status FROM wallet_transactions WHERE user_id = $1 AND type = 'withdraw'",
		userID).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "pending", status)
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("wdpoor@test.com", "wdpoor", "securepass123")
	env.Topup(token, 1000)

	resp := env.AuthPOST("/wallet/withdraw", map[string]interface{}{"amount": 5000}, token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_FUNDS")

	// A rejected withdrawal leaves no ledger entry behind.
	assert.Equal(t, 0, testutil.CountTransactions(t, env, userID, "withdraw"))
	testutil.AssertWalletBalance(t, env, userID, 1000)
}

func TestWithdraw_BelowMinimum(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("wdmin@test.com", "wdmin", "securepass123")
	env.Topup(token, 10000)

	resp := env.AuthPOST("/wallet/withdraw", map[string]interface{}{
		"amount": testutil.TestMinWithdraw - 1,
	}, token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBalance_NewUserZeroes(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("bal@test.com", "balguy", "securepass123")

	resp := env.AuthGET("/wallet/balance", token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Balance        int64 `json:"balance"`
		TotalDeposited int64 `json:"totalDeposited"`
		TotalWithdrawn int64 `json:"totalWithdrawn"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, int64(0), result.Balance)
	assert.Equal(t, int64(0), result.TotalDeposited)
	assert.Equal(t, int64(0), result.TotalWithdrawn)
}

func TestBalance_IsolatedBetweenUsers(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token1, userID1 := env.RegisterPlayer("iso1@test.com", "isoone", "securepass123")
	_, userID2 := env.RegisterPlayer("iso2@test.com", "isotwo", "securepass123")

	env.Topup(token1, 7500)

	testutil.AssertWalletBalance(t, env, userID1, 7500)
	testutil.AssertWalletBalance(t, env, userID2, 0)
}

func TestHistory_NewestFirst(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("hist@test.com", "histguy", "securepass123")

	env.Topup(token, 1000)
	env.Topup(token, 2000)
	env.Topup(token, 3000)

	resp := env.AuthGET("/wallet/history", token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Transactions []struct {
			Amount int64 `json:"amount"`
		} `json:"transactions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Transactions, 3)
	assert.Equal(t, int64(3000), result.Transactions[0].Amount)
	assert.Equal(t, int64(1000), result.Transactions[2].Amount)
}

func TestHistory_LimitClamped(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("histlim@test.com", "histlim", "securepass123")

	for i := 0; i < 5; i++ {
		env.Topup(token, 1000)
	}

	resp := env.AuthGET("/wallet/history?limit=2", token)
	defer resp.Body.Close()

	var result struct {
		Transactions []json.RawMessage `json:"transactions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Len(t, result.Transactions, 2)
}

func TestHistory_EmptyListNotNull(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("histempty@test.com", "histempty", "securepass123")

	resp := env.AuthGET("/wallet/history", token)
	defer resp.Body.Close()

	var result struct {
		Transactions []json.RawMessage `json:"transactions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotNil(t, result.Transactions)
	assert.Empty(t, result.Transactions)
}

func TestReplay_ConsistentAfterActivity(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("replayadmin@test.com", "adminpass123")
	token, userID := env.RegisterPlayer("replay@test.com", "replayer", "securepass123")

	env.Topup(token, 10000)
	wdResp := env.AuthPOST("/wallet/withdraw", map[string]interface{}{"amount": 3000}, token)
	wdResp.Body.Close()

	resp := env.AuthGET(fmt.Sprintf("/admin/wallets/%s/replay", userID), adminToken)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Replay struct {
			ComputedBalance int64 `json:"computedBalance"`
			StoredBalance   int64 `json:"storedBalance"`
			Consistent      bool  `json:"consistent"`
		} `json:"replay"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Replay.Consistent)
	assert.Equal(t, int64(7000), result.Replay.ComputedBalance)
	assert.Equal(t, int64(7000), result.Replay.StoredBalance)
}

func TestReplay_DetectsTamperedBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("tamperadmin@test.com", "adminpass123")
	token, userID := env.RegisterPlayer("tamper@test.com", "tamperer", "securepass123")

	env.Topup(token, 5000)

	// Corrupt the stored balance behind the ledger's back.
	_, err := env.Pool.Exec(context.Background(),
		"UPDATE wallets SET balance = 9999 WHERE user_id = $1", userID)
	require.NoError(t, err)

	resp := env.AuthGET(fmt.Sprintf("/admin/wallets/%s/replay", userID), adminToken)
	defer resp.Body.Close()

	var result struct {
		Replay struct {
			Consistent bool `json:"consistent"`
		} `json:"replay"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Replay.Consistent)
}
