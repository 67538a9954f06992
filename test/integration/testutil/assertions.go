//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertWalletBalance queries the wallets table and asserts the stored balance.
func AssertWalletBalance(t *testing.T, env *TestEnv, userID uuid.UUID, expected int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var balance int64
	err := env.Pool.QueryRow(ctx,
		"SELECT balance FROM wallets WHERE user_id = $1", userID).Scan(&balance)
	if err != nil {
		t.Fatalf("AssertWalletBalance: query: %v", err)
	}
	if balance != expected {
		t.Errorf("balance: expected %d, got %d", expected, balance)
	}
}

// CountTransactions returns the number of ledger entries for a user,
// optionally filtered by type.
func CountTransactions(t *testing.T, env *TestEnv, userID uuid.UUID, txType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	var err error
	if txType == "" {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1", userID).Scan(&count)
	} else {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1 AND type = $2",
			userID, txType).Scan(&count)
	}
	if err != nil {
		t.Fatalf("CountTransactions: %v", err)
	}
	return count
}

// CountOutboxEvents returns the number of outbox events for an aggregate.
func CountOutboxEvents(t *testing.T, env *TestEnv, aggregateID string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM event_outbox WHERE aggregate_id = $1", aggregateID).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}

// CountParticipants returns the number of participants in a tournament.
func CountParticipants(t *testing.T, env *TestEnv, tournamentID uuid.UUID) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM tournament_participants WHERE tournament_id = $1", tournamentID).Scan(&count)
	if err != nil {
		t.Fatalf("CountParticipants: %v", err)
	}
	return count
}
