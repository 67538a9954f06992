//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/slotarena/platform/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

// RegisterPlayer creates a new player and returns the auth token and user ID.
func (env *TestEnv) RegisterPlayer(email, username, password string) (token string, userID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterPlayer: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token  string    `json:"token"`
		UserID uuid.UUID `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterPlayer: decode: %v", err)
	}
	return result.Token, result.UserID
}

// LoginPlayer authenticates an existing user and returns the auth token.
func (env *TestEnv) LoginPlayer(email, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("LoginPlayer: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("LoginPlayer: decode: %v", err)
	}
	return result.Token
}

// RegisterAdmin inserts an admin user directly into the DB and returns a JWT.
func (env *TestEnv) RegisterAdmin(email, password string) string {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	adminID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		env.t.Fatalf("RegisterAdmin: hash: %v", err)
	}

	_, err = env.Pool.Exec(ctx, `
		INSERT INTO users (id, email, username, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, true, now())`,
		adminID, email, fmt.Sprintf("admin%s", adminID.String()[:6]), string(hash))
	if err != nil {
		env.t.Fatalf("RegisterAdmin: insert: %v", err)
	}

	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, adminID, email)
	if err != nil {
		env.t.Fatalf("RegisterAdmin: token: %v", err)
	}
	return token
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POST %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("POST", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("POST %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest("GET", env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("AuthGET %s: new request: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AuthGET %s: %v", path, err)
	}
	return resp
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.POST(path, body, token)
}

// AuthPATCH performs an authenticated PATCH request.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("PATCH %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("PATCH", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("PATCH %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("PATCH %s: %v", path, err)
	}
	return resp
}

// OPTIONS performs an OPTIONS request.
func (env *TestEnv) OPTIONS(path string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest("OPTIONS", env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("OPTIONS %s: new request: %v", path, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("OPTIONS %s: %v", path, err)
	}
	return resp
}

// Topup credits a player's wallet through the topup endpoint.
func (env *TestEnv) Topup(token string, amount int64) {
	env.t.Helper()
	resp := env.AuthPOST("/wallet/topup", map[string]interface{}{
		"amount":        amount,
		"paymentMethod": "test",
		"transactionId": fmt.Sprintf("test_%s", uuid.New().String()[:8]),
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("Topup: expected 200, got %d", resp.StatusCode)
	}
}

// CreateTournament creates a tournament via the admin API and returns its ID.
// Zero-valued optional fields fall back to server defaults.
func (env *TestEnv) CreateTournament(adminToken, name string, entryFee int64, prizes map[string]int64) uuid.UUID {
	env.t.Helper()
	body := map[string]interface{}{
		"name":     name,
		"entryFee": entryFee,
	}
	if prizes != nil {
		body["prizes"] = prizes
	}

	resp := env.AuthPOST("/admin/tournaments", body, adminToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("CreateTournament: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Tournament struct {
			ID uuid.UUID `json:"id"`
		} `json:"tournament"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("CreateTournament: decode: %v", err)
	}
	return result.Tournament.ID
}

// TransitionTournament moves a tournament to a new status via the admin API.
func (env *TestEnv) TransitionTournament(adminToken string, id uuid.UUID, status string) {
	env.t.Helper()
	resp := env.AuthPATCH(fmt.Sprintf("/admin/tournaments/%s/status", id),
		map[string]string{"status": status}, adminToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("TransitionTournament: expected 200, got %d", resp.StatusCode)
	}
}

// BookSlot books a slot and returns the raw response for the caller to inspect.
func (env *TestEnv) BookSlot(token string, tournamentID uuid.UUID, slot int, gamingUsername string) *http.Response {
	env.t.Helper()
	return env.AuthPOST(fmt.Sprintf("/tournaments/%s/book", tournamentID), map[string]interface{}{
		"slotNumber":     slot,
		"gamingUsername": gamingUsername,
	}, token)
}

// MustBookSlot books a slot and fails the test unless the booking committed.
func (env *TestEnv) MustBookSlot(token string, tournamentID uuid.UUID, slot int, gamingUsername string) {
	env.t.Helper()
	resp := env.BookSlot(token, tournamentID, slot, gamingUsername)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("MustBookSlot: expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Success bool   `json:"success"`
		Step    string `json:"step"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("MustBookSlot: decode: %v", err)
	}
	if !result.Success {
		env.t.Fatalf("MustBookSlot: booking did not commit (step=%s)", result.Step)
	}
}
