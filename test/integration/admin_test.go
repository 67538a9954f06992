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

func TestAdminCreate_SeedsFullSlotTable(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("seedadmin@test.com", "adminpass123")

	tournamentID := env.CreateTournament(adminToken, "Seeded Cup", 100, nil)

	var total, booked int
	err := env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*), COUNT(*) FILTER (WHERE is_booked) FROM tournament_slots WHERE tournament_id = $1",
		tournamentID).Scan(&total, &booked)
	require.NoError(t, err)
	assert.Equal(t, 50, total)
	assert.Equal(t, 0, booked)
}

func TestAdminCreate_PrizePoolDerivedFromTable(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("prizeadmin@test.com", "adminpass123")

	resp := env.AuthPOST("/admin/tournaments", map[string]interface{}{
		"name":     "Prize Cup",
		"entryFee": 100,
		"prizes":   map[string]int64{"first": 1000, "second": 500, "third": 250},
	}, adminToken)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Tournament struct {
			PrizePool int64  `json:"prizePool"`
			Status    string `json:"status"`
		} `json:"tournament"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, int64(1750), result.Tournament.PrizePool)
	assert.Equal(t, "upcoming", result.Tournament.Status)
}

func TestAdminCreate_Validation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("valadmin@test.com", "adminpass123")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"entryFee": 100}},
		{"negative entry fee", map[string]interface{}{"name": "Bad", "entryFee": -1}},
		{"too many slots", map[string]interface{}{"name": "Bad", "entryFee": 100, "maxParticipants": 51}},
		{"per_kill without amount", map[string]interface{}{"name": "Bad", "entryFee": 100, "rewardType": "per_kill"}},
		{"unknown reward type", map[string]interface{}{"name": "Bad", "entryFee": 100, "rewardType": "jackpot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.AuthPOST("/admin/tournaments", tt.body, adminToken)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAdminTransition_ForwardOnly(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("fwdadmin@test.com", "adminpass123")
	tournamentID := env.CreateTournament(adminToken, "Forward Cup", 100, nil)

	env.TransitionTournament(adminToken, tournamentID, "locked")
	env.TransitionTournament(adminToken, tournamentID, "live")

	// Completed is terminal in the downgrade direction.
	resp := env.AuthPATCH(fmt.Sprintf("/admin/tournaments/%s/status", tournamentID),
		map[string]string{"status": "upcoming"}, adminToken)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminTransition_UnknownStatus(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("unkadmin@test.com", "adminpass123")
	tournamentID := env.CreateTournament(adminToken, "Unknown Cup", 100, nil)

	resp := env.AuthPATCH(fmt.Sprintf("/admin/tournaments/%s/status", tournamentID),
		map[string]string{"status": "paused"}, adminToken)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminTransition_WritesOutboxEvent(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("evtadmin@test.com", "adminpass123")
	tournamentID := env.CreateTournament(adminToken, "Event Cup", 100, nil)

	env.TransitionTournament(adminToken, tournamentID, "live")

	assert.GreaterOrEqual(t, testutil.CountOutboxEvents(t, env, tournamentID.String()), 1)
}

func TestAdminList_IncludesEveryStatus(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("alladmin@test.com", "adminpass123")

	env.CreateTournament(adminToken, "Upcoming Cup", 100, nil)
	liveID := env.CreateTournament(adminToken, "Live Cup", 100, nil)
	env.TransitionTournament(adminToken, liveID, "live")
	cancelledID := env.CreateTournament(adminToken, "Cancelled Cup", 100, nil)
	env.TransitionTournament(adminToken, cancelledID, "cancelled")

	resp := env.AuthGET("/admin/tournaments", adminToken)
	defer resp.Body.Close()

	var result struct {
		Tournaments []struct {
			Status string `json:"status"`
		} `json:"tournaments"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Len(t, result.Tournaments, 3)

	statuses := map[string]bool{}
	for _, tn := range result.Tournaments {
		statuses[tn.Status] = true
	}
	assert.True(t, statuses["upcoming"])
	assert.True(t, statuses["live"])
	assert.True(t, statuses["cancelled"])
}

func TestAdminTransition_NotFound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("nfadmin@test.com", "adminpass123")

	resp := env.AuthPATCH("/admin/tournaments/00000000-0000-0000-0000-000000000000/status",
		map[string]string{"status": "live"}, adminToken)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
