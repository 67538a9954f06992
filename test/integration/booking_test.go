//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/slotarena/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooking_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("bkadmin@test.com", "adminpass123")
	token, userID := env.RegisterPlayer("booker@test.com", "booker", "securepass123")
	env.Topup(token, 1000)

	tournamentID := env.CreateTournament(adminToken, "Friday Night", 500, nil)

	resp := env.BookSlot(token, tournamentID, 7, "booker")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Success bool `json:"success"`
		Booking struct {
			SlotNumber       int    `json:"slotNumber"`
			GamingUsername   string `json:"gamingUsername"`
			RemainingBalance int64  `json:"remainingBalance"`
		} `json:"booking"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, 7, result.Booking.SlotNumber)
	assert.Equal(t, int64(500), result.Booking.RemainingBalance)

	testutil.AssertWalletBalance(t, env, userID, 500)
	assert.Equal(t, 1, testutil.CountParticipants(t, env, tournamentID))
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID, "tournament_entry"))
}

func TestBooking_IncrementsParticipantCount(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("cntadmin@test.com", "adminpass123")
	token, _ := env.RegisterPlayer("counter@test.com", "counter", "securepass123")
	env.Topup(token, 1000)

	tournamentID := env.CreateTournament(adminToken, "Count Cup", 500, nil)
	env.MustBookSlot(token, tournamentID, 1, "counter")

	var count int
	err := env.Pool.QueryRow(context.Background(),
		"SELECT participant_count FROM tournaments WHERE id = $1", tournamentID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBooking_UsernameMismatchNeedsConfirmation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("mmadmin@test.com", "adminpass123")
	token, userID := env.RegisterPlayer("mismatch@test.com", "alice", "securepass123")
	env.Topup(token, 1000)

	tournamentID := env.CreateTournament(adminToken, "Mismatch Cup", 500, nil)

	resp := env.BookSlot(token, tournamentID, 3, "AliceGG")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Success         bool   `json:"success"`
		Step            string `json:"step"`
		ProfileUsername string `json:"profileUsername"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.Equal(t, "confirm_username_mismatch", result.Step)
	assert.Equal(t, "alice", result.ProfileUsername)

	// Nothing committed: no debit, no participant, slot still free.
	testutil.AssertWalletBalance(t, env, userID, 1000)
	assert.Equal(t, 0, testutil.CountParticipants(t, env, tournamentID))
}

func TestBooking_ConfirmCommitsMismatchedName(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("cfadmin@test.com", "adminpass123")
	token, userID := env.RegisterPlayer("confirm@test.com", "bob", "securepass123")
	env.Topup(token, 1000)

	tournamentID := env.CreateTournament(adminToken, "Confirm Cup", 500, nil)

	resp := env.AuthPOST(fmt.Sprintf("/tournaments/%s/confirm", tournamentID), map[string]interface{}{
		"slotNumber":     3,
		"gamingUsername": "BobTheGamer",
	}, token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Success bool `json:"success"`
		Booking struct {
			GamingUsername string `json:"gamingUsername"`
		} `json:"booking"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "BobTheGamer", result.Booking.GamingUsername)

	testutil.AssertWalletBalance(t, env, userID, 500)
}

func TestBooking_SlotAlreadyTaken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("takenadmin@test.com", "adminpass123")
	token1, _ := env.RegisterPlayer("first@test.com", "firstin", "securepass123")
	token2, _ := env.RegisterPlayer("second@test.com", "secondin", "securepass123")
	env.Topup(token1, 1000)
	env.Topup(token2, 1000)

	tournamentID := env.CreateTournament(adminToken, "Taken Cup", 500, nil)
	env.MustBookSlot(token1, tournamentID, 5, "firstin")

	resp := env.BookSlot(token2, tournamentID, 5, "secondin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "SLOT_UNAVAILABLE")
}

func TestBooking_OneSlotPerUser(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("dupadmin@test.com", "adminpass123")
	token, _ := env.RegisterPlayer("greedy@test.com", "greedy", "securepass123")
	env.Topup(token, 2000)

	tournamentID := env.CreateTournament(adminToken, "Greedy Cup", 500, nil)
	env.MustBookSlot(token, tournamentID, 1, "greedy")

	resp := env.BookSlot(token, tournamentID, 2, "greedy")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "ALREADY_REGISTERED")
}

func TestBooking_InsufficientFunds(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("pooradmin@test.com", "adminpass123")
	token, userID := env.RegisterPlayer("poor@test.com", "poorguy", "securepass123")
	env.Topup(token, 100)

	tournamentID := env.CreateTournament(adminToken, "Pricey Cup", 500, nil)

	resp := env.BookSlot(token, tournamentID, 1, "poorguy")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_FUNDS")

	testutil.AssertWalletBalance(t, env, userID, 100)
	assert.Equal(t, 0, testutil.CountParticipants(t, env, tournamentID))
}

func TestBooking_FreeEntrySkipsDebit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("freeadmin@test.com", "adminpass123")
	token, userID := env.RegisterPlayer("freeplayer@test.com", "freeplayer", "securepass123")

	tournamentID := env.CreateTournament(adminToken, "Free Cup", 0, nil)
	env.MustBookSlot(token, tournamentID, 1, "freeplayer")

	testutil.AssertWalletBalance(t, env, userID, 0)
	assert.Equal(t, 0, testutil.CountTransactions(t, env, userID, "tournament_entry"))
	assert.Equal(t, 1, testutil.CountParticipants(t, env, tournamentID))
}

func TestBooking_InvalidSlotNumber(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("slotadmin@test.com", "adminpass123")
	token, _ := env.RegisterPlayer("slotnum@test.com", "slotnum", "securepass123")
	env.Topup(token, 1000)

	tournamentID := env.CreateTournament(adminToken, "Slot Cup", 500, nil)

	for _, slot := range []int{0, 51, -3} {
		resp := env.BookSlot(token, tournamentID, slot, "slotnum")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "slot %d", slot)
		resp.Body.Close()
	}
}

func TestBooking_RejectedWhenLive(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("liveadmin@test.com", "adminpass123")
	token, _ := env.RegisterPlayer("latecomer@test.com", "latecomer", "securepass123")
	env.Topup(token, 1000)

	tournamentID := env.CreateTournament(adminToken, "Live Cup", 500, nil)
	env.TransitionTournament(adminToken, tournamentID, "live")

	resp := env.BookSlot(token, tournamentID, 1, "latecomer")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "TOURNAMENT_NOT_JOINABLE")
}

func TestBooking_RejectedWhenFull(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("fulladmin@test.com", "adminpass123")
	token, _ := env.RegisterPlayer("overflow@test.com", "overflow", "securepass123")
	env.Topup(token, 1000)

	tournamentID := env.CreateTournament(adminToken, "Full Cup", 500, nil)
	_, err := env.Pool.Exec(context.Background(),
		"UPDATE tournaments SET participant_count = max_participants WHERE id = $1", tournamentID)
	require.NoError(t, err)

	resp := env.BookSlot(token, tournamentID, 1, "overflow")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "TOURNAMENT_NOT_JOINABLE")
	assert.Equal(t, 0, testutil.CountParticipants(t, env, tournamentID))
}

func TestBooking_ConcurrentSameSlotOneWinner(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("raceadmin@test.com", "adminpass123")
	tournamentID := env.CreateTournament(adminToken, "Race Cup", 500, nil)

	const racers = 8
	tokens := make([]string, racers)
	names := make([]string, racers)
	for i := 0; i < racers; i++ {
		names[i] = fmt.Sprintf("racer%d", i)
		tokens[i], _ = env.RegisterPlayer(fmt.Sprintf("racer%d@test.com", i), names[i], "securepass123")
		env.Topup(tokens[i], 1000)
	}

	var wg sync.WaitGroup
	statuses := make([]int, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := env.BookSlot(tokens[i], tournamentID, 1, names[i])
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, status := range statuses {
		if status == http.StatusOK {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one booking must win the slot")
	assert.Equal(t, 1, testutil.CountParticipants(t, env, tournamentID))

	var booked int
	err := env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM tournament_slots WHERE tournament_id = $1 AND is_booked", tournamentID).Scan(&booked)
	require.NoError(t, err)
	assert.Equal(t, 1, booked)
}

func TestTournamentList_OnlyJoinable(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("listadmin@test.com", "adminpass123")
	token, _ := env.RegisterPlayer("lister@test.com", "lister", "securepass123")

	openID := env.CreateTournament(adminToken, "Open Cup", 100, nil)
	liveID := env.CreateTournament(adminToken, "Live Cup", 100, nil)
	env.TransitionTournament(adminToken, liveID, "live")

	resp := env.AuthGET("/tournaments", token)
	defer resp.Body.Close()

	var result struct {
		Tournaments []struct {
			ID string `json:"id"`
		} `json:"tournaments"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Tournaments, 1)
	assert.Equal(t, openID.String(), result.Tournaments[0].ID)
}

func TestTournamentDetail_ShowsSlotsAndMembership(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.RegisterAdmin("detadmin@test.com", "adminpass123")
	token, _ := env.RegisterPlayer("detailer@test.com", "detailer", "securepass123")
	env.Topup(token, 1000)

	tournamentID := env.CreateTournament(adminToken, "Detail Cup", 500, nil)
	env.MustBookSlot(token, tournamentID, 9, "detailer")

	resp := env.AuthGET(fmt.Sprintf("/tournaments/%s", tournamentID), token)
	defer resp.Body.Close()

	var result struct {
		Tournament struct {
			Slots []struct {
				SlotNumber int  `json:"slotNumber"`
				IsBooked   bool `json:"isBooked"`
			} `json:"slots"`
		} `json:"tournament"`
		UserJoined bool `json:"userJoined"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.UserJoined)
	require.Len(t, result.Tournament.Slots, 50)

	booked := 0
	for _, s := range result.Tournament.Slots {
		if s.IsBooked {
			booked++
			assert.Equal(t, 9, s.SlotNumber)
		}
	}
	assert.Equal(t, 1, booked)
}
