package api

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/monarena/client/arena"
)

type fakeViews struct {
	snap   *arena.Snapshot
	fight  *arena.FightResult
	reward *arena.RewardResult
	status arena.Status
	addr   string
	detail string
}

func (v *fakeViews) Snapshot() *arena.Snapshot       { return v.snap }
func (v *fakeViews) LastFight() *arena.FightResult   { return v.fight }
func (v *fakeViews) LastReward() *arena.RewardResult { return v.reward }

func (v *fakeViews) SessionStatus() (arena.Status, string, string) {
	return v.status, v.addr, v.detail
}

func call(t *testing.T, views Views, body string) RPCResponse {
	t.Helper()

	server := &RPCServer{Views: views}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))

	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RPCResponse

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func testViews() *fakeViews {
	owner := common.HexToAddress("0x01")

	mine := arena.Creature{
		ID: 1, Name: "alpha", Attack: 10, Defense: 5, HitPoints: 20,
		Owner: owner, ForSale: true, Price: big.NewInt(100),
	}
	other := arena.Creature{
		ID: 2, Name: "beta", Attack: 1, Defense: 1, HitPoints: 1,
		Owner: common.HexToAddress("0x02"),
	}

	return &fakeViews{
		snap: &arena.Snapshot{
			Round:     3,
			TakenAt:   time.Unix(1_700_000_000, 0),
			Owner:     owner,
			Creatures: []arena.Creature{mine, other},
			Mine:      []arena.Creature{mine},
			Others:    []arena.Creature{other},
			Balance:   big.NewInt(1_000),
			Items:     arena.ItemBalances{HealingPotions: 2},
		},
		fight:  &arena.FightResult{WinnerID: 1, Rounds: 4, TxHash: common.HexToHash("0xaa")},
		reward: &arena.RewardResult{WinnerID: 1, Amount: big.NewInt(500), TxHash: common.HexToHash("0xbb")},
		status: arena.StatusConnected,
		addr:   owner.Hex(),
	}
}

func TestGetSession(t *testing.T) {
	resp := call(t, testViews(), `{"jsonrpc":"2.0","id":1,"method":"GetSession"}`)

	require.Empty(t, resp.Error)
	require.Equal(t, 1, resp.ID)
	require.Equal(t, "2.0", resp.JSONRPC)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var got SessionResult

	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "connected", got.Status)
	require.NotEmpty(t, got.Address)
	require.Empty(t, got.Detail)
}

func TestGetCreatures(t *testing.T) {
	resp := call(t, testViews(), `{"jsonrpc":"2.0","id":2,"method":"GetCreatures"}`)

	require.Empty(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var got []CreatureView

	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 2)
	require.Equal(t, "alpha", got[0].Name)
	require.EqualValues(t, 35, got[0].Power)
	require.Equal(t, "100", got[0].Price)
}

func TestGetCreaturesMineOnly(t *testing.T) {
	resp := call(t, testViews(), `{"jsonrpc":"2.0","id":3,"method":"GetCreatures","params":{"mineOnly":true}}`)

	require.Empty(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var got []CreatureView

	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 1)
	require.Equal(t, "alpha", got[0].Name)
}

func TestGetBalances(t *testing.T) {
	resp := call(t, testViews(), `{"jsonrpc":"2.0","id":4,"method":"GetBalances"}`)

	require.Empty(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var got BalancesResult

	require.NoError(t, json.Unmarshal(raw, &got))
	require.EqualValues(t, 3, got.Round)
	require.Equal(t, "1000", got.Balance)
	require.EqualValues(t, 2, got.Items.HealingPotions)
}

func TestGetBalancesNoSnapshot(t *testing.T) {
	views := testViews()
	views.snap = nil

	resp := call(t, views, `{"jsonrpc":"2.0","id":5,"method":"GetBalances"}`)
	require.Equal(t, "No snapshot yet", resp.Error)
}

func TestGetLastResults(t *testing.T) {
	resp := call(t, testViews(), `{"jsonrpc":"2.0","id":6,"method":"GetLastResults"}`)

	require.Empty(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var got LastResults

	require.NoError(t, json.Unmarshal(raw, &got))
	require.NotNil(t, got.Fight)
	require.EqualValues(t, 4, got.Fight.Rounds)
	require.NotNil(t, got.Reward)
	require.Equal(t, "500", got.Reward.Amount)
}

func TestGetLastResultsEmpty(t *testing.T) {
	views := testViews()
	views.fight = nil
	views.reward = nil

	resp := call(t, views, `{"jsonrpc":"2.0","id":7,"method":"GetLastResults"}`)

	require.Empty(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var got LastResults

	require.NoError(t, json.Unmarshal(raw, &got))
	require.Nil(t, got.Fight)
	require.Nil(t, got.Reward)
}

func TestUnknownMethod(t *testing.T) {
	resp := call(t, testViews(), `{"jsonrpc":"2.0","id":8,"method":"SelfDestruct"}`)
	require.Equal(t, "Method not found", resp.Error)
}

func TestRejectsGet(t *testing.T) {
	server := &RPCServer{Views: testViews()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rpc", nil)

	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRejectsBadJSON(t *testing.T) {
	server := &RPCServer{Views: testViews()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader("{"))

	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
