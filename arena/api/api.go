package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/monarena/client/arena"
)

// Views is what the RPC server reads. Implemented by arena.Client.
type Views interface {
	Snapshot() *arena.Snapshot
	LastFight() *arena.FightResult
	LastReward() *arena.RewardResult
	SessionStatus() (arena.Status, string, string)
}

// JSON-RPC request
type RPCRequest struct {
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	JSONRPC string          `json:"jsonrpc"`
}

// JSON-RPC response
type RPCResponse struct {
	ID      int    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	JSONRPC string `json:"jsonrpc"`
}

// RPCServer serves the cached view state over JSON-RPC. Read-only: actions
// go through the CLI, not over HTTP.
type RPCServer struct {
	Views Views
}

func (s *RPCServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST allowed", http.StatusMethodNotAllowed)

		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)

		return
	}
	defer r.Body.Close()

	var req RPCRequest

	err = json.Unmarshal(body, &req)
	if err != nil {
		http.Error(w, "Invalid JSON-RPC request", http.StatusBadRequest)

		return
	}

	var resp RPCResponse

	resp.ID = req.ID
	resp.JSONRPC = "2.0"

	switch req.Method {
	case GetSessionMethod:
		status, addr, detail := s.Views.SessionStatus()

		resp.Result = SessionResult{
			Status:  status.String(),
			Address: addr,
			Detail:  detail,
		}

	case GetCreaturesMethod:
		var creaturesReq GetCreaturesRequest

		if len(req.Params) > 0 {
			if err = json.Unmarshal(req.Params, &creaturesReq); err != nil {
				resp.Error = fmt.Sprintf("Invalid parameters: %s, %s", err.Error(), req.Params)

				break
			}
		}

		snap := s.Views.Snapshot()
		if snap == nil {
			resp.Error = "No snapshot yet"

			break
		}

		if creaturesReq.MineOnly {
			resp.Result = creatureViews(snap.Mine)
		} else {
			resp.Result = creatureViews(snap.Creatures)
		}

	case GetBalancesMethod:
		snap := s.Views.Snapshot()
		if snap == nil {
			resp.Error = "No snapshot yet"

			break
		}

		resp.Result = BalancesResult{
			Round:   snap.Round,
			TakenAt: snap.TakenAt.UTC().Format(time.RFC3339),
			Balance: snap.Balance.String(),
			Items:   snap.Items,
		}

	case GetLastResultsMethod:
		res := LastResults{}

		if fight := s.Views.LastFight(); fight != nil {
			res.Fight = &FightView{
				WinnerID: fight.WinnerID,
				Rounds:   fight.Rounds,
				TxHash:   fight.TxHash.Hex(),
			}
		}

		if reward := s.Views.LastReward(); reward != nil {
			res.Reward = &RewardView{
				WinnerID: reward.WinnerID,
				Amount:   reward.Amount.String(),
				TxHash:   reward.TxHash.Hex(),
			}
		}

		resp.Result = res

	default:
		resp.Error = "Method not found"
	}

	w.Header().Set("Content-Type", "application/json")

	err = json.NewEncoder(w).Encode(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

const GetSessionMethod = "GetSession"

type SessionResult struct {
	Status  string `json:"status"`
	Address string `json:"address,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

const GetCreaturesMethod = "GetCreatures"

type GetCreaturesRequest struct {
	MineOnly bool `json:"mineOnly"`
}

type CreatureView struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Species    uint64 `json:"species"`
	Type       uint64 `json:"type"`
	Attack     uint64 `json:"attack"`
	Defense    uint64 `json:"defense"`
	HitPoints  uint64 `json:"hitPoints"`
	Level      uint64 `json:"level"`
	Power      uint64 `json:"power"`
	Owner      string `json:"owner"`
	ForSale    bool   `json:"forSale"`
	Price      string `json:"price,omitempty"`
	RewardPool string `json:"rewardPool,omitempty"`
}

func creatureViews(creatures []arena.Creature) []CreatureView {
	views := make([]CreatureView, 0, len(creatures))

	for _, c := range creatures {
		v := CreatureView{
			ID:        c.ID,
			Name:      c.Name,
			Species:   c.Species,
			Type:      c.Type,
			Attack:    c.Attack,
			Defense:   c.Defense,
			HitPoints: c.HitPoints,
			Level:     c.Level,
			Power:     c.Power(),
			Owner:     c.Owner.Hex(),
			ForSale:   c.ForSale,
		}

		if c.Price != nil {
			v.Price = c.Price.String()
		}

		if c.RewardPool != nil {
			v.RewardPool = c.RewardPool.String()
		}

		views = append(views, v)
	}

	return views
}

const GetBalancesMethod = "GetBalances"

type BalancesResult struct {
	Round   uint64             `json:"round"`
	TakenAt string             `json:"takenAt"`
	Balance string             `json:"balance"`
	Items   arena.ItemBalances `json:"items"`
}

const GetLastResultsMethod = "GetLastResults"

type FightView struct {
	WinnerID uint64 `json:"winnerId"`
	Rounds   uint64 `json:"rounds"`
	TxHash   string `json:"txHash"`
}

type RewardView struct {
	WinnerID uint64 `json:"winnerId"`
	Amount   string `json:"amount"`
	TxHash   string `json:"txHash"`
}

type LastResults struct {
	Fight  *FightView  `json:"fight,omitempty"`
	Reward *RewardView `json:"reward,omitempty"`
}
