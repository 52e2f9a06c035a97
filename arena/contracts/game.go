package contracts

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/monarena/client/arena"
)

// Game contract ABI, reduced to the surface the client uses. The creature
// getter mirrors the contract's public array accessor; the two events are
// the only out-of-band result channels.
const gameABI = `[
{"type":"function","name":"totalMons","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"mons","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[
  {"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"species","type":"uint256"},
  {"name":"monType","type":"uint256"},{"name":"atk","type":"uint256"},{"name":"def","type":"uint256"},
  {"name":"hp","type":"uint256"},{"name":"lv","type":"uint256"},{"name":"owner","type":"address"},
  {"name":"forSale","type":"bool"},{"name":"price","type":"uint256"},{"name":"rewardpool","type":"uint256"}]},
{"type":"function","name":"BuySingle","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"BuyDouble","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"BuyBig","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"BuySmall","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"BuyZhuang","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"BuyXiang","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"BuyHe","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"LuckyNumber","stateMutability":"nonpayable","inputs":[{"name":"number","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"buyMon","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","name":"addForSale","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"price","type":"uint256"}],"outputs":[]},
{"type":"function","name":"removeFromSale","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","name":"breedMons","stateMutability":"nonpayable","inputs":[{"name":"id1","type":"uint256"},{"name":"id2","type":"uint256"}],"outputs":[]},
{"type":"function","name":"fight","stateMutability":"nonpayable","inputs":[{"name":"id1","type":"uint256"},{"name":"id2","type":"uint256"}],"outputs":[]},
{"type":"function","name":"startSharing","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
{"type":"function","name":"ClaimToken","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"NamePets","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"name","type":"string"}],"outputs":[]},
{"type":"function","name":"createMon","stateMutability":"payable","inputs":[],"outputs":[]},
{"type":"function","name":"multiMint","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"function","name":"Registry","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"function","name":"RegistryWithInvitor","stateMutability":"nonpayable","inputs":[{"name":"invitor","type":"address"}],"outputs":[]},
{"type":"function","name":"AddCredit","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"Cashout","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"buyItem","stateMutability":"nonpayable","inputs":[{"name":"units","type":"uint256"},{"name":"price","type":"uint256"},{"name":"itemId","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]},
{"type":"function","name":"Healing","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"units","type":"uint256"},{"name":"itemId","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]},
{"type":"function","name":"burn","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"event","name":"FightResults","anonymous":false,"inputs":[{"name":"winnerId","type":"uint256","indexed":false},{"name":"rounds","type":"uint256","indexed":false}]},
{"type":"event","name":"Rewards","anonymous":false,"inputs":[{"name":"winnerId","type":"uint256","indexed":false},{"name":"amount","type":"uint256","indexed":false}]}
]`

var (
	_ arena.GameReader    = (*Game)(nil)
	_ arena.GameWriter    = (*Game)(nil)
	_ arena.ResultWatcher = (*Game)(nil)
)

// Game wraps the deployed game contract.
type Game struct {
	addr  common.Address
	abi   abi.ABI
	bound *bind.BoundContract
}

func NewGame(addr common.Address, backend bind.ContractBackend) (*Game, error) {
	parsed, err := abi.JSON(strings.NewReader(gameABI))
	if err != nil {
		return nil, err
	}

	return &Game{
		addr:  addr,
		abi:   parsed,
		bound: bind.NewBoundContract(addr, parsed, backend, backend, backend),
	}, nil
}

func (g *Game) Address() common.Address {
	return g.addr
}

func (g *Game) CreatureCount(ctx context.Context) (uint64, error) {
	var out []interface{}

	err := g.bound.Call(&bind.CallOpts{Context: ctx}, &out, "totalMons")
	if err != nil {
		return 0, err
	}

	total := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)

	return total.Uint64(), nil
}

func (g *Game) CreatureByIndex(ctx context.Context, index uint64) (arena.Creature, error) {
	var out []interface{}

	err := g.bound.Call(&bind.CallOpts{Context: ctx}, &out, "mons", new(big.Int).SetUint64(index))
	if err != nil {
		return arena.Creature{}, err
	}

	id := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	name := *abi.ConvertType(out[1], new(string)).(*string)
	species := *abi.ConvertType(out[2], new(*big.Int)).(**big.Int)
	monType := *abi.ConvertType(out[3], new(*big.Int)).(**big.Int)
	atk := *abi.ConvertType(out[4], new(*big.Int)).(**big.Int)
	def := *abi.ConvertType(out[5], new(*big.Int)).(**big.Int)
	hp := *abi.ConvertType(out[6], new(*big.Int)).(**big.Int)
	lv := *abi.ConvertType(out[7], new(*big.Int)).(**big.Int)
	owner := *abi.ConvertType(out[8], new(common.Address)).(*common.Address)
	forSale := *abi.ConvertType(out[9], new(bool)).(*bool)
	price := *abi.ConvertType(out[10], new(*big.Int)).(**big.Int)
	rewardPool := *abi.ConvertType(out[11], new(*big.Int)).(**big.Int)

	return arena.Creature{
		ID:         id.Uint64(),
		Name:       name,
		Species:    species.Uint64(),
		Type:       monType.Uint64(),
		Attack:     atk.Uint64(),
		Defense:    def.Uint64(),
		HitPoints:  hp.Uint64(),
		Level:      lv.Uint64(),
		Owner:      owner,
		ForSale:    forSale,
		Price:      price,
		RewardPool: rewardPool,
	}, nil
}

func (g *Game) transact(ctx context.Context, opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
	if opts.Context == nil {
		opts.Context = ctx
	}

	return g.bound.Transact(opts, method, args...)
}

func (g *Game) BetSingle(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "BuySingle", amount)
}

func (g *Game) BetDouble(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "BuyDouble", amount)
}

func (g *Game) BetBig(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "BuyBig", amount)
}

func (g *Game) BetSmall(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "BuySmall", amount)
}

func (g *Game) BetBanker(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "BuyZhuang", amount)
}

func (g *Game) BetPlayer(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "BuyXiang", amount)
}

func (g *Game) BetTie(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "BuyHe", amount)
}

func (g *Game) LuckyNumber(ctx context.Context, opts *bind.TransactOpts, number, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "LuckyNumber", number, amount)
}

func (g *Game) BuyCreature(ctx context.Context, opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "buyMon", id)
}

func (g *Game) AddForSale(ctx context.Context, opts *bind.TransactOpts, id, price *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "addForSale", id, price)
}

func (g *Game) RemoveFromSale(ctx context.Context, opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "removeFromSale", id)
}

func (g *Game) Breed(ctx context.Context, opts *bind.TransactOpts, first, second *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "breedMons", first, second)
}

func (g *Game) Fight(ctx context.Context, opts *bind.TransactOpts, first, second *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "fight", first, second)
}

func (g *Game) StartSharing(ctx context.Context, opts *bind.TransactOpts, id *big.Int, to common.Address) (*types.Transaction, error) {
	return g.transact(ctx, opts, "startSharing", id, to)
}

func (g *Game) ClaimReward(ctx context.Context, opts *bind.TransactOpts, id, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "ClaimToken", id, amount)
}

func (g *Game) Rename(ctx context.Context, opts *bind.TransactOpts, id *big.Int, name string) (*types.Transaction, error) {
	return g.transact(ctx, opts, "NamePets", id, name)
}

func (g *Game) Mint(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
	return g.transact(ctx, opts, "createMon")
}

func (g *Game) MultiMint(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
	return g.transact(ctx, opts, "multiMint")
}

func (g *Game) Register(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
	return g.transact(ctx, opts, "Registry")
}

func (g *Game) RegisterWithInvitor(ctx context.Context, opts *bind.TransactOpts, invitor common.Address) (*types.Transaction, error) {
	return g.transact(ctx, opts, "RegistryWithInvitor", invitor)
}

func (g *Game) AddCredit(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "AddCredit", amount)
}

func (g *Game) CashOut(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "Cashout", amount)
}

func (g *Game) BuyItem(ctx context.Context, opts *bind.TransactOpts, units, price, item *big.Int, data []byte) (*types.Transaction, error) {
	return g.transact(ctx, opts, "buyItem", units, price, item, data)
}

func (g *Game) Heal(ctx context.Context, opts *bind.TransactOpts, id, units, item *big.Int, data []byte) (*types.Transaction, error) {
	return g.transact(ctx, opts, "Healing", id, units, item, data)
}

func (g *Game) Burn(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.transact(ctx, opts, "burn", amount)
}
