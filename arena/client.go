package arena

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// GameWriter is the write surface of the game contract, one method per
// action. Implementations submit the transaction and return its handle.
type GameWriter interface {
	BetSingle(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	BetDouble(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	BetBig(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	BetSmall(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	BetBanker(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	BetPlayer(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	BetTie(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	LuckyNumber(ctx context.Context, opts *bind.TransactOpts, number, amount *big.Int) (*types.Transaction, error)
	BuyCreature(ctx context.Context, opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error)
	AddForSale(ctx context.Context, opts *bind.TransactOpts, id, price *big.Int) (*types.Transaction, error)
	RemoveFromSale(ctx context.Context, opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error)
	Breed(ctx context.Context, opts *bind.TransactOpts, first, second *big.Int) (*types.Transaction, error)
	Fight(ctx context.Context, opts *bind.TransactOpts, first, second *big.Int) (*types.Transaction, error)
	StartSharing(ctx context.Context, opts *bind.TransactOpts, id *big.Int, to common.Address) (*types.Transaction, error)
	ClaimReward(ctx context.Context, opts *bind.TransactOpts, id, amount *big.Int) (*types.Transaction, error)
	Rename(ctx context.Context, opts *bind.TransactOpts, id *big.Int, name string) (*types.Transaction, error)
	Mint(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error)
	MultiMint(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error)
	Register(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error)
	RegisterWithInvitor(ctx context.Context, opts *bind.TransactOpts, invitor common.Address) (*types.Transaction, error)
	AddCredit(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	CashOut(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	BuyItem(ctx context.Context, opts *bind.TransactOpts, units, price, item *big.Int, data []byte) (*types.Transaction, error)
	Heal(ctx context.Context, opts *bind.TransactOpts, id, units, item *big.Int, data []byte) (*types.Transaction, error)
	Burn(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
}

// TokenApprover grants the game contract an allowance on a fungible token.
type TokenApprover interface {
	Approve(ctx context.Context, opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error)
}

// ItemApprover grants the game contract blanket transfer rights on the
// collectible items.
type ItemApprover interface {
	SetApprovalForAll(ctx context.Context, opts *bind.TransactOpts, operator common.Address, approved bool) (*types.Transaction, error)
}

// unitPrice is one whole token in its smallest unit, the fixed allowance for
// buy/mint actions.
var unitPrice = new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18))

// mintValue is the native value attached to a mint (0.01).
var mintValue = big.NewInt(10_000_000_000_000_000)

// Client is the action surface of the arena. Each method validates its
// parameters, then hands a Request to the orchestrator.
type Client struct {
	orch     *Orchestrator
	session  *Session
	view     *Coordinator
	bridge   *Bridge
	game     GameWriter
	token    TokenApprover // game token, spent by bets and purchases
	credit   TokenApprover // deposit token, spent by cash-in only
	items    ItemApprover
	gameAddr common.Address
	notify   Notifier
}

func NewClient(
	orch *Orchestrator,
	session *Session,
	view *Coordinator,
	bridge *Bridge,
	game GameWriter,
	token, credit TokenApprover,
	items ItemApprover,
	gameAddr common.Address,
	notify Notifier,
) *Client {
	return &Client{
		orch:     orch,
		session:  session,
		view:     view,
		bridge:   bridge,
		game:     game,
		token:    token,
		credit:   credit,
		items:    items,
		gameAddr: gameAddr,
		notify:   notify,
	}
}

func (c *Client) approveToken(amount *big.Int) SubmitFunc {
	return func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.token.Approve(ctx, opts, c.gameAddr, amount)
	}
}

func (c *Client) approveCredit(amount *big.Int) SubmitFunc {
	return func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.credit.Approve(ctx, opts, c.gameAddr, amount)
	}
}

func (c *Client) approveItems() SubmitFunc {
	return func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.items.SetApprovalForAll(ctx, opts, c.gameAddr, true)
	}
}

// validAmount rejects missing and non-positive amounts before any network
// call, with a notification. Every amount-bearing action goes through this.
func (c *Client) validAmount(kind Kind, amount *big.Int) bool {
	if amount == nil || amount.Sign() <= 0 {
		c.notify.Error("%s: %v", kind, ErrZeroAmount)

		return false
	}

	return true
}

func (c *Client) validID(kind Kind, ids ...*big.Int) bool {
	for _, id := range ids {
		if id == nil || id.Sign() < 0 {
			c.notify.Error("%s: %v", kind, ErrMissingTarget)

			return false
		}
	}

	return true
}

type betSubmit func(ctx context.Context, opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)

func (c *Client) bet(ctx context.Context, kind Kind, amount *big.Int, submit betSubmit) Result {
	if !c.validAmount(kind, amount) {
		return rejected(kind, ErrZeroAmount)
	}

	return c.orch.Run(ctx, Request{
		Kind:     kind,
		GasLimit: GasSimple,
		Approve:  c.approveToken(amount),
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return submit(ctx, opts, amount)
		},
	})
}

func (c *Client) BetSingle(ctx context.Context, amount *big.Int) Result {
	return c.bet(ctx, KindBetSingle, amount, c.game.BetSingle)
}

func (c *Client) BetDouble(ctx context.Context, amount *big.Int) Result {
	return c.bet(ctx, KindBetDouble, amount, c.game.BetDouble)
}

func (c *Client) BetBig(ctx context.Context, amount *big.Int) Result {
	return c.bet(ctx, KindBetBig, amount, c.game.BetBig)
}

func (c *Client) BetSmall(ctx context.Context, amount *big.Int) Result {
	return c.bet(ctx, KindBetSmall, amount, c.game.BetSmall)
}

func (c *Client) BetBanker(ctx context.Context, amount *big.Int) Result {
	return c.bet(ctx, KindBetBanker, amount, c.game.BetBanker)
}

func (c *Client) BetPlayer(ctx context.Context, amount *big.Int) Result {
	return c.bet(ctx, KindBetPlayer, amount, c.game.BetPlayer)
}

func (c *Client) BetTie(ctx context.Context, amount *big.Int) Result {
	return c.bet(ctx, KindBetTie, amount, c.game.BetTie)
}

func (c *Client) LuckyNumber(ctx context.Context, number, amount *big.Int) Result {
	if !c.validAmount(KindLuckyNumber, amount) {
		return rejected(KindLuckyNumber, ErrZeroAmount)
	}

	if !c.validID(KindLuckyNumber, number) {
		return rejected(KindLuckyNumber, ErrMissingTarget)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindLuckyNumber,
		GasLimit: GasSimple,
		Approve:  c.approveToken(amount),
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.LuckyNumber(ctx, opts, number, amount)
		},
	})
}

// BuyCreature purchases a listed creature. The contract takes the price from
// the buyer itself; the fixed one-unit allowance mirrors the listing flow.
func (c *Client) BuyCreature(ctx context.Context, id *big.Int) Result {
	if !c.validID(KindBuyCreature, id) {
		return rejected(KindBuyCreature, ErrMissingTarget)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindBuyCreature,
		GasLimit: GasSimple,
		Approve:  c.approveToken(unitPrice),
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.BuyCreature(ctx, opts, id)
		},
	})
}

func (c *Client) AddForSale(ctx context.Context, id, price *big.Int) Result {
	if !c.validID(KindSell, id) {
		return rejected(KindSell, ErrMissingTarget)
	}

	if !c.validAmount(KindSell, price) {
		return rejected(KindSell, ErrZeroAmount)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindSell,
		GasLimit: GasSimple,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.AddForSale(ctx, opts, id, price)
		},
	})
}

func (c *Client) RemoveFromSale(ctx context.Context, id *big.Int) Result {
	if !c.validID(KindUnsell, id) {
		return rejected(KindUnsell, ErrMissingTarget)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindUnsell,
		GasLimit: GasSimple,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.RemoveFromSale(ctx, opts, id)
		},
	})
}

func (c *Client) Breed(ctx context.Context, first, second *big.Int) Result {
	if !c.validID(KindBreed, first, second) {
		return rejected(KindBreed, ErrMissingTarget)
	}

	return c.orch.Run(ctx, Request{
		Kind: KindBreed,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.Breed(ctx, opts, first, second)
		},
	})
}

// Fight submits a contest. The busy flag may be cleared either by the mined
// receipt or by the FightResults event, whichever arrives first.
func (c *Client) Fight(ctx context.Context, first, second *big.Int) Result {
	if !c.validID(KindFight, first, second) {
		return rejected(KindFight, ErrMissingTarget)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindFight,
		GasLimit: GasFight,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.Fight(ctx, opts, first, second)
		},
	})
}

func (c *Client) StartSharing(ctx context.Context, id *big.Int, to common.Address) Result {
	if !c.validID(KindShare, id) {
		return rejected(KindShare, ErrMissingTarget)
	}

	if to == (common.Address{}) {
		c.notify.Error("%s: %v", KindShare, ErrMissingTarget)

		return rejected(KindShare, ErrMissingTarget)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindShare,
		GasLimit: GasSimple,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.StartSharing(ctx, opts, id, to)
		},
	})
}

func (c *Client) ClaimReward(ctx context.Context, id, amount *big.Int) Result {
	if !c.validID(KindClaim, id) {
		return rejected(KindClaim, ErrMissingTarget)
	}

	if !c.validAmount(KindClaim, amount) {
		return rejected(KindClaim, ErrZeroAmount)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindClaim,
		GasLimit: GasSimple,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.ClaimReward(ctx, opts, id, amount)
		},
	})
}

func (c *Client) Rename(ctx context.Context, id *big.Int, name string) Result {
	if !c.validID(KindRename, id) {
		return rejected(KindRename, ErrMissingTarget)
	}

	if name == "" {
		c.notify.Error("%s: %v", KindRename, ErrMissingTarget)

		return rejected(KindRename, ErrMissingTarget)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindRename,
		GasLimit: GasSimple,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.Rename(ctx, opts, id, name)
		},
	})
}

func (c *Client) Mint(ctx context.Context) Result {
	return c.orch.Run(ctx, Request{
		Kind:     KindMint,
		GasLimit: GasMint,
		Value:    mintValue,
		Approve:  c.approveToken(unitPrice),
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.Mint(ctx, opts)
		},
	})
}

func (c *Client) MultiMint(ctx context.Context) Result {
	return c.orch.Run(ctx, Request{
		Kind:     KindMultiMint,
		GasLimit: GasMultiMint,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.MultiMint(ctx, opts)
		},
	})
}

func (c *Client) Register(ctx context.Context) Result {
	return c.orch.Run(ctx, Request{
		Kind:     KindRegister,
		GasLimit: GasSimple,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.Register(ctx, opts)
		},
	})
}

func (c *Client) RegisterWithInvitor(ctx context.Context, invitor common.Address) Result {
	if invitor == (common.Address{}) {
		c.notify.Error("%s: %v", KindRegisterInvited, ErrMissingTarget)

		return rejected(KindRegisterInvited, ErrMissingTarget)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindRegisterInvited,
		GasLimit: GasSimple,
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.RegisterWithInvitor(ctx, opts, invitor)
		},
	})
}

// AddCredit deposits the external credit token; the only action approving
// the credit token rather than the game token.
func (c *Client) AddCredit(ctx context.Context, amount *big.Int) Result {
	if !c.validAmount(KindCashIn, amount) {
		return rejected(KindCashIn, ErrZeroAmount)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindCashIn,
		GasLimit: GasCashFlow,
		Approve:  c.approveCredit(amount),
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.AddCredit(ctx, opts, amount)
		},
	})
}

func (c *Client) CashOut(ctx context.Context, amount *big.Int) Result {
	if !c.validAmount(KindCashOut, amount) {
		return rejected(KindCashOut, ErrZeroAmount)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindCashOut,
		GasLimit: GasCashFlow,
		Approve:  c.approveToken(amount),
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.CashOut(ctx, opts, amount)
		},
	})
}

func (c *Client) BuyItem(ctx context.Context, units, price, item *big.Int, data []byte) Result {
	if !c.validAmount(KindBuyItem, units) || !c.validAmount(KindBuyItem, price) {
		return rejected(KindBuyItem, ErrZeroAmount)
	}

	if !c.validID(KindBuyItem, item) {
		return rejected(KindBuyItem, ErrMissingTarget)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindBuyItem,
		GasLimit: GasSimple,
		Approve:  c.approveToken(price),
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.BuyItem(ctx, opts, units, price, item, data)
		},
	})
}

func (c *Client) Heal(ctx context.Context, id, units, item *big.Int, data []byte) Result {
	if !c.validID(KindHeal, id, item) {
		return rejected(KindHeal, ErrMissingTarget)
	}

	if !c.validAmount(KindHeal, units) {
		return rejected(KindHeal, ErrZeroAmount)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindHeal,
		GasLimit: GasSimple,
		Approve:  c.approveItems(),
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.Heal(ctx, opts, id, units, item, data)
		},
	})
}

func (c *Client) Burn(ctx context.Context, amount *big.Int) Result {
	if !c.validAmount(KindBurn, amount) {
		return rejected(KindBurn, ErrZeroAmount)
	}

	return c.orch.Run(ctx, Request{
		Kind:     KindBurn,
		GasLimit: GasSimple,
		Approve:  c.approveToken(amount),
		Submit: func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.game.Burn(ctx, opts, amount)
		},
	})
}

// Snapshot exposes the cached view state for consumers (CLI, status API).
func (c *Client) Snapshot() *Snapshot {
	return c.view.Snapshot()
}

func (c *Client) LastFight() *FightResult {
	if c.bridge == nil {
		return nil
	}

	return c.bridge.LastFight()
}

func (c *Client) LastReward() *RewardResult {
	if c.bridge == nil {
		return nil
	}

	return c.bridge.LastReward()
}

// SessionStatus reports the session state, its address (empty when absent)
// and the connectivity error detail (empty when none).
func (c *Client) SessionStatus() (Status, string, string) {
	status := c.session.Status()

	var addr, detail string

	if a, ok := c.session.Address(); ok {
		addr = a.Hex()
	}

	if err := c.session.Err(); err != nil {
		detail = err.Error()
	}

	return status, addr, detail
}
