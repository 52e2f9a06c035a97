package arena

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// stubGame accepts every action and hands back a fresh transaction.
type stubGame struct {
	nonce atomic.Uint64
}

func (g *stubGame) tx() (*types.Transaction, error) {
	return newTestTx(g.nonce.Add(1)), nil
}

func (g *stubGame) BetSingle(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) BetDouble(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) BetBig(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) BetSmall(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) BetBanker(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) BetPlayer(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) BetTie(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) LuckyNumber(_ context.Context, _ *bind.TransactOpts, _, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) BuyCreature(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) AddForSale(_ context.Context, _ *bind.TransactOpts, _, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) RemoveFromSale(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) Breed(_ context.Context, _ *bind.TransactOpts, _, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) Fight(_ context.Context, _ *bind.TransactOpts, _, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) StartSharing(_ context.Context, _ *bind.TransactOpts, _ *big.Int, _ common.Address) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) ClaimReward(_ context.Context, _ *bind.TransactOpts, _, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) Rename(_ context.Context, _ *bind.TransactOpts, _ *big.Int, _ string) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) Mint(_ context.Context, _ *bind.TransactOpts) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) MultiMint(_ context.Context, _ *bind.TransactOpts) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) Register(_ context.Context, _ *bind.TransactOpts) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) RegisterWithInvitor(_ context.Context, _ *bind.TransactOpts, _ common.Address) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) AddCredit(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) CashOut(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) BuyItem(_ context.Context, _ *bind.TransactOpts, _, _, _ *big.Int, _ []byte) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) Heal(_ context.Context, _ *bind.TransactOpts, _, _, _ *big.Int, _ []byte) (*types.Transaction, error) {
	return g.tx()
}

func (g *stubGame) Burn(_ context.Context, _ *bind.TransactOpts, _ *big.Int) (*types.Transaction, error) {
	return g.tx()
}

// countingApprover records granted allowances.
type countingApprover struct {
	calls   atomic.Int32
	nonce   atomic.Uint64
	lastAmt atomic.Pointer[big.Int]
}

func (a *countingApprover) Approve(_ context.Context, _ *bind.TransactOpts, _ common.Address, amount *big.Int) (*types.Transaction, error) {
	a.calls.Add(1)
	a.lastAmt.Store(amount)

	return newTestTx(1_000 + a.nonce.Add(1)), nil
}

type countingItemApprover struct {
	calls atomic.Int32
}

func (a *countingItemApprover) SetApprovalForAll(_ context.Context, _ *bind.TransactOpts, _ common.Address, _ bool) (*types.Transaction, error) {
	a.calls.Add(1)

	return newTestTx(2_000), nil
}

type clientFixture struct {
	client   *Client
	notifier *recordingNotifier
	token    *countingApprover
	credit   *countingApprover
	items    *countingItemApprover
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()

	session := connectedSession(t)
	notifier := &recordingNotifier{}
	orch := NewOrchestrator(session, &fakeWaiter{}, &countingRefresher{}, notifier)

	token := &countingApprover{}
	credit := &countingApprover{}
	items := &countingItemApprover{}

	client := NewClient(
		orch, session, nil, nil,
		&stubGame{}, token, credit, items,
		common.HexToAddress("0x7bBa695f46feD048ea89CD7FfB4A8eC592b77724"), notifier,
	)

	return &clientFixture{client: client, notifier: notifier, token: token, credit: credit, items: items}
}

func TestBetApprovesGameToken(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.BetSingle(t.Context(), big.NewInt(100))

	require.Equal(t, StatusSucceeded, res.Status)
	require.EqualValues(t, 1, f.token.calls.Load())
	require.Zero(t, f.credit.calls.Load())
	require.Equal(t, big.NewInt(100), f.token.lastAmt.Load())
}

func TestBetZeroAmountRejected(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.BetSingle(t.Context(), big.NewInt(0))

	require.Equal(t, StatusRejected, res.Status)
	require.ErrorIs(t, res.Err, ErrZeroAmount)
	require.Zero(t, f.token.calls.Load())

	_, errs := f.notifier.counts()
	require.Equal(t, 1, errs)
}

func TestBetNilAmountRejected(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.BetTie(t.Context(), nil)

	require.Equal(t, StatusRejected, res.Status)
	require.ErrorIs(t, res.Err, ErrZeroAmount)
}

// Cash-in is the only action spending the external deposit token.
func TestAddCreditApprovesCreditToken(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.AddCredit(t.Context(), big.NewInt(250))

	require.Equal(t, StatusSucceeded, res.Status)
	require.EqualValues(t, 1, f.credit.calls.Load())
	require.Zero(t, f.token.calls.Load())
}

func TestHealApprovesItems(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.Heal(t.Context(), big.NewInt(1), big.NewInt(1), big.NewInt(0), nil)

	require.Equal(t, StatusSucceeded, res.Status)
	require.EqualValues(t, 1, f.items.calls.Load())
	require.Zero(t, f.token.calls.Load())
}

func TestSellWithoutApproval(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.AddForSale(t.Context(), big.NewInt(2), big.NewInt(10))

	require.Equal(t, StatusSucceeded, res.Status)
	require.Zero(t, f.token.calls.Load())
	require.Zero(t, f.credit.calls.Load())
}

func TestFightMissingTarget(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.Fight(t.Context(), big.NewInt(1), nil)

	require.Equal(t, StatusRejected, res.Status)
	require.ErrorIs(t, res.Err, ErrMissingTarget)
}

func TestRenameEmptyName(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.Rename(t.Context(), big.NewInt(1), "")

	require.Equal(t, StatusRejected, res.Status)
	require.ErrorIs(t, res.Err, ErrMissingTarget)
}

func TestShareZeroAddress(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.StartSharing(t.Context(), big.NewInt(1), common.Address{})

	require.Equal(t, StatusRejected, res.Status)
	require.ErrorIs(t, res.Err, ErrMissingTarget)
}

func TestMintFixedAllowance(t *testing.T) {
	f := newClientFixture(t)

	res := f.client.Mint(t.Context())

	require.Equal(t, StatusSucceeded, res.Status)
	require.EqualValues(t, 1, f.token.calls.Load())
	require.Equal(t, unitPrice, f.token.lastAmt.Load())
}

func TestViewAccessorsWithoutBridge(t *testing.T) {
	f := newClientFixture(t)

	require.Nil(t, f.client.LastFight())
	require.Nil(t, f.client.LastReward())

	status, addr, detail := f.client.SessionStatus()
	require.Equal(t, StatusConnected, status)
	require.NotEmpty(t, addr)
	require.Empty(t, detail)
}
