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

const erc20ABI = `[
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	_ arena.TokenReader   = (*Token)(nil)
	_ arena.TokenApprover = (*Token)(nil)
)

// Token wraps an ERC-20 contract: the game token for bets and cash-out, and
// the external credit token for cash-in.
type Token struct {
	addr  common.Address
	bound *bind.BoundContract
}

func NewToken(addr common.Address, backend bind.ContractBackend) (*Token, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}

	return &Token{
		addr:  addr,
		bound: bind.NewBoundContract(addr, parsed, backend, backend, backend),
	}, nil
}

func (t *Token) Address() common.Address {
	return t.addr
}

func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var out []interface{}

	err := t.bound.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner)
	if err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	var out []interface{}

	err := t.bound.Call(&bind.CallOpts{Context: ctx}, &out, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (t *Token) Approve(ctx context.Context, opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	if opts.Context == nil {
		opts.Context = ctx
	}

	return t.bound.Transact(opts, "approve", spender, amount)
}
