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

const erc1155ABI = `[
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"isApprovedForAll","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable","inputs":[{"name":"operator","type":"address"},{"name":"approved","type":"bool"}],"outputs":[]}
]`

var (
	_ arena.ItemReader   = (*Items)(nil)
	_ arena.ItemApprover = (*Items)(nil)
)

// Items wraps the ERC-1155 collectible contract (potions and equipment).
type Items struct {
	addr  common.Address
	bound *bind.BoundContract
}

func NewItems(addr common.Address, backend bind.ContractBackend) (*Items, error) {
	parsed, err := abi.JSON(strings.NewReader(erc1155ABI))
	if err != nil {
		return nil, err
	}

	return &Items{
		addr:  addr,
		bound: bind.NewBoundContract(addr, parsed, backend, backend, backend),
	}, nil
}

func (i *Items) Address() common.Address {
	return i.addr
}

func (i *Items) ItemBalanceOf(ctx context.Context, owner common.Address, id uint64) (*big.Int, error) {
	var out []interface{}

	err := i.bound.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner, new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (i *Items) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	var out []interface{}

	err := i.bound.Call(&bind.CallOpts{Context: ctx}, &out, "isApprovedForAll", owner, operator)
	if err != nil {
		return false, err
	}

	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (i *Items) SetApprovalForAll(ctx context.Context, opts *bind.TransactOpts, operator common.Address, approved bool) (*types.Transaction, error) {
	if opts.Context == nil {
		opts.Context = ctx
	}

	return i.bound.Transact(opts, "setApprovalForAll", operator, approved)
}
