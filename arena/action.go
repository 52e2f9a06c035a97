package arena

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Kind names one user-initiated financial action. Re-entrancy is blocked per
// kind; different kinds may run concurrently.
type Kind string

const (
	KindBetSingle       Kind = "bet-single"
	KindBetDouble       Kind = "bet-double"
	KindBetBig          Kind = "bet-big"
	KindBetSmall        Kind = "bet-small"
	KindBetBanker       Kind = "bet-banker"
	KindBetPlayer       Kind = "bet-player"
	KindBetTie          Kind = "bet-tie"
	KindLuckyNumber     Kind = "lucky-number"
	KindBuyCreature     Kind = "buy-creature"
	KindSell            Kind = "sell"
	KindUnsell          Kind = "unsell"
	KindBreed           Kind = "breed"
	KindFight           Kind = "fight"
	KindShare           Kind = "share"
	KindClaim           Kind = "claim"
	KindRename          Kind = "rename"
	KindMint            Kind = "mint"
	KindMultiMint       Kind = "multi-mint"
	KindRegister        Kind = "register"
	KindRegisterInvited Kind = "register-invited"
	KindCashIn          Kind = "cash-in"
	KindCashOut         Kind = "cash-out"
	KindBuyItem         Kind = "buy-item"
	KindHeal            Kind = "heal"
	KindBurn            Kind = "burn"
)

// Fixed gas caps per action shape. The contract's heavy paths (settlement,
// cash flow review queue) need far more than the simple state toggles, and
// estimation against this contract is unreliable, so the caps are fixed.
const (
	GasSimple    uint64 = 120_000
	GasFight     uint64 = 300_000
	GasMint      uint64 = 220_000
	GasMultiMint uint64 = 1_000_000
	GasCashFlow  uint64 = 1_200_000
)

// SubmitFunc submits one transaction using the prepared transactor.
type SubmitFunc func(ctx context.Context, opts *bind.TransactOpts) (*types.Transaction, error)

// Request is one parametrized orchestrator invocation: the action kind, its
// gas policy, an optional allowance step and the primary submission.
type Request struct {
	Kind     Kind
	GasLimit uint64   // 0 leaves estimation to the node
	Value    *big.Int // native value attached to the primary transaction

	// Approve, when set, must reach a successful receipt before Submit is
	// ever invoked.
	Approve SubmitFunc
	Submit  SubmitFunc
}

type ResultStatus uint8

const (
	// StatusRejected: the action never reached a mined primary transaction
	// (validation, approval failure, wallet rejection, network error).
	StatusRejected ResultStatus = iota
	// StatusReverted: the primary transaction mined with status 0.
	StatusReverted
	// StatusSucceeded: the primary transaction mined with status 1.
	StatusSucceeded
)

func (s ResultStatus) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusReverted:
		return "reverted"
	default:
		return "rejected"
	}
}

// Result is the terminal outcome of one trigger.
type Result struct {
	Kind   Kind
	Status ResultStatus
	TxHash common.Hash // zero when nothing was mined
	Err    error       // nil only when Status is StatusSucceeded
}

func rejected(kind Kind, err error) Result {
	return Result{Kind: kind, Status: StatusRejected, Err: err}
}
