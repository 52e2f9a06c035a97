package arena

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"
)

// ReceiptWaiter blocks until a submitted transaction is included.
type ReceiptWaiter interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Refresher re-synchronizes the cached view state after a confirmed action.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Orchestrator runs every financial action through the same strictly ordered
// phases: busy guard, allowance approval, submission, confirmation, branch on
// receipt status. Exactly one notification per terminal outcome, at most one
// refresh per success, and the busy flag never survives an outcome.
type Orchestrator struct {
	session   *Session
	waiter    ReceiptWaiter
	refresher Refresher
	notify    Notifier

	mu   sync.Mutex
	busy map[Kind]bool
}

func NewOrchestrator(session *Session, waiter ReceiptWaiter, refresher Refresher, notify Notifier) *Orchestrator {
	return &Orchestrator{
		session:   session,
		waiter:    waiter,
		refresher: refresher,
		notify:    notify,
		busy:      make(map[Kind]bool),
	}
}

// Busy reports whether an action of this kind is in flight.
func (o *Orchestrator) Busy(kind Kind) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.busy[kind]
}

func (o *Orchestrator) acquire(kind Kind) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy[kind] {
		return false
	}

	o.busy[kind] = true

	return true
}

// Release clears the busy flag for a kind. Idempotent: the event bridge and
// the confirmation path may both clear the same flag, whichever wins.
func (o *Orchestrator) Release(kind Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.busy, kind)
}

// Run executes one trigger. A second trigger of the same kind while busy is
// a no-op returning ErrBusy without any network call or notification.
func (o *Orchestrator) Run(ctx context.Context, req Request) Result {
	wallet, ok := o.session.Wallet()
	if !ok {
		o.notify.Error("%s: %v", req.Kind, ErrNotConnected)

		return rejected(req.Kind, ErrNotConnected)
	}

	if !o.acquire(req.Kind) {
		return rejected(req.Kind, ErrBusy)
	}
	defer o.Release(req.Kind)

	if req.Approve != nil {
		if res, ok := o.approve(ctx, wallet, req); !ok {
			return res
		}
	}

	opts, err := wallet.NewTransactor(ctx)
	if err != nil {
		o.notify.Error("%s: %v", req.Kind, err)

		return rejected(req.Kind, err)
	}

	if req.GasLimit > 0 {
		opts.GasLimit = req.GasLimit
	}

	if req.Value != nil {
		opts.Value = req.Value
	}

	tx, err := req.Submit(ctx, opts)
	if err != nil {
		o.notify.Error("%s: %v", req.Kind, err)

		return rejected(req.Kind, err)
	}

	log.Debug().
		Str("kind", string(req.Kind)).
		Str("tx", tx.Hash().Hex()).
		Uint64("gas_limit", opts.GasLimit).
		Msg("transaction submitted")

	receipt, err := o.waiter.WaitMined(ctx, tx)
	if err != nil {
		o.notify.Error("%s: %v", req.Kind, err)

		return Result{Kind: req.Kind, Status: StatusRejected, TxHash: tx.Hash(), Err: err}
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		o.notify.Error("%s reverted, tx hash: %s", req.Kind, receipt.TxHash.Hex())

		return Result{Kind: req.Kind, Status: StatusReverted, TxHash: receipt.TxHash, Err: fmt.Errorf("%s: transaction reverted", req.Kind)}
	}

	o.notify.Success("%s confirmed, tx hash: %s", req.Kind, receipt.TxHash.Hex())

	if o.refresher != nil {
		// Refresh failures surface through the coordinator's own
		// notification; the action itself still succeeded.
		if err := o.refresher.Refresh(ctx); err != nil {
			log.Warn().Err(err).Str("kind", string(req.Kind)).Msg("post-action refresh failed")
		}
	}

	return Result{Kind: req.Kind, Status: StatusSucceeded, TxHash: receipt.TxHash}
}

// approve runs the allowance phase with its own transactor: no gas override
// and no native value, those belong to the primary transaction only.
func (o *Orchestrator) approve(ctx context.Context, wallet Wallet, req Request) (Result, bool) {
	opts, err := wallet.NewTransactor(ctx)
	if err != nil {
		o.notify.Error("%s: %v", req.Kind, err)

		return rejected(req.Kind, err), false
	}

	tx, err := req.Approve(ctx, opts)
	if err != nil {
		o.notify.Error("%s: approval failed: %v", req.Kind, err)

		return rejected(req.Kind, fmt.Errorf("%w: %w", ErrNotApproved, err)), false
	}

	receipt, err := o.waiter.WaitMined(ctx, tx)
	if err != nil {
		o.notify.Error("%s: approval failed: %v", req.Kind, err)

		return rejected(req.Kind, fmt.Errorf("%w: %w", ErrNotApproved, err)), false
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		o.notify.Error("%s: approval reverted, tx hash: %s", req.Kind, receipt.TxHash.Hex())

		return Result{Kind: req.Kind, Status: StatusRejected, TxHash: receipt.TxHash, Err: ErrNotApproved}, false
	}

	return Result{}, true
}
