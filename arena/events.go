package arena

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/rs/zerolog/log"
)

// FightResult is a decoded contest-resolution event.
type FightResult struct {
	WinnerID uint64
	Rounds   uint64
	TxHash   common.Hash
}

// RewardResult is a decoded reward-credit event.
type RewardResult struct {
	WinnerID uint64
	Amount   *big.Int
	TxHash   common.Hash
}

// ResultWatcher subscribes to the two contract-emitted result events.
type ResultWatcher interface {
	WatchFightResults(ctx context.Context, sink chan<- FightResult) (event.Subscription, error)
	WatchRewards(ctx context.Context, sink chan<- RewardResult) (event.Subscription, error)
}

// ResultSink persists decoded results. Optional.
type ResultSink interface {
	SaveFightResult(ctx context.Context, res FightResult) error
	SaveReward(ctx context.Context, res RewardResult) error
}

// Bridge feeds contract result events into the view state. Events can land
// before or after the orchestrator's own confirmation branch; both paths are
// idempotent against the fight busy flag and the refreshed snapshot.
type Bridge struct {
	session   *Session
	watcher   ResultWatcher
	refresher Refresher
	release   func(Kind)
	notify    Notifier
	sink      ResultSink

	mu     sync.Mutex
	owner  common.Address
	cancel context.CancelFunc
	done   chan struct{}

	lastFight  atomic.Pointer[FightResult]
	lastReward atomic.Pointer[RewardResult]
}

func NewBridge(session *Session, watcher ResultWatcher, refresher Refresher, release func(Kind), notify Notifier, sink ResultSink) *Bridge {
	return &Bridge{
		session:   session,
		watcher:   watcher,
		refresher: refresher,
		release:   release,
		notify:    notify,
		sink:      sink,
	}
}

// Start subscribes for the current session. Calling it again after the
// session identity changed tears down the previous subscriptions first, so a
// reconnect with a different address never sees duplicate deliveries.
func (b *Bridge) Start(ctx context.Context) error {
	owner, ok := b.session.Address()
	if !ok {
		return ErrNotConnected
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		if b.owner == owner {
			return nil
		}

		b.stopLocked()
	}

	fights := make(chan FightResult, 16)
	rewards := make(chan RewardResult, 16)

	runCtx, cancel := context.WithCancel(ctx)

	fightSub, err := b.watcher.WatchFightResults(runCtx, fights)
	if err != nil {
		cancel()

		return err
	}

	rewardSub, err := b.watcher.WatchRewards(runCtx, rewards)
	if err != nil {
		fightSub.Unsubscribe()
		cancel()

		return err
	}

	done := make(chan struct{})

	b.owner = owner
	b.cancel = cancel
	b.done = done

	go b.loop(runCtx, done, fightSub, rewardSub, fights, rewards)

	return nil
}

// Stop unsubscribes and waits for the delivery loop to exit.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()
}

func (b *Bridge) stopLocked() {
	if b.cancel == nil {
		return
	}

	b.cancel()
	<-b.done

	b.cancel = nil
	b.done = nil
	b.owner = common.Address{}
}

func (b *Bridge) loop(ctx context.Context, done chan struct{}, fightSub, rewardSub event.Subscription, fights <-chan FightResult, rewards <-chan RewardResult) {
	defer close(done)
	defer fightSub.Unsubscribe()
	defer rewardSub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case res := <-fights:
			b.onFight(ctx, res)
		case res := <-rewards:
			b.onReward(ctx, res)
		case err := <-fightSub.Err():
			if err != nil {
				b.notify.Error("result subscription lost: %v", err)
			}

			return
		case err := <-rewardSub.Err():
			if err != nil {
				b.notify.Error("result subscription lost: %v", err)
			}

			return
		}
	}
}

func (b *Bridge) onFight(ctx context.Context, res FightResult) {
	b.lastFight.Store(&res)

	log.Info().
		Uint64("winner", res.WinnerID).
		Uint64("rounds", res.Rounds).
		Str("tx", res.TxHash.Hex()).
		Msg("fight resolved")

	if b.sink != nil {
		if err := b.sink.SaveFightResult(ctx, res); err != nil {
			log.Warn().Err(err).Msg("fight result not persisted")
		}
	}

	b.release(KindFight)

	if err := b.refresher.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("post-event refresh failed")
	}
}

func (b *Bridge) onReward(ctx context.Context, res RewardResult) {
	b.lastReward.Store(&res)

	log.Info().
		Uint64("winner", res.WinnerID).
		Str("amount", res.Amount.String()).
		Str("tx", res.TxHash.Hex()).
		Msg("reward credited")

	if b.sink != nil {
		if err := b.sink.SaveReward(ctx, res); err != nil {
			log.Warn().Err(err).Msg("reward not persisted")
		}
	}

	b.release(KindFight)

	if err := b.refresher.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("post-event refresh failed")
	}
}

// LastFight returns the most recent decoded fight result, or nil.
func (b *Bridge) LastFight() *FightResult {
	return b.lastFight.Load()
}

// LastReward returns the most recent decoded reward, or nil.
func (b *Bridge) LastReward() *RewardResult {
	return b.lastReward.Load()
}
