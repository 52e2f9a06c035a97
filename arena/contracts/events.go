package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"github.com/monarena/client/arena"
)

const (
	fightResultsEvent = "FightResults"
	rewardsEvent      = "Rewards"
)

type fightResultsLog struct {
	WinnerId *big.Int
	Rounds   *big.Int
}

type rewardsLog struct {
	WinnerId *big.Int
	Amount   *big.Int
}

func (g *Game) decodeFightResults(vlog types.Log) (arena.FightResult, error) {
	var ev fightResultsLog

	if err := g.bound.UnpackLog(&ev, fightResultsEvent, vlog); err != nil {
		return arena.FightResult{}, err
	}

	return arena.FightResult{
		WinnerID: ev.WinnerId.Uint64(),
		Rounds:   ev.Rounds.Uint64(),
		TxHash:   vlog.TxHash,
	}, nil
}

func (g *Game) decodeRewards(vlog types.Log) (arena.RewardResult, error) {
	var ev rewardsLog

	if err := g.bound.UnpackLog(&ev, rewardsEvent, vlog); err != nil {
		return arena.RewardResult{}, err
	}

	return arena.RewardResult{
		WinnerID: ev.WinnerId.Uint64(),
		Amount:   ev.Amount,
		TxHash:   vlog.TxHash,
	}, nil
}

// WatchFightResults streams decoded contest resolutions into sink until the
// subscription is torn down.
func (g *Game) WatchFightResults(ctx context.Context, sink chan<- arena.FightResult) (event.Subscription, error) {
	logs, sub, err := g.bound.WatchLogs(&bind.WatchOpts{Context: ctx}, fightResultsEvent)
	if err != nil {
		return nil, err
	}

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()

		for {
			select {
			case vlog := <-logs:
				res, err := g.decodeFightResults(vlog)
				if err != nil {
					return err
				}

				select {
				case sink <- res:
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// WatchRewards streams decoded reward credits into sink.
func (g *Game) WatchRewards(ctx context.Context, sink chan<- arena.RewardResult) (event.Subscription, error) {
	logs, sub, err := g.bound.WatchLogs(&bind.WatchOpts{Context: ctx}, rewardsEvent)
	if err != nil {
		return nil, err
	}

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()

		for {
			select {
			case vlog := <-logs:
				res, err := g.decodeRewards(vlog)
				if err != nil {
					return err
				}

				select {
				case sink <- res:
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}
