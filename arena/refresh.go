package arena

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// GameReader is the read surface of the game contract.
type GameReader interface {
	CreatureCount(ctx context.Context) (uint64, error)
	CreatureByIndex(ctx context.Context, index uint64) (Creature, error)
}

// TokenReader reads the fungible token balance.
type TokenReader interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// ItemReader reads per-item balances on the collectible contract.
type ItemReader interface {
	ItemBalanceOf(ctx context.Context, owner common.Address, id uint64) (*big.Int, error)
}

// SnapshotSink persists successful snapshots. Optional.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}

// Coordinator pulls the full entity set and balances from the contracts and
// swaps the cached snapshot atomically. A failed fetch keeps the previous
// snapshot untouched; concurrent refreshes are last-fetch-wins.
type Coordinator struct {
	session *Session
	game    GameReader
	token   TokenReader
	items   ItemReader
	notify  Notifier
	sink    SnapshotSink

	cur   atomic.Pointer[Snapshot]
	round atomic.Uint64
}

func NewCoordinator(session *Session, game GameReader, token TokenReader, items ItemReader, notify Notifier, sink SnapshotSink) *Coordinator {
	return &Coordinator{
		session: session,
		game:    game,
		token:   token,
		items:   items,
		notify:  notify,
		sink:    sink,
	}
}

// Snapshot returns the current cached snapshot, or nil before the first
// successful refresh.
func (c *Coordinator) Snapshot() *Snapshot {
	return c.cur.Load()
}

// Seed installs a previously persisted snapshot as the starting cache. It
// never overwrites a snapshot fetched in this process.
func (c *Coordinator) Seed(snap *Snapshot) {
	if snap == nil {
		return
	}

	c.cur.CompareAndSwap(nil, snap)
}

// Refresh fetches one atomic batch: entity count, every entity by index
// (concurrently, all-or-nothing), token balance and item balances. With no
// connected session it is a silent no-op, not an error.
func (c *Coordinator) Refresh(ctx context.Context) error {
	owner, ok := c.session.Address()
	if !ok {
		return nil
	}

	count, err := c.game.CreatureCount(ctx)
	if err != nil {
		c.notify.Error("refresh failed: %v", err)

		return fmt.Errorf("creature count: %w", err)
	}

	creatures := make([]Creature, count)
	errCh := make(chan error, count)

	for i := uint64(0); i < count; i++ {
		go func(i uint64) {
			creature, err := c.game.CreatureByIndex(ctx, i)
			if err == nil {
				creatures[i] = creature
			}

			errCh <- err
		}(i)
	}

	var fetchErr error

	for i := uint64(0); i < count; i++ {
		if err := <-errCh; err != nil && fetchErr == nil {
			fetchErr = err
		}
	}

	if fetchErr != nil {
		c.notify.Error("refresh failed: %v", fetchErr)

		return fmt.Errorf("creature fetch: %w", fetchErr)
	}

	balance, err := c.token.BalanceOf(ctx, owner)
	if err != nil {
		c.notify.Error("refresh failed: %v", err)

		return fmt.Errorf("token balance: %w", err)
	}

	var items ItemBalances

	for id := uint64(0); id < ItemCount; id++ {
		bal, err := c.items.ItemBalanceOf(ctx, owner, id)
		if err != nil {
			c.notify.Error("refresh failed: %v", err)

			return fmt.Errorf("item %d balance: %w", id, err)
		}

		items.set(id, bal.Uint64())
	}

	mine, others := partition(creatures, owner)

	snap := &Snapshot{
		Round:     c.round.Add(1),
		TakenAt:   time.Now(),
		Owner:     owner,
		Creatures: creatures,
		Mine:      mine,
		Others:    others,
		Balance:   balance,
		Items:     items,
	}

	c.cur.Store(snap)

	log.Debug().
		Uint64("round", snap.Round).
		Int("creatures", len(creatures)).
		Str("balance", balance.String()).
		Msg("view state refreshed")

	if c.sink != nil {
		if err := c.sink.SaveSnapshot(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("snapshot not persisted")
		}
	}

	return nil
}
