package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"
	"github.com/ledgerwatch/erigon-lib/kv"
	"github.com/ledgerwatch/erigon-lib/kv/mdbx"
	mdbxlog "github.com/ledgerwatch/log/v3"

	"github.com/monarena/client/arena"
)

const (
	fightKey  = "fight"
	rewardKey = "reward"
)

var (
	_ arena.SnapshotSink = (*Store)(nil)
	_ arena.ResultSink   = (*Store)(nil)
)

// Store keeps the last fetched snapshots and results in a local mdbx
// database so the CLI and status API have something to show before the
// first refresh of a new process. Never authoritative: the contract is.
type Store struct {
	db kv.RwDB
}

func Open(path string) (*Store, error) {
	db, err := mdbx.NewMDBX(mdbxlog.New()).
		Path(path).
		WithTableCfg(func(_ kv.TableCfg) kv.TableCfg {
			return Tables()
		}).
		Open()
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() {
	s.db.Close()
}

type storedCreature struct {
	ID         uint64
	Name       string
	Species    uint64
	Type       uint64
	Attack     uint64
	Defense    uint64
	HitPoints  uint64
	Level      uint64
	Owner      [20]byte
	ForSale    bool
	Price      []byte
	RewardPool []byte
}

type storedSnapshot struct {
	Round     uint64
	TakenAt   int64
	Owner     [20]byte
	Creatures []storedCreature
	Balance   []byte
	Items     [arena.ItemCount]uint64
}

type storedFight struct {
	WinnerID uint64
	Rounds   uint64
	TxHash   [32]byte
}

type storedReward struct {
	WinnerID uint64
	Amount   []byte
	TxHash   [32]byte
}

func packAmount(v *big.Int) []byte {
	if v == nil {
		return nil
	}

	u, overflow := uint256.FromBig(v)
	if overflow {
		u = &uint256.Int{}
	}

	return u.Bytes()
}

func unpackAmount(b []byte) *big.Int {
	u := &uint256.Int{}
	u.SetBytes(b)

	return u.ToBig()
}

func encodeSnapshot(snap *arena.Snapshot) ([]byte, error) {
	rec := storedSnapshot{
		Round:   snap.Round,
		TakenAt: snap.TakenAt.Unix(),
		Owner:   snap.Owner,
		Balance: packAmount(snap.Balance),
		Items: [arena.ItemCount]uint64{
			snap.Items.HealingPotions,
			snap.Items.ManaPotions,
			snap.Items.MagicPotions,
			snap.Items.Swords,
			snap.Items.Shields,
		},
	}

	rec.Creatures = make([]storedCreature, 0, len(snap.Creatures))
	for _, c := range snap.Creatures {
		rec.Creatures = append(rec.Creatures, storedCreature{
			ID:         c.ID,
			Name:       c.Name,
			Species:    c.Species,
			Type:       c.Type,
			Attack:     c.Attack,
			Defense:    c.Defense,
			HitPoints:  c.HitPoints,
			Level:      c.Level,
			Owner:      c.Owner,
			ForSale:    c.ForSale,
			Price:      packAmount(c.Price),
			RewardPool: packAmount(c.RewardPool),
		})
	}

	return cbor.Marshal(rec)
}

func decodeSnapshot(data []byte) (*arena.Snapshot, error) {
	var rec storedSnapshot

	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	owner := common.Address(rec.Owner)

	creatures := make([]arena.Creature, 0, len(rec.Creatures))
	for _, c := range rec.Creatures {
		creatures = append(creatures, arena.Creature{
			ID:         c.ID,
			Name:       c.Name,
			Species:    c.Species,
			Type:       c.Type,
			Attack:     c.Attack,
			Defense:    c.Defense,
			HitPoints:  c.HitPoints,
			Level:      c.Level,
			Owner:      common.Address(c.Owner),
			ForSale:    c.ForSale,
			Price:      unpackAmount(c.Price),
			RewardPool: unpackAmount(c.RewardPool),
		})
	}

	snap := &arena.Snapshot{
		Round:     rec.Round,
		TakenAt:   time.Unix(rec.TakenAt, 0),
		Owner:     owner,
		Creatures: creatures,
		Balance:   unpackAmount(rec.Balance),
		Items: arena.ItemBalances{
			HealingPotions: rec.Items[0],
			ManaPotions:    rec.Items[1],
			MagicPotions:   rec.Items[2],
			Swords:         rec.Items[3],
			Shields:        rec.Items[4],
		},
	}

	mine := make([]arena.Creature, 0)
	others := make([]arena.Creature, 0)

	for _, c := range creatures {
		if c.Owner == owner {
			mine = append(mine, c)
		} else {
			others = append(others, c)
		}
	}

	snap.Mine = mine
	snap.Others = others

	return snap, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snap *arena.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	var key [8]byte
	binary.BigEndian.PutUint64(key[:], snap.Round)

	return s.db.Update(ctx, func(tx kv.RwTx) error {
		return tx.Put(SnapshotsBucket, key[:], data)
	})
}

// LatestSnapshot returns the highest-round persisted snapshot, or nil when
// the store is empty.
func (s *Store) LatestSnapshot(ctx context.Context) (*arena.Snapshot, error) {
	var data []byte

	err := s.db.View(ctx, func(tx kv.Tx) error {
		cur, err := tx.Cursor(SnapshotsBucket)
		if err != nil {
			return err
		}
		defer cur.Close()

		_, v, err := cur.Last()
		if err != nil {
			return err
		}

		if v != nil {
			data = append([]byte(nil), v...)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, nil
	}

	return decodeSnapshot(data)
}

func (s *Store) SaveFightResult(ctx context.Context, res arena.FightResult) error {
	data, err := cbor.Marshal(storedFight{
		WinnerID: res.WinnerID,
		Rounds:   res.Rounds,
		TxHash:   res.TxHash,
	})
	if err != nil {
		return err
	}

	return s.db.Update(ctx, func(tx kv.RwTx) error {
		return tx.Put(ResultsBucket, []byte(fightKey), data)
	})
}

func (s *Store) LatestFightResult(ctx context.Context) (*arena.FightResult, error) {
	var rec storedFight

	found, err := s.getResult(ctx, fightKey, &rec)
	if err != nil || !found {
		return nil, err
	}

	return &arena.FightResult{
		WinnerID: rec.WinnerID,
		Rounds:   rec.Rounds,
		TxHash:   rec.TxHash,
	}, nil
}

func (s *Store) SaveReward(ctx context.Context, res arena.RewardResult) error {
	data, err := cbor.Marshal(storedReward{
		WinnerID: res.WinnerID,
		Amount:   packAmount(res.Amount),
		TxHash:   res.TxHash,
	})
	if err != nil {
		return err
	}

	return s.db.Update(ctx, func(tx kv.RwTx) error {
		return tx.Put(ResultsBucket, []byte(rewardKey), data)
	})
}

func (s *Store) LatestReward(ctx context.Context) (*arena.RewardResult, error) {
	var rec storedReward

	found, err := s.getResult(ctx, rewardKey, &rec)
	if err != nil || !found {
		return nil, err
	}

	return &arena.RewardResult{
		WinnerID: rec.WinnerID,
		Amount:   unpackAmount(rec.Amount),
		TxHash:   rec.TxHash,
	}, nil
}

func (s *Store) getResult(ctx context.Context, key string, out any) (bool, error) {
	var data []byte

	err := s.db.View(ctx, func(tx kv.Tx) error {
		v, err := tx.GetOne(ResultsBucket, []byte(key))
		if err != nil {
			return err
		}

		if v != nil {
			data = append([]byte(nil), v...)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	if data == nil {
		return false, nil
	}

	return true, cbor.Unmarshal(data, out)
}
