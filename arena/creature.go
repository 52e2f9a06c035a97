package arena

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Creature is one game entity as fetched from the contract. The cache is
// never mutated in place; every refresh replaces the whole set.
type Creature struct {
	ID         uint64
	Name       string
	Species    uint64
	Type       uint64
	Attack     uint64
	Defense    uint64
	HitPoints  uint64
	Level      uint64
	Owner      common.Address
	ForSale    bool
	Price      *big.Int
	RewardPool *big.Int
}

// Power is the derived combat rating: the sum of the three base stats.
func (c Creature) Power() uint64 {
	return c.Attack + c.Defense + c.HitPoints
}

// Item ids on the ERC-1155 collection.
const (
	ItemHealingPotion uint64 = iota
	ItemManaPotion
	ItemMagicPotion
	ItemSword
	ItemShield

	ItemCount = 5
)

type ItemBalances struct {
	HealingPotions uint64
	ManaPotions    uint64
	MagicPotions   uint64
	Swords         uint64
	Shields        uint64
}

func (b *ItemBalances) set(id, amount uint64) {
	switch id {
	case ItemHealingPotion:
		b.HealingPotions = amount
	case ItemManaPotion:
		b.ManaPotions = amount
	case ItemMagicPotion:
		b.MagicPotions = amount
	case ItemSword:
		b.Swords = amount
	case ItemShield:
		b.Shields = amount
	}
}

// Snapshot is one atomic view of the on-chain state. Consumers always read a
// whole snapshot from a single fetch round, never a mix of two rounds.
type Snapshot struct {
	Round     uint64
	TakenAt   time.Time
	Owner     common.Address
	Creatures []Creature
	Mine      []Creature
	Others    []Creature
	Balance   *big.Int
	Items     ItemBalances
}

func partition(all []Creature, owner common.Address) (mine, others []Creature) {
	for _, c := range all {
		if c.Owner == owner {
			mine = append(mine, c)
		} else {
			others = append(others, c)
		}
	}

	return mine, others
}
