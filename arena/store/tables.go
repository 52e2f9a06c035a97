package store

import (
	"github.com/ledgerwatch/erigon-lib/kv"
)

const (
	SnapshotsBucket = "snapshots" // round (big-endian uint64) -> cbor snapshot
	ResultsBucket   = "results"   // event name -> cbor result
)

func Tables() kv.TableCfg {
	return kv.TableCfg{
		SnapshotsBucket: {},
		ResultsBucket:   {},
	}
}
