package arena

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

// MinedWaiter polls the backend until a transaction is included. No timeout
// of its own: confirmation waits are bounded only by the caller's context.
type MinedWaiter struct {
	backend bind.DeployBackend
}

func NewMinedWaiter(backend bind.DeployBackend) *MinedWaiter {
	return &MinedWaiter{backend: backend}
}

func (w *MinedWaiter) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, w.backend, tx)
}
