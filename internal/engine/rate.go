package engine

import (
	"github.com/lugondev/go-vaultswap/pkg/types"
)

// RatePolicy prices a swap: given the input asset, output asset, and input
// amount, it returns the output amount. Validation and transfer orchestration
// never depend on the policy, so a curve-based rate can be substituted
// without touching them.
type RatePolicy interface {
	Rate(assetIn, assetOut types.Pubkey, amountIn uint64) uint64
}

// ParityRate exchanges one-for-one: amount out equals amount in.
type ParityRate struct{}

// Rate returns amountIn unchanged.
func (ParityRate) Rate(assetIn, assetOut types.Pubkey, amountIn uint64) uint64 {
	return amountIn
}
