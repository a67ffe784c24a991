// Package types provides base Solana types and structures used throughout the vaultswap module.
// It wraps and extends the solana-go library types for consistency and convenience.
package types

import (
	"github.com/gagliardetto/solana-go"
)

// Pubkey is a Solana public key (32 bytes).
type Pubkey = solana.PublicKey

// Signature is a Solana transaction signature (64 bytes).
type Signature = solana.Signature

// Direction identifies which side of a pool the input asset enters from.
type Direction uint8

const (
	// DirectionAToB swaps asset A into the pool for asset B out.
	DirectionAToB Direction = 1

	// DirectionBToA swaps asset B into the pool for asset A out.
	DirectionBToA Direction = 2
)

// String returns a human-readable direction label.
func (d Direction) String() string {
	switch d {
	case DirectionAToB:
		return "a_to_b"
	case DirectionBToA:
		return "b_to_a"
	default:
		return "unknown"
	}
}

// Valid reports whether the direction is one of the two defined values.
func (d Direction) Valid() bool {
	return d == DirectionAToB || d == DirectionBToA
}
