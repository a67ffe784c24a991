// Package authority implements keyless custody authorities as program derived
// addresses.
//
// An authority derived here has no private key. Control over it is proven only
// by re-supplying the same seeds and bump that produced it, so any holder of
// the derivation inputs can reconstruct and verify the address without any
// secret material being stored.
package authority

import (
	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-vaultswap/internal/errors"
	"github.com/lugondev/go-vaultswap/pkg/types"
)

// ProgramID is the address namespace all vault authorities are derived under.
// Derivations under a different program id never collide with ours.
var ProgramID = solana.MustPublicKeyFromBase58("Swap111111111111111111111111111111111111111")

// Seed tags for the two derivations the vault performs.
const (
	PoolStateSeed     = "pool_state"
	PoolAuthoritySeed = "pool_authority"
)

// Derive searches the bump space (255 down to 0) for the first valid program
// address under ProgramID for the given seeds. The returned bump is the only
// value that needs to be persisted: Derive and Verify reproduce the address
// from it on every later call.
func Derive(seeds ...[]byte) (types.Pubkey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return types.Pubkey{}, 0, errors.ErrDerivationFailed.WithCause(err)
	}
	return addr, bump, nil
}

// DeriveWithBump recomputes the program address for a known bump. It fails if
// the seeds plus bump do not produce a valid off-curve address.
func DeriveWithBump(bump uint8, seeds ...[]byte) (types.Pubkey, error) {
	full := make([][]byte, 0, len(seeds)+1)
	full = append(full, seeds...)
	full = append(full, []byte{bump})
	addr, err := solana.CreateProgramAddress(full, ProgramID)
	if err != nil {
		return types.Pubkey{}, errors.ErrDerivationFailed.WithCause(err)
	}
	return addr, nil
}

// Verify reports whether claimed is exactly the address produced by the given
// seeds and bump. Every swap re-proves its authority through this check
// instead of trusting a stored reference.
func Verify(bump uint8, claimed types.Pubkey, seeds ...[]byte) bool {
	addr, err := DeriveWithBump(bump, seeds...)
	if err != nil {
		return false
	}
	return addr.Equals(claimed)
}

// Proof carries the derivation inputs for one authority. Presenting a Proof
// to the ledger stands in for a signature by the derived address.
type Proof struct {
	Seeds [][]byte
	Bump  uint8
}

// NewProof builds a proof from a bump and its seeds.
func NewProof(bump uint8, seeds ...[]byte) Proof {
	return Proof{Seeds: seeds, Bump: bump}
}

// Address recomputes the authority address this proof authorizes for.
func (p Proof) Address() (types.Pubkey, error) {
	return DeriveWithBump(p.Bump, p.Seeds...)
}

// Authorizes reports whether the proof reconstructs the given address.
func (p Proof) Authorizes(addr types.Pubkey) bool {
	return Verify(p.Bump, addr, p.Seeds...)
}

// PoolStateAddress derives the pool record address for an asset pair. The
// pair order is fixed at creation and keys the derivation.
func PoolStateAddress(assetA, assetB types.Pubkey) (types.Pubkey, uint8, error) {
	return Derive([]byte(PoolStateSeed), assetA.Bytes(), assetB.Bytes())
}

// PoolAuthorityAddress derives the custody authority for a pool record
// address.
func PoolAuthorityAddress(poolState types.Pubkey) (types.Pubkey, uint8, error) {
	return Derive([]byte(PoolAuthoritySeed), poolState.Bytes())
}

// PoolAuthorityProof builds the transfer authorizer for a pool's reserves
// from the stored bump.
func PoolAuthorityProof(poolState types.Pubkey, bump uint8) Proof {
	return NewProof(bump, []byte(PoolAuthoritySeed), poolState.Bytes())
}
