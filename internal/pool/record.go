// Package pool owns the durable record describing one trading pair and the
// registry that creates it.
package pool

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/lugondev/go-vaultswap/internal/authority"
	"github.com/lugondev/go-vaultswap/pkg/types"
)

// RecordDiscriminator prefixes every serialized pool record. It is the first
// 8 bytes of sha256("account:PoolState").
var RecordDiscriminator = [8]byte{0xf7, 0xed, 0xe3, 0xf5, 0xd7, 0xc3, 0xde, 0x46}

// RecordLen is the serialized size of a pool record: the 8-byte
// discriminator, three 32-byte identities, and two bump bytes.
const RecordLen = 8 + 32 + 32 + 32 + 1 + 1

// Record describes one pool. It is written once at creation and read-only
// afterwards; the reserve balances it governs live in the ledger, not here.
type Record struct {
	// Admin is the identity that created the pool. Informational only; it
	// grants no authority over swaps.
	Admin types.Pubkey `borsh:"admin"`

	// AssetA and AssetB identify the two mints this pool exchanges, in the
	// order fixed at creation. The order keys the pool's derived addresses.
	AssetA types.Pubkey `borsh:"asset_a"`
	AssetB types.Pubkey `borsh:"asset_b"`

	// Bump is the derivation attempt that produced the pool's own address.
	Bump uint8 `borsh:"bump"`

	// AuthorityBump is the derivation attempt that produced the custody
	// authority's address.
	AuthorityBump uint8 `borsh:"authority_bump"`
}

// Address re-derives the pool's own address from the stored bump.
func (r *Record) Address() (types.Pubkey, error) {
	return authority.DeriveWithBump(r.Bump,
		[]byte(authority.PoolStateSeed), r.AssetA.Bytes(), r.AssetB.Bytes())
}

// Authority re-derives the pool's custody authority from the stored bump.
func (r *Record) Authority() (types.Pubkey, error) {
	addr, err := r.Address()
	if err != nil {
		return types.Pubkey{}, err
	}
	return authority.DeriveWithBump(r.AuthorityBump,
		[]byte(authority.PoolAuthoritySeed), addr.Bytes())
}

// AuthorityProof builds the transfer authorizer for this pool's reserves.
func (r *Record) AuthorityProof() (authority.Proof, error) {
	addr, err := r.Address()
	if err != nil {
		return authority.Proof{}, err
	}
	return authority.PoolAuthorityProof(addr, r.AuthorityBump), nil
}

// MintFor returns the (in, out) mints for a swap direction.
func (r *Record) MintFor(dir types.Direction) (in, out types.Pubkey, err error) {
	switch dir {
	case types.DirectionAToB:
		return r.AssetA, r.AssetB, nil
	case types.DirectionBToA:
		return r.AssetB, r.AssetA, nil
	default:
		return types.Pubkey{}, types.Pubkey{}, fmt.Errorf("unknown direction %d", dir)
	}
}

// Marshal serializes the record to its fixed borsh layout with the account
// discriminator header.
func (r *Record) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(RecordDiscriminator[:])

	enc := bin.NewBorshEncoder(buf)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode pool record: %w", err)
	}

	data := buf.Bytes()
	if len(data) != RecordLen {
		return nil, fmt.Errorf("pool record encoded to %d bytes, want %d", len(data), RecordLen)
	}
	return data, nil
}

// UnmarshalRecord deserializes a pool record, checking the discriminator.
func UnmarshalRecord(data []byte) (*Record, error) {
	if len(data) != RecordLen {
		return nil, fmt.Errorf("pool record is %d bytes, want %d", len(data), RecordLen)
	}
	if !bytes.Equal(data[:8], RecordDiscriminator[:]) {
		return nil, fmt.Errorf("pool record has wrong discriminator")
	}

	var r Record
	dec := bin.NewBorshDecoder(data[8:])
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode pool record: %w", err)
	}
	return &r, nil
}
