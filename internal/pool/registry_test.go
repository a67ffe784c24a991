package pool

import (
	"context"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-vaultswap/internal/authority"
	"github.com/lugondev/go-vaultswap/internal/errors"
	"github.com/lugondev/go-vaultswap/internal/ledger"
	"github.com/lugondev/go-vaultswap/internal/storage"
	"github.com/lugondev/go-vaultswap/pkg/types"
)

func newTestRegistry(t *testing.T) (*Registry, *ledger.Ledger) {
	t.Helper()

	l := ledger.New()
	repo := storage.NewMemoryRepository()
	return NewRegistry(l, repo.Pools()), l
}

func TestCreatePool(t *testing.T) {
	ctx := context.Background()
	registry, l := newTestRegistry(t)

	admin := solana.NewWallet().PublicKey()
	assetA := l.CreateMint(6)
	assetB := l.CreateMint(6)

	record, reserves, err := registry.CreatePool(ctx, admin, assetA, assetB)
	if err != nil {
		t.Fatalf("CreatePool failed: %v", err)
	}

	if !record.Admin.Equals(admin) {
		t.Errorf("record admin = %s, want %s", record.Admin, admin)
	}
	if !record.AssetA.Equals(assetA) || !record.AssetB.Equals(assetB) {
		t.Error("record assets do not match creation order")
	}

	auth, err := record.Authority()
	if err != nil {
		t.Fatalf("Authority failed: %v", err)
	}

	acctA, err := l.Account(reserves.A)
	if err != nil {
		t.Fatalf("reserve A missing: %v", err)
	}
	if !acctA.Owner.Equals(auth) {
		t.Errorf("reserve A owner = %s, want authority %s", acctA.Owner, auth)
	}
	if !acctA.Mint.Equals(assetA) {
		t.Errorf("reserve A mint = %s, want %s", acctA.Mint, assetA)
	}

	acctB, err := l.Account(reserves.B)
	if err != nil {
		t.Fatalf("reserve B missing: %v", err)
	}
	if !acctB.Owner.Equals(auth) {
		t.Errorf("reserve B owner = %s, want authority %s", acctB.Owner, auth)
	}
	if !acctB.Mint.Equals(assetB) {
		t.Errorf("reserve B mint = %s, want %s", acctB.Mint, assetB)
	}

	wantA, _, err := solana.FindAssociatedTokenAddress(auth, assetA)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress failed: %v", err)
	}
	wantB, _, err := solana.FindAssociatedTokenAddress(auth, assetB)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress failed: %v", err)
	}
	if !reserves.A.Equals(wantA) || !reserves.B.Equals(wantB) {
		t.Error("reserves are not at the authority's associated token addresses")
	}
}

func TestCreatePoolRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	registry, l := newTestRegistry(t)

	admin := solana.NewWallet().PublicKey()
	assetA := l.CreateMint(6)
	assetB := l.CreateMint(6)

	if _, _, err := registry.CreatePool(ctx, admin, assetA, assetB); err != nil {
		t.Fatalf("first CreatePool failed: %v", err)
	}

	_, _, err := registry.CreatePool(ctx, admin, assetA, assetB)
	if !errors.Is(err, errors.ErrDuplicatePool) {
		t.Errorf("second CreatePool error = %v, want %v", err, errors.ErrDuplicatePool)
	}
}

func TestCreatePoolFailsForUnknownMint(t *testing.T) {
	ctx := context.Background()
	registry, l := newTestRegistry(t)

	admin := solana.NewWallet().PublicKey()
	assetA := l.CreateMint(6)
	unknown := solana.NewWallet().PublicKey()

	_, _, err := registry.CreatePool(ctx, admin, assetA, unknown)
	if !errors.Is(err, errors.ErrAllocationFailed) {
		t.Errorf("CreatePool error = %v, want %v", err, errors.ErrAllocationFailed)
	}

	// The reserve allocated for the known mint must have been released.
	reserveA := expectedReserve(t, assetA, unknown, assetA)
	if _, err := l.Account(reserveA); !errors.Is(err, errors.ErrAccountNotFound) {
		t.Errorf("reserve A survived a failed creation: err = %v", err)
	}
}

// expectedReserve derives the associated token address a pool for (assetA,
// assetB) would place its reserve of mint at.
func expectedReserve(t *testing.T, assetA, assetB, mint types.Pubkey) types.Pubkey {
	t.Helper()

	poolAddr, _, err := authority.PoolStateAddress(assetA, assetB)
	if err != nil {
		t.Fatalf("PoolStateAddress failed: %v", err)
	}
	authAddr, _, err := authority.PoolAuthorityAddress(poolAddr)
	if err != nil {
		t.Fatalf("PoolAuthorityAddress failed: %v", err)
	}
	reserve, _, err := solana.FindAssociatedTokenAddress(authAddr, mint)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress failed: %v", err)
	}
	return reserve
}

type brokenPoolRepo struct {
	storage.PoolRepository
}

func (brokenPoolRepo) Save(ctx context.Context, pool *storage.PoolModel) error {
	return fmt.Errorf("write refused")
}

func TestCreatePoolReleasesReservesOnSaveFailure(t *testing.T) {
	ctx := context.Background()

	l := ledger.New()
	repo := storage.NewMemoryRepository()
	registry := NewRegistry(l, brokenPoolRepo{PoolRepository: repo.Pools()})

	admin := solana.NewWallet().PublicKey()
	assetA := l.CreateMint(6)
	assetB := l.CreateMint(6)

	_, _, err := registry.CreatePool(ctx, admin, assetA, assetB)
	if !errors.Is(err, errors.ErrAllocationFailed) {
		t.Fatalf("CreatePool error = %v, want %v", err, errors.ErrAllocationFailed)
	}

	for _, mint := range []types.Pubkey{assetA, assetB} {
		reserve := expectedReserve(t, assetA, assetB, mint)
		if _, err := l.Account(reserve); !errors.Is(err, errors.ErrAccountNotFound) {
			t.Errorf("reserve for %s survived a failed creation: err = %v", mint, err)
		}
	}

	// With a working repository the same pair can be created cleanly.
	working := NewRegistry(l, repo.Pools())
	if _, _, err := working.CreatePool(ctx, admin, assetA, assetB); err != nil {
		t.Errorf("CreatePool after cleaned-up failure: %v", err)
	}
}

func TestFindPoolRoundTrip(t *testing.T) {
	ctx := context.Background()
	registry, l := newTestRegistry(t)

	admin := solana.NewWallet().PublicKey()
	assetA := l.CreateMint(6)
	assetB := l.CreateMint(6)

	created, createdReserves, err := registry.CreatePool(ctx, admin, assetA, assetB)
	if err != nil {
		t.Fatalf("CreatePool failed: %v", err)
	}

	found, foundReserves, err := registry.FindPool(ctx, assetA, assetB)
	if err != nil {
		t.Fatalf("FindPool failed: %v", err)
	}
	if *found != *created {
		t.Errorf("FindPool record = %+v, want %+v", found, created)
	}
	if !foundReserves.A.Equals(createdReserves.A) || !foundReserves.B.Equals(createdReserves.B) {
		t.Error("FindPool reserves do not match creation")
	}

	_, _, err = registry.FindPool(ctx, assetB, assetA)
	if !errors.Is(err, errors.ErrPoolNotFound) {
		t.Errorf("FindPool with swapped pair error = %v, want %v", err, errors.ErrPoolNotFound)
	}
}
