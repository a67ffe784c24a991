package pool

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/lugondev/go-vaultswap/internal/authority"
	"github.com/lugondev/go-vaultswap/internal/common"
	"github.com/lugondev/go-vaultswap/internal/errors"
	"github.com/lugondev/go-vaultswap/internal/ledger"
	"github.com/lugondev/go-vaultswap/internal/metrics"
	"github.com/lugondev/go-vaultswap/internal/storage"
	"github.com/lugondev/go-vaultswap/pkg/types"
)

// Reserves holds the two custody accounts allocated for a pool, one per
// asset. Their sole authorized mover is the pool's derived authority.
type Reserves struct {
	A types.Pubkey
	B types.Pubkey
}

// Registry creates pool records and their custody accounts. A pool exists at
// most once per ordered asset pair; the record is immutable after creation.
type Registry struct {
	common.LoggerMixin

	ledger  *ledger.Ledger
	repo    storage.PoolRepository
	metrics metrics.Metrics
}

// NewRegistry creates a registry settling against the given ledger and
// persisting records through the given repository.
func NewRegistry(l *ledger.Ledger, repo storage.PoolRepository) *Registry {
	return &Registry{
		LoggerMixin: common.NewLoggerMixin(),
		ledger:      l,
		repo:        repo,
		metrics:     metrics.NewNoopMetrics(),
	}
}

// SetMetrics attaches a metrics sink.
func (r *Registry) SetMetrics(m metrics.Metrics) {
	if m != nil {
		r.metrics = m
	}
}

// CreatePool derives the pool and authority addresses for the pair, allocates
// the two reserve accounts at the authority's associated token addresses, and
// persists the record. Fails with ErrDuplicatePool if the ordered pair already
// has a pool and with ErrAllocationFailed if either reserve cannot be created.
// A failure after the reserves were allocated releases them again, so a failed
// creation leaves no partial state behind.
func (r *Registry) CreatePool(ctx context.Context, admin, assetA, assetB types.Pubkey) (*Record, Reserves, error) {
	existing, err := r.repo.FindByPair(ctx, assetA.String(), assetB.String())
	if err != nil {
		return nil, Reserves{}, errors.Wrap(err, "failed to look up pool pair")
	}
	if existing != nil {
		return nil, Reserves{}, errors.ErrDuplicatePool.WithDetails(map[string]any{
			"asset_a": assetA.String(),
			"asset_b": assetB.String(),
		})
	}

	poolAddr, bump, err := authority.PoolStateAddress(assetA, assetB)
	if err != nil {
		return nil, Reserves{}, err
	}
	authAddr, authBump, err := authority.PoolAuthorityAddress(poolAddr)
	if err != nil {
		return nil, Reserves{}, err
	}

	record := &Record{
		Admin:         admin,
		AssetA:        assetA,
		AssetB:        assetB,
		Bump:          bump,
		AuthorityBump: authBump,
	}

	reserveA, _, err := solana.FindAssociatedTokenAddress(authAddr, assetA)
	if err != nil {
		return nil, Reserves{}, errors.ErrDerivationFailed.WithCause(err)
	}
	reserveB, _, err := solana.FindAssociatedTokenAddress(authAddr, assetB)
	if err != nil {
		return nil, Reserves{}, errors.ErrDerivationFailed.WithCause(err)
	}

	if err := r.ledger.CreateAccountAt(reserveA, authAddr, assetA); err != nil {
		return nil, Reserves{}, errors.ErrAllocationFailed.WithCause(err)
	}
	if err := r.ledger.CreateAccountAt(reserveB, authAddr, assetB); err != nil {
		r.releaseReserve(reserveA)
		return nil, Reserves{}, errors.ErrAllocationFailed.WithCause(err)
	}
	reserves := Reserves{A: reserveA, B: reserveB}

	data, err := record.Marshal()
	if err != nil {
		r.releaseReserves(reserves)
		return nil, Reserves{}, errors.ErrAllocationFailed.WithCause(err)
	}

	model := &storage.PoolModel{
		ID:            uuid.NewString(),
		Address:       poolAddr.String(),
		Admin:         admin.String(),
		AssetA:        assetA.String(),
		AssetB:        assetB.String(),
		Bump:          bump,
		AuthorityBump: authBump,
		Authority:     authAddr.String(),
		ReserveA:      reserveA.String(),
		ReserveB:      reserveB.String(),
		Data:          data,
		CreatedAt:     time.Now(),
	}
	if err := r.repo.Save(ctx, model); err != nil {
		r.releaseReserves(reserves)
		return nil, Reserves{}, errors.ErrAllocationFailed.WithCause(err)
	}

	_ = r.metrics.IncrementCounter(ctx, metrics.MetricPoolsCreated, 1)
	r.GetLogger().Info("pool created",
		"address", poolAddr.String(),
		"asset_a", assetA.String(),
		"asset_b", assetB.String(),
		"authority", authAddr.String(),
	)
	return record, reserves, nil
}

func (r *Registry) releaseReserves(res Reserves) {
	r.releaseReserve(res.A)
	r.releaseReserve(res.B)
}

func (r *Registry) releaseReserve(addr types.Pubkey) {
	if err := r.ledger.CloseAccount(addr); err != nil {
		r.GetLogger().Warn("failed to release reserve account", "address", addr.String(), "error", err)
	}
}

// FindPool loads the record for an ordered asset pair.
func (r *Registry) FindPool(ctx context.Context, assetA, assetB types.Pubkey) (*Record, Reserves, error) {
	model, err := r.repo.FindByPair(ctx, assetA.String(), assetB.String())
	if err != nil {
		return nil, Reserves{}, errors.Wrap(err, "failed to look up pool pair")
	}
	if model == nil {
		return nil, Reserves{}, errors.ErrPoolNotFound
	}
	return modelToRecord(model)
}

func modelToRecord(model *storage.PoolModel) (*Record, Reserves, error) {
	record, err := UnmarshalRecord(model.Data)
	if err != nil {
		return nil, Reserves{}, errors.Wrap(err, "failed to decode stored pool record")
	}

	a, err := solana.PublicKeyFromBase58(model.ReserveA)
	if err != nil {
		return nil, Reserves{}, errors.Wrap(err, "invalid stored reserve address")
	}
	b, err := solana.PublicKeyFromBase58(model.ReserveB)
	if err != nil {
		return nil, Reserves{}, errors.Wrap(err, "invalid stored reserve address")
	}
	return record, Reserves{A: a, B: b}, nil
}
