// Package engine settles swaps against a pool: it validates the request,
// re-proves the pool's custody authority, and drives the two transfer legs
// through the ledger as one atomic unit.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lugondev/go-vaultswap/internal/authority"
	"github.com/lugondev/go-vaultswap/internal/common"
	"github.com/lugondev/go-vaultswap/internal/errors"
	"github.com/lugondev/go-vaultswap/internal/ledger"
	"github.com/lugondev/go-vaultswap/internal/metrics"
	"github.com/lugondev/go-vaultswap/internal/pool"
	"github.com/lugondev/go-vaultswap/internal/storage"
	"github.com/lugondev/go-vaultswap/pkg/types"
)

// Request carries one swap. The caller asserts that the four concrete
// accounts correspond to the direction flag; the ledger's mint checks on each
// leg are the only cross-validation performed.
type Request struct {
	Pool *pool.Record

	// User is the requesting identity. Its signature authorizes leg 1.
	User types.Pubkey

	AmountIn  uint64
	Direction types.Direction

	// Authority is the caller-supplied authority account. It is checked
	// against re-derivation on every swap, never trusted.
	Authority types.Pubkey

	UserSource         types.Pubkey
	UserDestination    types.Pubkey
	ReserveSource      types.Pubkey
	ReserveDestination types.Pubkey

	SourceMint      types.Pubkey
	DestinationMint types.Pubkey
}

// Settlement is the receipt emitted for a successful swap.
type Settlement struct {
	ID        string
	Pool      types.Pubkey
	User      types.Pubkey
	Direction types.Direction
	AmountIn  uint64
	AmountOut uint64
	SettledAt time.Time
}

// Engine validates and settles swaps. It reads pool records, never mutates
// them, and holds no state of its own between swaps.
type Engine struct {
	common.LoggerMixin

	ledger  *ledger.Ledger
	rate    RatePolicy
	metrics metrics.Metrics
	archive storage.SettlementRepository
}

// NewEngine creates an engine settling against the given ledger with the
// parity rate policy.
func NewEngine(l *ledger.Ledger) *Engine {
	return &Engine{
		LoggerMixin: common.NewLoggerMixin(),
		ledger:      l,
		rate:        ParityRate{},
		metrics:     metrics.NewNoopMetrics(),
	}
}

// SetRatePolicy replaces the pricing policy.
func (e *Engine) SetRatePolicy(rate RatePolicy) {
	if rate != nil {
		e.rate = rate
	}
}

// SetMetrics attaches a metrics sink.
func (e *Engine) SetMetrics(m metrics.Metrics) {
	if m != nil {
		e.metrics = m
	}
}

// SetArchive attaches a repository that settlements are archived to after
// they commit. Archive failures are logged, not surfaced: the swap has
// already settled on the ledger.
func (e *Engine) SetArchive(repo storage.SettlementRepository) {
	e.archive = repo
}

// Swap settles one swap. The sequence is linear: validate amount, validate
// liquidity, re-prove the authority, collect leg 1, disburse leg 2, emit the
// receipt. Any failure aborts the whole operation with both legs unwound.
func (e *Engine) Swap(ctx context.Context, req Request) (*Settlement, error) {
	if req.AmountIn == 0 {
		return nil, e.reject(ctx, errors.ErrInvalidAmount)
	}
	if !req.Direction.Valid() {
		return nil, e.reject(ctx, errors.ErrInvalidDirection)
	}

	amountOut := e.rate.Rate(req.SourceMint, req.DestinationMint, req.AmountIn)

	reserveBalance, err := e.ledger.Balance(req.ReserveDestination)
	if err != nil {
		return nil, e.reject(ctx, err)
	}
	if reserveBalance < amountOut {
		return nil, e.reject(ctx, errors.ErrInsufficientLiquidity.WithDetails(map[string]any{
			"reserve":   req.ReserveDestination.String(),
			"balance":   reserveBalance,
			"requested": amountOut,
		}))
	}

	poolAddr, err := req.Pool.Address()
	if err != nil {
		return nil, e.reject(ctx, err)
	}
	derived, err := authority.DeriveWithBump(req.Pool.AuthorityBump,
		[]byte(authority.PoolAuthoritySeed), poolAddr.Bytes())
	if err != nil {
		return nil, e.reject(ctx, err)
	}
	if !derived.Equals(req.Authority) {
		return nil, e.reject(ctx, errors.ErrAuthorityMismatch.WithDetails(map[string]any{
			"supplied": req.Authority.String(),
			"derived":  derived.String(),
		}))
	}

	proof := authority.PoolAuthorityProof(poolAddr, req.Pool.AuthorityBump)

	err = e.ledger.Atomically(func(tx *ledger.Tx) error {
		if err := tx.Transfer(req.UserSource, req.ReserveSource, req.SourceMint,
			req.AmountIn, ledger.UserSignature{Signer: req.User}); err != nil {
			return err
		}
		return tx.Transfer(req.ReserveDestination, req.UserDestination, req.DestinationMint,
			amountOut, ledger.AuthorityProof{Proof: proof})
	})
	if err != nil {
		return nil, e.reject(ctx, err)
	}

	settlement := &Settlement{
		ID:        uuid.NewString(),
		Pool:      poolAddr,
		User:      req.User,
		Direction: req.Direction,
		AmountIn:  req.AmountIn,
		AmountOut: amountOut,
		SettledAt: time.Now(),
	}
	e.emit(ctx, req, settlement)
	return settlement, nil
}

// SwapAForB settles a swap of asset A into the pool for asset B out.
func (e *Engine) SwapAForB(ctx context.Context, req Request) (*Settlement, error) {
	req.Direction = types.DirectionAToB
	return e.Swap(ctx, req)
}

// SwapBForA settles a swap of asset B into the pool for asset A out.
func (e *Engine) SwapBForA(ctx context.Context, req Request) (*Settlement, error) {
	req.Direction = types.DirectionBToA
	return e.Swap(ctx, req)
}

func (e *Engine) reject(ctx context.Context, err error) error {
	_ = e.metrics.IncrementCounter(ctx, metrics.MetricSwapsRejected, 1)
	return err
}

func (e *Engine) emit(ctx context.Context, req Request, s *Settlement) {
	e.GetLogger().Info("swap settled",
		"id", s.ID,
		"pool", s.Pool.String(),
		"user", s.User.String(),
		"direction", s.Direction.String(),
		"amount_in", s.AmountIn,
		"amount_out", s.AmountOut,
	)

	_ = e.metrics.IncrementCounter(ctx, metrics.MetricSwapsSettled, 1)
	_ = e.metrics.IncrementCounter(ctx, metrics.MetricSwapVolume, s.AmountIn)
	_ = e.metrics.RecordHistogram(ctx, metrics.MetricSwapAmountIn, float64(s.AmountIn))
	reserveA, reserveB := req.ReserveSource, req.ReserveDestination
	if req.Direction == types.DirectionBToA {
		reserveA, reserveB = reserveB, reserveA
	}
	if balance, err := e.ledger.Balance(reserveA); err == nil {
		_ = e.metrics.UpdateGauge(ctx, metrics.MetricReserveBalanceA, float64(balance))
	}
	if balance, err := e.ledger.Balance(reserveB); err == nil {
		_ = e.metrics.UpdateGauge(ctx, metrics.MetricReserveBalanceB, float64(balance))
	}

	if e.archive != nil {
		model := &storage.SettlementModel{
			ID:        s.ID,
			Pool:      s.Pool.String(),
			User:      s.User.String(),
			Direction: uint8(s.Direction),
			AmountIn:  s.AmountIn,
			AmountOut: s.AmountOut,
			CreatedAt: s.SettledAt,
		}
		if err := e.archive.Save(ctx, model); err != nil {
			e.GetLogger().Warn("failed to archive settlement", "id", s.ID, "error", err)
		}
	}
}
