package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lugondev/go-vaultswap/internal/config"
	"github.com/lugondev/go-vaultswap/internal/engine"
	"github.com/lugondev/go-vaultswap/internal/ledger"
	"github.com/lugondev/go-vaultswap/internal/metrics"
	"github.com/lugondev/go-vaultswap/internal/pool"
	"github.com/lugondev/go-vaultswap/internal/storage"
	"github.com/lugondev/go-vaultswap/pkg/types"

	// Register the pluggable storage backends.
	_ "github.com/lugondev/go-vaultswap/internal/storage/mongo"
	_ "github.com/lugondev/go-vaultswap/internal/storage/postgres"
)

// vaultWorld wires a ledger, registry, and engine against the configured
// storage backend, seeded from the genesis manifest.
type vaultWorld struct {
	cfg      *config.Config
	logger   *slog.Logger
	ledger   *ledger.Ledger
	world    *ledger.World
	repo     storage.Repository
	registry *pool.Registry
	engine   *engine.Engine
	conn     *storage.ConnectionManager
	metrics  *metrics.Collection
}

func buildWorld(ctx context.Context) (*vaultWorld, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	conn, err := storage.NewConnectionManager(&cfg.Database)
	if err != nil {
		return nil, err
	}
	repo, err := conn.Connect(ctx)
	if err != nil {
		return nil, err
	}

	l := ledger.New()
	l.SetLogger(logger)

	world := &ledger.World{
		Mints:    map[string]types.Pubkey{},
		Users:    map[string]types.Pubkey{},
		Accounts: map[string]types.Pubkey{},
	}
	if _, err := os.Stat(cfg.Ledger.Genesis); err == nil {
		genesis, err := ledger.LoadGenesis(cfg.Ledger.Genesis)
		if err != nil {
			return nil, err
		}
		world, err = genesis.Apply(l)
		if err != nil {
			return nil, err
		}
	}

	sink := metrics.NewCollection(metrics.NewLogMetrics(logger))
	if err := sink.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	registry := pool.NewRegistry(l, repo.Pools())
	registry.SetLogger(logger)
	registry.SetMetrics(sink)

	eng := engine.NewEngine(l)
	eng.SetLogger(logger)
	eng.SetMetrics(sink)
	eng.SetArchive(repo.Settlements())

	return &vaultWorld{
		cfg:      cfg,
		logger:   logger,
		ledger:   l,
		world:    world,
		repo:     repo,
		registry: registry,
		engine:   eng,
		conn:     conn,
		metrics:  sink,
	}, nil
}

func (w *vaultWorld) Close() {
	ctx := context.Background()
	if err := w.metrics.Flush(ctx); err != nil {
		w.logger.Warn("failed to flush metrics", "error", err)
	}
	if err := w.metrics.Shutdown(ctx); err != nil {
		w.logger.Warn("failed to shut down metrics", "error", err)
	}
	if err := w.conn.Close(); err != nil {
		w.logger.Warn("failed to close storage", "error", err)
	}
}

func (w *vaultWorld) mint(name string) (pk types.Pubkey, err error) {
	m, ok := w.world.Mints[name]
	if !ok {
		return pk, fmt.Errorf("mint %q is not declared in the genesis manifest", name)
	}
	return m, nil
}

func (w *vaultWorld) user(name string) (pk types.Pubkey, err error) {
	u, ok := w.world.Users[name]
	if !ok {
		return pk, fmt.Errorf("user %q is not declared in the genesis manifest", name)
	}
	return u, nil
}

func (w *vaultWorld) account(user, mint string) (pk types.Pubkey, err error) {
	a, ok := w.world.Accounts[ledger.AccountKey(user, mint)]
	if !ok {
		return pk, fmt.Errorf("no seeded account for %s/%s in the genesis manifest", user, mint)
	}
	return a, nil
}
