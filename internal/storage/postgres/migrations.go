package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: `
		CREATE TABLE IF NOT EXISTS pools (
			id TEXT PRIMARY KEY,
			address TEXT UNIQUE NOT NULL,
			admin TEXT NOT NULL,
			asset_a TEXT NOT NULL,
			asset_b TEXT NOT NULL,
			bump SMALLINT NOT NULL,
			authority_bump SMALLINT NOT NULL,
			authority TEXT NOT NULL,
			reserve_a TEXT NOT NULL,
			reserve_b TEXT NOT NULL,
			data BYTEA NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (asset_a, asset_b)
		);
		CREATE INDEX IF NOT EXISTS idx_pools_admin ON pools(admin);

		CREATE TABLE IF NOT EXISTS settlements (
			id TEXT PRIMARY KEY,
			pool TEXT NOT NULL,
			"user" TEXT NOT NULL,
			direction SMALLINT NOT NULL,
			amount_in BIGINT NOT NULL,
			amount_out BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_settlements_pool ON settlements(pool);
		CREATE INDEX IF NOT EXISTS idx_settlements_user ON settlements("user");
		CREATE INDEX IF NOT EXISTS idx_settlements_created_at ON settlements(created_at DESC);
		`,
		Down: `
		DROP TABLE IF EXISTS settlements;
		DROP TABLE IF EXISTS pools;
		`,
	},
}

type Migrator struct {
	pool *pgxpool.Pool
}

func NewMigrator(pool *pgxpool.Pool) *Migrator {
	return &Migrator{pool: pool}
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`
	_, err := m.pool.Exec(ctx, query)
	return err
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	applied := 0
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		if _, err := tx.Exec(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		applied++
	}

	return tx.Commit(ctx)
}
