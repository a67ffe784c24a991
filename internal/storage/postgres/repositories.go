package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lugondev/go-vaultswap/internal/storage"
)

type postgresPoolRepository struct {
	pool *pgxpool.Pool
}

const poolColumns = `id, address, admin, asset_a, asset_b, bump, authority_bump, authority, reserve_a, reserve_b, data, created_at`

func (r *postgresPoolRepository) Save(ctx context.Context, pool *storage.PoolModel) error {
	query := `
		INSERT INTO pools (` + poolColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		pool.ID, pool.Address, pool.Admin, pool.AssetA, pool.AssetB,
		pool.Bump, pool.AuthorityBump, pool.Authority, pool.ReserveA, pool.ReserveB,
		pool.Data, pool.CreatedAt,
	)
	return err
}

func scanPool(row pgx.Row) (*storage.PoolModel, error) {
	var p storage.PoolModel
	err := row.Scan(
		&p.ID, &p.Address, &p.Admin, &p.AssetA, &p.AssetB,
		&p.Bump, &p.AuthorityBump, &p.Authority, &p.ReserveA, &p.ReserveB,
		&p.Data, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPoolRepository) FindByAddress(ctx context.Context, address string) (*storage.PoolModel, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE address = $1`
	return scanPool(r.pool.QueryRow(ctx, query, address))
}

func (r *postgresPoolRepository) FindByPair(ctx context.Context, assetA, assetB string) (*storage.PoolModel, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE asset_a = $1 AND asset_b = $2`
	return scanPool(r.pool.QueryRow(ctx, query, assetA, assetB))
}

func (r *postgresPoolRepository) List(ctx context.Context, limit int, offset int) ([]*storage.PoolModel, error) {
	query := `SELECT ` + poolColumns + ` FROM pools ORDER BY created_at LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []*storage.PoolModel
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

type postgresSettlementRepository struct {
	pool *pgxpool.Pool
}

const settlementColumns = `id, pool, "user", direction, amount_in, amount_out, created_at`

func (r *postgresSettlementRepository) Save(ctx context.Context, settlement *storage.SettlementModel) error {
	query := `
		INSERT INTO settlements (` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		settlement.ID, settlement.Pool, settlement.User, settlement.Direction,
		settlement.AmountIn, settlement.AmountOut, settlement.CreatedAt,
	)
	return err
}

func scanSettlement(row pgx.Row) (*storage.SettlementModel, error) {
	var s storage.SettlementModel
	err := row.Scan(
		&s.ID, &s.Pool, &s.User, &s.Direction, &s.AmountIn, &s.AmountOut, &s.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresSettlementRepository) FindByID(ctx context.Context, id string) (*storage.SettlementModel, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE id = $1`
	return scanSettlement(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresSettlementRepository) FindByUser(ctx context.Context, user string, limit int, offset int) ([]*storage.SettlementModel, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE "user" = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryMany(ctx, query, user, limit, offset)
}

func (r *postgresSettlementRepository) FindByPool(ctx context.Context, pool string, limit int, offset int) ([]*storage.SettlementModel, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE pool = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryMany(ctx, query, pool, limit, offset)
}

func (r *postgresSettlementRepository) FindRecent(ctx context.Context, limit int) ([]*storage.SettlementModel, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements ORDER BY created_at DESC LIMIT $1`
	return r.queryMany(ctx, query, limit)
}

func (r *postgresSettlementRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*storage.SettlementModel, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []*storage.SettlementModel
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}
