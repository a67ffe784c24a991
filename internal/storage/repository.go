// Package storage defines the persistence interfaces for pool records and
// settlement receipts, with interchangeable backends selected by config.
package storage

import (
	"context"
)

// PoolRepository persists pool records. Records are written once at pool
// creation and only read afterwards.
type PoolRepository interface {
	Save(ctx context.Context, pool *PoolModel) error
	FindByAddress(ctx context.Context, address string) (*PoolModel, error)
	FindByPair(ctx context.Context, assetA, assetB string) (*PoolModel, error)
	List(ctx context.Context, limit int, offset int) ([]*PoolModel, error)
}

// SettlementRepository archives swap settlement receipts.
type SettlementRepository interface {
	Save(ctx context.Context, settlement *SettlementModel) error
	FindByID(ctx context.Context, id string) (*SettlementModel, error)
	FindByUser(ctx context.Context, user string, limit int, offset int) ([]*SettlementModel, error)
	FindByPool(ctx context.Context, pool string, limit int, offset int) ([]*SettlementModel, error)
	FindRecent(ctx context.Context, limit int) ([]*SettlementModel, error)
}

// Repository bundles the repositories behind one backend connection.
type Repository interface {
	Pools() PoolRepository
	Settlements() SettlementRepository
	Ping(ctx context.Context) error
	Close() error
}
