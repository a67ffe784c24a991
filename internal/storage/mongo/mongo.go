package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lugondev/go-vaultswap/internal/config"
	"github.com/lugondev/go-vaultswap/internal/storage"
)

type MongoRepository struct {
	client         *mongo.Client
	database       *mongo.Database
	pools          *mongo.Collection
	settlements    *mongo.Collection
	poolRepo       storage.PoolRepository
	settlementRepo storage.SettlementRepository
}

func NewMongoRepository(ctx context.Context, cfg *config.MongoDBConfig) (*MongoRepository, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)

	repo := &MongoRepository{
		client:      client,
		database:    database,
		pools:       database.Collection("pools"),
		settlements: database.Collection("settlements"),
	}

	repo.poolRepo = &mongoPoolRepository{collection: repo.pools}
	repo.settlementRepo = &mongoSettlementRepository{collection: repo.settlements}

	if err := repo.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return repo, nil
}

func (r *MongoRepository) createIndexes(ctx context.Context) error {
	indexes := []struct {
		collection *mongo.Collection
		models     []mongo.IndexModel
	}{
		{
			collection: r.pools,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "address", Value: 1}}, Options: options.Index().SetUnique(true)},
				{Keys: bson.D{{Key: "asset_a", Value: 1}, {Key: "asset_b", Value: 1}}, Options: options.Index().SetUnique(true)},
				{Keys: bson.D{{Key: "admin", Value: 1}}},
			},
		},
		{
			collection: r.settlements,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "pool", Value: 1}}},
				{Keys: bson.D{{Key: "user", Value: 1}}},
				{Keys: bson.D{{Key: "created_at", Value: -1}}},
			},
		},
	}

	for _, idx := range indexes {
		if _, err := idx.collection.Indexes().CreateMany(ctx, idx.models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", idx.collection.Name(), err)
		}
	}
	return nil
}

func (r *MongoRepository) Pools() storage.PoolRepository {
	return r.poolRepo
}

func (r *MongoRepository) Settlements() storage.SettlementRepository {
	return r.settlementRepo
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) Close() error {
	return r.client.Disconnect(context.Background())
}
