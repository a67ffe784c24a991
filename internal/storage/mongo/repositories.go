package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lugondev/go-vaultswap/internal/storage"
)

type mongoPoolRepository struct {
	collection *mongo.Collection
}

func (r *mongoPoolRepository) Save(ctx context.Context, pool *storage.PoolModel) error {
	_, err := r.collection.InsertOne(ctx, pool)
	return err
}

func (r *mongoPoolRepository) FindByAddress(ctx context.Context, address string) (*storage.PoolModel, error) {
	var pool storage.PoolModel
	err := r.collection.FindOne(ctx, bson.M{"address": address}).Decode(&pool)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &pool, nil
}

func (r *mongoPoolRepository) FindByPair(ctx context.Context, assetA, assetB string) (*storage.PoolModel, error) {
	var pool storage.PoolModel
	err := r.collection.FindOne(ctx, bson.M{"asset_a": assetA, "asset_b": assetB}).Decode(&pool)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &pool, nil
}

func (r *mongoPoolRepository) List(ctx context.Context, limit int, offset int) ([]*storage.PoolModel, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset)).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pools []*storage.PoolModel
	if err := cursor.All(ctx, &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

type mongoSettlementRepository struct {
	collection *mongo.Collection
}

func (r *mongoSettlementRepository) Save(ctx context.Context, settlement *storage.SettlementModel) error {
	_, err := r.collection.InsertOne(ctx, settlement)
	return err
}

func (r *mongoSettlementRepository) FindByID(ctx context.Context, id string) (*storage.SettlementModel, error) {
	var settlement storage.SettlementModel
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&settlement)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

func (r *mongoSettlementRepository) FindByUser(ctx context.Context, user string, limit int, offset int) ([]*storage.SettlementModel, error) {
	return r.find(ctx, bson.M{"user": user}, limit, offset)
}

func (r *mongoSettlementRepository) FindByPool(ctx context.Context, pool string, limit int, offset int) ([]*storage.SettlementModel, error) {
	return r.find(ctx, bson.M{"pool": pool}, limit, offset)
}

func (r *mongoSettlementRepository) FindRecent(ctx context.Context, limit int) ([]*storage.SettlementModel, error) {
	return r.find(ctx, bson.M{}, limit, 0)
}

func (r *mongoSettlementRepository) find(ctx context.Context, filter bson.M, limit, offset int) ([]*storage.SettlementModel, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset)).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var settlements []*storage.SettlementModel
	if err := cursor.All(ctx, &settlements); err != nil {
		return nil, err
	}
	return settlements, nil
}
