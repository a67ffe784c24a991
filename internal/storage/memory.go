package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-process Repository used by default and in tests.
type MemoryRepository struct {
	mu          sync.RWMutex
	pools       map[string]*PoolModel // keyed by address
	settlements []*SettlementModel
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pools: make(map[string]*PoolModel),
	}
}

func (m *MemoryRepository) Pools() PoolRepository             { return (*memoryPoolRepository)(m) }
func (m *MemoryRepository) Settlements() SettlementRepository { return (*memorySettlementRepository)(m) }
func (m *MemoryRepository) Ping(ctx context.Context) error    { return nil }
func (m *MemoryRepository) Close() error                      { return nil }

type memoryPoolRepository MemoryRepository

func (r *memoryPoolRepository) Save(ctx context.Context, pool *PoolModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *pool
	r.pools[pool.Address] = &cp
	return nil
}

func (r *memoryPoolRepository) FindByAddress(ctx context.Context, address string) (*PoolModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pools[address]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memoryPoolRepository) FindByPair(ctx context.Context, assetA, assetB string) (*PoolModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pools {
		if p.AssetA == assetA && p.AssetB == assetB {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryPoolRepository) List(ctx context.Context, limit int, offset int) ([]*PoolModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*PoolModel, 0, len(r.pools))
	for _, p := range r.pools {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

type memorySettlementRepository MemoryRepository

func (r *memorySettlementRepository) Save(ctx context.Context, settlement *SettlementModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *settlement
	r.settlements = append(r.settlements, &cp)
	return nil
}

func (r *memorySettlementRepository) FindByID(ctx context.Context, id string) (*SettlementModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.settlements {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memorySettlementRepository) FindByUser(ctx context.Context, user string, limit int, offset int) ([]*SettlementModel, error) {
	return r.filter(func(s *SettlementModel) bool { return s.User == user }, limit, offset)
}

func (r *memorySettlementRepository) FindByPool(ctx context.Context, pool string, limit int, offset int) ([]*SettlementModel, error) {
	return r.filter(func(s *SettlementModel) bool { return s.Pool == pool }, limit, offset)
}

func (r *memorySettlementRepository) FindRecent(ctx context.Context, limit int) ([]*SettlementModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*SettlementModel, 0, limit)
	for i := len(r.settlements) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		cp := *r.settlements[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memorySettlementRepository) filter(keep func(*SettlementModel) bool, limit, offset int) ([]*SettlementModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*SettlementModel
	for _, s := range r.settlements {
		if keep(s) {
			cp := *s
			matched = append(matched, &cp)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}
