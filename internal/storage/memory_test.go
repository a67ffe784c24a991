package storage

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func newPoolModel(i int) *PoolModel {
	return &PoolModel{
		ID:        fmt.Sprintf("pool-%d", i),
		Address:   fmt.Sprintf("addr-%d", i),
		Admin:     "admin",
		AssetA:    fmt.Sprintf("mint-a-%d", i),
		AssetB:    fmt.Sprintf("mint-b-%d", i),
		CreatedAt: time.Unix(int64(i), 0),
	}
}

func TestMemoryPoolRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	pools := repo.Pools()

	for i := 0; i < 3; i++ {
		if err := pools.Save(ctx, newPoolModel(i)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	found, err := pools.FindByAddress(ctx, "addr-1")
	if err != nil {
		t.Fatalf("FindByAddress failed: %v", err)
	}
	if found == nil || found.ID != "pool-1" {
		t.Errorf("FindByAddress = %+v, want pool-1", found)
	}

	found, err = pools.FindByPair(ctx, "mint-a-2", "mint-b-2")
	if err != nil {
		t.Fatalf("FindByPair failed: %v", err)
	}
	if found == nil || found.ID != "pool-2" {
		t.Errorf("FindByPair = %+v, want pool-2", found)
	}

	missing, err := pools.FindByPair(ctx, "mint-b-2", "mint-a-2")
	if err != nil {
		t.Fatalf("FindByPair failed: %v", err)
	}
	if missing != nil {
		t.Error("FindByPair with swapped order should not match")
	}

	all, err := pools.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List returned %d pools, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.Before(all[i-1].CreatedAt) {
			t.Error("List is not ordered by creation time")
		}
	}

	page, err := pools.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != "pool-1" {
		t.Errorf("List(1, 1) = %+v, want just pool-1", page)
	}
}

func TestMemorySettlementRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	settlements := repo.Settlements()

	for i := 0; i < 5; i++ {
		user := "alice"
		if i%2 == 1 {
			user = "bob"
		}
		s := &SettlementModel{
			ID:        fmt.Sprintf("s-%d", i),
			Pool:      "pool-0",
			User:      user,
			Direction: 1,
			AmountIn:  uint64(i),
			AmountOut: uint64(i),
			CreatedAt: time.Unix(int64(i), 0),
		}
		if err := settlements.Save(ctx, s); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	found, err := settlements.FindByID(ctx, "s-3")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found == nil || found.User != "bob" {
		t.Errorf("FindByID = %+v, want s-3 by bob", found)
	}

	byUser, err := settlements.FindByUser(ctx, "alice", 10, 0)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if len(byUser) != 3 {
		t.Errorf("FindByUser(alice) returned %d, want 3", len(byUser))
	}

	byPool, err := settlements.FindByPool(ctx, "pool-0", 2, 0)
	if err != nil {
		t.Fatalf("FindByPool failed: %v", err)
	}
	if len(byPool) != 2 {
		t.Errorf("FindByPool limit 2 returned %d", len(byPool))
	}

	recent, err := settlements.FindRecent(ctx, 2)
	if err != nil {
		t.Fatalf("FindRecent failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "s-4" {
		t.Errorf("FindRecent = %+v, want newest first", recent)
	}
}
