package storage

import (
	"time"
)

// PoolModel is the persisted form of a pool record plus the reserve
// addresses allocated for it at creation.
type PoolModel struct {
	ID            string    `json:"id" bson:"_id,omitempty" db:"id"`
	Address       string    `json:"address" bson:"address" db:"address"`
	Admin         string    `json:"admin" bson:"admin" db:"admin"`
	AssetA        string    `json:"asset_a" bson:"asset_a" db:"asset_a"`
	AssetB        string    `json:"asset_b" bson:"asset_b" db:"asset_b"`
	Bump          uint8     `json:"bump" bson:"bump" db:"bump"`
	AuthorityBump uint8     `json:"authority_bump" bson:"authority_bump" db:"authority_bump"`
	Authority     string    `json:"authority" bson:"authority" db:"authority"`
	ReserveA      string    `json:"reserve_a" bson:"reserve_a" db:"reserve_a"`
	ReserveB      string    `json:"reserve_b" bson:"reserve_b" db:"reserve_b"`
	Data          []byte    `json:"data" bson:"data" db:"data"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// SettlementModel is the archived receipt of one successful swap.
type SettlementModel struct {
	ID        string    `json:"id" bson:"_id,omitempty" db:"id"`
	Pool      string    `json:"pool" bson:"pool" db:"pool"`
	User      string    `json:"user" bson:"user" db:"user"`
	Direction uint8     `json:"direction" bson:"direction" db:"direction"`
	AmountIn  uint64    `json:"amount_in" bson:"amount_in" db:"amount_in"`
	AmountOut uint64    `json:"amount_out" bson:"amount_out" db:"amount_out"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}
