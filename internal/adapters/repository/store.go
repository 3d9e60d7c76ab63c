// Package repository defines the persistence contracts for compliance
// records, the banking ledger, pools and routes, plus their SQLite
// implementation.
package repository

import (
	"context"

	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

// ComplianceStore provides read/write access to ship-year compliance state.
type ComplianceStore interface {
	// UpsertBase inserts or replaces the formula-derived fields of a
	// record, keyed by (shipID, year). Adjusted/verified/penalty fields of
	// an existing row are preserved only insofar as the caller re-derives
	// them; the base figures always win.
	UpsertBase(ctx context.Context, shipID string, year int, ghgiActual, totalEnergyMJ float64, baseCB int64) error

	// GetBase returns the record for (shipID, year), or nil if absent.
	GetBase(ctx context.Context, shipID string, year int) (*compliance.Record, error)

	// SetAdjusted, SetVerified and SetPenalty update a single derived
	// column. A missing row updates nothing and is not an error.
	SetAdjusted(ctx context.Context, shipID string, year int, adjusted int64) error
	SetVerified(ctx context.Context, shipID string, year int, verified int64) error
	SetPenalty(ctx context.Context, shipID string, year int, penaltyEUR float64) error

	// ListByShipUpTo returns all records for the ship with record year <=
	// year, ordered by year descending. Feeds the consecutive-deficit walk.
	ListByShipUpTo(ctx context.Context, shipID string, year int) ([]compliance.Record, error)

	DistinctShips(ctx context.Context) ([]string, error)
	DistinctYears(ctx context.Context) ([]int, error)
}

// BankStore manages the ship-scoped ledger of banked surplus.
type BankStore interface {
	// TotalAvailable sums the remaining balance across all of the ship's
	// entries. Zero if none exist.
	TotalAvailable(ctx context.Context, shipID string) (int64, error)

	// List returns the ship's entries, newest vintage first.
	List(ctx context.Context, shipID string) ([]compliance.BankEntry, error)

	// Bank creates a new entry with remaining == amount.
	Bank(ctx context.Context, shipID string, yearBanked int, amount int64) error

	// HasAlreadyBanked reports whether an entry exists for (shipID, year).
	HasAlreadyBanked(ctx context.Context, shipID string, year int) (bool, error)

	// ConsumeBanked drains up to amount grams from the ship's entries,
	// oldest year_banked first, and returns the total actually consumed.
	// It never fails on shortfall; callers validate against TotalAvailable
	// before consuming.
	ConsumeBanked(ctx context.Context, shipID string, amount int64) (int64, error)
}

// PoolAllocation is one member's outcome as computed by the allocator,
// handed to the store for atomic persistence.
type PoolAllocation struct {
	ShipID     string
	Year       int
	AdjustedCB int64
	VerifiedCB int64
}

// PoolStore persists allocation events.
type PoolStore interface {
	// CreatePool inserts the pool, its member rows, and each member's
	// verified CB update in a single transaction. Partial persistence is
	// never visible.
	CreatePool(ctx context.Context, year int, members []PoolAllocation) (int64, error)

	// ListPools returns pools, newest first. year == 0 lists all years.
	ListPools(ctx context.Context, year int) ([]compliance.Pool, error)

	// Get returns a pool and its members. ErrPoolNotFound if absent.
	Get(ctx context.Context, poolID int64) (*compliance.Pool, []compliance.PoolMember, error)
}

// RouteStore persists voyage scenarios.
type RouteStore interface {
	ListRoutes(ctx context.Context) ([]compliance.Route, error)
	CreateRoute(ctx context.Context, r compliance.Route) (int64, error)

	// SetBaseline marks exactly one route as the comparison baseline.
	SetBaseline(ctx context.Context, id int64) error
}
