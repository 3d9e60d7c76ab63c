package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/Anshuman123-dev/Varuna-task/internal/adapters/repository"
	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
	"github.com/Anshuman123-dev/Varuna-task/pkg/logger"
	"github.com/Anshuman123-dev/Varuna-task/pkg/metrics"
)

// MemberAllocation is one ship's outcome in a pool allocation.
type MemberAllocation struct {
	ShipID     string `json:"shipId"`
	AdjustedCB int64  `json:"adjusted"`
	VerifiedCB int64  `json:"verified"`
}

// PoolResult is the outcome of a pool allocation.
type PoolResult struct {
	PoolID  int64              `json:"poolId"`
	Members []MemberAllocation `json:"members"`
}

// AllocatePool redistributes the members' adjusted balances so that
// deficits are covered by surpluses, then persists the pool and each
// member's verified CB atomically.
//
// The transfer is a greedy bipartite pass with a deterministic order:
// deficit members are served in input order, and each draws from surplus
// members sorted by available surplus descending (ties broken by ship id
// ascending). Feasibility, not optimality, is the objective.
//
// The pool is rejected outright when the aggregate adjusted balance is
// negative, or when any member would exit worse off than it entered.
func (e *Engine) AllocatePool(ctx context.Context, year int, members []compliance.PoolMemberRef) (PoolResult, error) {
	if len(members) == 0 {
		metrics.RecordOperationFailure("pool")
		return PoolResult{}, fmt.Errorf("%w: pool requires at least one member", compliance.ErrInputValidation)
	}

	ships := make([]string, len(members))
	for i, m := range members {
		ships[i] = m.ShipID
	}
	unlock := e.locks.LockAll(ships)
	defer unlock()

	type allocation struct {
		shipID   string
		year     int
		adjusted int64
		verified int64
	}

	allocations := make([]*allocation, 0, len(members))
	var sum int64
	for _, m := range members {
		rec, err := e.compliance.GetBase(ctx, m.ShipID, m.Year)
		if err != nil {
			return PoolResult{}, err
		}
		var adjusted int64
		if rec != nil {
			adjusted = rec.AdjustedOrBase()
		}
		allocations = append(allocations, &allocation{
			shipID:   m.ShipID,
			year:     m.Year,
			adjusted: adjusted,
			verified: adjusted,
		})
		sum += adjusted
	}

	if sum < 0 {
		metrics.RecordOperationFailure("pool")
		return PoolResult{}, fmt.Errorf("%w: pool adjusted CB sum is %d gCO2eq, must be >= 0", compliance.ErrInvariantViolation, sum)
	}

	var surplus, deficits []*allocation
	for _, a := range allocations {
		switch {
		case a.adjusted > 0:
			surplus = append(surplus, a)
		case a.adjusted < 0:
			deficits = append(deficits, a)
		}
	}
	sort.SliceStable(surplus, func(i, j int) bool {
		if surplus[i].adjusted != surplus[j].adjusted {
			return surplus[i].adjusted > surplus[j].adjusted
		}
		return surplus[i].shipID < surplus[j].shipID
	})

	for _, d := range deficits {
		needed := -d.adjusted
		for _, s := range surplus {
			if needed <= 0 {
				break
			}
			available := s.verified
			if available <= 0 {
				continue
			}
			transfer := available
			if transfer > needed {
				transfer = needed
			}
			s.verified -= transfer
			d.verified += transfer
			needed -= transfer
		}
	}

	for _, a := range allocations {
		if a.adjusted < 0 && a.verified < a.adjusted {
			metrics.RecordOperationFailure("pool")
			return PoolResult{}, fmt.Errorf("%w: ship %s would exit with a worse deficit (%d < %d)",
				compliance.ErrInvariantViolation, a.shipID, a.verified, a.adjusted)
		}
		if a.adjusted >= 0 && a.verified < 0 {
			metrics.RecordOperationFailure("pool")
			return PoolResult{}, fmt.Errorf("%w: ship %s with surplus cannot exit with a deficit",
				compliance.ErrInvariantViolation, a.shipID)
		}
	}

	persisted := make([]repository.PoolAllocation, len(allocations))
	result := make([]MemberAllocation, len(allocations))
	for i, a := range allocations {
		persisted[i] = repository.PoolAllocation{
			ShipID:     a.shipID,
			Year:       a.year,
			AdjustedCB: a.adjusted,
			VerifiedCB: a.verified,
		}
		result[i] = MemberAllocation{ShipID: a.shipID, AdjustedCB: a.adjusted, VerifiedCB: a.verified}
	}

	poolID, err := e.pools.CreatePool(ctx, year, persisted)
	if err != nil {
		return PoolResult{}, err
	}

	metrics.RecordPoolAllocation(len(allocations))
	e.logger.Info(ctx, "pool allocated",
		logger.Int64("poolId", poolID),
		logger.Int("year", year),
		logger.Int("members", len(allocations)),
		logger.Int64("totalAdjusted", sum),
	)
	return PoolResult{PoolID: poolID, Members: result}, nil
}

// Pools lists allocation events, newest first. year == 0 lists all years.
func (e *Engine) Pools(ctx context.Context, year int) ([]compliance.Pool, error) {
	return e.pools.ListPools(ctx, year)
}

// Pool returns one allocation event with its members.
func (e *Engine) Pool(ctx context.Context, poolID int64) (*compliance.Pool, []compliance.PoolMember, error) {
	return e.pools.Get(ctx, poolID)
}
