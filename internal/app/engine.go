// Package app provides the settlement engine orchestrating the compliance
// formulas, the banking ledger and the pool allocator over the persistence
// stores.
package app

import (
	"context"
	"fmt"

	"github.com/Anshuman123-dev/Varuna-task/internal/adapters/repository"
	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
	"github.com/Anshuman123-dev/Varuna-task/internal/domain/formula"
	"github.com/Anshuman123-dev/Varuna-task/pkg/logger"
	"github.com/Anshuman123-dev/Varuna-task/pkg/metrics"
)

// Engine implements the compliance balance and settlement operations.
// All mutations of a ship's state run under that ship's lock.
type Engine struct {
	compliance repository.ComplianceStore
	banking    repository.BankStore
	pools      repository.PoolStore
	routes     repository.RouteStore

	locks  *keyedMutex
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New constructs an Engine over the given stores.
func New(cs repository.ComplianceStore, bs repository.BankStore, ps repository.PoolStore, rs repository.RouteStore, opts ...Option) *Engine {
	e := &Engine{
		compliance: cs,
		banking:    bs,
		pools:      ps,
		routes:     rs,
		locks:      newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get()
	}
	return e
}

// CalculationResult is the outcome of a compliance calculation.
type CalculationResult struct {
	GHGIActual        float64 `json:"ghgiActual"`
	TotalEnergyMJ     float64 `json:"totalEnergyMJ"`
	ComplianceBalance int64   `json:"complianceBalanceGCO2eq"`
	PenaltyEUR        int64   `json:"penalty_eur"`
}

// CalculateCompliance runs the formula pipeline for a ship-year, persists
// the base figures, and computes the resulting penalty as a convenience.
func (e *Engine) CalculateCompliance(ctx context.Context, shipID string, year int, fuels []formula.FuelInput, opsEnergyMJ float64) (CalculationResult, error) {
	if err := formula.ValidateFuels(fuels); err != nil {
		metrics.RecordOperationFailure("calculate")
		return CalculationResult{}, fmt.Errorf("%w: %s", compliance.ErrInputValidation, err)
	}
	if opsEnergyMJ < 0 {
		metrics.RecordOperationFailure("calculate")
		return CalculationResult{}, fmt.Errorf("%w: opsEnergyMJ must not be negative", compliance.ErrInputValidation)
	}

	unlock := e.locks.Lock(shipID)
	defer unlock()

	target := formula.GHGITarget(year)
	energy := formula.TotalEnergyMJ(fuels, opsEnergyMJ)
	actual := formula.GHGIActual(fuels, energy)
	balance := formula.ComplianceBalance(target, actual, energy)

	if err := e.compliance.UpsertBase(ctx, shipID, year, actual, energy, balance); err != nil {
		return CalculationResult{}, err
	}

	penalty, err := e.penaltyLocked(ctx, shipID, year)
	if err != nil {
		return CalculationResult{}, err
	}

	metrics.RecordCalculation()
	e.logger.Info(ctx, "compliance calculated",
		logger.String("shipId", shipID),
		logger.Int("year", year),
		logger.Float64("ghgiActual", actual),
		logger.Int64("balance", balance),
	)

	return CalculationResult{
		GHGIActual:        actual,
		TotalEnergyMJ:     energy,
		ComplianceBalance: balance,
		PenaltyEUR:        penalty.PenaltyEUR,
	}, nil
}

// AdjustedResult is the outcome of an adjusted-CB computation.
type AdjustedResult struct {
	BaseCB        int64 `json:"baseCB"`
	BankedSurplus int64 `json:"bankedSurplus"`
	AdjustedCB    int64 `json:"adjustedCB"`
}

// ComputeAdjustedCB snapshots base CB plus all currently available banked
// surplus into the record's adjusted CB. The ledger is ship-scoped, not
// year-scoped: every unconsumed vintage counts.
func (e *Engine) ComputeAdjustedCB(ctx context.Context, shipID string, year int) (AdjustedResult, error) {
	unlock := e.locks.Lock(shipID)
	defer unlock()

	var base int64
	rec, err := e.compliance.GetBase(ctx, shipID, year)
	if err != nil {
		return AdjustedResult{}, err
	}
	if rec != nil {
		base = rec.BaseCB
	}

	banked, err := e.banking.TotalAvailable(ctx, shipID)
	if err != nil {
		return AdjustedResult{}, err
	}

	adjusted := base + banked
	if err := e.compliance.SetAdjusted(ctx, shipID, year, adjusted); err != nil {
		return AdjustedResult{}, err
	}
	return AdjustedResult{BaseCB: base, BankedSurplus: banked, AdjustedCB: adjusted}, nil
}

// TotalBankedSurplus returns the ship's currently available banked surplus.
func (e *Engine) TotalBankedSurplus(ctx context.Context, shipID string) (int64, error) {
	return e.banking.TotalAvailable(ctx, shipID)
}

// BankEntries returns the ship's banking ledger, newest vintage first.
func (e *Engine) BankEntries(ctx context.Context, shipID string) ([]compliance.BankEntry, error) {
	return e.banking.List(ctx, shipID)
}

// ComplianceRecord returns the stored record for a ship-year, or nil.
func (e *Engine) ComplianceRecord(ctx context.Context, shipID string, year int) (*compliance.Record, error) {
	return e.compliance.GetBase(ctx, shipID, year)
}

// BankSurplus deposits part of a positive verified CB into the ledger.
// A ship may bank at most once per year, never more than its verified CB.
func (e *Engine) BankSurplus(ctx context.Context, shipID string, year int, amount int64) (int64, error) {
	if amount <= 0 {
		metrics.RecordOperationFailure("bank")
		return 0, fmt.Errorf("%w: amount must be positive gCO2eq", compliance.ErrInputValidation)
	}

	unlock := e.locks.Lock(shipID)
	defer unlock()

	rec, err := e.compliance.GetBase(ctx, shipID, year)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		metrics.RecordOperationFailure("bank")
		return 0, fmt.Errorf("%w: ship %s year %d", compliance.ErrRecordNotFound, shipID, year)
	}
	if rec.VerifiedCB == nil {
		metrics.RecordOperationFailure("bank")
		return 0, fmt.Errorf("%w: verified CB not available for banking", compliance.ErrState)
	}
	verified := *rec.VerifiedCB
	if verified <= 0 {
		metrics.RecordOperationFailure("bank")
		return 0, fmt.Errorf("%w: only a positive verified CB can be banked", compliance.ErrState)
	}
	if amount > verified {
		metrics.RecordOperationFailure("bank")
		return 0, fmt.Errorf("%w: cannot bank %d gCO2eq, verified CB is %d", compliance.ErrInsufficientBalance, amount, verified)
	}
	already, err := e.banking.HasAlreadyBanked(ctx, shipID, year)
	if err != nil {
		return 0, err
	}
	if already {
		metrics.RecordOperationFailure("bank")
		return 0, fmt.Errorf("%w: surplus already banked for year %d", compliance.ErrState, year)
	}

	if err := e.banking.Bank(ctx, shipID, year, amount); err != nil {
		return 0, err
	}

	metrics.RecordBankOperation()
	e.logger.Info(ctx, "surplus banked",
		logger.String("shipId", shipID),
		logger.Int("year", year),
		logger.Int64("amount", amount),
	)
	return amount, nil
}

// ApplyResult is the outcome of applying banked surplus to a deficit.
type ApplyResult struct {
	CBBefore int64 `json:"cb_before"`
	Applied  int64 `json:"applied"`
	CBAfter  int64 `json:"cb_after"`
}

// ApplyBankedSurplus consumes banked surplus FIFO across all vintages and
// raises the target year's adjusted CB. Only a deficit may be applied to;
// verification remains a separate step.
func (e *Engine) ApplyBankedSurplus(ctx context.Context, shipID string, year int, amount int64) (ApplyResult, error) {
	if amount <= 0 {
		metrics.RecordOperationFailure("apply")
		return ApplyResult{}, fmt.Errorf("%w: amount must be positive gCO2eq", compliance.ErrInputValidation)
	}

	unlock := e.locks.Lock(shipID)
	defer unlock()

	rec, err := e.compliance.GetBase(ctx, shipID, year)
	if err != nil {
		return ApplyResult{}, err
	}
	if rec == nil {
		metrics.RecordOperationFailure("apply")
		return ApplyResult{}, fmt.Errorf("%w: ship %s year %d", compliance.ErrRecordNotFound, shipID, year)
	}

	cbBefore := rec.AdjustedOrBase()
	if cbBefore >= 0 {
		metrics.RecordOperationFailure("apply")
		return ApplyResult{}, fmt.Errorf("%w: banked surplus can only be applied to a deficit", compliance.ErrState)
	}

	available, err := e.banking.TotalAvailable(ctx, shipID)
	if err != nil {
		return ApplyResult{}, err
	}
	if amount > available {
		metrics.RecordOperationFailure("apply")
		return ApplyResult{}, fmt.Errorf("%w: requested %d gCO2eq, available %d", compliance.ErrInsufficientBalance, amount, available)
	}

	// Pre-validated above, so the at-most-effort consume drains exactly amount.
	consumed, err := e.banking.ConsumeBanked(ctx, shipID, amount)
	if err != nil {
		return ApplyResult{}, err
	}

	cbAfter := cbBefore + consumed
	if err := e.compliance.SetAdjusted(ctx, shipID, year, cbAfter); err != nil {
		return ApplyResult{}, err
	}

	metrics.RecordApplyOperation()
	e.logger.Info(ctx, "banked surplus applied",
		logger.String("shipId", shipID),
		logger.Int("year", year),
		logger.Int64("applied", consumed),
		logger.Int64("cbAfter", cbAfter),
	)
	return ApplyResult{CBBefore: cbBefore, Applied: consumed, CBAfter: cbAfter}, nil
}

// PenaltyResult is the outcome of a penalty calculation.
type PenaltyResult struct {
	PenaltyEUR       int64 `json:"penalty"`
	ConsecutiveYears int   `json:"consecutiveYears"`
	VerifiedCB       int64 `json:"verifiedCB"`
}

// CalculatePenalty computes and persists the penalty for a ship-year from
// its effective CB and consecutive-deficit history.
func (e *Engine) CalculatePenalty(ctx context.Context, shipID string, year int) (PenaltyResult, error) {
	unlock := e.locks.Lock(shipID)
	defer unlock()
	return e.penaltyLocked(ctx, shipID, year)
}

// penaltyLocked is CalculatePenalty with the ship lock already held.
func (e *Engine) penaltyLocked(ctx context.Context, shipID string, year int) (PenaltyResult, error) {
	rec, err := e.compliance.GetBase(ctx, shipID, year)
	if err != nil {
		return PenaltyResult{}, err
	}
	if rec == nil {
		metrics.RecordOperationFailure("penalty")
		return PenaltyResult{}, fmt.Errorf("%w: ship %s year %d", compliance.ErrRecordNotFound, shipID, year)
	}

	effective := rec.EffectiveCB()
	ghgi := rec.GHGIActual
	if ghgi == 0 {
		// Safety fallback against division by zero, not a real intensity.
		ghgi = 1
	}

	consecutive, err := e.consecutiveDeficitYears(ctx, shipID, year)
	if err != nil {
		return PenaltyResult{}, err
	}

	penalty := formula.Penalty(effective, ghgi, consecutive)
	if err := e.compliance.SetPenalty(ctx, shipID, year, float64(penalty)); err != nil {
		return PenaltyResult{}, err
	}
	metrics.RecordPenalty(float64(penalty))

	return PenaltyResult{PenaltyEUR: penalty, ConsecutiveYears: consecutive, VerifiedCB: effective}, nil
}

// consecutiveDeficitYears walks the ship's records from year downwards,
// counting consecutive deficits by effective CB and stopping at the first
// non-deficit year. A first-time deficit still counts as one, hence the floor.
func (e *Engine) consecutiveDeficitYears(ctx context.Context, shipID string, year int) (int, error) {
	records, err := e.compliance.ListByShipUpTo(ctx, shipID, year)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range records {
		if records[i].EffectiveCB() >= 0 {
			break
		}
		count++
	}
	if count == 0 {
		count = 1
	}
	return count, nil
}

// Ships returns every ship id with a compliance record.
func (e *Engine) Ships(ctx context.Context) ([]string, error) {
	return e.compliance.DistinctShips(ctx)
}

// Years returns every year with a compliance record.
func (e *Engine) Years(ctx context.Context) ([]int, error) {
	return e.compliance.DistinctYears(ctx)
}
