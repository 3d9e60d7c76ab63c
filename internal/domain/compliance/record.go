// Package compliance defines the domain types shared by the settlement
// engine and its stores: ship-year compliance records, banked-surplus
// entries, pools, and voyage routes.
package compliance

import "time"

// Record is the per-(ship, year) compliance state. BaseCB is set from the
// fuel mix; AdjustedCB and VerifiedCB are settlement snapshots and stay nil
// until the corresponding operation runs.
type Record struct {
	ShipID        string   `json:"shipId"`
	Year          int      `json:"year"`
	GHGIActual    float64  `json:"ghgi_actual"`
	TotalEnergyMJ float64  `json:"total_energy_mj"`
	BaseCB        int64    `json:"compliance_balance_gco2eq"`
	AdjustedCB    *int64   `json:"adjusted_cb_gco2eq,omitempty"`
	VerifiedCB    *int64   `json:"verified_cb_gco2eq,omitempty"`
	PenaltyEUR    *float64 `json:"penalty_eur,omitempty"`
}

// EffectiveCB resolves the current balance of a record: verified if set,
// else adjusted, else base. Every caller that needs "the balance" goes
// through this one resolution rule.
func (r *Record) EffectiveCB() int64 {
	if r.VerifiedCB != nil {
		return *r.VerifiedCB
	}
	return r.AdjustedOrBase()
}

// AdjustedOrBase resolves the pre-verification balance: adjusted if set,
// else base. Used where verification must not be taken into account yet
// (applying banked surplus, pool intake).
func (r *Record) AdjustedOrBase() int64 {
	if r.AdjustedCB != nil {
		return *r.AdjustedCB
	}
	return r.BaseCB
}

// BankEntry is one banking transaction. Amount is immutable; Remaining is
// decremented by FIFO consumption and never goes below zero. The FIFO
// ordering key is YearBanked, not CreatedAt.
type BankEntry struct {
	ID         int64     `json:"id"`
	ShipID     string    `json:"ship_id"`
	YearBanked int       `json:"year_banked"`
	Amount     int64     `json:"amount_gco2eq"`
	Remaining  int64     `json:"remaining_gco2eq"`
	CreatedAt  time.Time `json:"created_at"`
}

// Pool is one allocation event across a group of ships.
type Pool struct {
	ID              int64     `json:"id"`
	Year            int       `json:"year"`
	TotalAdjustedCB int64     `json:"total_adjusted_cb_gco2eq"`
	TotalVerifiedCB int64     `json:"total_verified_cb_gco2eq"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// PoolMember is the historical allocation row for one ship in a pool.
// AdjustedCB snapshots the balance at allocation time.
type PoolMember struct {
	ID         int64  `json:"id"`
	PoolID     int64  `json:"pool_id"`
	ShipID     string `json:"ship_id"`
	AdjustedCB int64  `json:"adjusted_cb_gco2eq"`
	VerifiedCB int64  `json:"verified_cb_gco2eq"`
}

// PoolMemberRef identifies a compliance record joining a pool. The year may
// differ from the pool's nominal year.
type PoolMemberRef struct {
	ShipID string `json:"shipId"`
	Year   int    `json:"year"`
}

// Route is a stored voyage scenario used for intensity comparisons.
type Route struct {
	ID            int64   `json:"id"`
	RouteID       string  `json:"route_id"`
	VesselType    string  `json:"vessel_type"`
	FuelType      string  `json:"fuel_type"`
	Year          int     `json:"year"`
	GHGIntensity  float64 `json:"ghg_intensity"`
	FuelMassGrams int64   `json:"fuel_consumption_g"`
	LCVMJPerGram  float64 `json:"lcv_mj_per_g"`
	DistanceKM    float64 `json:"distance_km"`
	OpsEnergyMJ   float64 `json:"ops_energy_mj"`
	IsBaseline    bool    `json:"is_baseline"`
}
