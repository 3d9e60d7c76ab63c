package repository

import (
	"context"
	"fmt"

	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

// ListRoutes returns all stored voyage scenarios in insertion order.
func (s *SQLiteStore) ListRoutes(ctx context.Context) ([]compliance.Route, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, route_id, COALESCE(vessel_type, ''), COALESCE(fuel_type, ''),
		       COALESCE(year, 0), COALESCE(ghg_intensity, 0), COALESCE(fuel_consumption_g, 0),
		       COALESCE(lcv_mj_per_g, 0), COALESCE(distance_km, 0), COALESCE(ops_energy_mj, 0),
		       is_baseline
		FROM routes ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []compliance.Route
	for rows.Next() {
		var (
			r        compliance.Route
			baseline int
		)
		if err := rows.Scan(&r.ID, &r.RouteID, &r.VesselType, &r.FuelType, &r.Year,
			&r.GHGIntensity, &r.FuelMassGrams, &r.LCVMJPerGram, &r.DistanceKM,
			&r.OpsEnergyMJ, &baseline); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		r.IsBaseline = baseline == 1
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// CreateRoute inserts a voyage scenario and returns its row id.
func (s *SQLiteStore) CreateRoute(ctx context.Context, r compliance.Route) (int64, error) {
	baseline := 0
	if r.IsBaseline {
		baseline = 1
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO routes (route_id, vessel_type, fuel_type, year, ghg_intensity,
		                    fuel_consumption_g, lcv_mj_per_g, distance_km, ops_energy_mj, is_baseline)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RouteID, r.VesselType, r.FuelType, r.Year, r.GHGIntensity,
		r.FuelMassGrams, r.LCVMJPerGram, r.DistanceKM, r.OpsEnergyMJ, baseline)
	if err != nil {
		return 0, fmt.Errorf("create route: %w", err)
	}
	return res.LastInsertId()
}

// SetBaseline marks exactly one route as the comparison baseline.
func (s *SQLiteStore) SetBaseline(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set baseline: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE routes SET is_baseline = 0`); err != nil {
		return fmt.Errorf("clear baselines: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE routes SET is_baseline = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("set baseline: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("route %d: %w", id, ErrRouteNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set baseline: %w", err)
	}
	return nil
}
