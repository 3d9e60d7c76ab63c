package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

// UpsertBase inserts or replaces the formula-derived fields for (shipID, year).
func (s *SQLiteStore) UpsertBase(ctx context.Context, shipID string, year int, ghgiActual, totalEnergyMJ float64, baseCB int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ship_compliance (ship_id, year, ghgi_actual, total_energy_mj, compliance_balance_gco2eq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ship_id, year) DO UPDATE SET
			ghgi_actual               = excluded.ghgi_actual,
			total_energy_mj           = excluded.total_energy_mj,
			compliance_balance_gco2eq = excluded.compliance_balance_gco2eq
	`, shipID, year, ghgiActual, totalEnergyMJ, baseCB)
	if err != nil {
		return fmt.Errorf("upsert compliance base: %w", err)
	}
	return nil
}

// GetBase returns the record for (shipID, year), or nil if none exists.
func (s *SQLiteStore) GetBase(ctx context.Context, shipID string, year int) (*compliance.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ship_id, year, ghgi_actual, total_energy_mj, compliance_balance_gco2eq,
		       adjusted_cb_gco2eq, verified_cb_gco2eq, penalty_eur
		FROM ship_compliance WHERE ship_id = ? AND year = ?
	`, shipID, year)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get compliance base: %w", err)
	}
	return rec, nil
}

// SetAdjusted updates the adjusted CB snapshot. Missing rows update nothing.
func (s *SQLiteStore) SetAdjusted(ctx context.Context, shipID string, year int, adjusted int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE ship_compliance SET adjusted_cb_gco2eq = ? WHERE ship_id = ? AND year = ?
	`, adjusted, shipID, year)
	if err != nil {
		return fmt.Errorf("set adjusted cb: %w", err)
	}
	return nil
}

// SetVerified updates the verified CB.
func (s *SQLiteStore) SetVerified(ctx context.Context, shipID string, year int, verified int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE ship_compliance SET verified_cb_gco2eq = ? WHERE ship_id = ? AND year = ?
	`, verified, shipID, year)
	if err != nil {
		return fmt.Errorf("set verified cb: %w", err)
	}
	return nil
}

// SetPenalty updates the cached penalty figure.
func (s *SQLiteStore) SetPenalty(ctx context.Context, shipID string, year int, penaltyEUR float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE ship_compliance SET penalty_eur = ? WHERE ship_id = ? AND year = ?
	`, penaltyEUR, shipID, year)
	if err != nil {
		return fmt.Errorf("set penalty: %w", err)
	}
	return nil
}

// ListByShipUpTo returns the ship's records with year <= year, newest first.
func (s *SQLiteStore) ListByShipUpTo(ctx context.Context, shipID string, year int) ([]compliance.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ship_id, year, ghgi_actual, total_energy_mj, compliance_balance_gco2eq,
		       adjusted_cb_gco2eq, verified_cb_gco2eq, penalty_eur
		FROM ship_compliance WHERE ship_id = ? AND year <= ?
		ORDER BY year DESC
	`, shipID, year)
	if err != nil {
		return nil, fmt.Errorf("list compliance records: %w", err)
	}
	defer rows.Close()

	var result []compliance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compliance record: %w", err)
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

// DistinctShips returns every ship id with at least one compliance record.
func (s *SQLiteStore) DistinctShips(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT ship_id FROM ship_compliance ORDER BY ship_id`)
	if err != nil {
		return nil, fmt.Errorf("distinct ships: %w", err)
	}
	defer rows.Close()

	var ships []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ship id: %w", err)
		}
		ships = append(ships, id)
	}
	return ships, rows.Err()
}

// DistinctYears returns every year with at least one compliance record.
func (s *SQLiteStore) DistinctYears(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM ship_compliance ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("distinct years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*compliance.Record, error) {
	var (
		rec      compliance.Record
		adjusted sql.NullInt64
		verified sql.NullInt64
		penalty  sql.NullFloat64
	)
	err := sc.Scan(&rec.ShipID, &rec.Year, &rec.GHGIActual, &rec.TotalEnergyMJ,
		&rec.BaseCB, &adjusted, &verified, &penalty)
	if err != nil {
		return nil, err
	}
	if adjusted.Valid {
		v := adjusted.Int64
		rec.AdjustedCB = &v
	}
	if verified.Valid {
		v := verified.Int64
		rec.VerifiedCB = &v
	}
	if penalty.Valid {
		v := penalty.Float64
		rec.PenaltyEUR = &v
	}
	return &rec, nil
}
