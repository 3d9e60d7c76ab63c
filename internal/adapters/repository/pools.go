package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

// CreatePool inserts the pool, its member rows, and each member's verified
// CB update in one transaction. On any failure nothing is persisted.
func (s *SQLiteStore) CreatePool(ctx context.Context, year int, members []PoolAllocation) (int64, error) {
	var totalAdjusted, totalVerified int64
	for _, m := range members {
		totalAdjusted += m.AdjustedCB
		totalVerified += m.VerifiedCB
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create pool: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO pools (year, total_adjusted_cb_gco2eq, total_verified_cb_gco2eq)
		VALUES (?, ?, ?)
	`, year, totalAdjusted, totalVerified)
	if err != nil {
		return 0, fmt.Errorf("insert pool: %w", err)
	}
	poolID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("pool id: %w", err)
	}

	for _, m := range members {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pool_members (pool_id, ship_id, adjusted_cb_gco2eq, verified_cb_gco2eq)
			VALUES (?, ?, ?, ?)
		`, poolID, m.ShipID, m.AdjustedCB, m.VerifiedCB); err != nil {
			return 0, fmt.Errorf("insert pool member %s: %w", m.ShipID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE ship_compliance SET verified_cb_gco2eq = ? WHERE ship_id = ? AND year = ?
		`, m.VerifiedCB, m.ShipID, m.Year); err != nil {
			return 0, fmt.Errorf("update verified cb for %s: %w", m.ShipID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create pool: %w", err)
	}
	return poolID, nil
}

// ListPools returns pools, newest first. year == 0 lists all years.
func (s *SQLiteStore) ListPools(ctx context.Context, year int) ([]compliance.Pool, error) {
	query := `
		SELECT id, year, total_adjusted_cb_gco2eq, total_verified_cb_gco2eq, status, created_at
		FROM pools ORDER BY id DESC`
	args := []any{}
	if year != 0 {
		query = `
		SELECT id, year, total_adjusted_cb_gco2eq, total_verified_cb_gco2eq, status, created_at
		FROM pools WHERE year = ? ORDER BY id DESC`
		args = append(args, year)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	var pools []compliance.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		pools = append(pools, *p)
	}
	return pools, rows.Err()
}

// Get returns a pool and its members.
func (s *SQLiteStore) Get(ctx context.Context, poolID int64) (*compliance.Pool, []compliance.PoolMember, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, year, total_adjusted_cb_gco2eq, total_verified_cb_gco2eq, status, created_at
		FROM pools WHERE id = ?
	`, poolID)
	pool, err := scanPool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("pool %d: %w", poolID, ErrPoolNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get pool: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pool_id, ship_id, adjusted_cb_gco2eq, verified_cb_gco2eq
		FROM pool_members WHERE pool_id = ?
		ORDER BY id ASC
	`, poolID)
	if err != nil {
		return nil, nil, fmt.Errorf("list pool members: %w", err)
	}
	defer rows.Close()

	var members []compliance.PoolMember
	for rows.Next() {
		var m compliance.PoolMember
		if err := rows.Scan(&m.ID, &m.PoolID, &m.ShipID, &m.AdjustedCB, &m.VerifiedCB); err != nil {
			return nil, nil, fmt.Errorf("scan pool member: %w", err)
		}
		members = append(members, m)
	}
	return pool, members, rows.Err()
}

func scanPool(sc scanner) (*compliance.Pool, error) {
	var (
		p       compliance.Pool
		created string
	)
	err := sc.Scan(&p.ID, &p.Year, &p.TotalAdjustedCB, &p.TotalVerifiedCB, &p.Status, &created)
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created)
	return &p, nil
}
