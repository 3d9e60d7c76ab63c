package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

// TotalAvailable sums remaining banked surplus across the ship's entries.
func (s *SQLiteStore) TotalAvailable(ctx context.Context, shipID string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(remaining_gco2eq), 0) FROM bank_entries WHERE ship_id = ?
	`, shipID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total available: %w", err)
	}
	return total, nil
}

// List returns the ship's bank entries, newest vintage first.
func (s *SQLiteStore) List(ctx context.Context, shipID string) ([]compliance.BankEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ship_id, year_banked, amount_gco2eq, remaining_gco2eq, created_at
		FROM bank_entries WHERE ship_id = ?
		ORDER BY year_banked DESC
	`, shipID)
	if err != nil {
		return nil, fmt.Errorf("list bank entries: %w", err)
	}
	defer rows.Close()

	var entries []compliance.BankEntry
	for rows.Next() {
		var (
			e       compliance.BankEntry
			created string
		)
		if err := rows.Scan(&e.ID, &e.ShipID, &e.YearBanked, &e.Amount, &e.Remaining, &created); err != nil {
			return nil, fmt.Errorf("scan bank entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Bank creates a new entry with remaining == amount.
func (s *SQLiteStore) Bank(ctx context.Context, shipID string, yearBanked int, amount int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_entries (ship_id, year_banked, amount_gco2eq, remaining_gco2eq)
		VALUES (?, ?, ?, ?)
	`, shipID, yearBanked, amount, amount)
	if err != nil {
		return fmt.Errorf("bank surplus: %w", err)
	}
	return nil
}

// HasAlreadyBanked reports whether an entry exists for (shipID, year).
func (s *SQLiteStore) HasAlreadyBanked(ctx context.Context, shipID string, year int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bank_entries WHERE ship_id = ? AND year_banked = ?
	`, shipID, year).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check already banked: %w", err)
	}
	return count > 0, nil
}

// ConsumeBanked drains up to amount grams oldest-vintage-first, decrementing
// each entry by min(remaining, still needed). It stops when the amount is
// exhausted or entries run out, returning the total consumed; a shortfall is
// not an error.
func (s *SQLiteStore) ConsumeBanked(ctx context.Context, shipID string, amount int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin consume: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, remaining_gco2eq FROM bank_entries
		WHERE ship_id = ? AND remaining_gco2eq > 0
		ORDER BY year_banked ASC, id ASC
	`, shipID)
	if err != nil {
		return 0, fmt.Errorf("select consumable entries: %w", err)
	}

	type slot struct {
		id        int64
		remaining int64
	}
	var slots []slot
	for rows.Next() {
		var sl slot
		if err := rows.Scan(&sl.id, &sl.remaining); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan consumable entry: %w", err)
		}
		slots = append(slots, sl)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate consumable entries: %w", err)
	}
	rows.Close()

	var consumed int64
	needed := amount
	for _, sl := range slots {
		if needed <= 0 {
			break
		}
		take := sl.remaining
		if take > needed {
			take = needed
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE bank_entries SET remaining_gco2eq = remaining_gco2eq - ? WHERE id = ?
		`, take, sl.id); err != nil {
			return 0, fmt.Errorf("decrement bank entry %d: %w", sl.id, err)
		}
		consumed += take
		needed -= take
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit consume: %w", err)
	}
	return consumed, nil
}
