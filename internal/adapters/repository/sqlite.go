package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// SQLiteStore implements ComplianceStore, BankStore, PoolStore and
// RouteStore on a single SQLite database.
type SQLiteStore struct {
	db           *sql.DB
	maxOpenConns int
}

// Open opens (creating if needed) the SQLite database at dsn and applies
// connection pragmas. Call Migrate before first use.
func Open(ctx context.Context, dsn string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{maxOpenConns: 1}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", dsn, err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s.db = db
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrations returns the schema migration statements. Each string is a
// single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Per-(ship, year) compliance state. Balances in grams CO2e.
		`CREATE TABLE IF NOT EXISTS ship_compliance (
			id                        INTEGER PRIMARY KEY AUTOINCREMENT,
			ship_id                   TEXT NOT NULL,
			year                      INTEGER NOT NULL,
			ghgi_actual               REAL NOT NULL DEFAULT 0,
			total_energy_mj           REAL NOT NULL DEFAULT 0,
			compliance_balance_gco2eq INTEGER NOT NULL DEFAULT 0,
			adjusted_cb_gco2eq        INTEGER,
			verified_cb_gco2eq        INTEGER,
			penalty_eur               REAL,
			created_at                TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE(ship_id, year)
		)`,

		// Banking ledger. FIFO ordering key is year_banked, not created_at.
		`CREATE TABLE IF NOT EXISTS bank_entries (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			ship_id          TEXT NOT NULL,
			year_banked      INTEGER NOT NULL,
			amount_gco2eq    INTEGER NOT NULL,
			remaining_gco2eq INTEGER NOT NULL,
			created_at       TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bank_ship ON bank_entries(ship_id, year_banked)`,

		// Pool allocation events.
		`CREATE TABLE IF NOT EXISTS pools (
			id                       INTEGER PRIMARY KEY AUTOINCREMENT,
			year                     INTEGER NOT NULL,
			total_adjusted_cb_gco2eq INTEGER NOT NULL DEFAULT 0,
			total_verified_cb_gco2eq INTEGER NOT NULL DEFAULT 0,
			status                   TEXT NOT NULL DEFAULT 'active',
			created_at               TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS pool_members (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			pool_id            INTEGER NOT NULL REFERENCES pools(id),
			ship_id            TEXT NOT NULL,
			adjusted_cb_gco2eq INTEGER NOT NULL,
			verified_cb_gco2eq INTEGER NOT NULL,
			created_at         TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pool_members_pool ON pool_members(pool_id)`,

		// Voyage scenarios for intensity comparison.
		`CREATE TABLE IF NOT EXISTS routes (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			route_id           TEXT NOT NULL UNIQUE,
			vessel_type        TEXT,
			fuel_type          TEXT,
			year               INTEGER,
			ghg_intensity      REAL,
			fuel_consumption_g INTEGER,
			lcv_mj_per_g       REAL,
			distance_km        REAL,
			ops_energy_mj      REAL,
			is_baseline        INTEGER NOT NULL DEFAULT 0,
			created_at         TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}
}

// Migrate applies all schema migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	for _, stmt := range Migrations() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
