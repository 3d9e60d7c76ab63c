package repository

// Option applies a configuration option to the SQLite store.
type Option func(*SQLiteStore)

// WithMaxOpenConns overrides the connection pool size. The default of one
// matches SQLite's single-writer model and keeps ":memory:" databases on a
// stable connection.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}
