package storage

// OpenMemory opens an in-memory database with the full schema applied.
// Exported for use in other package tests. The pool is pinned to a single
// connection: each SQLite in-memory connection is its own database.
func OpenMemory() (*DB, error) {
	cfg := DefaultConfig(":memory:")
	cfg.AutoMigrate = true
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	return Open(cfg)
}
