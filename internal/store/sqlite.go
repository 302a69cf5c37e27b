package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store implements Records on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the database schema.
func (s *Store) Initialize() error {
	schema := `
	-- Finalized items, one row per auction lot
	CREATE TABLE IF NOT EXISTS items (
		item_id TEXT PRIMARY KEY,
		item_index INTEGER NOT NULL,
		auction_id TEXT,
		created_by TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		min_value REAL NOT NULL,
		max_value REAL NOT NULL,
		currency TEXT NOT NULL,
		metadata JSON,
		images JSON,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_auction ON items(auction_id);

	-- Stored images, one row per processed photograph
	CREATE TABLE IF NOT EXISTS images (
		image_id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		auction_id TEXT,
		storage_key TEXT NOT NULL,
		original_key TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (item_id) REFERENCES items(item_id)
	);
	CREATE INDEX IF NOT EXISTS idx_images_item ON images(item_id);

	-- Monotonic identifier counters
	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// NextID atomically increments the named counter and returns the new value.
// The first allocation on a counter returns 1.
func (s *Store) NextID(ctx context.Context, counter string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value`, counter).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", counter, err)
	}
	return value, nil
}
