// Package kv is the durable key/value contract behind the persisted collections.
package kv

import (
	"context"
	"database/sql"

	"github.com/hpungsan/pantry/internal/db"
)

// Store reads and writes opaque values by key.
// Get reports false when the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// SQLite stores values in the kv table of the pantry database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite returns a Store over an initialized database (see db.Init).
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{db: database}
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return db.GetValue(ctx, s.db, key)
}

// Set implements Store.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	return db.PutValue(ctx, s.db, key, value)
}
