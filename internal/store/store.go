package store

import (
	"context"
	"time"

	"syncbench/internal/errdefs"
	"syncbench/internal/record"
)

// Store persists run records. Records are append-only: Put always inserts
// a new row and nothing ever updates one in place.
type Store interface {
	// Put inserts a new run record.
	Put(ctx context.Context, rec *record.RunRecord) error
	// Latest returns the most recent record for label, by start time with
	// insertion order breaking ties.
	Latest(ctx context.Context, label string) (*record.RunRecord, error)
	// List returns summaries of stored runs, newest first. An empty label
	// matches every run.
	List(ctx context.Context, label string) ([]Summary, error)
	// Prune deletes all but the newest keep records for label and returns
	// how many rows were removed.
	Prune(ctx context.Context, label string, keep int) (int, error)
	Close() error
}

// Summary is a one-line view of a stored run, cheap enough for listings.
type Summary struct {
	ID            int64
	Label         string
	StartedAt     time.Time
	SchemaVersion int
	Completed     int
	Total         int
	TimedOut      bool
}

// Config selects and configures a store backend.
type Config struct {
	// Type is "sqlite" or "postgres". Empty defaults to sqlite.
	Type string
	// DSN is the database file path for sqlite or a connection string
	// for postgres.
	DSN string
}

// New creates a Store from the provided configuration.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case "sqlite", "":
		return NewSQLiteStore(cfg.DSN)
	case "postgres":
		return NewPostgresStore(cfg.DSN)
	default:
		return nil, errdefs.Newf(errdefs.InvalidConfig, "store.new", "unknown store type %q", cfg.Type)
	}
}
