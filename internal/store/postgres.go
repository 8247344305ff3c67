package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"syncbench/internal/errdefs"
	"syncbench/internal/record"
)

// PostgresStore implements Store backed by PostgreSQL, for teams that keep
// benchmark history in shared infrastructure instead of a local file.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL using the given connection string.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate postgres db: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id BIGSERIAL PRIMARY KEY,
		label TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		schema_version INTEGER NOT NULL,
		record JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_label_started ON runs (label, started_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts a new run record.
func (s *PostgresStore) Put(ctx context.Context, rec *record.RunRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return errdefs.New(errdefs.StoreWriteFailure, "store.put", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (label, started_at, schema_version, record) VALUES ($1, $2, $3, $4)`,
		rec.Label, rec.StartedAt.UTC(), rec.SchemaVersion, blob)
	if err != nil {
		return errdefs.New(errdefs.StoreWriteFailure, "store.put", err)
	}
	return nil
}

// Latest returns the most recent record for label.
func (s *PostgresStore) Latest(ctx context.Context, label string) (*record.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM runs WHERE label = $1 ORDER BY started_at DESC, id DESC LIMIT 1`, label)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errdefs.Newf(errdefs.RecordNotFound, "store.latest", "no runs recorded for label %q", label)
		}
		return nil, fmt.Errorf("query latest run for %q: %w", label, err)
	}
	return decodeRecord(blob)
}

// List returns summaries of stored runs, newest first.
func (s *PostgresStore) List(ctx context.Context, label string) ([]Summary, error) {
	query := `SELECT id, label, started_at, schema_version, record FROM runs`
	args := []any{}
	if label != "" {
		query += ` WHERE label = $1`
		args = append(args, label)
	}
	query += ` ORDER BY started_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			started time.Time
			blob    []byte
		)
		if err := rows.Scan(&sum.ID, &sum.Label, &started, &sum.SchemaVersion, &blob); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		sum.StartedAt = started
		fillCounts(&sum, blob)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep records for label.
func (s *PostgresStore) Prune(ctx context.Context, label string, keep int) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE label = $1 AND id NOT IN (
			SELECT id FROM runs WHERE label = $1 ORDER BY started_at DESC, id DESC LIMIT $2)`,
		label, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs for %q: %w", label, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
