package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"syncbench/internal/errdefs"
	"syncbench/internal/record"
)

// SQLiteStore implements Store backed by a local SQLite file. It is the
// default backend; a run directory needs nothing but the file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "syncbench.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite db: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		started_at TEXT NOT NULL,
		schema_version INTEGER NOT NULL,
		record TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_label_started ON runs(label, started_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts a new run record. The full record is stored as a JSON blob;
// label and start time are duplicated into columns for ordering and lookup.
func (s *SQLiteStore) Put(ctx context.Context, rec *record.RunRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return errdefs.New(errdefs.StoreWriteFailure, "store.put", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (label, started_at, schema_version, record) VALUES (?, ?, ?, ?)`,
		rec.Label, rec.StartedAt.UTC().Format(time.RFC3339Nano), rec.SchemaVersion, string(blob))
	if err != nil {
		return errdefs.New(errdefs.StoreWriteFailure, "store.put", err)
	}
	return nil
}

// Latest returns the most recent record for label. Start-time ordering is
// lexicographic over RFC 3339 strings, which matches chronological order
// for the UTC timestamps Put writes; insertion order breaks ties.
func (s *SQLiteStore) Latest(ctx context.Context, label string) (*record.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM runs WHERE label = ? ORDER BY started_at DESC, id DESC LIMIT 1`, label)

	var blob string
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errdefs.Newf(errdefs.RecordNotFound, "store.latest", "no runs recorded for label %q", label)
		}
		return nil, fmt.Errorf("query latest run for %q: %w", label, err)
	}
	return decodeRecord([]byte(blob))
}

// List returns summaries of stored runs, newest first.
func (s *SQLiteStore) List(ctx context.Context, label string) ([]Summary, error) {
	query := `SELECT id, label, started_at, schema_version, record FROM runs`
	args := []any{}
	if label != "" {
		query += ` WHERE label = ?`
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
			started string
			blob    string
		)
		if err := rows.Scan(&sum.ID, &sum.Label, &started, &sum.SchemaVersion, &blob); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			sum.StartedAt = ts
		}
		fillCounts(&sum, []byte(blob))
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep records for label.
func (s *SQLiteStore) Prune(ctx context.Context, label string, keep int) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE label = ? AND id NOT IN (
			SELECT id FROM runs WHERE label = ? ORDER BY started_at DESC, id DESC LIMIT ?)`,
		label, label, keep)
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// decodeRecord unmarshals a stored blob and enforces the schema version.
func decodeRecord(blob []byte) (*record.RunRecord, error) {
	var rec record.RunRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, fmt.Errorf("decode stored run record: %w", err)
	}
	if err := record.CheckSchema(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// fillCounts populates completion fields from the stored blob. Rows written
// by other schema generations stay at zero rather than failing the listing.
func fillCounts(sum *Summary, blob []byte) {
	if sum.SchemaVersion != record.SchemaVersion {
		return
	}
	var rec record.RunRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return
	}
	sum.Completed = rec.Completed
	sum.Total = rec.Total
	sum.TimedOut = rec.TimedOut
}
