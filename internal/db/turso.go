package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const batchSize = 100

// SQLIndex stores lineup records through database/sql. It backs both the
// local SQLite file and a remote Turso database.
type SQLIndex struct {
	db *sql.DB
}

// NewTursoClient connects to a Turso (libsql) database.
func NewTursoClient(url, authToken string) (*SQLIndex, error) {
	connStr := url
	if authToken != "" {
		connStr = fmt.Sprintf("%s?authToken=%s", url, authToken)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Turso: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Turso: %w", err)
	}

	return &SQLIndex{db: db}, nil
}

// OpenSQLite opens (or creates) a SQLite index at path. ":memory:" gives a
// throwaway database.
func OpenSQLite(path string) (*SQLIndex, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	if path == ":memory:" {
		dsn = "file::memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes writes.
	db.SetMaxOpenConns(1)
	return &SQLIndex{db: db}, nil
}

// Close closes the connection
func (c *SQLIndex) Close() error {
	return c.db.Close()
}

// CreateTables creates the lineup table if it doesn't exist
func (c *SQLIndex) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS lineup_index (
			lineup_key TEXT NOT NULL,
			match_id TEXT NOT NULL,
			queue_id INTEGER NOT NULL DEFAULT 0,
			duration_s INTEGER NOT NULL DEFAULT 0,
			start_ms INTEGER NOT NULL DEFAULT 0,
			summary_row TEXT NOT NULL,
			indexed_at TEXT NOT NULL,
			PRIMARY KEY (lineup_key, match_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lineup_index_recent ON lineup_index(lineup_key, start_ms)`,
	}

	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// PutRecords upserts records in batches of one transaction each.
func (c *SQLIndex) PutRecords(ctx context.Context, recs []Record) error {
	now := time.Now().UTC()
	for i := 0; i < len(recs); i += batchSize {
		end := min(i+batchSize, len(recs))
		if err := c.putBatch(ctx, recs[i:end], now); err != nil {
			return err
		}
	}
	return nil
}

func (c *SQLIndex) putBatch(ctx context.Context, batch []Record, now time.Time) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO lineup_index (lineup_key, match_id, queue_id, duration_s, start_ms, summary_row, indexed_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range batch {
		row, err := json.Marshal(r.Summary)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode summary for %s: %w", r.MatchID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.LineupKey, r.MatchID, r.QueueID, r.DurationS, r.StartMs, string(row), now.Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Get returns the most recent record for key.
func (c *SQLIndex) Get(ctx context.Context, key string) (*Record, error) {
	recs, err := c.List(ctx, key, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return &recs[0], nil
}

// List returns up to limit records for key, newest first.
func (c *SQLIndex) List(ctx context.Context, key string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT lineup_key, match_id, queue_id, duration_s, start_ms, summary_row, indexed_at
		FROM lineup_index
		WHERE lineup_key = ?
		ORDER BY start_ms DESC
		LIMIT ?
	`, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			r       Record
			row     string
			indexed string
		)
		if err := rows.Scan(&r.LineupKey, &r.MatchID, &r.QueueID, &r.DurationS, &r.StartMs, &row, &indexed); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(row), &r.Summary); err != nil {
			return nil, fmt.Errorf("decode summary for %s: %w", r.MatchID, err)
		}
		r.IndexedAt, _ = time.Parse(time.RFC3339, indexed)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Count returns the number of indexed matches.
func (c *SQLIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lineup_index`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}
