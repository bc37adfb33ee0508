package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the Postgres-backed lineup index.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool
func New(ctx context.Context, dbURL string) (*DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("postgres dsn not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

// Pool returns the underlying connection pool for custom queries
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// CreateTables creates the lineup table if it doesn't exist
func (db *DB) CreateTables(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS lineup_index (
			lineup_key TEXT NOT NULL,
			match_id TEXT NOT NULL,
			queue_id INTEGER NOT NULL DEFAULT 0,
			duration_s INTEGER NOT NULL DEFAULT 0,
			start_ms BIGINT NOT NULL DEFAULT 0,
			summary_row JSONB NOT NULL,
			indexed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (lineup_key, match_id)
		);
		CREATE INDEX IF NOT EXISTS idx_lineup_index_recent ON lineup_index(lineup_key, start_ms DESC);
	`)
	return err
}

// PutRecords upserts records, sending each batch in one round trip.
func (db *DB) PutRecords(ctx context.Context, recs []Record) error {
	for i := 0; i < len(recs); i += batchSize {
		end := min(i+batchSize, len(recs))

		batch := &pgx.Batch{}
		for _, r := range recs[i:end] {
			row, err := json.Marshal(r.Summary)
			if err != nil {
				return fmt.Errorf("encode summary for %s: %w", r.MatchID, err)
			}
			batch.Queue(`
				INSERT INTO lineup_index (lineup_key, match_id, queue_id, duration_s, start_ms, summary_row, indexed_at)
				VALUES ($1, $2, $3, $4, $5, $6, now())
				ON CONFLICT (lineup_key, match_id) DO UPDATE SET
					queue_id = EXCLUDED.queue_id,
					duration_s = EXCLUDED.duration_s,
					start_ms = EXCLUDED.start_ms,
					summary_row = EXCLUDED.summary_row,
					indexed_at = EXCLUDED.indexed_at
			`, r.LineupKey, r.MatchID, r.QueueID, r.DurationS, r.StartMs, row)
		}

		if err := db.pool.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert lineup batch: %w", err)
		}
	}
	return nil
}

// Get returns the most recent record for key.
func (db *DB) Get(ctx context.Context, key string) (*Record, error) {
	var (
		r   Record
		row []byte
	)
	err := db.pool.QueryRow(ctx, `
		SELECT lineup_key, match_id, queue_id, duration_s, start_ms, summary_row, indexed_at
		FROM lineup_index
		WHERE lineup_key = $1
		ORDER BY start_ms DESC
		LIMIT 1
	`, key).Scan(&r.LineupKey, &r.MatchID, &r.QueueID, &r.DurationS, &r.StartMs, &row, &r.IndexedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(row, &r.Summary); err != nil {
		return nil, fmt.Errorf("decode summary for %s: %w", r.MatchID, err)
	}
	return &r, nil
}

// List returns up to limit records for key, newest first.
func (db *DB) List(ctx context.Context, key string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := db.pool.Query(ctx, `
		SELECT lineup_key, match_id, queue_id, duration_s, start_ms, summary_row, indexed_at
		FROM lineup_index
		WHERE lineup_key = $1
		ORDER BY start_ms DESC
		LIMIT $2
	`, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			r       Record
			row     []byte
			indexed time.Time
		)
		if err := rows.Scan(&r.LineupKey, &r.MatchID, &r.QueueID, &r.DurationS, &r.StartMs, &row, &indexed); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(row, &r.Summary); err != nil {
			return nil, fmt.Errorf("decode summary for %s: %w", r.MatchID, err)
		}
		r.IndexedAt = indexed
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Count returns the number of indexed matches.
func (db *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lineup_index`).Scan(&count)
	return count, err
}
