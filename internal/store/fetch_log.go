package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FetchRecord is one settled backend fetch. It is diagnostic only; view
// state is never read back from it.
type FetchRecord struct {
	ID         int64     `json:"id"`
	ViewID     string    `json:"view_id"`
	Seq        uint64    `json:"seq"`
	Role       string    `json:"role"`
	Outcome    string    `json:"outcome"` // ok | request_failed | transport_or_parse_failed | error
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	Applied    bool      `json:"applied"` // false when a newer selection superseded it
	Companies  int       `json:"companies"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

type ListFetchesOpts struct {
	ViewID string
	Role   string
	Limit  int
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS fetch_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  view_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  role TEXT NOT NULL,
  outcome TEXT NOT NULL,
  status_code INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT '',
  applied INTEGER NOT NULL DEFAULT 0,
  companies INTEGER NOT NULL DEFAULT 0,
  started_at TEXT NOT NULL,
  duration_ms INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_fetch_log_started_at
ON fetch_log(started_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_fetch_log_view
ON fetch_log(view_id, seq);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

func InsertFetch(ctx context.Context, db *sql.DB, r FetchRecord) (int64, error) {
	res, err := db.ExecContext(ctx, `
INSERT INTO fetch_log(view_id, seq, role, outcome, status_code, error, applied, companies, started_at, duration_ms)
VALUES(?,?,?,?,?,?,?,?,?,?);`,
		r.ViewID, int64(r.Seq), r.Role, r.Outcome, r.StatusCode, r.Error, boolInt(r.Applied), r.Companies,
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("insert fetch: %w", err)
	}
	return res.LastInsertId()
}

func ListFetches(ctx context.Context, db *sql.DB, opts ListFetchesOpts) ([]FetchRecord, error) {
	if opts.Limit <= 0 || opts.Limit > 1000 {
		opts.Limit = 100
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, view_id, seq, role, outcome, status_code, error, applied, companies, started_at, duration_ms
FROM fetch_log
WHERE (? = '' OR view_id = ?)
  AND (? = '' OR role = ?)
ORDER BY id DESC
LIMIT ?;`,
		opts.ViewID, opts.ViewID, opts.Role, opts.Role, opts.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list fetches: %w", err)
	}
	defer rows.Close()

	out := []FetchRecord{}
	for rows.Next() {
		var r FetchRecord
		var seq int64
		var applied int
		var started string
		if err := rows.Scan(
			&r.ID,
			&r.ViewID,
			&seq,
			&r.Role,
			&r.Outcome,
			&r.StatusCode,
			&r.Error,
			&applied,
			&r.Companies,
			&started,
			&r.DurationMS,
		); err != nil {
			return nil, err
		}
		r.Seq = uint64(seq)
		r.Applied = applied != 0
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CleanupOldFetches drops records that started before cutoff.
func CleanupOldFetches(ctx context.Context, db *sql.DB, cutoff time.Time) (deleted int64, err error) {
	res, err := db.ExecContext(ctx, `DELETE FROM fetch_log WHERE started_at < ?;`,
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("cleanup fetch log: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// RecordFetch lets *DB serve as the view's fetch recorder.
func (d *DB) RecordFetch(ctx context.Context, r FetchRecord) error {
	_, err := InsertFetch(ctx, d.Pool, r)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
