package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteTimeLayout is fixed width so text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000"

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		pipeline TEXT NOT NULL,
		run_date TEXT NOT NULL,
		bucket TEXT NOT NULL,
		object_key TEXT NOT NULL,
		row_count INTEGER NOT NULL DEFAULT 0,
		countries INTEGER NOT NULL DEFAULT 0,
		incomplete TEXT NOT NULL DEFAULT '[]',
		status_code INTEGER NOT NULL,
		message TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_pipeline_finished ON runs(pipeline, finished_at)`,
}

// SQLiteLedger keeps runs in a local sqlite file, for hosts without DynamoDB.
type SQLiteLedger struct {
	db *sql.DB
}

// OpenSQLiteLedger opens (creating if needed) the database at path and migrates it.
func OpenSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite ledger: %w", err)
	}
	l, err := NewSQLiteLedger(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// NewSQLiteLedger migrates db and wraps it.
func NewSQLiteLedger(db *sql.DB) (*SQLiteLedger, error) {
	for i, m := range sqliteMigrations {
		if _, err := db.Exec(m); err != nil {
			return nil, fmt.Errorf("ledger migration %d failed: %w", i, err)
		}
	}
	log.Printf("[Ledger] sqlite migrations completed")
	return &SQLiteLedger{db: db}, nil
}

// Record inserts rec, replacing a record with the same run id.
func (l *SQLiteLedger) Record(ctx context.Context, rec RunRecord) error {
	incomplete, err := json.Marshal(nonNil(rec.Incomplete))
	if err != nil {
		return fmt.Errorf("marshaling incomplete countries: %w", err)
	}
	_, err = l.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(run_id, pipeline, run_date, bucket, object_key, row_count, countries, incomplete,
			 status_code, message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Pipeline, rec.RunDate, rec.Bucket, rec.Key, rec.Rows, rec.Countries,
		string(incomplete), rec.StatusCode, rec.Message,
		rec.StartedAt.UTC().Format(sqliteTimeLayout), rec.FinishedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting run record: %w", err)
	}
	return nil
}

// Recent returns the newest records of pipeline first.
func (l *SQLiteLedger) Recent(ctx context.Context, pipeline string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, pipeline, run_date, bucket, object_key, row_count, countries, incomplete,
		       status_code, message, started_at, finished_at
		FROM runs WHERE pipeline = ?
		ORDER BY finished_at DESC LIMIT ?`, pipeline, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var incomplete, started, finished string
		if err := rows.Scan(&rec.RunID, &rec.Pipeline, &rec.RunDate, &rec.Bucket, &rec.Key,
			&rec.Rows, &rec.Countries, &incomplete, &rec.StatusCode, &rec.Message,
			&started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if err := json.Unmarshal([]byte(incomplete), &rec.Incomplete); err != nil {
			return nil, fmt.Errorf("decoding incomplete countries: %w", err)
		}
		if rec.StartedAt, err = parseLedgerTime(started); err != nil {
			return nil, fmt.Errorf("run %s started_at: %w", rec.RunID, err)
		}
		if rec.FinishedAt, err = parseLedgerTime(finished); err != nil {
			return nil, fmt.Errorf("run %s finished_at: %w", rec.RunID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// parseLedgerTime reads a stored timestamp. Ledgers created with DATETIME
// columns come back from the driver as RFC 3339 text.
func parseLedgerTime(s string) (time.Time, error) {
	if t, err := time.Parse(sqliteTimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t.UTC(), nil
}

// Close closes the database.
func (l *SQLiteLedger) Close() error { return l.db.Close() }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
