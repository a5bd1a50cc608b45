package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// DefaultTable holds the codes when catalog.table is not set.
const DefaultTable = "country_codes"

// PostgresSource reads enabled codes from a table with columns
// (code text, enabled bool, position int).
type PostgresSource struct {
	db    *sql.DB
	table string
}

// NewPostgresSource wraps an open database.
func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{db: db, table: table}
}

// OpenPostgresSource connects with lib/pq and pings the database.
func OpenPostgresSource(databaseURL, table string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging catalog database: %w", err)
	}
	return NewPostgresSource(db, table), nil
}

// Codes returns enabled codes ordered by position, then code.
func (s *PostgresSource) Codes(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT code FROM %s WHERE enabled ORDER BY position, code`, pq.QuoteIdentifier(s.table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying country codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scanning country code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating country codes: %w", err)
	}
	return codes, nil
}

// Close closes the database.
func (s *PostgresSource) Close() error { return s.db.Close() }
