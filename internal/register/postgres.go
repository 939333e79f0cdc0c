package register

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"

	"github.com/at-addrcompare/internal/dataset"
	"github.com/at-addrcompare/internal/errors"
)

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresSource reads register rows from a table holding one row per
// address, with at least the municipality code, street and house number
// columns.
type PostgresSource struct {
	db      *sql.DB
	table   string
	columns dataset.Columns
}

// OpenPostgres connects to dsn and checks the connection.
func OpenPostgres(ctx context.Context, dsn, table string, columns dataset.Columns) (*PostgresSource, error) {
	for field, ident := range map[string]string{
		"table":  table,
		"gkz":    columns.GKZ,
		"street": columns.Street,
		"number": columns.Number,
	} {
		if !reIdentifier.MatchString(ident) {
			return nil, errors.NewValidationError(field, ident, "not a plain SQL identifier")
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewPostgresSource(db, table, columns), nil
}

// NewPostgresSource wraps an existing connection pool. table and the column
// names are trusted.
func NewPostgresSource(db *sql.DB, table string, columns dataset.Columns) *PostgresSource {
	return &PostgresSource{db: db, table: table, columns: columns}
}

// Close closes the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

// Records selects the rows of municipality gkz.
func (s *PostgresSource) Records(ctx context.Context, gkz int) ([]dataset.Record, error) {
	query := fmt.Sprintf(
		`SELECT %[1]s::text, COALESCE(%[2]s, ''), COALESCE(%[3]s, '') FROM %[4]s WHERE %[1]s::text = $1`,
		s.columns.GKZ, s.columns.Street, s.columns.Number, s.table)

	rows, err := s.db.QueryContext(ctx, query, fmt.Sprint(gkz))
	if err != nil {
		return nil, fmt.Errorf("failed to query register: %w", err)
	}
	defer rows.Close()

	var records []dataset.Record
	for rows.Next() {
		var code, street, number string
		if err := rows.Scan(&code, &street, &number); err != nil {
			return nil, fmt.Errorf("failed to scan register row: %w", err)
		}
		records = append(records, dataset.Record{
			s.columns.GKZ:    code,
			s.columns.Street: street,
			s.columns.Number: number,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read register rows: %w", err)
	}
	return records, nil
}
