// Package register reads the authoritative address register, either from a
// delimited export file or from a Postgres table.
package register

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/at-addrcompare/internal/dataset"
)

// Source yields the raw register records of municipality gkz. Sources may
// return rows of other municipalities too; the dataset builder filters.
type Source interface {
	Records(ctx context.Context, gkz int) ([]dataset.Record, error)
}

// CSVSource reads a delimited register export with a header row.
type CSVSource struct {
	Path      string
	Delimiter rune
	Logger    zerolog.Logger
}

// NewCSVSource returns a CSVSource for the semicolon separated export at path.
func NewCSVSource(path string, logger zerolog.Logger) *CSVSource {
	return &CSVSource{Path: path, Delimiter: ';', Logger: logger}
}

// Records reads the whole file. The file is closed on every return path.
func (s *CSVSource) Records(ctx context.Context, _ int) ([]dataset.Record, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open register %s: %w", s.Path, err)
	}
	defer file.Close()

	return ReadCSV(ctx, file, s.Delimiter, s.Logger)
}

// ReadCSV reads delimited records from r. The first row names the columns.
// Rows that cannot be parsed are logged and skipped.
func ReadCSV(ctx context.Context, r io.Reader, delimiter rune, logger zerolog.Logger) ([]dataset.Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], "\ufeff")
	}

	var (
		records []dataset.Record
		skipped int
	)
	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping unreadable register row")
			skipped++
			continue
		}
		if len(row) != len(columns) {
			logger.Warn().
				Int("line", line).
				Int("fields", len(row)).
				Int("want", len(columns)).
				Msg("skipping register row with wrong field count")
			skipped++
			continue
		}

		rec := make(dataset.Record, len(columns))
		for i, col := range columns {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}

	logger.Debug().Int("records", len(records)).Int("skipped", skipped).Msg("register read")
	return records, nil
}
