package register

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/at-addrcompare/internal/dataset"
)

// Component is one labelled part of a parsed free-text address.
type Component struct {
	Label string
	Value string
}

// ParseFunc splits a free-text address into labelled components. The labels
// follow libpostal: "road" and "house_number" are the ones used here.
type ParseFunc func(address string) []Component

// PostalSplitter fills the street and number columns of records that only
// carry a combined address column.
type PostalSplitter struct {
	Parse         ParseFunc
	AddressColumn string
	Columns       dataset.Columns
	Logger        zerolog.Logger
}

// Split returns street and house number of address. The street keeps the
// casing of the input since the parser lower-cases its output.
func (p *PostalSplitter) Split(address string) (street, number string, ok bool) {
	for _, c := range p.Parse(address) {
		switch c.Label {
		case "road":
			street = restoreCase(address, c.Value)
		case "house_number":
			number = c.Value
		}
	}
	return street, number, street != "" && number != ""
}

// Apply splits the address column of every record whose street or number
// column is blank. Records are modified in place.
func (p *PostalSplitter) Apply(records []dataset.Record) {
	split, failed := 0, 0
	for i, rec := range records {
		if strings.TrimSpace(rec[p.Columns.Street]) != "" && strings.TrimSpace(rec[p.Columns.Number]) != "" {
			continue
		}
		raw := strings.TrimSpace(rec[p.AddressColumn])
		if raw == "" {
			continue
		}

		street, number, ok := p.Split(raw)
		if !ok {
			p.Logger.Debug().Str("address", raw).Int("row", i+1).Msg("could not split address")
			failed++
			continue
		}
		rec[p.Columns.Street] = street
		rec[p.Columns.Number] = number
		split++
	}
	p.Logger.Debug().Int("split", split).Int("failed", failed).Msg("split free-text addresses")
}

// SplitSource applies a PostalSplitter to the records of another Source.
type SplitSource struct {
	Source   Source
	Splitter *PostalSplitter
}

func (s SplitSource) Records(ctx context.Context, gkz int) ([]dataset.Record, error) {
	records, err := s.Source.Records(ctx, gkz)
	if err != nil {
		return nil, err
	}
	s.Splitter.Apply(records)
	return records, nil
}

// restoreCase finds value case-insensitively in original and returns the
// original spelling, or value when it cannot be located.
func restoreCase(original, value string) string {
	lower := strings.ToLower(original)
	if len(lower) != len(original) {
		return value
	}
	i := strings.Index(lower, strings.ToLower(value))
	if i < 0 {
		return value
	}
	return original[i : i+len(value)]
}
