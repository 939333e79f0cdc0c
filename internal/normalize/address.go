package normalize

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/at-addrcompare/internal/errors"
)

// Rule pairs the expanded spelling of a street name token with its
// abbreviated form, e.g. "Sankt" and "St.".
type Rule struct {
	Expanded string `mapstructure:"expanded" yaml:"expanded"`
	Short    string `mapstructure:"short" yaml:"short"`
}

// Direction selects which side of a Rule is the canonical spelling.
type Direction int

const (
	// FoldToShort rewrites expanded forms to their abbreviations.
	FoldToShort Direction = iota
	// FoldToLong rewrites abbreviations to their expanded forms. Older
	// reports were produced this way.
	FoldToLong
)

func (d Direction) String() string {
	if d == FoldToLong {
		return "long"
	}
	return "short"
}

// ParseDirection accepts "short" or "long".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "short":
		return FoldToShort, nil
	case "long":
		return FoldToLong, nil
	}
	return FoldToShort, errors.NewValidationError("direction", s, `must be "short" or "long"`)
}

// DefaultRules returns the Austrian street name abbreviations.
func DefaultRules() []Rule {
	return []Rule{
		{Expanded: "Doktor", Short: "Dr."},
		{Expanded: "Professor", Short: "Prof."},
		{Expanded: "Sankt", Short: "St."},
		{Expanded: "-von-", Short: "-v.-"},
		{Expanded: " von ", Short: " v. "},
	}
}

// Canonicalizer folds spelling variants of street names into one canonical
// form. It is immutable and safe for concurrent use.
type Canonicalizer struct {
	rules     []Rule
	direction Direction
}

// NewCanonicalizer validates rules and returns a Canonicalizer applying them
// in order. A rule may not have an empty side, and neither side may contain
// the other, otherwise folding would not settle.
func NewCanonicalizer(rules []Rule, direction Direction) (*Canonicalizer, error) {
	own := make([]Rule, 0, len(rules))
	for i, r := range rules {
		r.Expanded = norm.NFC.String(r.Expanded)
		r.Short = norm.NFC.String(r.Short)
		field := fmt.Sprintf("rules[%d]", i)
		if r.Expanded == "" || r.Short == "" {
			return nil, errors.NewValidationError(field, r, "expanded and short forms must be non-empty")
		}
		if strings.Contains(r.Expanded, r.Short) || strings.Contains(r.Short, r.Expanded) {
			return nil, errors.NewValidationError(field, r, "one form contains the other")
		}
		own = append(own, r)
	}
	return &Canonicalizer{rules: own, direction: direction}, nil
}

// Default returns a Canonicalizer with DefaultRules folding to short forms.
func Default() *Canonicalizer {
	c, err := NewCanonicalizer(DefaultRules(), FoldToShort)
	if err != nil {
		panic(err)
	}
	return c
}

// Direction reports the folding direction.
func (c *Canonicalizer) Direction() Direction {
	return c.direction
}

// Rules returns a copy of the rule table.
func (c *Canonicalizer) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Canonicalize returns the canonical spelling of a street name. The result is
// NFC-normalized so that composed and decomposed umlauts compare equal.
// Canonicalize(Canonicalize(s)) == Canonicalize(s) for every s.
func (c *Canonicalizer) Canonicalize(name string) string {
	s := norm.NFC.String(name)

	// A replacement can expose another match across its boundary
	// (" von von " -> " v. von "), so repeat until nothing changes.
	for pass := 0; pass <= len(s); pass++ {
		before := s
		for _, r := range c.rules {
			from, to := r.Expanded, r.Short
			if c.direction == FoldToLong {
				from, to = to, from
			}
			s = strings.ReplaceAll(s, from, to)
		}
		if s == before {
			break
		}
	}
	return s
}

// CheckAbbreviation reports whether name already uses one of the short forms,
// independent of the folding direction.
func (c *Canonicalizer) CheckAbbreviation(name string) bool {
	s := norm.NFC.String(name)
	for _, r := range c.rules {
		if strings.Contains(s, r.Short) {
			return true
		}
	}
	return false
}

// HouseNumber normalizes a house number: surrounding whitespace is trimmed and
// letters are lower-cased. Nothing else is touched, "012" stays "012".
func HouseNumber(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Street trims a raw street name and puts it in NFC form. It does not fold
// abbreviations.
func Street(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}
