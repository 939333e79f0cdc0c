package dataset

import "github.com/rs/zerolog"

// Source names a data source in diagnostics.
type Source string

const (
	SourceMap      Source = "map"
	SourceRegister Source = "register"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindIncompleteAddress   Kind = "incomplete_address"
	KindInterpolation       Kind = "invalid_interpolation"
	KindUnsupportedScheme   Kind = "unsupported_scheme"
	KindUnresolvedReference Kind = "unresolved_reference"
	KindMunicipalityCode    Kind = "invalid_municipality_code"
)

// Diagnostic describes one record that was skipped, or contributed less than
// it could have.
type Diagnostic struct {
	Source Source `json:"source" yaml:"source"`
	Record string `json:"record" yaml:"record"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Reason string `json:"reason" yaml:"reason"`
}

// MarshalZerologObject lets a Diagnostic be logged with Object or EmbedObject.
func (d Diagnostic) MarshalZerologObject(e *zerolog.Event) {
	e.Str("source", string(d.Source)).
		Str("record", d.Record).
		Str("kind", string(d.Kind)).
		Str("reason", d.Reason)
}

// CountByKind tallies diagnostics per kind.
func CountByKind(diags []Diagnostic) map[Kind]int {
	out := make(map[Kind]int)
	for _, d := range diags {
		out[d.Kind]++
	}
	return out
}
