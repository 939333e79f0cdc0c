package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/at-addrcompare/internal/address"
	"github.com/at-addrcompare/internal/errors"
	"github.com/at-addrcompare/internal/interpolation"
	"github.com/at-addrcompare/internal/logging"
	"github.com/at-addrcompare/internal/normalize"
)

// MapData is the normalized map data source.
type MapData struct {
	Addresses address.Set
	// Abbreviated holds canonical streets for which at least one record
	// spelled the name with a short form.
	Abbreviated address.StreetSet
	Diagnostics []Diagnostic
}

// RegisterData is the normalized register source.
type RegisterData struct {
	Addresses   address.Set
	Diagnostics []Diagnostic
}

// Columns names the register columns the builder reads.
type Columns struct {
	GKZ    string `mapstructure:"gkz"`
	Street string `mapstructure:"street"`
	Number string `mapstructure:"number"`
}

// DefaultColumns matches the Austrian address register export.
func DefaultColumns() Columns {
	return Columns{GKZ: "gkz", Street: "strasse", Number: "nummer"}
}

// Builder normalizes raw source records. It holds no per-build state, so one
// Builder can serve many builds.
type Builder struct {
	canon  *normalize.Canonicalizer
	logger zerolog.Logger
}

// NewBuilder returns a Builder folding street names with canon and logging
// diagnostics to logger.
func NewBuilder(canon *normalize.Canonicalizer, logger zerolog.Logger) *Builder {
	return &Builder{canon: canon, logger: logger}
}

// BuildMapData normalizes map data elements. Elements carrying an
// interpolation tag are expanded from their two endpoint nodes; all others go
// through plain extraction. A nil or empty slice gives empty sets.
func (b *Builder) BuildMapData(elements []Element) MapData {
	defer logging.Timing(b.logger, "build map data")()

	idx := NewIndex(elements)
	out := MapData{
		Addresses:   address.Set{},
		Abbreviated: address.StreetSet{},
	}

	for i := 0; i < idx.Len(); i++ {
		e := idx.At(i)
		if scheme, ok := e.Tags[address.TagInterpolation]; ok {
			b.interpolate(idx, e, scheme, &out)
			continue
		}

		raw, ok := address.OSM.Extract(e.Tags)
		if !ok {
			if address.OSM.HasAddressTags(e.Tags) {
				b.report(&out.Diagnostics, Diagnostic{
					Source: SourceMap,
					Record: e.Ref(),
					Kind:   KindIncompleteAddress,
					Reason: "missing or empty street or house number",
				})
			}
			continue
		}

		a := raw.Canonical(b.canon)
		out.Addresses.Add(a)
		if b.canon.CheckAbbreviation(raw.Street) {
			out.Abbreviated.Add(a.Street)
		}
	}

	b.logger.Debug().
		Int("elements", idx.Len()).
		Int("addresses", len(out.Addresses)).
		Int("abbreviated_streets", len(out.Abbreviated)).
		Int("diagnostics", len(out.Diagnostics)).
		Msg("map data built")
	return out
}

func (b *Builder) interpolate(idx *Index, way Element, scheme string, out *MapData) {
	diag := func(kind Kind, format string, args ...interface{}) {
		b.report(&out.Diagnostics, Diagnostic{
			Source: SourceMap,
			Record: way.Ref(),
			Kind:   kind,
			Reason: fmt.Sprintf(format, args...),
		})
	}

	if len(way.Nodes) != 2 {
		diag(KindInterpolation, "expected 2 endpoint references, got %d", len(way.Nodes))
		return
	}

	var endpoints [2]address.Address
	for i, id := range way.Nodes {
		node, ok := idx.Node(id)
		if !ok {
			diag(KindUnresolvedReference, "endpoint node/%d not in dataset", id)
			return
		}
		a, ok := address.OSM.Extract(node.Tags)
		if !ok {
			diag(KindInterpolation, "endpoint %s has no usable address", node.Ref())
			return
		}
		endpoints[i] = a
	}

	street := b.canon.Canonicalize(endpoints[0].Street)
	expanded, err := interpolation.Expand(scheme, street, endpoints[0].HouseNumber, endpoints[1].HouseNumber)
	if err != nil {
		kind := KindInterpolation
		if errors.Is(err, errors.ErrUnsupported) {
			kind = KindUnsupportedScheme
		}
		diag(kind, "%v", err)
		return
	}

	for a := range expanded {
		out.Addresses.Add(a)
	}
}

// BuildRegister normalizes register records of municipality gkz. Rows of other
// municipalities are ignored; rows whose code does not parse are reported.
func (b *Builder) BuildRegister(records []Record, gkz int, cols Columns) RegisterData {
	defer logging.Timing(b.logger, "build register")()

	extractor := address.Extractor{StreetKey: cols.Street, NumberKey: cols.Number}
	out := RegisterData{Addresses: address.Set{}}

	for i, rec := range records {
		ref := "row " + strconv.Itoa(i+1)

		code, err := strconv.Atoi(strings.TrimSpace(rec[cols.GKZ]))
		if err != nil {
			b.report(&out.Diagnostics, Diagnostic{
				Source: SourceRegister,
				Record: ref,
				Kind:   KindMunicipalityCode,
				Reason: fmt.Sprintf("%s %q is not a number", cols.GKZ, rec[cols.GKZ]),
			})
			continue
		}
		if code != gkz {
			continue
		}

		raw, ok := extractor.Extract(rec)
		if !ok {
			b.report(&out.Diagnostics, Diagnostic{
				Source: SourceRegister,
				Record: ref,
				Kind:   KindIncompleteAddress,
				Reason: "missing or empty street or house number",
			})
			continue
		}
		out.Addresses.Add(raw.Canonical(b.canon))
	}

	b.logger.Debug().
		Int("records", len(records)).
		Int("addresses", len(out.Addresses)).
		Int("diagnostics", len(out.Diagnostics)).
		Msg("register built")
	return out
}

func (b *Builder) report(diags *[]Diagnostic, d Diagnostic) {
	b.logger.Warn().EmbedObject(d).Msg("skipping record")
	*diags = append(*diags, d)
}
