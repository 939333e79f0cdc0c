package address

import "github.com/at-addrcompare/internal/normalize"

// Tag keys used by OpenStreetMap address data.
const (
	TagStreet        = "addr:street"
	TagPlace         = "addr:place"
	TagHouseNumber   = "addr:housenumber"
	TagInterpolation = "addr:interpolation"
)

// Extractor pulls an address out of a raw attribute mapping. StreetKey wins
// over PlaceKey when both are present; PlaceKey may be empty.
type Extractor struct {
	StreetKey string
	PlaceKey  string
	NumberKey string
}

// OSM extracts addresses from OpenStreetMap tags.
var OSM = Extractor{
	StreetKey: TagStreet,
	PlaceKey:  TagPlace,
	NumberKey: TagHouseNumber,
}

// Extract returns the address carried by tags. The street is trimmed but not
// canonicalized, since callers need the raw spelling for abbreviation checks.
// ok is false when no street-like key or no number key is present, or when
// either value is blank.
func (e Extractor) Extract(tags map[string]string) (a Address, ok bool) {
	street, found := tags[e.StreetKey]
	if !found && e.PlaceKey != "" {
		street, found = tags[e.PlaceKey]
	}
	if !found {
		return Address{}, false
	}

	number, found := tags[e.NumberKey]
	if !found {
		return Address{}, false
	}

	return New(street, number)
}

// HasAddressTags reports whether tags carry any of the keys Extract reads.
// Records without any are plain geometry and not worth a diagnostic.
func (e Extractor) HasAddressTags(tags map[string]string) bool {
	for _, k := range []string{e.StreetKey, e.PlaceKey, e.NumberKey} {
		if k == "" {
			continue
		}
		if _, ok := tags[k]; ok {
			return true
		}
	}
	return false
}

// Canonical returns a with its street folded by c.
func (a Address) Canonical(c *normalize.Canonicalizer) Address {
	return Address{Street: c.Canonicalize(a.Street), HouseNumber: a.HouseNumber}
}
