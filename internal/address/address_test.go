package address

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/at-addrcompare/internal/normalize"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		tags   map[string]string
		want   Address
		wantOK bool
	}{
		{
			name:   "street and number",
			tags:   map[string]string{"addr:street": " Hauptstrasse ", "addr:housenumber": " 12A "},
			want:   Address{Street: "Hauptstrasse", HouseNumber: "12a"},
			wantOK: true,
		},
		{
			name:   "place fallback",
			tags:   map[string]string{"addr:place": "Oberdorf ", "addr:housenumber": "3"},
			want:   Address{Street: "Oberdorf", HouseNumber: "3"},
			wantOK: true,
		},
		{
			name:   "street preferred over place",
			tags:   map[string]string{"addr:street": "Kirchweg", "addr:place": "Oberdorf", "addr:housenumber": "3"},
			want:   Address{Street: "Kirchweg", HouseNumber: "3"},
			wantOK: true,
		},
		{
			name:   "street not canonicalized",
			tags:   map[string]string{"addr:street": "Sankt Anna", "addr:housenumber": "1"},
			want:   Address{Street: "Sankt Anna", HouseNumber: "1"},
			wantOK: true,
		},
		{
			name: "no street-like key",
			tags: map[string]string{"addr:housenumber": "3"},
		},
		{
			name: "no number",
			tags: map[string]string{"addr:street": "Kirchweg"},
		},
		{
			name: "blank number",
			tags: map[string]string{"addr:street": "Kirchweg", "addr:housenumber": "  "},
		},
		{
			name: "blank street does not fall back to place",
			tags: map[string]string{"addr:street": " ", "addr:place": "Oberdorf", "addr:housenumber": "3"},
		},
		{
			name: "nil tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OSM.Extract(tt.tags)
			if ok != tt.wantOK {
				t.Fatalf("Extract() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
			if ok && (got.Street == "" || got.HouseNumber == "") {
				t.Errorf("Extract() returned an address with an empty component: %+v", got)
			}
		})
	}
}

func TestExtractRegisterColumns(t *testing.T) {
	e := Extractor{StreetKey: "strasse", NumberKey: "nummer"}
	got, ok := e.Extract(map[string]string{"gkz": "60101", "strasse": "Herrengasse", "nummer": "16B"})
	assert.True(t, ok)
	assert.Equal(t, Address{Street: "Herrengasse", HouseNumber: "16b"}, got)
}

func TestHasAddressTags(t *testing.T) {
	assert.False(t, OSM.HasAddressTags(map[string]string{"building": "yes"}))
	assert.True(t, OSM.HasAddressTags(map[string]string{"addr:housenumber": "1"}))
	assert.True(t, OSM.HasAddressTags(map[string]string{"addr:place": "x"}))
}

func TestCanonical(t *testing.T) {
	a := Address{Street: "Sankt Anna", HouseNumber: "4"}
	assert.Equal(t, Address{Street: "St. Anna", HouseNumber: "4"}, a.Canonical(normalize.Default()))
}

func TestSetOperations(t *testing.T) {
	a := NewSet(
		Address{"Hauptstrasse", "1"},
		Address{"Hauptstrasse", "3"},
		Address{"Kirchweg", "2"},
	)
	b := NewSet(
		Address{"Hauptstrasse", "1"},
		Address{"Hauptstrasse", "2"},
	)

	onlyA := a.Difference(b)
	onlyB := b.Difference(a)
	both := a.Intersection(b)

	assert.Equal(t, []Address{{"Hauptstrasse", "3"}, {"Kirchweg", "2"}}, onlyA.Sorted())
	assert.Equal(t, []Address{{"Hauptstrasse", "2"}}, onlyB.Sorted())
	assert.Empty(t, onlyA.Intersection(onlyB))
	assert.Empty(t, onlyA.Intersection(both))
	assert.Len(t, a.Union(b), 4)

	// operands untouched
	assert.Len(t, a, 3)
	assert.Len(t, b, 2)
}

func TestSortedIsDeterministic(t *testing.T) {
	s := NewSet(
		Address{"Bgasse", "10"},
		Address{"Agasse", "2"},
		Address{"Bgasse", "1"},
		Address{"Bgasse", "1a"},
	)
	want := []Address{{"Agasse", "2"}, {"Bgasse", "1"}, {"Bgasse", "10"}, {"Bgasse", "1a"}}
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, s.Sorted())
	}
}

func TestStreetSet(t *testing.T) {
	s := NewSet(Address{"B", "1"}, Address{"A", "1"}, Address{"B", "2"}).Streets()
	assert.Equal(t, []string{"A", "B"}, s.Sorted())
	assert.True(t, s.Contains("A"))
	assert.Equal(t, []string{"A", "B", "C"}, s.Union(NewStreetSet("C")).Sorted())
}
