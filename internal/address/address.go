// Package address defines the normalized (street, house number) pair that both
// address sources are reduced to, sets of them, and extraction of a pair from
// a raw tag mapping.
package address

import (
	"sort"

	"github.com/at-addrcompare/internal/normalize"
)

// Address is a street and house number. Street is canonical when the Address
// sits in a Set built by the dataset package; HouseNumber is always
// normalized.
type Address struct {
	Street      string `json:"street" yaml:"street"`
	HouseNumber string `json:"housenumber" yaml:"housenumber"`
}

// New normalizes street and number and reports false when either is empty
// afterwards.
func New(street, number string) (Address, bool) {
	a := Address{
		Street:      normalize.Street(street),
		HouseNumber: normalize.HouseNumber(number),
	}
	if a.Street == "" || a.HouseNumber == "" {
		return Address{}, false
	}
	return a, true
}

func (a Address) String() string {
	return a.Street + " " + a.HouseNumber
}

// Less orders by street, then house number, both by byte value.
func (a Address) Less(b Address) bool {
	if a.Street != b.Street {
		return a.Street < b.Street
	}
	return a.HouseNumber < b.HouseNumber
}

// Set is a set of unique addresses.
type Set map[Address]struct{}

// NewSet returns a Set holding addrs.
func NewSet(addrs ...Address) Set {
	s := make(Set, len(addrs))
	for _, a := range addrs {
		s[a] = struct{}{}
	}
	return s
}

// Add inserts a.
func (s Set) Add(a Address) {
	s[a] = struct{}{}
}

// Contains reports whether a is in s.
func (s Set) Contains(a Address) bool {
	_, ok := s[a]
	return ok
}

// Union returns a new Set with the members of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for a := range s {
		out[a] = struct{}{}
	}
	for a := range other {
		out[a] = struct{}{}
	}
	return out
}

// Difference returns a new Set with the members of s not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for a := range s {
		if !other.Contains(a) {
			out[a] = struct{}{}
		}
	}
	return out
}

// Intersection returns a new Set with the members in both s and other.
func (s Set) Intersection(other Set) Set {
	out := make(Set)
	for a := range s {
		if other.Contains(a) {
			out[a] = struct{}{}
		}
	}
	return out
}

// Streets returns the streets that appear in s.
func (s Set) Streets() StreetSet {
	out := make(StreetSet)
	for a := range s {
		out[a.Street] = struct{}{}
	}
	return out
}

// Sorted returns the members of s ordered by Less.
func (s Set) Sorted() []Address {
	out := make([]Address, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// StreetSet is a set of street names.
type StreetSet map[string]struct{}

// NewStreetSet returns a StreetSet holding names.
func NewStreetSet(names ...string) StreetSet {
	s := make(StreetSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts name.
func (s StreetSet) Add(name string) {
	s[name] = struct{}{}
}

// Contains reports whether name is in s.
func (s StreetSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Union returns a new StreetSet with the members of s and other.
func (s StreetSet) Union(other StreetSet) StreetSet {
	out := make(StreetSet, len(s)+len(other))
	for n := range s {
		out[n] = struct{}{}
	}
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Sorted returns the names in ascending order.
func (s StreetSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
