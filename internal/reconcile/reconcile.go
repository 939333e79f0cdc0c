// Package reconcile compares the normalized map data and register address sets
// street by street.
package reconcile

import (
	"math"
	"sort"

	"github.com/at-addrcompare/internal/address"
)

// StreetReport holds the comparison for one canonical street.
type StreetReport struct {
	// HousenumberCountInRegister counts register addresses on the street.
	HousenumberCountInRegister int `json:"housenumber_count_in_register" yaml:"housenumber_count_in_register"`
	// MissingFromMapData lists register house numbers absent from map data.
	MissingFromMapData []string `json:"missing_from_map_data" yaml:"missing_from_map_data"`
	// MissingFromRegister lists map data house numbers absent from the register.
	MissingFromRegister []string `json:"missing_from_register" yaml:"missing_from_register"`
	// UsesAbbreviation is set when map data spelled the street with a short form.
	UsesAbbreviation bool `json:"uses_abbreviation" yaml:"uses_abbreviation"`
}

// Completeness returns the share of register addresses present in map data,
// in percent. ok is false when the register has no address on the street.
func (r StreetReport) Completeness() (pct float64, ok bool) {
	return completeness(len(r.MissingFromMapData), r.HousenumberCountInRegister)
}

// Street pairs a canonical street name with its report.
type Street struct {
	Name   string
	Report StreetReport
}

// Result is the outcome of one reconciliation. It is plain data and can be
// serialized as is.
type Result struct {
	Streets                 map[string]StreetReport `json:"streets" yaml:"streets"`
	TotalRegisterAddresses  int                     `json:"total_register_addresses" yaml:"total_register_addresses"`
	TotalMissingFromMapData int                     `json:"total_missing_from_map_data" yaml:"total_missing_from_map_data"`
}

// Sorted returns the streets in ascending name order.
func (r Result) Sorted() []Street {
	names := make([]string, 0, len(r.Streets))
	for n := range r.Streets {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]Street, len(names))
	for i, n := range names {
		out[i] = Street{Name: n, Report: r.Streets[n]}
	}
	return out
}

// Completeness returns the overall completeness in percent. ok is false when
// the register holds no address at all.
func (r Result) Completeness() (pct float64, ok bool) {
	return completeness(r.TotalMissingFromMapData, r.TotalRegisterAddresses)
}

// TotalMissingFromRegister counts map data addresses absent from the register.
func (r Result) TotalMissingFromRegister() int {
	n := 0
	for _, s := range r.Streets {
		n += len(s.MissingFromRegister)
	}
	return n
}

// Reconcile compares mapAddrs against registerAddrs. Every street in either
// set gets exactly one report. abbreviated marks streets whose map data used
// a short form; names not in either set are ignored. The inputs are not
// modified.
func Reconcile(mapAddrs, registerAddrs address.Set, abbreviated address.StreetSet) Result {
	type acc struct {
		count         int
		notInMap      []string
		notInRegister []string
	}

	streets := make(map[string]*acc)
	for name := range mapAddrs.Streets().Union(registerAddrs.Streets()) {
		streets[name] = &acc{}
	}

	for a := range mapAddrs.Difference(registerAddrs) {
		s := streets[a.Street]
		s.notInRegister = append(s.notInRegister, a.HouseNumber)
	}
	for a := range registerAddrs.Difference(mapAddrs) {
		s := streets[a.Street]
		s.notInMap = append(s.notInMap, a.HouseNumber)
	}
	for a := range registerAddrs {
		streets[a.Street].count++
	}

	res := Result{Streets: make(map[string]StreetReport, len(streets))}
	for name, s := range streets {
		sort.Strings(s.notInMap)
		sort.Strings(s.notInRegister)

		res.Streets[name] = StreetReport{
			HousenumberCountInRegister: s.count,
			MissingFromMapData:         nonNil(s.notInMap),
			MissingFromRegister:        nonNil(s.notInRegister),
			UsesAbbreviation:           abbreviated.Contains(name),
		}
		res.TotalRegisterAddresses += s.count
		res.TotalMissingFromMapData += len(s.notInMap)
	}
	return res
}

func completeness(missing, total int) (float64, bool) {
	if total == 0 {
		return math.NaN(), false
	}
	return 100 - float64(missing)/float64(total)*100, true
}

// nonNil keeps empty lists serializing as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
