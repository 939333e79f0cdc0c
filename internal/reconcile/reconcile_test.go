package reconcile

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-addrcompare/internal/address"
)

func set(pairs ...string) address.Set {
	s := address.Set{}
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Add(address.Address{Street: pairs[i], HouseNumber: pairs[i+1]})
	}
	return s
}

func TestReconcileEndToEnd(t *testing.T) {
	register := set("Hauptstrasse", "1", "Hauptstrasse", "2")
	mapData := set("Hauptstrasse", "1", "Hauptstrasse", "3")

	res := Reconcile(mapData, register, address.StreetSet{})

	require.Len(t, res.Streets, 1)
	assert.Equal(t, StreetReport{
		HousenumberCountInRegister: 2,
		MissingFromMapData:         []string{"2"},
		MissingFromRegister:        []string{"3"},
		UsesAbbreviation:           false,
	}, res.Streets["Hauptstrasse"])

	assert.Equal(t, 2, res.TotalRegisterAddresses)
	assert.Equal(t, 1, res.TotalMissingFromMapData)
	assert.Equal(t, 1, res.TotalMissingFromRegister())

	pct, ok := res.Completeness()
	assert.True(t, ok)
	assert.InDelta(t, 50.0, pct, 1e-9)
}

func TestReconcileStreetUniverse(t *testing.T) {
	register := set("Agasse", "1", "Bgasse", "2")
	mapData := set("Bgasse", "2", "Cweg", "5", "Cweg", "4")
	abbrev := address.NewStreetSet("Cweg", "Nowhere")

	res := Reconcile(mapData, register, abbrev)

	var names []string
	for _, s := range res.Sorted() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Agasse", "Bgasse", "Cweg"}, names)

	assert.Equal(t, StreetReport{
		HousenumberCountInRegister: 1,
		MissingFromMapData:         []string{"1"},
		MissingFromRegister:        []string{},
	}, res.Streets["Agasse"])
	assert.Equal(t, StreetReport{
		HousenumberCountInRegister: 1,
		MissingFromMapData:         []string{},
		MissingFromRegister:        []string{},
	}, res.Streets["Bgasse"])
	assert.Equal(t, StreetReport{
		HousenumberCountInRegister: 0,
		MissingFromMapData:         []string{},
		MissingFromRegister:        []string{"4", "5"},
		UsesAbbreviation:           true,
	}, res.Streets["Cweg"])
}

func TestStreetWithoutRegisterAddressesHasUnknownCompleteness(t *testing.T) {
	res := Reconcile(set("Neubaugasse", "1"), address.Set{}, nil)

	pct, ok := res.Streets["Neubaugasse"].Completeness()
	assert.False(t, ok)
	assert.True(t, math.IsNaN(pct))

	_, ok = res.Completeness()
	assert.False(t, ok)
}

func TestCompleteness(t *testing.T) {
	tests := []struct {
		name   string
		report StreetReport
		want   float64
	}{
		{"all present", StreetReport{HousenumberCountInRegister: 4, MissingFromMapData: []string{}}, 100},
		{"none present", StreetReport{HousenumberCountInRegister: 2, MissingFromMapData: []string{"1", "2"}}, 0},
		{"one of three", StreetReport{HousenumberCountInRegister: 3, MissingFromMapData: []string{"1", "2"}}, 100.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.report.Completeness()
			assert.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestReconcileEmpty(t *testing.T) {
	res := Reconcile(address.Set{}, address.Set{}, address.StreetSet{})
	assert.Empty(t, res.Streets)
	assert.Zero(t, res.TotalRegisterAddresses)
	assert.Empty(t, res.Sorted())
}

func TestReconcileLexicographicOrder(t *testing.T) {
	res := Reconcile(set("Ring", "10", "Ring", "2", "Ring", "1a"), address.Set{}, nil)
	assert.Equal(t, []string{"10", "1a", "2"}, res.Streets["Ring"].MissingFromRegister)
}

// Randomized check of the structural invariants.
func TestReconcileInvariants(t *testing.T) {
	faker := gofakeit.New(7)
	streets := []string{"Hauptplatz", "Kirchgasse", "Am Anger", "St. Peter", "Feldweg"}

	for round := 0; round < 50; round++ {
		mapData, register := address.Set{}, address.Set{}
		nMap, nRegister := faker.Number(0, 40), faker.Number(0, 40)
		for i := 0; i < nMap; i++ {
			mapData.Add(address.Address{Street: faker.RandomString(streets), HouseNumber: faker.Numerify("#")})
		}
		for i := 0; i < nRegister; i++ {
			register.Add(address.Address{Street: faker.RandomString(streets), HouseNumber: faker.Numerify("#")})
		}

		res := Reconcile(mapData, register, nil)

		universe := mapData.Streets().Union(register.Streets())
		require.Len(t, res.Streets, len(universe))

		total, missing := 0, 0
		for name, r := range res.Streets {
			require.True(t, universe.Contains(name))
			assertStrictlySorted(t, r.MissingFromMapData)
			assertStrictlySorted(t, r.MissingFromRegister)

			for _, n := range r.MissingFromMapData {
				a := address.Address{Street: name, HouseNumber: n}
				assert.True(t, register.Contains(a))
				assert.False(t, mapData.Contains(a))
			}
			for _, n := range r.MissingFromRegister {
				a := address.Address{Street: name, HouseNumber: n}
				assert.True(t, mapData.Contains(a))
				assert.False(t, register.Contains(a))
			}
			total += r.HousenumberCountInRegister
			missing += len(r.MissingFromMapData)
		}
		assert.Equal(t, len(register), total)
		assert.Equal(t, total, res.TotalRegisterAddresses)
		assert.Equal(t, missing, res.TotalMissingFromMapData)

		// same inputs, same result
		assert.Equal(t, res, Reconcile(mapData, register, nil))
	}
}

func assertStrictlySorted(t *testing.T, s []string) {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			t.Fatalf("not strictly increasing: %q", s)
		}
	}
}

func TestResultJSON(t *testing.T) {
	res := Reconcile(set("Hauptstrasse", "1"), set("Hauptstrasse", "1"), nil)
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"streets": {
			"Hauptstrasse": {
				"housenumber_count_in_register": 1,
				"missing_from_map_data": [],
				"missing_from_register": [],
				"uses_abbreviation": false
			}
		},
		"total_register_addresses": 1,
		"total_missing_from_map_data": 0
	}`, string(data))
}
