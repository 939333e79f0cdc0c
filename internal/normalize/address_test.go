package normalize

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/at-addrcompare/internal/errors"
)

func TestCanonicalize(t *testing.T) {
	c := Default()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "saint expanded",
			input: "Sankt Anna",
			want:  "St. Anna",
		},
		{
			name:  "saint already short",
			input: "St. Anna",
			want:  "St. Anna",
		},
		{
			name:  "doctor and professor",
			input: "Doktor-Professor-Weg",
			want:  "Dr.-Prof.-Weg",
		},
		{
			name:  "hyphenated von",
			input: "Erzherzog-Johann-von-Österreich-Straße",
			want:  "Erzherzog-Johann-v.-Österreich-Straße",
		},
		{
			name:  "spaced von",
			input: "Bertha von Suttner Gasse",
			want:  "Bertha v. Suttner Gasse",
		},
		{
			name:  "no rule applies",
			input: "Hauptstrasse",
			want:  "Hauptstrasse",
		},
		{
			name:  "decomposed umlaut is composed",
			input: "Mu\u0308hlgasse",
			want:  "M\u00fchlgasse",
		},
		{
			name:  "von twice",
			input: "A von von B",
			want:  "A v. v. B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Canonicalize(tt.input); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeFoldToLong(t *testing.T) {
	c, err := NewCanonicalizer(DefaultRules(), FoldToLong)
	if err != nil {
		t.Fatalf("NewCanonicalizer() error = %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"St. Anna", "Sankt Anna"},
		{"Sankt Anna", "Sankt Anna"},
		{"Dr.-Karl-Renner-Ring", "Doktor-Karl-Renner-Ring"},
		{"Walther v. der Vogelweide", "Walther von der Vogelweide"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := c.Canonicalize(tt.input); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	faker := gofakeit.New(42)
	prefixes := []string{"", "Sankt ", "St. ", "Doktor-", "Professor ", "Dr. "}
	infixes := []string{" ", " von ", "-von-", " v. ", "-"}

	for _, direction := range []Direction{FoldToShort, FoldToLong} {
		c, err := NewCanonicalizer(DefaultRules(), direction)
		if err != nil {
			t.Fatalf("NewCanonicalizer() error = %v", err)
		}
		for i := 0; i < 500; i++ {
			name := faker.RandomString(prefixes) + faker.LastName() +
				faker.RandomString(infixes) + faker.StreetName()
			once := c.Canonicalize(name)
			if twice := c.Canonicalize(once); twice != once {
				t.Fatalf("%s: Canonicalize not idempotent for %q: %q then %q", direction, name, once, twice)
			}
		}
	}
}

func TestCheckAbbreviation(t *testing.T) {
	c := Default()

	tests := []struct {
		input string
		want  bool
	}{
		{"St. Anna", true},
		{"Sankt Anna", false},
		{"Dr.-Karl-Lueger-Platz", true},
		{"Doktor-Karl-Lueger-Platz", false},
		{"Hauptstraße", false},
		{"Ludwig v. Beethoven Gasse", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := c.CheckAbbreviation(tt.input); got != tt.want {
				t.Errorf("CheckAbbreviation(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if c.Canonicalize("Sankt Anna") != c.Canonicalize("St. Anna") {
		t.Errorf("long and short spellings should fold to the same street")
	}
}

func TestCheckAbbreviationIgnoresDirection(t *testing.T) {
	c, _ := NewCanonicalizer(DefaultRules(), FoldToLong)
	if !c.CheckAbbreviation("St. Anna") {
		t.Errorf("CheckAbbreviation should look for short forms when folding to long")
	}
}

func TestNewCanonicalizerRejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
	}{
		{"empty short", []Rule{{Expanded: "Sankt", Short: ""}}},
		{"empty expanded", []Rule{{Expanded: "", Short: "St."}}},
		{"short inside expanded", []Rule{{Expanded: "Strasse", Short: "Str"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCanonicalizer(tt.rules, FoldToShort)
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("NewCanonicalizer() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"", FoldToShort, false},
		{"short", FoldToShort, false},
		{"LONG", FoldToLong, false},
		{"sideways", FoldToShort, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHouseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" 12A ", "12a"},
		{"012", "012"},
		{"3/Stg 2", "3/stg 2"},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := HouseNumber(tt.input); got != tt.want {
				t.Errorf("HouseNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
