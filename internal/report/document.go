package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/at-addrcompare/internal/reconcile"
)

// Document is the serializable form of a report. Completeness values are
// rounded to two decimals and null when unknown.
type Document struct {
	GKZ                      int           `json:"gkz" yaml:"gkz"`
	RunID                    string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Generated                string        `json:"generated" yaml:"generated"`
	Completeness             *float64      `json:"completeness" yaml:"completeness"`
	TotalRegisterAddresses   int           `json:"total_register_addresses" yaml:"total_register_addresses"`
	TotalMissingFromMapData  int           `json:"total_missing_from_map_data" yaml:"total_missing_from_map_data"`
	TotalMissingFromRegister int           `json:"total_missing_from_register" yaml:"total_missing_from_register"`
	Diagnostics              int           `json:"diagnostics" yaml:"diagnostics"`
	Streets                  []StreetEntry `json:"streets" yaml:"streets"`
}

// StreetEntry is one street of a Document.
type StreetEntry struct {
	Name         string   `json:"name" yaml:"name"`
	Completeness *float64 `json:"completeness" yaml:"completeness"`

	reconcile.StreetReport `yaml:",inline"`
}

// NewDocument builds the Document for res.
func NewDocument(res reconcile.Result, meta Meta) Document {
	doc := Document{
		GKZ:                      meta.GKZ,
		RunID:                    meta.RunID,
		Generated:                meta.Generated.UTC().Format(time.RFC3339),
		Completeness:             percentPtr(res.Completeness()),
		TotalRegisterAddresses:   res.TotalRegisterAddresses,
		TotalMissingFromMapData:  res.TotalMissingFromMapData,
		TotalMissingFromRegister: res.TotalMissingFromRegister(),
		Diagnostics:              meta.Diagnostics,
		Streets:                  []StreetEntry{},
	}
	for _, s := range res.Sorted() {
		doc.Streets = append(doc.Streets, StreetEntry{
			Name:         s.Name,
			Completeness: percentPtr(s.Report.Completeness()),
			StreetReport: s.Report,
		})
	}
	return doc
}

func percentPtr(pct float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	v := Round2(pct)
	return &v
}

// JSON renders a Document as JSON.
type JSON struct {
	Indent string
}

func (j JSON) Render(w io.Writer, res reconcile.Result, meta Meta) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", j.Indent)
	return enc.Encode(NewDocument(res, meta))
}

// YAML renders a Document as YAML.
type YAML struct{}

func (YAML) Render(w io.Writer, res reconcile.Result, meta Meta) error {
	return yaml.NewEncoder(w).Encode(NewDocument(res, meta))
}
