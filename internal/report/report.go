// Package report renders a reconcile.Result for people and machines: plain
// text, HTML, JSON, YAML and Excel workbooks.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/at-addrcompare/internal/errors"
	"github.com/at-addrcompare/internal/reconcile"
)

// TimeLayout is used for the processing time shown in reports.
const TimeLayout = "2006-01-02 15:04"

// Unknown stands in for a completeness that cannot be computed.
const Unknown = "?"

// Meta describes the run a report belongs to.
type Meta struct {
	GKZ         int
	Generated   time.Time
	RunID       string
	Diagnostics int
}

// Renderer writes a report for res.
type Renderer interface {
	Render(w io.Writer, res reconcile.Result, meta Meta) error
}

var renderers = map[string]Renderer{
	"text": Text{},
	"html": HTML{},
	"json": JSON{Indent: "  "},
	"yaml": YAML{},
	"xlsx": XLSX{},
}

// Formats lists the format names ForFormat accepts.
func Formats() []string {
	out := make([]string, 0, len(renderers))
	for name := range renderers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ForFormat returns the renderer for name.
func ForFormat(name string) (Renderer, error) {
	r, ok := renderers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("report format %q (want one of %s): %w",
			name, strings.Join(Formats(), ", "), errors.ErrUnsupported)
	}
	return r, nil
}

var contentTypes = map[string]string{
	"text": "text/plain; charset=utf-8",
	"html": "text/html; charset=utf-8",
	"json": "application/json",
	"yaml": "application/yaml",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ContentType returns the MIME type of format, or application/octet-stream
// for unknown formats.
func ContentType(format string) string {
	if ct, ok := contentTypes[strings.ToLower(format)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatPercent formats a completeness such as 87.5 as "87.5%", whole numbers
// keep one decimal ("50.0%"). An unknown completeness is "?".
func FormatPercent(pct float64, ok bool) string {
	if !ok {
		return Unknown
	}
	s := strconv.FormatFloat(Round2(pct), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

// Bucket maps a street's completeness to a CSS class: c0 when the register
// has no address on the street, otherwise c20 up to c100 in steps of 20.
func Bucket(r reconcile.StreetReport) string {
	pct, ok := r.Completeness()
	if !ok {
		return "c0"
	}
	pct = Round2(pct)
	switch {
	case pct <= 20:
		return "c20"
	case pct <= 40:
		return "c40"
	case pct <= 60:
		return "c60"
	case pct <= 80:
		return "c80"
	default:
		return "c100"
	}
}

// row is the per-street view shared by the text, HTML and Excel renderers.
type row struct {
	Name          string
	Percent       string
	Bucket        string
	Count         int
	NotInMap      []string
	NotInRegister []string
	Abbreviated   bool
}

type view struct {
	GKZ         int
	Time        string
	Total       string
	RunID       string
	Diagnostics int
	Streets     []row
	AnyAbbrev   bool
}

func newView(res reconcile.Result, meta Meta) view {
	v := view{
		GKZ:         meta.GKZ,
		Time:        meta.Generated.Format(TimeLayout),
		Total:       FormatPercent(res.Completeness()),
		RunID:       meta.RunID,
		Diagnostics: meta.Diagnostics,
	}
	for _, s := range res.Sorted() {
		v.Streets = append(v.Streets, row{
			Name:          s.Name,
			Percent:       FormatPercent(s.Report.Completeness()),
			Bucket:        Bucket(s.Report),
			Count:         s.Report.HousenumberCountInRegister,
			NotInMap:      s.Report.MissingFromMapData,
			NotInRegister: s.Report.MissingFromRegister,
			Abbreviated:   s.Report.UsesAbbreviation,
		})
		if s.Report.UsesAbbreviation {
			v.AnyAbbrev = true
		}
	}
	return v
}
