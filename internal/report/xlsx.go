package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/at-addrcompare/internal/reconcile"
)

// SheetName is the worksheet holding the per-street rows.
const SheetName = "Streets"

var xlsxHeaders = []string{
	"Street", "Completeness", "Register addresses", "Not in OSM", "Not in GOV", "Abbreviated in OSM",
}

// XLSX renders an Excel workbook with one row per street and a total row.
type XLSX struct{}

func (XLSX) Render(w io.Writer, res reconcile.Result, meta Meta) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(xlsxHeaders), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	v := newView(res, meta)
	for i, s := range v.Streets {
		values := []interface{}{
			s.Name,
			s.Percent,
			s.Count,
			strings.Join(s.NotInMap, ", "),
			strings.Join(s.NotInRegister, ", "),
			s.Abbreviated,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", s.Name, err)
		}
	}

	total := []interface{}{
		fmt.Sprintf("Total (GKZ %d, %s)", v.GKZ, v.Time),
		v.Total,
		res.TotalRegisterAddresses,
	}
	cell, _ := excelize.CoordinatesToCellName(1, len(v.Streets)+2)
	if err := f.SetSheetRow(SheetName, cell, &total); err != nil {
		return fmt.Errorf("failed to write total row: %w", err)
	}

	if err := f.SetColWidth(SheetName, "A", "A", 35); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "F", 18); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
