package consolidate

import (
	"strings"

	"rfpmerge/internal"
	"rfpmerge/internal/config"
	"rfpmerge/internal/sheet"
	"rfpmerge/internal/util"
)

// MatchOptions bound the matcher's scan window. The zero value is unusable;
// build one from config with matchOptions.
type MatchOptions struct {
	// Threshold is the aggregate-similarity cutoff in [0,100]. A column
	// scoring above it is common, at or below it is supplier-only.
	Threshold float64

	// MaxColumns caps how many template columns are classified at all.
	MaxColumns int

	// ScanRows caps how deep the supplier column is read.
	ScanRows int
}

func matchOptions(cfg config.Config) MatchOptions {
	return MatchOptions{
		Threshold:  cfg.MatchThreshold,
		MaxColumns: cfg.MatchMaxColumns,
		ScanRows:   cfg.MatchScanRows,
	}
}

// MatchColumns classifies the supplier sheet's columns against the template.
// Columns are compared by aggregate content similarity, not per-cell
// alignment, so row insertions and reordering on the supplier side do not
// break the match. Columns past the scan window are never classified.
func MatchColumns(template, supplier *sheet.Sheet, opts MatchOptions) internal.ColumnMatch {
	result := internal.ColumnMatch{
		CommonColumns:       []int{},
		MismatchedCells:     []internal.CellRef{},
		SupplierOnlyColumns: []int{},
	}

	templateRows, templateCols := template.Dims()
	supplierRows, _ := supplier.Dims()
	if supplierRows > opts.ScanRows {
		supplierRows = opts.ScanRows
	}

	maxCol := templateCols
	if maxCol > opts.MaxColumns {
		maxCol = opts.MaxColumns
	}

	for col := 1; col <= maxCol; col++ {
		templateValues := columnValues(template, col, templateRows)
		supplierValues := columnValues(supplier, col, supplierRows)
		if len(templateValues) == 0 && len(supplierValues) == 0 {
			continue
		}

		score := util.Ratio(strings.Join(templateValues, " "), strings.Join(supplierValues, " "))
		if score > opts.Threshold {
			result.CommonColumns = append(result.CommonColumns, col)
			if score < 100 {
				result.MismatchedCells = append(result.MismatchedCells,
					mismatchedCells(supplier, col, supplierRows, templateValues)...)
			}
			continue
		}
		if len(supplierValues) > 0 {
			result.SupplierOnlyColumns = append(result.SupplierOnlyColumns, col)
		}
	}

	return result
}

func columnValues(s *sheet.Sheet, col, maxRow int) []string {
	out := make([]string, 0)
	for row := 1; row <= maxRow; row++ {
		if value := s.CellValue(row, col); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// mismatchedCells flags supplier cells whose text does not occur anywhere in
// the template column. This is an anomaly marker for highlighting, not a
// positional diff.
func mismatchedCells(supplier *sheet.Sheet, col, maxRow int, templateValues []string) []internal.CellRef {
	known := make(map[string]struct{}, len(templateValues))
	for _, v := range templateValues {
		known[v] = struct{}{}
	}

	out := []internal.CellRef{}
	for row := 1; row <= maxRow; row++ {
		value := supplier.CellValue(row, col)
		if value == "" {
			continue
		}
		if _, ok := known[value]; !ok {
			out = append(out, internal.CellRef{Col: col, Row: row})
		}
	}
	return out
}
