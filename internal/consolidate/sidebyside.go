package consolidate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rfpmerge/internal"
	"rfpmerge/internal/sheet"
)

// sideBySide merges every supplier's matched and unique columns into one
// combined output sheet per template sheet, preceded by a verbatim copy of
// the template. Returns the names of the combined sheets it produced.
func (s *Service) sideBySide(ctx context.Context, out *sheet.Workbook, copier *Copier, overlay *styleOverlay,
	templates []*sheet.Sheet, suppliers []string, supplierSheets map[string][]*sheet.Sheet,
	includeSummary bool, report *internal.RunReport) []string {

	combined := []string{}

	for idx, template := range templates {
		colors := colorCycle{}
		supplierColors := map[string]string{}

		common := []int{}
		seenCommon := map[int]bool{}
		supplierOnly := map[string][]int{}
		mismatches := map[string][]internal.CellRef{}

		for _, supplier := range suppliers {
			if _, ok := supplierColors[supplier]; !ok {
				supplierColors[supplier] = colors.Next()
			}
			match := MatchColumns(template, supplierSheets[supplier][idx], matchOptions(s.cfg))
			for _, col := range match.CommonColumns {
				if !seenCommon[col] {
					seenCommon[col] = true
					common = append(common, col)
				}
			}
			supplierOnly[supplier] = match.SupplierOnlyColumns
			mismatches[supplier] = match.MismatchedCells
		}

		queue := BuildInsertionQueue(common, suppliers, supplierOnly)
		if len(queue) == 0 {
			report.SheetsSkipped++
			s.warn(report, template.Name(), fmt.Sprintf("no common or unique columns found for sheet %q, skipped", template.Name()))
			continue
		}

		reference, err := out.AddSheet(template.Name() + " Template")
		if err != nil {
			report.SheetsSkipped++
			s.warn(report, template.Name(), fmt.Sprintf("create template sheet: %v", err))
			continue
		}
		copier.CopySheet(template, reference)

		target, err := out.AddSheet("Combined " + template.Name())
		if err != nil {
			report.SheetsSkipped++
			s.warn(report, template.Name(), fmt.Sprintf("create combined sheet: %v", err))
			continue
		}

		for i, item := range queue {
			targetCol := i + 1
			if item.Source == internal.SourceTemplate {
				copier.CopyColumn(template, target, item.Column, targetCol, nil)
				continue
			}

			source := supplierSheets[item.Source][idx]
			result := copier.CopyColumn(source, target, item.Column, targetCol, mismatches[item.Source])
			s.decorateSupplierColumn(target, overlay, targetCol, item.Source, supplierColors[item.Source], result)
			if includeSummary {
				s.appendColumnSummary(ctx, target, overlay, targetCol, result.LastRow)
			}
		}

		combined = append(combined, target.Name())
		report.SheetsWritten += 2
	}

	return combined
}

// decorateSupplierColumn labels a supplier-only column: the header cell gets
// the supplier's color and name, and the data rows get the same fill except
// where the mismatch highlight already landed.
func (s *Service) decorateSupplierColumn(target *sheet.Sheet, overlay *styleOverlay, col int, supplier, color string, result CopyResult) {
	header := target.CellValue(1, col)
	if header != "" {
		header = supplier + "  " + header
	} else {
		header = supplier
	}
	if err := target.SetCellValue(1, col, header); err != nil {
		s.log.Warn("label supplier column", "col", col, "supplier", supplier, "err", err)
	}
	if err := overlay.apply(target, 1, col, "header", color); err != nil {
		s.log.Warn("style supplier header", "col", col, "err", err)
	}

	for row := 2; row <= result.LastRow; row++ {
		if result.HighlightedRows[row] {
			continue
		}
		if err := overlay.apply(target, row, col, "fill", color); err != nil {
			s.log.Warn("fill supplier column", "col", col, "row", row, "err", err)
		}
	}
}

// appendColumnSummary condenses a column's free-text answers and writes the
// result two rows below the data. Numeric cells and short columns are left
// alone.
func (s *Service) appendColumnSummary(ctx context.Context, target *sheet.Sheet, overlay *styleOverlay, col, lastRow int) {
	var text strings.Builder
	for row := 2; row <= lastRow; row++ {
		value := target.CellValue(row, col)
		if value == "" {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			continue
		}
		text.WriteString(value)
		text.WriteString(" ")
	}

	if len(strings.Fields(text.String())) <= s.cfg.SummaryMinWords {
		return
	}

	summary := s.summarize(ctx, text.String())
	if err := target.SetCellValue(lastRow+1, col, "Summary:"); err != nil {
		s.log.Warn("write summary label", "col", col, "err", err)
		return
	}
	if err := target.SetCellValue(lastRow+2, col, summary); err != nil {
		s.log.Warn("write summary", "col", col, "err", err)
		return
	}
	if err := overlay.apply(target, lastRow+2, col, "summary", summaryFillColor); err != nil {
		s.log.Warn("style summary", "col", col, "err", err)
	}
}
