package consolidate

import (
	"fmt"

	"rfpmerge/internal"
	"rfpmerge/internal/sheet"
)

// separateSheets writes the template sheet and each supplier's sheet into
// their own output sheets, unmerged column-wise. The matcher runs only to
// locate mismatches, which are highlighted in place in the supplier's sheet.
func (s *Service) separateSheets(out *sheet.Workbook, copier *Copier, overlay *styleOverlay,
	templates []*sheet.Sheet, suppliers []string, supplierSheets map[string][]*sheet.Sheet,
	report *internal.RunReport) {

	for idx, template := range templates {
		target, err := out.AddSheet(template.Name())
		if err != nil {
			s.warn(report, template.Name(), fmt.Sprintf("create sheet for %s: %v", template.Name(), err))
			report.SheetsSkipped++
			continue
		}
		copier.CopySheet(template, target)
		report.SheetsWritten++

		for _, supplier := range suppliers {
			source := supplierSheets[supplier][idx]
			dst, err := out.AddSheet(supplier + " " + template.Name())
			if err != nil {
				s.warn(report, supplier, fmt.Sprintf("create sheet for %s: %v", supplier, err))
				continue
			}
			copier.CopySheet(source, dst)

			match := MatchColumns(template, source, matchOptions(s.cfg))
			for _, cell := range match.MismatchedCells {
				if err := overlay.apply(dst, cell.Row, cell.Col, "fill", highlightColor); err != nil {
					s.log.Warn("highlight mismatch", "sheet", dst.Name(), "cell", sheet.CellName(cell.Col, cell.Row), "err", err)
				}
			}
			report.SheetsWritten++
		}
	}
}
