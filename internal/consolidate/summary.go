package consolidate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"rfpmerge/internal"
	"rfpmerge/internal/sheet"
	"rfpmerge/internal/util"
)

const grandTotalBanner = "Grand Total Summary"

type boldLandmark struct {
	Value string
	Row   int
}

// BuildPriceSummary reconstructs a (Category, Subcategory, Supplier) price
// table from a consolidated pricing sheet. Vendors mark headers and category
// labels in bold at inconsistent positions, so bold cells are the only
// structural landmarks: a column whose first bold cell sits at row 1 and
// names a supplier is a price column; the column with the most bold cells is
// the label column. Returns the pivoted rows plus the grand-total block, or
// an error when no usable price data exists.
func BuildPriceSummary(price *sheet.Sheet, supplierNames []string) ([]internal.PriceRow, []internal.PriceRow, error) {
	maxRow, maxCol := price.Dims()

	known := map[string]struct{}{}
	for _, name := range supplierNames {
		known[name] = struct{}{}
	}

	landmarks := map[int][]boldLandmark{}
	for col := 1; col <= maxCol; col++ {
		for row := 1; row <= maxRow; row++ {
			if value := price.CellValue(row, col); value != "" && price.IsBold(row, col) {
				landmarks[col] = append(landmarks[col], boldLandmark{Value: value, Row: row})
			}
		}
	}

	supplierCols := map[string][]int{}
	labelCol, labelLen := 0, 0
	for col := 1; col <= maxCol; col++ {
		marks := landmarks[col]
		if len(marks) > 0 && marks[0].Row == 1 {
			if _, ok := known[marks[0].Value]; ok {
				supplierCols[marks[0].Value] = append(supplierCols[marks[0].Value], col)
				continue
			}
		}
		if len(marks) > labelLen {
			labelLen = len(marks)
			labelCol = col
		}
	}

	if len(supplierCols) == 0 {
		return nil, nil, fmt.Errorf("no supplier price columns recognized")
	}
	if labelCol == 0 {
		return nil, nil, fmt.Errorf("no price label column found")
	}

	// First value wins per (category, subcategory, supplier), matching the
	// top-down read order of the sheet.
	pivot := map[[2]string]map[string]float64{}
	keys := [][2]string{}
	record := func(category, subcategory, supplier string, value float64) {
		key := [2]string{category, subcategory}
		if _, ok := pivot[key]; !ok {
			pivot[key] = map[string]float64{}
			keys = append(keys, key)
		}
		if _, ok := pivot[key][supplier]; !ok {
			pivot[key][supplier] = value
		}
	}

	labels := landmarks[labelCol]
	for _, supplier := range supplierNames {
		for _, col := range supplierCols[supplier] {
			marks := landmarks[col]
			if len(marks) < 2 {
				continue
			}
			category := marks[1].Value

			upperRow, lowerRow := labels[0].Row, labels[0].Row
			for _, label := range labels {
				if label.Row > lowerRow {
					lowerRow = label.Row
				}
				if value, ok := util.ParsePrice(price.CellValue(label.Row, col)); ok {
					record(category, label.Value, supplier, util.Round2(value))
					continue
				}
				// No direct total for this label: sum the itemized price
				// cells up to the current landmark instead. The window must
				// not reach past this label's row, or lines belonging to
				// later subcategories would be counted twice.
				total := 0.0
				for row := upperRow; row <= lowerRow; row++ {
					if value, ok := util.ParsePrice(price.CellValue(row, col)); ok {
						total += value
					}
				}
				if total > 0 {
					record(category, label.Value, supplier, util.Round2(total))
				}
			}
		}
	}

	if len(keys) == 0 {
		return nil, nil, fmt.Errorf("no valid price data extracted")
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	rows := make([]internal.PriceRow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, internal.PriceRow{Category: key[0], Subcategory: key[1], Prices: pivot[key]})
	}

	return rows, grandTotals(rows), nil
}

// grandTotals extracts the per-category totals block: rows whose subcategory
// already says "grand total" when present, otherwise sums by category.
func grandTotals(rows []internal.PriceRow) []internal.PriceRow {
	out := []internal.PriceRow{}
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Subcategory), "grand total") {
			out = append(out, internal.PriceRow{Category: row.Category, Prices: row.Prices})
		}
	}
	if len(out) > 0 {
		return out
	}

	totals := map[string]map[string]float64{}
	order := []string{}
	for _, row := range rows {
		if _, ok := totals[row.Category]; !ok {
			totals[row.Category] = map[string]float64{}
			order = append(order, row.Category)
		}
		for supplier, value := range row.Prices {
			totals[row.Category][supplier] += value
		}
	}
	sort.Strings(order)
	for _, category := range order {
		for supplier, value := range totals[category] {
			totals[category][supplier] = util.Round2(value)
		}
		out = append(out, internal.PriceRow{Category: category, Prices: totals[category]})
	}
	return out
}

// WritePriceSummary renders the pivoted table and grand totals into target:
// styled headers, merged category cells, borders, auto column widths and a
// clustered column chart of the grand totals.
func (s *Service) WritePriceSummary(target *sheet.Sheet,
	rows, grand []internal.PriceRow, supplierNames []string) error {

	suppliers := presentSuppliers(rows, supplierNames)
	if len(suppliers) == 0 {
		return fmt.Errorf("no supplier appears in the summary rows")
	}

	write := func(row, col int, value any) {
		if err := target.SetCellValue(row, col, value); err != nil {
			s.log.Warn("write summary cell", "cell", sheet.CellName(col, row), "err", err)
		}
	}

	write(1, 1, "Category")
	write(1, 2, "Subcategory")
	for i, supplier := range suppliers {
		write(1, 3+i, supplier)
	}

	rowIdx := 2
	for _, row := range rows {
		write(rowIdx, 1, row.Category)
		write(rowIdx, 2, row.Subcategory)
		for i, supplier := range suppliers {
			if value, ok := row.Prices[supplier]; ok {
				write(rowIdx, 3+i, value)
			}
		}
		rowIdx++
	}

	rowIdx++ // blank separator row
	bannerRow := rowIdx
	write(bannerRow, 1, grandTotalBanner)
	rowIdx++

	grandHeaderRow := rowIdx
	write(grandHeaderRow, 1, "Category")
	for i, supplier := range suppliers {
		write(grandHeaderRow, 2+i, supplier)
	}
	rowIdx++

	grandFirstRow := rowIdx
	for _, row := range grand {
		write(rowIdx, 1, row.Category)
		for i, supplier := range suppliers {
			if value, ok := row.Prices[supplier]; ok {
				write(rowIdx, 2+i, value)
			}
		}
		rowIdx++
	}
	lastRow := rowIdx - 1
	lastCol := 2 + len(suppliers)

	mergeCategoryRuns(target, 2, len(rows)+1)
	s.styleSummaryTable(target, lastRow, lastCol, bannerRow, grandHeaderRow)
	autoFitColumns(target, lastRow, lastCol)
	s.addGrandTotalChart(target, suppliers, grandHeaderRow, grandFirstRow, lastRow)

	return nil
}

func presentSuppliers(rows []internal.PriceRow, supplierNames []string) []string {
	out := []string{}
	for _, supplier := range supplierNames {
		for _, row := range rows {
			if _, ok := row.Prices[supplier]; ok {
				out = append(out, supplier)
				break
			}
		}
	}
	return out
}

// mergeCategoryRuns merges vertically adjacent equal category cells in
// column A between fromRow and toRow.
func mergeCategoryRuns(target *sheet.Sheet, fromRow, toRow int) {
	current := ""
	start := 0
	for row := fromRow; row <= toRow; row++ {
		value := target.CellValue(row, 1)
		if value != current {
			if start > 0 && current != "" && row-1 > start {
				_ = target.MergeRows(1, start, row-1)
			}
			current = value
			start = row
		}
	}
	if start > 0 && current != "" && toRow > start {
		_ = target.MergeRows(1, start, toRow)
	}
}

func (s *Service) styleSummaryTable(target *sheet.Sheet, lastRow, lastCol, bannerRow, grandHeaderRow int) {
	file := target.File()

	border := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}

	bordered, err := file.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		s.log.Warn("summary border style", "err", err)
		return
	}
	header, err := file.NewStyle(&excelize.Style{
		Border: border,
		Fill:   solidFill("4472C4"),
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
	})
	if err != nil {
		s.log.Warn("summary header style", "err", err)
		return
	}
	banner, err := file.NewStyle(&excelize.Style{
		Border: border,
		Fill:   solidFill("FF0000"),
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
	})
	if err != nil {
		s.log.Warn("summary banner style", "err", err)
		return
	}

	_ = file.SetCellStyle(target.Name(), sheet.CellName(1, 1), sheet.CellName(lastCol, lastRow), bordered)
	_ = file.SetCellStyle(target.Name(), sheet.CellName(1, 1), sheet.CellName(lastCol, 1), header)
	_ = file.SetCellStyle(target.Name(), sheet.CellName(1, grandHeaderRow), sheet.CellName(lastCol, grandHeaderRow), header)
	_ = file.SetCellStyle(target.Name(), sheet.CellName(1, bannerRow), sheet.CellName(1, bannerRow), banner)
}

func autoFitColumns(target *sheet.Sheet, lastRow, lastCol int) {
	for col := 1; col <= lastCol; col++ {
		maxLen := 0
		for row := 1; row <= lastRow; row++ {
			if n := len(target.CellValue(row, col)); n > maxLen {
				maxLen = n
			}
		}
		_ = target.SetColWidth(col, float64(maxLen+2))
	}
}

func (s *Service) addGrandTotalChart(target *sheet.Sheet, suppliers []string, headerRow, firstRow, lastRow int) {
	if firstRow > lastRow {
		return
	}

	name := target.Name()
	categories := fmt.Sprintf("'%s'!$A$%d:$A$%d", name, firstRow, lastRow)
	series := make([]excelize.ChartSeries, 0, len(suppliers))
	for i := range suppliers {
		colName, err := excelize.ColumnNumberToName(2 + i)
		if err != nil {
			continue
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$%d", name, colName, headerRow),
			Categories: categories,
			Values:     fmt.Sprintf("'%s'!$%s$%d:$%s$%d", name, colName, firstRow, colName, lastRow),
		})
	}

	chartTitle := "Supplier Price Comparison by Category"
	anchorRow := lastRow + 2
	err := target.File().AddChart(name, sheet.CellName(1, anchorRow), &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: chartTitle}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Category"}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Price"}}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
	if err != nil {
		s.log.Warn("add grand total chart", "sheet", name, "err", err)
		return
	}
	_ = target.SetCellValue(lastRow+4, 1, chartTitle)
}

// addPriceSummaries builds one summary sheet per combined pricing sheet and
// moves it to the front of the workbook. An extraction failure discards the
// summary but keeps the merged sheet.
func (s *Service) addPriceSummaries(out *sheet.Workbook, combined []string, suppliers []string, report *internal.RunReport) {
	for _, name := range combined {
		source, ok := out.SheetByName(name)
		if !ok {
			continue
		}
		rows, grand, err := BuildPriceSummary(source, suppliers)
		if err != nil {
			s.warn(report, name, fmt.Sprintf("price summary for %q skipped: %v", name, err))
			continue
		}

		target, err := out.AddSheet("Summary of " + name)
		if err != nil {
			s.warn(report, name, fmt.Sprintf("create summary sheet: %v", err))
			continue
		}
		if err := s.WritePriceSummary(target, rows, grand, suppliers); err != nil {
			s.warn(report, name, fmt.Sprintf("price summary for %q skipped: %v", name, err))
			_ = out.File().DeleteSheet(target.Name())
			continue
		}
		out.MoveToFront(target.Name())
		report.SummarySheets++
	}
}
