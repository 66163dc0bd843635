package consolidate

import (
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"rfpmerge/internal"
	"rfpmerge/internal/config"
	"rfpmerge/internal/sheet"
)

// CopyOptions are the copier's resource valves. They bound output size
// against pathological vendor files, they are not correctness features.
type CopyOptions struct {
	MaxRows        int
	ProbeRows      int
	EmptyRunLimit  int
	HiddenRunLimit int

	SheetMaxColumns     int
	SheetHiddenRunLimit int
}

func copyOptions(cfg config.Config) CopyOptions {
	return CopyOptions{
		MaxRows:             cfg.CopyMaxRows,
		ProbeRows:           cfg.CopyProbeRows,
		EmptyRunLimit:       cfg.CopyEmptyRunLimit,
		HiddenRunLimit:      cfg.CopyHiddenRunLimit,
		SheetMaxColumns:     cfg.SheetMaxColumns,
		SheetHiddenRunLimit: cfg.SheetHiddenRunLimit,
	}
}

// CopyResult reports where a column copy ended.
type CopyResult struct {
	// LastRow is the last copied row holding a non-empty value, 0 when the
	// probe found no content at all. Callers position headers and summaries
	// immediately below it.
	LastRow int

	// HighlightedRows are the destination rows that received the mismatch
	// highlight fill; later formatting passes must not repaint them.
	HighlightedRows map[int]bool
}

type styleKey struct {
	source    *excelize.File
	styleID   int
	highlight bool
}

// Copier transfers columns and sheets between workbooks. Styles are
// translated across files through a per-source cache, so identical source
// styles map to one target style. A Copier is scoped to a single run and a
// single target workbook.
type Copier struct {
	opts   CopyOptions
	log    *slog.Logger
	styles map[styleKey]int
}

func NewCopier(opts CopyOptions, log *slog.Logger) *Copier {
	if log == nil {
		log = slog.Default()
	}
	return &Copier{opts: opts, log: log, styles: map[styleKey]int{}}
}

// CopyColumn copies one column's values, styles, hyperlinks, comments and
// vertical merges from src to dst. Mismatch cells whose column immediately
// precedes srcCol mark their row for highlighting; this adjacency convention
// is a legacy label/value pairing heuristic and is kept as-is.
//
// A single malformed cell never aborts the copy: style failures are logged
// per cell and the value copy proceeds.
func (c *Copier) CopyColumn(src, dst *sheet.Sheet, srcCol, dstCol int, mismatches []internal.CellRef) CopyResult {
	result := CopyResult{HighlightedRows: map[int]bool{}}

	srcRows, _ := src.Dims()
	probe := srcRows
	if probe > c.opts.ProbeRows {
		probe = c.opts.ProbeRows
	}
	hasContent := false
	for row := 1; row <= probe; row++ {
		if src.CellValue(row, srcCol) != "" {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return result
	}

	mismatchCols := map[int][]int{}
	for _, m := range mismatches {
		mismatchCols[m.Row] = append(mismatchCols[m.Row], m.Col)
	}
	comments := src.Comments()

	limit := srcRows
	if limit > c.opts.MaxRows {
		limit = c.opts.MaxRows
	}

	emptyRun, hiddenRun := 0, 0
	for row := 1; row <= limit; row++ {
		raw := src.RawCellValue(row, srcCol)
		if raw == "" {
			emptyRun++
			if emptyRun > c.opts.EmptyRunLimit {
				break
			}
		} else {
			emptyRun = 0
		}
		if src.RowHidden(row) {
			hiddenRun++
			if hiddenRun > c.opts.HiddenRunLimit {
				break
			}
		} else {
			hiddenRun = 0
		}

		if raw != "" {
			if err := dst.SetCellValue(row, dstCol, typedValue(src, row, srcCol, raw)); err != nil {
				c.log.Warn("copy cell value", "cell", sheet.CellName(srcCol, row), "sheet", src.Name(), "err", err)
				continue
			}
			result.LastRow = row
		}

		highlight := false
		for _, mcol := range mismatchCols[row] {
			if srcCol-mcol == 1 {
				highlight = true
				break
			}
		}

		if styleID := src.StyleID(row, srcCol); styleID != 0 || highlight {
			translated, err := c.translateStyle(src.File(), dst.File(), styleID, highlight)
			if err != nil {
				c.log.Warn("copy cell style", "cell", sheet.CellName(srcCol, row), "sheet", src.Name(), "err", err)
			} else if err := dst.ApplyStyle(row, dstCol, translated); err != nil {
				c.log.Warn("apply cell style", "cell", sheet.CellName(dstCol, row), "sheet", dst.Name(), "err", err)
			}
		}
		if highlight {
			result.HighlightedRows[row] = true
		}

		if link, ok := src.Hyperlink(row, srcCol); ok {
			if err := dst.SetHyperlink(row, dstCol, link); err != nil {
				c.log.Warn("copy hyperlink", "cell", sheet.CellName(dstCol, row), "err", err)
			}
		}
		if comment, ok := comments[sheet.CellName(srcCol, row)]; ok {
			comment.Cell = sheet.CellName(dstCol, row)
			if err := dst.AddComment(comment); err != nil {
				c.log.Warn("copy comment", "cell", comment.Cell, "err", err)
			}
		}
	}

	for _, span := range src.VerticalMerges()[srcCol] {
		if err := dst.MergeRows(dstCol, span.Start, span.End); err != nil {
			c.log.Warn("copy merge", "col", dstCol, "rows", span, "err", err)
		}
	}

	if width := src.ColWidth(srcCol); width > 0 {
		_ = dst.SetColWidth(dstCol, width)
	}
	_ = dst.SetColHidden(dstCol, src.ColHidden(srcCol))

	return result
}

// CopySheet copies every column of src into dst at the same index, then the
// sheet-level attributes. A long run of consecutive hidden columns ends the
// scan early.
func (c *Copier) CopySheet(src, dst *sheet.Sheet) {
	_, maxCol := src.Dims()
	if maxCol > c.opts.SheetMaxColumns {
		maxCol = c.opts.SheetMaxColumns
	}

	hiddenRun := 0
	for col := 1; col <= maxCol; col++ {
		if src.ColHidden(col) {
			hiddenRun++
			if hiddenRun > c.opts.SheetHiddenRunLimit {
				break
			}
			continue
		}
		hiddenRun = 0
		c.CopyColumn(src, dst, col, col, nil)
	}

	c.copySheetAttributes(src, dst)
}

func (c *Copier) copySheetAttributes(src, dst *sheet.Sheet) {
	srcFile, dstFile := src.File(), dst.File()

	if props, err := srcFile.GetSheetProps(src.Name()); err == nil {
		_ = dstFile.SetSheetProps(dst.Name(), &props)
	}
	if margins, err := srcFile.GetPageMargins(src.Name()); err == nil {
		_ = dstFile.SetPageMargins(dst.Name(), &margins)
	}
	if layout, err := srcFile.GetPageLayout(src.Name()); err == nil {
		_ = dstFile.SetPageLayout(dst.Name(), &layout)
	}
	if panes, err := srcFile.GetPanes(src.Name()); err == nil {
		_ = dstFile.SetPanes(dst.Name(), &panes)
	}

	for _, m := range src.MergeRanges() {
		_ = dstFile.MergeCell(dst.Name(), m[0], m[1])
	}

	srcRows, _ := src.Dims()
	if srcRows > c.opts.MaxRows {
		srcRows = c.opts.MaxRows
	}
	for row := 1; row <= srcRows; row++ {
		if height := src.RowHeight(row); height > 0 {
			_ = dst.SetRowHeight(row, height)
		}
	}
}

// translateStyle resolves a source style index to an index in the target
// file, optionally overlaying the mismatch highlight fill.
func (c *Copier) translateStyle(srcFile, dstFile *excelize.File, styleID int, highlight bool) (int, error) {
	key := styleKey{source: srcFile, styleID: styleID, highlight: highlight}
	if cached, ok := c.styles[key]; ok {
		return cached, nil
	}

	style, err := srcFile.GetStyle(styleID)
	if err != nil {
		return 0, err
	}
	if style == nil {
		style = &excelize.Style{}
	}
	if highlight {
		style.Fill = solidFill(highlightColor)
	}

	translated, err := dstFile.NewStyle(style)
	if err != nil {
		return 0, err
	}
	c.styles[key] = translated
	return translated, nil
}

// typedValue converts the raw stored value into the type the source cell
// carried, so numbers stay numbers in the output.
func typedValue(src *sheet.Sheet, row, col int, raw string) any {
	switch src.CellType(row, col) {
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE"
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return src.CellValue(row, col)
	default:
		if number, err := strconv.ParseFloat(raw, 64); err == nil {
			return number
		}
		return src.CellValue(row, col)
	}
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}
