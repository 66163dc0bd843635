package sheet

import (
	"github.com/xuri/excelize/v2"
)

// Sheet is a handle onto one worksheet of a workbook. Reads never mutate;
// absent cells read as empty values, not errors. Rich text cells are
// flattened to plain text at read time.
type Sheet struct {
	file *excelize.File
	name string
}

// RowSpan is a vertical merge range within a single column.
type RowSpan struct {
	Start int
	End   int
}

func (s *Sheet) Name() string {
	return s.name
}

func (s *Sheet) File() *excelize.File {
	return s.file
}

// Dims returns the used extent of the sheet as (maxRow, maxCol).
func (s *Sheet) Dims() (int, int) {
	rows, err := s.file.GetRows(s.name)
	if err != nil {
		return 0, 0
	}
	maxCol := 0
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	return len(rows), maxCol
}

// CellValue returns the formatted cell value, or "" for absent cells.
func (s *Sheet) CellValue(row, col int) string {
	value, err := s.file.GetCellValue(s.name, axis(col, row))
	if err != nil {
		return ""
	}
	return value
}

// RawCellValue returns the stored cell value without number formatting.
func (s *Sheet) RawCellValue(row, col int) string {
	value, err := s.file.GetCellValue(s.name, axis(col, row), excelize.Options{RawCellValue: true})
	if err != nil {
		return ""
	}
	return value
}

func (s *Sheet) CellType(row, col int) excelize.CellType {
	t, err := s.file.GetCellType(s.name, axis(col, row))
	if err != nil {
		return excelize.CellTypeUnset
	}
	return t
}

func (s *Sheet) SetCellValue(row, col int, value any) error {
	return s.file.SetCellValue(s.name, axis(col, row), value)
}

// StyleID returns the cell's style index, 0 for unstyled cells.
func (s *Sheet) StyleID(row, col int) int {
	id, err := s.file.GetCellStyle(s.name, axis(col, row))
	if err != nil {
		return 0
	}
	return id
}

func (s *Sheet) ApplyStyle(row, col, styleID int) error {
	cell := axis(col, row)
	return s.file.SetCellStyle(s.name, cell, cell, styleID)
}

// IsBold reports whether the cell's font is bold. Vendors use bold to mark
// headers and category labels, so this is what the price aggregator keys on.
func (s *Sheet) IsBold(row, col int) bool {
	id := s.StyleID(row, col)
	style, err := s.file.GetStyle(id)
	if err != nil || style == nil {
		return false
	}
	return style.Font != nil && style.Font.Bold
}

func (s *Sheet) ColWidth(col int) float64 {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return 0
	}
	width, err := s.file.GetColWidth(s.name, name)
	if err != nil {
		return 0
	}
	return width
}

func (s *Sheet) SetColWidth(col int, width float64) error {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	return s.file.SetColWidth(s.name, name, name, width)
}

func (s *Sheet) ColHidden(col int) bool {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return false
	}
	visible, err := s.file.GetColVisible(s.name, name)
	if err != nil {
		return false
	}
	return !visible
}

func (s *Sheet) SetColHidden(col int, hidden bool) error {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	return s.file.SetColVisible(s.name, name, !hidden)
}

func (s *Sheet) RowHidden(row int) bool {
	visible, err := s.file.GetRowVisible(s.name, row)
	if err != nil {
		return false
	}
	return !visible
}

func (s *Sheet) RowHeight(row int) float64 {
	height, err := s.file.GetRowHeight(s.name, row)
	if err != nil {
		return 0
	}
	return height
}

func (s *Sheet) SetRowHeight(row int, height float64) error {
	return s.file.SetRowHeight(s.name, row, height)
}

// VerticalMerges returns merge ranges spanning a single column, keyed by
// column index. Horizontal merges are irrelevant to column-wise copies.
func (s *Sheet) VerticalMerges() map[int][]RowSpan {
	out := map[int][]RowSpan{}
	merges, err := s.file.GetMergeCells(s.name)
	if err != nil {
		return out
	}
	for _, m := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil || startCol != endCol {
			continue
		}
		out[startCol] = append(out[startCol], RowSpan{Start: startRow, End: endRow})
	}
	return out
}

func (s *Sheet) MergeRows(col, fromRow, toRow int) error {
	return s.file.MergeCell(s.name, axis(col, fromRow), axis(col, toRow))
}

// MergeRanges returns every merge range as raw start/end axis pairs.
func (s *Sheet) MergeRanges() [][2]string {
	merges, err := s.file.GetMergeCells(s.name)
	if err != nil {
		return nil
	}
	out := make([][2]string, 0, len(merges))
	for _, m := range merges {
		out = append(out, [2]string{m.GetStartAxis(), m.GetEndAxis()})
	}
	return out
}

func (s *Sheet) Hyperlink(row, col int) (string, bool) {
	has, link, err := s.file.GetCellHyperLink(s.name, axis(col, row))
	if err != nil || !has {
		return "", false
	}
	return link, true
}

func (s *Sheet) SetHyperlink(row, col int, link string) error {
	return s.file.SetCellHyperLink(s.name, axis(col, row), link, "External")
}

// Comments returns the sheet's comments keyed by cell name.
func (s *Sheet) Comments() map[string]excelize.Comment {
	out := map[string]excelize.Comment{}
	comments, err := s.file.GetComments(s.name)
	if err != nil {
		return out
	}
	for _, c := range comments {
		out[c.Cell] = c
	}
	return out
}

func (s *Sheet) AddComment(comment excelize.Comment) error {
	return s.file.AddComment(s.name, comment)
}

// CellName formats a (col, row) pair as an A1-style reference. Coordinates
// stay integer-indexed everywhere else.
func CellName(col, row int) string {
	return axis(col, row)
}

func axis(col, row int) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return cell
}
