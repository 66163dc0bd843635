package consolidate

import (
	"github.com/xuri/excelize/v2"

	"rfpmerge/internal/sheet"
)

type overlayKey struct {
	styleID int
	kind    string
	color   string
}

// styleOverlay derives styles within the output workbook: an existing cell
// style plus a fill, a supplier header treatment, or the summary cell look.
// Derived styles are cached so repeated overlays reuse one style index.
type styleOverlay struct {
	file  *excelize.File
	cache map[overlayKey]int
}

func newStyleOverlay(file *excelize.File) *styleOverlay {
	return &styleOverlay{file: file, cache: map[overlayKey]int{}}
}

func (o *styleOverlay) apply(target *sheet.Sheet, row, col int, kind, color string) error {
	styleID, err := o.derive(target.StyleID(row, col), kind, color)
	if err != nil {
		return err
	}
	return target.ApplyStyle(row, col, styleID)
}

func (o *styleOverlay) derive(styleID int, kind, color string) (int, error) {
	key := overlayKey{styleID: styleID, kind: kind, color: color}
	if cached, ok := o.cache[key]; ok {
		return cached, nil
	}

	style, err := o.file.GetStyle(styleID)
	if err != nil || style == nil {
		style = &excelize.Style{}
	}

	switch kind {
	case "fill":
		style.Fill = solidFill(color)
	case "header":
		style.Fill = solidFill(color)
		style.Font = &excelize.Font{Family: "Arial", Size: 15, Bold: true}
		style.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	case "summary":
		style.Fill = solidFill(summaryFillColor)
		style.Font = &excelize.Font{Family: "Arial", Size: 12}
		style.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	}

	derived, err := o.file.NewStyle(style)
	if err != nil {
		return 0, err
	}
	o.cache[key] = derived
	return derived, nil
}
