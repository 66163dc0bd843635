package sheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxTitleLength is the display length sheet titles are truncated to.
const MaxTitleLength = 30

const defaultSheetName = "Sheet1"

// Workbook wraps an excelize file. Output workbooks are created empty per
// consolidation run and own every sheet added to them.
type Workbook struct {
	file *excelize.File

	// name of the sheet excelize creates with a fresh file, removed on
	// request if nothing was written to it
	defaultSheet string
}

func New() *Workbook {
	return &Workbook{file: excelize.NewFile(), defaultSheet: defaultSheetName}
}

func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &Workbook{file: f}, nil
}

func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return &Workbook{file: f}, nil
}

func (w *Workbook) File() *excelize.File {
	return w.file
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// VisibleSheets returns the workbook's visible sheets in workbook order.
// Hidden sheets are never read.
func (w *Workbook) VisibleSheets() []*Sheet {
	out := make([]*Sheet, 0)
	for _, name := range w.file.GetSheetList() {
		visible, err := w.file.GetSheetVisible(name)
		if err != nil || !visible {
			continue
		}
		out = append(out, &Sheet{file: w.file, name: name})
	}
	return out
}

func (w *Workbook) SheetByName(name string) (*Sheet, bool) {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, false
	}
	return &Sheet{file: w.file, name: name}, true
}

// AddSheet creates a new sheet with the given title, truncated to
// MaxTitleLength and adjusted until it is unique within the workbook. The
// first sheet added to a fresh workbook reuses the blank initial sheet.
func (w *Workbook) AddSheet(title string) (*Sheet, error) {
	name := w.uniqueTitle(title)
	if w.defaultSheet != "" {
		if !strings.EqualFold(name, w.defaultSheet) {
			if err := w.file.SetSheetName(w.defaultSheet, name); err != nil {
				return nil, fmt.Errorf("add sheet %q: %w", name, err)
			}
		}
		w.defaultSheet = ""
		return &Sheet{file: w.file, name: name}, nil
	}
	if _, err := w.file.NewSheet(name); err != nil {
		return nil, fmt.Errorf("add sheet %q: %w", name, err)
	}
	return &Sheet{file: w.file, name: name}, nil
}

// RemoveDefaultSheet drops the blank sheet a fresh workbook starts with.
// Harmless when it was renamed or already removed.
func (w *Workbook) RemoveDefaultSheet() {
	if w.defaultSheet == "" {
		return
	}
	if len(w.file.GetSheetList()) > 1 {
		_ = w.file.DeleteSheet(w.defaultSheet)
	}
	w.defaultSheet = ""
}

// MoveToFront makes the named sheet the first and active sheet.
func (w *Workbook) MoveToFront(name string) {
	sheets := w.file.GetSheetList()
	if len(sheets) == 0 || sheets[0] == name {
		return
	}
	_ = w.file.MoveSheet(name, sheets[0])
	if idx, err := w.file.GetSheetIndex(name); err == nil && idx >= 0 {
		w.file.SetActiveSheet(idx)
	}
}

// StampLogo places an image into cell A1 of every sheet.
func (w *Workbook) StampLogo(path string, scale float64) error {
	if path == "" {
		return nil
	}
	if scale <= 0 {
		scale = 1
	}
	opts := &excelize.GraphicOptions{ScaleX: scale, ScaleY: scale}
	for _, name := range w.file.GetSheetList() {
		if err := w.file.AddPicture(name, "A1", path, opts); err != nil {
			return fmt.Errorf("stamp logo on %q: %w", name, err)
		}
	}
	return nil
}

func (w *Workbook) SaveAs(path string) error {
	return w.file.SaveAs(path)
}

func (w *Workbook) WriteTo(dst io.Writer) (int64, error) {
	return w.file.WriteTo(dst)
}

func (w *Workbook) uniqueTitle(title string) string {
	base := sanitizeTitle(title)
	if base == "" {
		base = "Sheet"
	}
	base = truncateRunes(base, MaxTitleLength)

	name := base
	for n := 2; w.hasSheet(name); n++ {
		suffix := " " + strconv.Itoa(n)
		name = truncateRunes(base, MaxTitleLength-len(suffix)) + suffix
	}
	return name
}

func (w *Workbook) hasSheet(name string) bool {
	for _, existing := range w.file.GetSheetList() {
		if existing == w.defaultSheet {
			// pending blank sheet, about to be reused or removed
			continue
		}
		if strings.EqualFold(existing, name) {
			return true
		}
	}
	return false
}

func sanitizeTitle(title string) string {
	repl := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")
	return strings.TrimSpace(repl.Replace(title))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
