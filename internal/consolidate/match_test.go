package consolidate

import (
	"testing"

	"rfpmerge/internal"
	"rfpmerge/internal/sheet"
)

func fillSheet(t *testing.T, w *sheet.Workbook, name string, rows [][]any) *sheet.Sheet {
	t.Helper()
	s, err := w.AddSheet(name)
	if err != nil {
		t.Fatal(err)
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			if err := s.SetCellValue(r+1, c+1, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	return s
}

func testMatchOptions() MatchOptions {
	return MatchOptions{Threshold: 80, MaxColumns: 100, ScanRows: 300}
}

func TestMatchColumnsIdentical(t *testing.T) {
	w := sheet.New()
	defer w.Close()
	rows := [][]any{
		{"Item", "Price"},
		{"Apple", 10},
		{"Banana", 20},
	}
	template := fillSheet(t, w, "T", rows)
	supplier := fillSheet(t, w, "S", rows)

	match := MatchColumns(template, supplier, testMatchOptions())
	if len(match.CommonColumns) != 2 || match.CommonColumns[0] != 1 || match.CommonColumns[1] != 2 {
		t.Fatalf("common=%v", match.CommonColumns)
	}
	if len(match.MismatchedCells) != 0 {
		t.Fatalf("mismatches=%v", match.MismatchedCells)
	}
	if len(match.SupplierOnlyColumns) != 0 {
		t.Fatalf("supplier-only=%v", match.SupplierOnlyColumns)
	}
}

func TestMatchColumnsMismatchedCell(t *testing.T) {
	w := sheet.New()
	defer w.Close()
	template := fillSheet(t, w, "T", [][]any{
		{"Price"}, {10}, {20},
	})
	supplier := fillSheet(t, w, "S", [][]any{
		{"Price"}, {10}, {25},
	})

	match := MatchColumns(template, supplier, testMatchOptions())
	if len(match.CommonColumns) != 1 || match.CommonColumns[0] != 1 {
		t.Fatalf("common=%v", match.CommonColumns)
	}
	if len(match.MismatchedCells) != 1 || match.MismatchedCells[0] != (internal.CellRef{Col: 1, Row: 3}) {
		t.Fatalf("mismatches=%v", match.MismatchedCells)
	}
}

func TestMatchColumnsSupplierOnly(t *testing.T) {
	w := sheet.New()
	defer w.Close()
	template := fillSheet(t, w, "T", [][]any{
		{"Item", "Color"},
		{"Apple", "Red"},
	})
	supplier := fillSheet(t, w, "S", [][]any{
		{"Item", "Warranty"},
		{"Apple", "2 years parts and labor"},
	})

	match := MatchColumns(template, supplier, testMatchOptions())
	if len(match.CommonColumns) != 1 || match.CommonColumns[0] != 1 {
		t.Fatalf("common=%v", match.CommonColumns)
	}
	if len(match.SupplierOnlyColumns) != 1 || match.SupplierOnlyColumns[0] != 2 {
		t.Fatalf("supplier-only=%v", match.SupplierOnlyColumns)
	}
}

func TestMatchColumnsEmptySupplierColumn(t *testing.T) {
	w := sheet.New()
	defer w.Close()
	template := fillSheet(t, w, "T", [][]any{
		{"Item", "Notes"},
		{"Apple", "crisp"},
	})
	supplier := fillSheet(t, w, "S", [][]any{
		{"Item"},
		{"Apple"},
	})

	match := MatchColumns(template, supplier, testMatchOptions())
	// an empty supplier column is neither common nor supplier-only
	if len(match.SupplierOnlyColumns) != 0 {
		t.Fatalf("supplier-only=%v", match.SupplierOnlyColumns)
	}
}

func TestMatchColumnsThresholdMonotonic(t *testing.T) {
	w := sheet.New()
	defer w.Close()
	template := fillSheet(t, w, "T", [][]any{
		{"Item", "Price"},
		{"Apple", 10},
		{"Banana", 20},
	})
	supplier := fillSheet(t, w, "S", [][]any{
		{"Item", "Price"},
		{"Apple", 10},
		{"Banana", 25},
	})

	// raising the threshold can only shrink the set of common columns
	prev := -1
	for _, threshold := range []float64{0, 50, 80, 91, 100} {
		opts := testMatchOptions()
		opts.Threshold = threshold
		match := MatchColumns(template, supplier, opts)
		if prev >= 0 && len(match.CommonColumns) > prev {
			t.Fatalf("threshold %v grew common columns to %v", threshold, match.CommonColumns)
		}
		prev = len(match.CommonColumns)
	}
}

func TestMatchColumnsRowShiftTolerated(t *testing.T) {
	w := sheet.New()
	defer w.Close()
	template := fillSheet(t, w, "T", [][]any{
		{"Item"}, {"Apple"}, {"Banana"}, {"Cherry"},
	})
	supplier := fillSheet(t, w, "S", [][]any{
		{"Item"}, {nil}, {"Apple"}, {"Banana"}, {"Cherry"},
	})

	match := MatchColumns(template, supplier, testMatchOptions())
	if len(match.CommonColumns) != 1 {
		t.Fatalf("common=%v", match.CommonColumns)
	}
}
