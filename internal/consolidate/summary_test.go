package consolidate

import (
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"rfpmerge/internal/sheet"
)

// pricingSheet builds a consolidated pricing layout: labels bold in column
// A, the supplier header bold at B1 with a bold category cell below it and
// plain price cells at the label rows.
func pricingSheet(t *testing.T) *sheet.Sheet {
	t.Helper()
	w := sheet.New()
	t.Cleanup(func() { _ = w.Close() })
	s, err := w.AddSheet("Combined Pricing")
	if err != nil {
		t.Fatal(err)
	}

	bold, err := w.File().NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		t.Fatal(err)
	}
	setBold := func(row, col int, value any) {
		if err := s.SetCellValue(row, col, value); err != nil {
			t.Fatal(err)
		}
		if err := s.ApplyStyle(row, col, bold); err != nil {
			t.Fatal(err)
		}
	}

	setBold(1, 2, "SupplierA")
	setBold(2, 2, "Services")
	setBold(3, 1, "Labor")
	setBold(4, 1, "Materials")
	_ = s.SetCellValue(1, 1, "Item")
	_ = s.SetCellValue(3, 2, 100.50)
	_ = s.SetCellValue(4, 2, 50.0)
	return s
}

func TestBuildPriceSummary(t *testing.T) {
	s := pricingSheet(t)
	rows, grand, err := BuildPriceSummary(s, []string{"SupplierA"})
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("rows=%v", rows)
	}
	if rows[0].Category != "Services" || rows[0].Subcategory != "Labor" || rows[0].Prices["SupplierA"] != 100.5 {
		t.Fatalf("rows[0]=%+v", rows[0])
	}
	if rows[1].Subcategory != "Materials" || rows[1].Prices["SupplierA"] != 50 {
		t.Fatalf("rows[1]=%+v", rows[1])
	}

	if len(grand) != 1 || grand[0].Category != "Services" || grand[0].Prices["SupplierA"] != 150.5 {
		t.Fatalf("grand=%v", grand)
	}
}

func TestBuildPriceSummaryGrandTotalRow(t *testing.T) {
	s := pricingSheet(t)
	bold, _ := s.File().NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = s.SetCellValue(5, 1, "Grand Total")
	_ = s.ApplyStyle(5, 1, bold)
	_ = s.SetCellValue(5, 2, 150.5)

	_, grand, err := BuildPriceSummary(s, []string{"SupplierA"})
	if err != nil {
		t.Fatal(err)
	}
	// explicit grand total rows are preferred over computed sums
	if len(grand) != 1 || grand[0].Prices["SupplierA"] != 150.5 {
		t.Fatalf("grand=%v", grand)
	}
}

func TestBuildPriceSummaryItemizedFallbackScope(t *testing.T) {
	w := sheet.New()
	t.Cleanup(func() { _ = w.Close() })
	s, err := w.AddSheet("Combined Pricing")
	if err != nil {
		t.Fatal(err)
	}

	bold, err := w.File().NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		t.Fatal(err)
	}
	setBold := func(row, col int, value any) {
		_ = s.SetCellValue(row, col, value)
		_ = s.ApplyStyle(row, col, bold)
	}

	// Labor has no direct total, only an itemized line below it; Equipment
	// carries a direct total on its own row. The itemized sum for Labor must
	// stop at Labor's row and never absorb Equipment's total.
	setBold(1, 2, "SupplierA")
	setBold(2, 2, "Services")
	setBold(3, 1, "Labor")
	setBold(5, 1, "Equipment")
	_ = s.SetCellValue(4, 2, 10.0)
	_ = s.SetCellValue(5, 2, 20.0)

	rows, grand, err := BuildPriceSummary(s, []string{"SupplierA"})
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 1 {
		t.Fatalf("rows=%v", rows)
	}
	if rows[0].Subcategory != "Equipment" || rows[0].Prices["SupplierA"] != 20 {
		t.Fatalf("rows[0]=%+v", rows[0])
	}
	if len(grand) != 1 || grand[0].Prices["SupplierA"] != 20 {
		t.Fatalf("grand=%v", grand)
	}
}

func TestBuildPriceSummaryIdempotent(t *testing.T) {
	s := pricingSheet(t)

	rows1, grand1, err := BuildPriceSummary(s, []string{"SupplierA"})
	if err != nil {
		t.Fatal(err)
	}
	rows2, grand2, err := BuildPriceSummary(s, []string{"SupplierA"})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(rows1, rows2) {
		t.Fatalf("rows differ: %v vs %v", rows1, rows2)
	}
	if !reflect.DeepEqual(grand1, grand2) {
		t.Fatalf("grand totals differ: %v vs %v", grand1, grand2)
	}
}

func TestBuildPriceSummaryNoSuppliers(t *testing.T) {
	w := sheet.New()
	defer w.Close()
	s := fillSheet(t, w, "Combined", [][]any{
		{"Item", "Price"},
		{"Labor", 100},
	})

	if _, _, err := BuildPriceSummary(s, []string{"SupplierA"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestWritePriceSummary(t *testing.T) {
	s := pricingSheet(t)
	rows, grand, err := BuildPriceSummary(s, []string{"SupplierA"})
	if err != nil {
		t.Fatal(err)
	}

	out := sheet.New()
	defer out.Close()
	target, _ := out.AddSheet("Summary of Combined Pricing")

	cfg := testConfig()
	svc := NewService(cfg, nil, nil, nil)
	if err := svc.WritePriceSummary(target, rows, grand, []string{"SupplierA"}); err != nil {
		t.Fatal(err)
	}

	if got := target.CellValue(1, 1); got != "Category" {
		t.Fatalf("got %q", got)
	}
	if got := target.CellValue(2, 3); got != "100.5" {
		t.Fatalf("got %q", got)
	}
	if got := target.CellValue(5, 1); got != "Grand Total Summary" {
		t.Fatalf("got %q", got)
	}
	if got := target.CellValue(7, 2); got != "150.5" {
		t.Fatalf("got %q", got)
	}
	// equal adjacent categories are merged in column A
	spans := target.VerticalMerges()[1]
	if len(spans) != 1 || spans[0] != (sheet.RowSpan{Start: 2, End: 3}) {
		t.Fatalf("merges=%v", spans)
	}
}
