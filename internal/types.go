package internal

type DocType string

const (
	DocPricing       DocType = "Pricing"
	DocQuestionnaire DocType = "Questionnaire"
)

type Mode string

const (
	ModeSideBySide Mode = "side_by_side"
	ModeSeparate   Mode = "separate_sheets"
)

// SourceTemplate tags insertion-queue entries that copy from the template
// sheet; every other tag is a supplier name.
const SourceTemplate = "template"

type Supplier struct {
	Name  string
	Files map[DocType]string
}

// Job is the full, validated input of one consolidation run. The orchestrator
// reads nothing outside of it.
type Job struct {
	EventName      string
	DocType        DocType
	Mode           Mode
	IncludeSummary bool
	TemplatePath   string
	SheetIndexes   []int
	Suppliers      []Supplier
	OutputPath     string
	LogoPath       string
}

// CellRef addresses a cell by 1-based column and row.
type CellRef struct {
	Col int
	Row int
}

// ColumnMatch is the result of matching one supplier sheet against one
// template sheet. A column index appears in CommonColumns or
// SupplierOnlyColumns, never both.
type ColumnMatch struct {
	CommonColumns       []int
	MismatchedCells     []CellRef
	SupplierOnlyColumns []int
}

type QueueItem struct {
	Column int
	Source string
}

// PriceRow is one pivoted row of the price summary: a (category, subcategory)
// pair with one price per supplier that quoted it.
type PriceRow struct {
	Category    string
	Subcategory string
	Prices      map[string]float64
}

type Warning struct {
	Scope   string `json:"scope"`
	Message string `json:"message"`
}

// RunReport summarizes one consolidation run for the caller and the run
// history store. Partial failures end up in Warnings, not in an error.
type RunReport struct {
	TraceID          string
	EventName        string
	DocType          DocType
	Mode             Mode
	SheetsWritten    int
	SheetsSkipped    int
	Suppliers        int
	SuppliersSkipped int
	SummarySheets    int
	OutputPath       string
	Warnings         []Warning
}

type RunRecord struct {
	ID            int
	TraceID       string
	EventName     string
	DocType       string
	Mode          string
	SheetsWritten int
	SummarySheets int
	WarningCount  int
	OutputPath    string
	CreatedAt     string
}
