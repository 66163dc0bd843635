package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"rfpmerge/internal"
	"rfpmerge/internal/config"
	"rfpmerge/internal/consolidate"
	"rfpmerge/internal/sheet"
	"rfpmerge/internal/storage"
	"rfpmerge/internal/summarize"
)

func main() {
	cfg, err := config.Load()
	must(err)

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "consolidate":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		event := fs.String("event", "", "event name")
		template := fs.String("template", "", "template xlsx path")
		supplierSpec := fs.String("suppliers", "", "Name=path[,Name=path...]")
		sheetSpec := fs.String("sheets", "", "comma-separated visible sheet indexes, empty for all")
		docType := fs.String("doc-type", string(internal.DocPricing), "Pricing|Questionnaire")
		mode := fs.String("mode", string(internal.ModeSideBySide), "side_by_side|separate_sheets")
		summary := fs.Bool("summary", false, "append per-column text summaries")
		out := fs.String("out", "", "output xlsx path")
		logo := fs.String("logo", cfg.LogoPath, "logo image path, empty to skip")
		_ = fs.Parse(os.Args[2:])

		if strings.TrimSpace(*template) == "" || strings.TrimSpace(*supplierSpec) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--template, --suppliers and --out are required"))
		}

		dt, err := parseDocType(*docType)
		must(err)
		suppliers, err := parseSuppliers(*supplierSpec, dt)
		must(err)
		indexes, err := parseSheetIndexes(*sheetSpec)
		must(err)

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		var summarizer consolidate.Summarizer
		if strings.TrimSpace(cfg.SummarizerBaseURL) != "" {
			summarizer = summarize.NewClient(cfg)
		}

		svc := consolidate.NewService(cfg, db, summarizer, log)
		report, err := svc.Run(context.Background(), internal.Job{
			EventName:      *event,
			DocType:        dt,
			Mode:           internal.Mode(*mode),
			IncludeSummary: *summary,
			TemplatePath:   *template,
			SheetIndexes:   indexes,
			Suppliers:      suppliers,
			OutputPath:     *out,
			LogoPath:       *logo,
		})
		must(err)

		fmt.Printf("consolidation done trace=%s sheets=%d summaries=%d output=%s\n",
			report.TraceID, report.SheetsWritten, report.SummarySheets, report.OutputPath)
		for _, warning := range report.Warnings {
			fmt.Printf("warning [%s]: %s\n", warning.Scope, warning.Message)
		}
	case "match":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		template := fs.String("template", "", "template xlsx path")
		supplier := fs.String("supplier", "", "supplier xlsx path")
		index := fs.Int("sheet", 0, "visible sheet index")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*template) == "" || strings.TrimSpace(*supplier) == "" {
			must(fmt.Errorf("--template and --supplier are required"))
		}
		must(runMatch(cfg, *template, *supplier, *index))
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max rows")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		records, err := db.ListRuns(*limit)
		must(err)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Trace", "Event", "Doc", "Mode", "Sheets", "Summaries", "Warnings", "Output", "Created"})
		for _, rec := range records {
			table.Append([]string{
				strconv.Itoa(rec.ID), rec.TraceID, rec.EventName, rec.DocType, rec.Mode,
				strconv.Itoa(rec.SheetsWritten), strconv.Itoa(rec.SummarySheets),
				strconv.Itoa(rec.WarningCount), rec.OutputPath, rec.CreatedAt,
			})
		}
		table.Render()
	default:
		usage()
		os.Exit(1)
	}
}

func runMatch(cfg config.Config, templatePath, supplierPath string, index int) error {
	template, err := sheet.Open(templatePath)
	if err != nil {
		return err
	}
	defer template.Close()
	supplier, err := sheet.Open(supplierPath)
	if err != nil {
		return err
	}
	defer supplier.Close()

	templateSheets := template.VisibleSheets()
	supplierSheets := supplier.VisibleSheets()
	if index < 0 || index >= len(templateSheets) || index >= len(supplierSheets) {
		return fmt.Errorf("sheet index %d out of range", index)
	}

	match := consolidate.MatchColumns(templateSheets[index], supplierSheets[index], consolidate.MatchOptions{
		Threshold:  cfg.MatchThreshold,
		MaxColumns: cfg.MatchMaxColumns,
		ScanRows:   cfg.MatchScanRows,
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Location"})
	for _, col := range match.CommonColumns {
		table.Append([]string{"common", columnLabel(col)})
	}
	for _, col := range match.SupplierOnlyColumns {
		table.Append([]string{"supplier-only", columnLabel(col)})
	}
	for _, cell := range match.MismatchedCells {
		table.Append([]string{"mismatch", sheet.CellName(cell.Col, cell.Row)})
	}
	table.Render()
	return nil
}

func columnLabel(col int) string {
	return strings.TrimSuffix(sheet.CellName(col, 1), "1")
}

func parseDocType(value string) (internal.DocType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pricing":
		return internal.DocPricing, nil
	case "questionnaire":
		return internal.DocQuestionnaire, nil
	default:
		return "", fmt.Errorf("unsupported doc type: %s", value)
	}
}

func parseSuppliers(spec string, docType internal.DocType) ([]internal.Supplier, error) {
	out := []internal.Supplier{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, path, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("invalid supplier entry %q, want Name=path", part)
		}
		out = append(out, internal.Supplier{
			Name:  strings.TrimSpace(name),
			Files: map[internal.DocType]string{docType: strings.TrimSpace(path)},
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no suppliers given")
	}
	return out, nil
}

func parseSheetIndexes(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	out := []int{}
	for _, part := range strings.Split(spec, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid sheet index %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func usage() {
	fmt.Println("usage: rfpmerge <command>")
	fmt.Println("commands:")
	fmt.Println("  consolidate --event=... --template=...xlsx --suppliers=Name=path,... [--sheets=0,1] [--doc-type=Pricing|Questionnaire] [--mode=side_by_side|separate_sheets] [--summary] [--logo=...] --out=...xlsx")
	fmt.Println("  match --template=...xlsx --supplier=...xlsx [--sheet=0]")
	fmt.Println("  runs:list [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
