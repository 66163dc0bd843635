package consolidate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rfpmerge/internal"
	"rfpmerge/internal/config"
	"rfpmerge/internal/sheet"
	"rfpmerge/internal/storage"
)

// Summarizer condenses free text into a capped number of sentences. It is
// an external collaborator; the orchestrator tolerates its failure.
type Summarizer interface {
	Summarize(ctx context.Context, text string, sentences int) (string, error)
}

// Service drives one consolidation run: it owns the output workbook for the
// run's duration and is the only writer to it.
type Service struct {
	cfg        config.Config
	db         *storage.DB
	summarizer Summarizer
	log        *slog.Logger
}

// NewService wires a run orchestrator. db and summarizer may be nil: without
// db no run history is recorded, without summarizer column summaries degrade
// to an inline error note.
func NewService(cfg config.Config, db *storage.DB, summarizer Summarizer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{cfg: cfg, db: db, summarizer: summarizer, log: log}
}

// Run consolidates one event's supplier workbooks against the template and
// writes the combined workbook to job.OutputPath. Failures local to one
// column, sheet or supplier are absorbed into the report's warnings; only a
// run that can produce no output at all returns an error.
func (s *Service) Run(ctx context.Context, job internal.Job) (internal.RunReport, error) {
	start := time.Now()
	report := internal.RunReport{
		TraceID:    traceID(),
		EventName:  job.EventName,
		DocType:    job.DocType,
		Mode:       job.Mode,
		OutputPath: job.OutputPath,
		Warnings:   []internal.Warning{},
	}

	if err := validateJob(job); err != nil {
		return report, err
	}

	templates, closeTemplate, err := s.templateSheets(job)
	if err != nil {
		return report, err
	}
	defer func() { _ = closeTemplate() }()

	suppliers, supplierSheets, closers := s.supplierSheets(job, len(templates), &report)
	defer func() {
		for _, close := range closers {
			_ = close()
		}
	}()
	report.Suppliers = len(suppliers)

	if len(suppliers) == 0 {
		return report, fmt.Errorf("no supplier files could be read for %s", job.DocType)
	}

	out := sheet.New()
	defer out.Close()
	copier := NewCopier(copyOptions(s.cfg), s.log)
	overlay := newStyleOverlay(out.File())

	var combined []string
	switch job.Mode {
	case internal.ModeSeparate:
		s.separateSheets(out, copier, overlay, templates, suppliers, supplierSheets, &report)
	case internal.ModeSideBySide:
		combined = s.sideBySide(ctx, out, copier, overlay, templates, suppliers, supplierSheets, job.IncludeSummary, &report)
	default:
		return report, fmt.Errorf("unsupported consolidation mode: %s", job.Mode)
	}

	if job.DocType == internal.DocPricing && job.Mode == internal.ModeSideBySide {
		s.addPriceSummaries(out, combined, suppliers, &report)
	}

	out.RemoveDefaultSheet()
	if report.SheetsWritten == 0 {
		return report, fmt.Errorf("no sheets could be consolidated")
	}

	if job.LogoPath != "" {
		if err := out.StampLogo(job.LogoPath, s.cfg.LogoScale); err != nil {
			s.warn(&report, "logo", err.Error())
		}
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return report, err
	}
	if err := out.SaveAs(job.OutputPath); err != nil {
		return report, fmt.Errorf("save workbook: %w", err)
	}

	s.log.Info("consolidation complete",
		"trace", report.TraceID,
		"event", job.EventName,
		"mode", job.Mode,
		"sheets", report.SheetsWritten,
		"warnings", len(report.Warnings),
		"took", time.Since(start).Round(time.Millisecond),
	)

	if s.db != nil {
		if err := s.db.InsertRun(report); err != nil {
			s.log.Warn("record run", "err", err)
		}
	}

	return report, nil
}

func validateJob(job internal.Job) error {
	if job.TemplatePath == "" {
		return fmt.Errorf("template path is required")
	}
	if job.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if len(job.Suppliers) == 0 {
		return fmt.Errorf("at least one supplier is required")
	}
	seen := map[string]struct{}{}
	for _, supplier := range job.Suppliers {
		if supplier.Name == "" {
			return fmt.Errorf("supplier with empty name")
		}
		if _, dup := seen[supplier.Name]; dup {
			return fmt.Errorf("duplicate supplier name: %s", supplier.Name)
		}
		seen[supplier.Name] = struct{}{}
	}
	return nil
}

// templateSheets opens the template workbook and resolves the selected sheet
// indexes against its visible sheets, in selection order.
func (s *Service) templateSheets(job internal.Job) ([]*sheet.Sheet, func() error, error) {
	wb, err := sheet.Open(job.TemplatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open template: %w", err)
	}

	visible := wb.VisibleSheets()
	if len(visible) == 0 {
		_ = wb.Close()
		return nil, nil, fmt.Errorf("template workbook has no visible sheets")
	}

	indexes := job.SheetIndexes
	if len(indexes) == 0 {
		indexes = make([]int, len(visible))
		for i := range visible {
			indexes[i] = i
		}
	}

	out := make([]*sheet.Sheet, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(visible) {
			_ = wb.Close()
			return nil, nil, fmt.Errorf("sheet index %d out of range (template has %d visible sheets)", idx, len(visible))
		}
		out = append(out, visible[idx])
	}
	return out, wb.Close, nil
}

// supplierSheets opens each supplier's workbook for the job's document type.
// A supplier whose file is missing or unreadable is skipped with a warning;
// the run continues with the rest.
func (s *Service) supplierSheets(job internal.Job, sheetCount int, report *internal.RunReport) ([]string, map[string][]*sheet.Sheet, []func() error) {
	names := make([]string, 0, len(job.Suppliers))
	bySupplier := map[string][]*sheet.Sheet{}
	closers := []func() error{}

	for _, supplier := range job.Suppliers {
		path := supplier.Files[job.DocType]
		if path == "" {
			report.SuppliersSkipped++
			s.warn(report, supplier.Name, fmt.Sprintf("no %s file for supplier %s", job.DocType, supplier.Name))
			continue
		}
		wb, err := sheet.Open(path)
		if err != nil {
			report.SuppliersSkipped++
			s.warn(report, supplier.Name, fmt.Sprintf("open %s file for supplier %s: %v", job.DocType, supplier.Name, err))
			continue
		}
		closers = append(closers, wb.Close)

		visible := wb.VisibleSheets()
		sheets := make([]*sheet.Sheet, 0, sheetCount)
		usable := true
		for _, idx := range selectedIndexes(job, sheetCount) {
			if idx >= len(visible) {
				usable = false
				break
			}
			sheets = append(sheets, visible[idx])
		}
		if !usable {
			report.SuppliersSkipped++
			s.warn(report, supplier.Name, fmt.Sprintf("supplier %s workbook is missing selected sheets", supplier.Name))
			continue
		}

		names = append(names, supplier.Name)
		bySupplier[supplier.Name] = sheets
	}

	return names, bySupplier, closers
}

func selectedIndexes(job internal.Job, sheetCount int) []int {
	if len(job.SheetIndexes) > 0 {
		return job.SheetIndexes
	}
	out := make([]int, sheetCount)
	for i := range out {
		out[i] = i
	}
	return out
}

// summarize calls the external summarizer and folds any failure into an
// inline note, never an error: a broken summarizer must not abort a merge.
func (s *Service) summarize(ctx context.Context, text string) string {
	if s.summarizer == nil {
		return "Error summarizing text: no summarizer configured"
	}
	summary, err := s.summarizer.Summarize(ctx, text, s.cfg.SummarySentences)
	if err != nil {
		return fmt.Sprintf("Error summarizing text: %v", err)
	}
	return summary
}

func (s *Service) warn(report *internal.RunReport, scope, message string) {
	s.log.Warn(message, "scope", scope)
	report.Warnings = append(report.Warnings, internal.Warning{Scope: scope, Message: message})
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
