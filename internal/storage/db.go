package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"rfpmerge/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  eventName TEXT NOT NULL,
  docType TEXT NOT NULL,
  mode TEXT NOT NULL,
  sheetsWritten INTEGER NOT NULL,
  sheetsSkipped INTEGER NOT NULL,
  suppliers INTEGER NOT NULL,
  suppliersSkipped INTEGER NOT NULL,
  summarySheets INTEGER NOT NULL,
  warningsJson TEXT NOT NULL,
  outputPath TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_eventName ON runs(eventName);
CREATE INDEX IF NOT EXISTS idx_runs_traceId ON runs(traceId);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(report internal.RunReport) error {
	warningsJSON, _ := json.Marshal(report.Warnings)
	_, err := d.conn.Exec(`
INSERT INTO runs (traceId, eventName, docType, mode, sheetsWritten, sheetsSkipped,
                  suppliers, suppliersSkipped, summarySheets, warningsJson, outputPath)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, report.TraceID, report.EventName, string(report.DocType), string(report.Mode),
		report.SheetsWritten, report.SheetsSkipped, report.Suppliers, report.SuppliersSkipped,
		report.SummarySheets, string(warningsJSON), report.OutputPath)
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, eventName, docType, mode, sheetsWritten, summarySheets,
       warningsJson, outputPath, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		var rec internal.RunRecord
		var warningsJSON string
		if err := rows.Scan(
			&rec.ID, &rec.TraceID, &rec.EventName, &rec.DocType, &rec.Mode,
			&rec.SheetsWritten, &rec.SummarySheets, &warningsJSON, &rec.OutputPath, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		var warnings []internal.Warning
		_ = json.Unmarshal([]byte(warningsJSON), &warnings)
		rec.WarningCount = len(warnings)
		out = append(out, rec)
	}

	return out, rows.Err()
}
