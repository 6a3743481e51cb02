// Package audit keeps a SQLite record of generation runs and the documents
// each run wrote, so a validation package can be traced back to the inputs
// and parameters that produced it.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DB is the subset of *sql.DB the audit trail uses.
type DB interface {
	Close() error
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type sqliteDB struct {
	*sql.DB
}

// Run is one invocation of the generator.
type Run struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	Status          string
	ConfigFile      string
	SoftwareName    string
	SoftwareVersion string
	Server          string
	PreparedBy      string
	PreparedDate    string
	OutDir          string
}

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Document is one file written by a run.
type Document struct {
	RunID      string
	DocType    string
	OutputFile string
	SHA256     string
	Rows       int
	Executed   bool
}

// Initialize opens (creating if needed) the audit database at dbPath and
// sets up the schema.
func Initialize(dbPath string) (DB, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	db := &sqliteDB{sqlDB}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL CHECK (status IN ('running', 'completed', 'failed')),
		config_file TEXT NOT NULL,
		software_name TEXT NOT NULL,
		software_version TEXT NOT NULL,
		server TEXT NOT NULL,
		prepared_by TEXT NOT NULL,
		prepared_date TEXT NOT NULL,
		outdir TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		doc_type TEXT NOT NULL,
		output_file TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		rows_merged INTEGER NOT NULL CHECK (rows_merged >= 0),
		executed INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create audit tables: %w", err)
	}
	return nil
}

// RecordRun inserts a run in the running state.
func RecordRun(db DB, run Run) error {
	insertSQL := `
	INSERT INTO runs (run_id, started_at, status, config_file, software_name,
		software_version, server, prepared_by, prepared_date, outdir)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(insertSQL, run.RunID, run.StartedAt.UTC().Format(time.RFC3339), StatusRunning,
		run.ConfigFile, run.SoftwareName, run.SoftwareVersion, run.Server,
		run.PreparedBy, run.PreparedDate, run.OutDir)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// FinishRun sets the end time and final status of a run.
func FinishRun(db DB, runID string, finishedAt time.Time, status string) error {
	_, err := db.Exec(`UPDATE runs SET finished_at = ?, status = ? WHERE run_id = ?`,
		finishedAt.UTC().Format(time.RFC3339), status, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RecordDocument inserts a written document.
func RecordDocument(db DB, doc Document) error {
	insertSQL := `
	INSERT INTO documents (run_id, doc_type, output_file, sha256, rows_merged, executed)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	executed := 0
	if doc.Executed {
		executed = 1
	}
	if _, err := db.Exec(insertSQL, doc.RunID, doc.DocType, doc.OutputFile, doc.SHA256, doc.Rows, executed); err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}
	return nil
}

// LoadRun returns a run by ID.
func LoadRun(db DB, runID string) (*Run, error) {
	rows, err := db.Query(`
	SELECT run_id, started_at, COALESCE(finished_at, ''), status, config_file,
		software_name, software_version, server, prepared_by, prepared_date, outdir
	FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error during row iteration: %w", err)
		}
		return nil, fmt.Errorf("run '%s' not found", runID)
	}

	var run Run
	var started, finished string
	if err := rows.Scan(&run.RunID, &started, &finished, &run.Status, &run.ConfigFile,
		&run.SoftwareName, &run.SoftwareVersion, &run.Server, &run.PreparedBy,
		&run.PreparedDate, &run.OutDir); err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	if finished != "" {
		run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	}

	return &run, nil
}

// Documents returns the documents of a run in the order they were written.
func Documents(db DB, runID string) ([]Document, error) {
	rows, err := db.Query(`
	SELECT run_id, doc_type, output_file, sha256, rows_merged, executed
	FROM documents WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var executed int
		if err := rows.Scan(&d.RunID, &d.DocType, &d.OutputFile, &d.SHA256, &d.Rows, &executed); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Executed = executed != 0
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return docs, nil
}
