// Package storage persists catalogs and evaluation runs in SQLite.
// CSV remains the interchange format; the database is the durable
// store that survives between invocations.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scholarmap/canon/internal/catalog"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Canonical catalog rows, one namespace per entity type.
		-- position preserves source row order; it defines tie-breaks
		-- for duplicate display names.
		CREATE TABLE IF NOT EXISTS catalog_entries (
			entity_type TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			attrs_json TEXT NOT NULL,
			PRIMARY KEY (entity_type, id)
		);

		CREATE INDEX IF NOT EXISTS idx_catalog_name
			ON catalog_entries(entity_type, name);

		-- One row per evaluation harness run.
		CREATE TABLE IF NOT EXISTS eval_runs (
			run_id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at INTEGER NOT NULL,
			row_count INTEGER NOT NULL,
			top1_accuracy REAL NOT NULL,
			mrr REAL NOT NULL
		);

		-- Per-request predictions belonging to a run.
		CREATE TABLE IF NOT EXISTS eval_predictions (
			run_id INTEGER NOT NULL REFERENCES eval_runs(run_id),
			input_name TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			gold_id TEXT NOT NULL,
			pred_id TEXT,
			pred_name TEXT,
			score REAL NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// ImportCatalog replaces the stored catalog for an entity type with
// the given records, preserving their order. The replacement runs in
// one transaction so readers never see a half-imported catalog.
func (d *DB) ImportCatalog(entityType string, records []catalog.Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM catalog_entries WHERE entity_type = ?", entityType); err != nil {
		return fmt.Errorf("clearing catalog %s: %w", entityType, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO catalog_entries (entity_type, position, id, name, attrs_json)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		attrs, err := json.Marshal(rec.Attrs)
		if err != nil {
			return fmt.Errorf("encoding attributes for %s: %w", rec.ID, err)
		}
		if _, err := stmt.Exec(entityType, i, rec.ID, rec.Name, string(attrs)); err != nil {
			return fmt.Errorf("inserting %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// LoadCatalogRecords reads the stored records for an entity type in
// their original source order.
func (d *DB) LoadCatalogRecords(entityType string) ([]catalog.Record, error) {
	rows, err := d.db.Query(`
		SELECT id, name, attrs_json FROM catalog_entries
		WHERE entity_type = ? ORDER BY position`, entityType)
	if err != nil {
		return nil, fmt.Errorf("querying catalog %s: %w", entityType, err)
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		var rec catalog.Record
		var attrsJSON string
		if err := rows.Scan(&rec.ID, &rec.Name, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if err := json.Unmarshal([]byte(attrsJSON), &rec.Attrs); err != nil {
			return nil, fmt.Errorf("decoding attributes for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog rows: %w", err)
	}
	return records, nil
}

// CatalogCount returns the number of stored rows for an entity type.
func (d *DB) CatalogCount(entityType string) (int, error) {
	var n int
	err := d.db.QueryRow(
		"SELECT COUNT(*) FROM catalog_entries WHERE entity_type = ?", entityType).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting catalog %s: %w", entityType, err)
	}
	return n, nil
}

// EvalRun summarizes one evaluation harness run.
type EvalRun struct {
	RunID        int64     `json:"run_id"`
	CreatedAt    time.Time `json:"created_at"`
	RowCount     int       `json:"row_count"`
	Top1Accuracy float64   `json:"top1_accuracy"`
	MRR          float64   `json:"mrr"`
}

// EvalPrediction is one labeled row with the pipeline's prediction.
type EvalPrediction struct {
	InputName  string  `json:"input_name"`
	EntityType string  `json:"entity_type"`
	GoldID     string  `json:"gold_id"`
	PredID     string  `json:"pred_id"`
	PredName   string  `json:"pred_name"`
	Score      float64 `json:"score"`
}

// SaveEvalRun records a run summary and its predictions in one
// transaction, returning the new run id.
func (d *DB) SaveEvalRun(run EvalRun, predictions []EvalPrediction) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO eval_runs (created_at, row_count, top1_accuracy, mrr)
		VALUES (?, ?, ?, ?)`,
		run.CreatedAt.Unix(), run.RowCount, run.Top1Accuracy, run.MRR)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO eval_predictions (run_id, input_name, entity_type, gold_id, pred_id, pred_name, score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range predictions {
		if _, err := stmt.Exec(runID, p.InputName, p.EntityType, p.GoldID, p.PredID, p.PredName, p.Score); err != nil {
			return 0, fmt.Errorf("inserting prediction for %q: %w", p.InputName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListEvalRuns returns run summaries, newest first.
func (d *DB) ListEvalRuns(limit int) ([]EvalRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(`
		SELECT run_id, created_at, row_count, top1_accuracy, mrr
		FROM eval_runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []EvalRun
	for rows.Next() {
		var r EvalRun
		var createdAt int64
		if err := rows.Scan(&r.RunID, &createdAt, &r.RowCount, &r.Top1Accuracy, &r.MRR); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	return runs, nil
}
