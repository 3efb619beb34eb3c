package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/catalogcrawl/internal/model"
)

// SQLiteFileName is the database file created inside the database directory.
const SQLiteFileName = "catalog.db"

// SQLite stores results in a local SQLite database. One row holds the
// result of one combination of one run.
type SQLite struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// path is the path to the SQLite database file.
	path string
}

// SQLiteOptions configures SQLite behavior.
type SQLiteOptions struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultSQLiteOptions returns the default database options.
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// OpenSQLite opens or creates the catalog database in dir.
// With CreateIfNotExists false a missing database is an error.
func OpenSQLite(dir string, opts SQLiteOptions) (*SQLite, error) {
	path := filepath.Join(dir, SQLiteFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := path + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLite{db: db, path: path}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		major TEXT NOT NULL,
		career TEXT NOT NULL,
		result_json TEXT NOT NULL,
		course_count INTEGER NOT NULL,
		section_count INTEGER NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, major, career)
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_major ON results(major);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Save implements Saver. Saving the same combination twice in one run
// replaces the earlier row.
func (s *SQLite) Save(ctx context.Context, runID string, combo model.Combination, result model.CrawlResult) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO results (run_id, major, career, result_json, course_count, section_count)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, major, career) DO UPDATE SET
		result_json = excluded.result_json,
		course_count = excluded.course_count,
		section_count = excluded.section_count,
		saved_at = CURRENT_TIMESTAMP
	`
	_, err = s.db.ExecContext(ctx, query,
		runID, combo.Major.String(), combo.Career.String(), string(data), len(result), result.SectionCount())
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// Delete implements Deleter.
func (s *SQLite) Delete(ctx context.Context, runID string, combo model.Combination) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE run_id = ? AND major = ? AND career = ?`,
		runID, combo.Major.String(), combo.Career.String())
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// LoadResult returns the result stored for combo in run runID, or
// ErrNotFound.
func (s *SQLite) LoadResult(ctx context.Context, runID string, combo model.Combination) (model.CrawlResult, error) {
	query := `SELECT result_json FROM results WHERE run_id = ? AND major = ? AND career = ?`

	var data string
	err := s.db.QueryRowContext(ctx, query, runID, combo.Major.String(), combo.Career.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	return decodeResult([]byte(data))
}

// ListRuns returns every stored run, newest first.
func (s *SQLite) ListRuns(ctx context.Context) ([]RunInfo, error) {
	query := `
	SELECT run_id, COUNT(*), SUM(course_count), SUM(section_count)
	FROM results
	GROUP BY run_id
	ORDER BY CAST(run_id AS INTEGER) DESC, run_id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunInfo, 0)
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.RunID, &r.Combinations, &r.Courses, &r.Sections); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Combinations returns the combinations stored for a run in save order.
func (s *SQLite) Combinations(ctx context.Context, runID string) ([]model.Combination, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT major, career FROM results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list combinations: %w", err)
	}
	defer rows.Close()

	combos := make([]model.Combination, 0)
	for rows.Next() {
		var major, career string
		if err := rows.Scan(&major, &career); err != nil {
			return nil, fmt.Errorf("failed to scan combination: %w", err)
		}
		combos = append(combos, model.Combination{
			Major:  model.DimensionValue(major),
			Career: model.DimensionValue(career),
		})
	}
	return combos, rows.Err()
}
