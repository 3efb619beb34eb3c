package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// DefaultPostgresMaxConns caps the pool. Saves are sequential, so a small
// pool is enough.
const DefaultPostgresMaxConns = 4

// Postgres stores results in a PostgreSQL table with a jsonb column.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, checks the connection and creates the
// schema if needed.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = DefaultPostgresMaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.createTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return p, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_results (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT NOT NULL,
		major TEXT NOT NULL,
		career TEXT NOT NULL,
		result JSONB NOT NULL,
		course_count INTEGER NOT NULL,
		section_count INTEGER NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (run_id, major, career)
	);
	CREATE INDEX IF NOT EXISTS idx_catalog_results_run ON catalog_results (run_id);
	`
	_, err := p.pool.Exec(ctx, schema)
	return err
}

// Save implements Saver.
func (p *Postgres) Save(ctx context.Context, runID string, combo model.Combination, result model.CrawlResult) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO catalog_results (run_id, major, career, result, course_count, section_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, major, career) DO UPDATE SET
			result = EXCLUDED.result,
			course_count = EXCLUDED.course_count,
			section_count = EXCLUDED.section_count,
			saved_at = now()
	`
	_, err = p.pool.Exec(ctx, query,
		runID, combo.Major.String(), combo.Career.String(), string(data), len(result), result.SectionCount())
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// Delete implements Deleter.
func (p *Postgres) Delete(ctx context.Context, runID string, combo model.Combination) error {
	query := `DELETE FROM catalog_results WHERE run_id = $1 AND major = $2 AND career = $3`
	if _, err := p.pool.Exec(ctx, query, runID, combo.Major.String(), combo.Career.String()); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

// Combinations returns the combinations stored for a run in save order.
func (p *Postgres) Combinations(ctx context.Context, runID string) ([]model.Combination, error) {
	rows, err := p.pool.Query(ctx, `SELECT major, career FROM catalog_results WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list combinations: %w", err)
	}
	defer rows.Close()

	combos := make([]model.Combination, 0)
	for rows.Next() {
		var major, career string
		if err := rows.Scan(&major, &career); err != nil {
			return nil, fmt.Errorf("scan combination: %w", err)
		}
		combos = append(combos, model.Combination{
			Major:  model.DimensionValue(major),
			Career: model.DimensionValue(career),
		})
	}
	return combos, rows.Err()
}

// LoadResult returns the result stored for combo in run runID, or
// ErrNotFound.
func (p *Postgres) LoadResult(ctx context.Context, runID string, combo model.Combination) (model.CrawlResult, error) {
	query := `SELECT result FROM catalog_results WHERE run_id = $1 AND major = $2 AND career = $3`

	var data []byte
	err := p.pool.QueryRow(ctx, query, runID, combo.Major.String(), combo.Career.String()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	return decodeResult(data)
}

// ListRuns returns every stored run, newest first.
func (p *Postgres) ListRuns(ctx context.Context) ([]RunInfo, error) {
	query := `
		SELECT run_id, COUNT(*), COALESCE(SUM(course_count), 0), COALESCE(SUM(section_count), 0)
		FROM catalog_results
		GROUP BY run_id
		ORDER BY run_id DESC
	`
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunInfo, 0)
	for rows.Next() {
		var r RunInfo
		var combos, courses, sections int64
		if err := rows.Scan(&r.RunID, &combos, &courses, &sections); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Combinations, r.Courses, r.Sections = int(combos), int(courses), int(sections)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
