package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/catalogcrawl/internal/config"
	"github.com/nao1215/catalogcrawl/internal/model"
	"github.com/nao1215/catalogcrawl/internal/store"
)

// Run sources accepted by --source.
const (
	sourceFile     = "file"
	sourceSQLite   = "sqlite"
	sourcePostgres = "postgres"
)

// errUnknownSource is returned for an unsupported --source value.
var errUnknownSource = errors.New("unknown source (want file, sqlite or postgres)")

// runReader is what the runs command needs from a store.
type runReader interface {
	ListRuns(ctx context.Context) ([]store.RunInfo, error)
	Combinations(ctx context.Context, runID string) ([]model.Combination, error)
	LoadResult(ctx context.Context, runID string, combo model.Combination) (model.CrawlResult, error)
}

// NewRunsCmd creates the runs command.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored crawl runs",
		Long: `Runs lists the crawl runs kept in a store, newest first, with the number
of combinations, courses and sections each one saved.

Examples:
  # Runs written as JSON files
  catalogcrawl runs

  # Runs in the SQLite database
  catalogcrawl runs --source sqlite

  # Combinations stored for one run
  catalogcrawl runs show 1760000000000

  # One stored result
  catalogcrawl runs show 1760000000000 COMPSCI UGRD`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}
	addSourceFlags(cmd)
	cmd.AddCommand(newRunsShowCmd())
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show RUN_ID [MAJOR CAREER]",
		Short: "List the combinations of a run, or print one stored result as JSON",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("accepts RUN_ID or RUN_ID MAJOR CAREER, received %d args", len(args))
			}
			return nil
		},
		RunE: runRunsShowCmd,
	}
	addSourceFlags(cmd)
	return cmd
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", sourceFile, "Store to read: file, sqlite or postgres")
	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir(), "Directory of the JSON file store")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the SQLite database")
	cmd.Flags().String("postgres-dsn", "", "PostgreSQL DSN (default: CATALOG_POSTGRES_DSN)")
	cmd.Flags().String("env-file", config.DefaultEnvFile, "Environment file to load")
}

func runRunsCmd(cmd *cobra.Command, _ []string) error {
	reader, closeFn, err := openReader(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	runs, err := reader.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	return printRuns(cmd.OutOrStdout(), runs)
}

func runRunsShowCmd(cmd *cobra.Command, args []string) error {
	reader, closeFn, err := openReader(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if len(args) == 1 {
		combos, err := reader.Combinations(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printCombinations(cmd.OutOrStdout(), args[0], combos)
	}

	combo := model.Combination{
		Major:  model.DimensionValue(args[1]),
		Career: model.DimensionValue(args[2]),
	}
	result, err := reader.LoadResult(cmd.Context(), args[0], combo)
	if err != nil {
		return fmt.Errorf("%s in run %s: %w", combo, args[0], err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// openReader opens the store named by --source.
func openReader(cmd *cobra.Command) (runReader, func(), error) {
	flags := cmd.Flags()
	source, err := flags.GetString("source")
	if err != nil {
		return nil, nil, err
	}
	envFile, err := flags.GetString("env-file")
	if err != nil {
		return nil, nil, err
	}
	env, err := config.ReadEnv(envFile)
	if err != nil {
		return nil, nil, err
	}
	cfg := config.NewConfig()
	cfg.ApplyEnv(env)
	changed := flags.Changed
	if err := setIfChanged(changed, "output-dir", flags.GetString, &cfg.OutputDir); err != nil {
		return nil, nil, err
	}
	if err := setIfChanged(changed, "db-dir", flags.GetString, &cfg.DBDir); err != nil {
		return nil, nil, err
	}
	if err := setIfChanged(changed, "postgres-dsn", flags.GetString, &cfg.PostgresDSN); err != nil {
		return nil, nil, err
	}

	noop := func() {}
	switch source {
	case sourceFile:
		return store.NewFile(cfg.OutputDir), noop, nil
	case sourceSQLite:
		opts := store.DefaultSQLiteOptions()
		opts.CreateIfNotExists = false
		db, err := store.OpenSQLite(cfg.DBDir, opts)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	case sourcePostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, errors.New("--postgres-dsn or CATALOG_POSTGRES_DSN is required")
		}
		pg, err := store.OpenPostgres(cmd.Context(), cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%q: %w", source, errUnknownSource)
	}
}

// newTable returns a table writer rendering to w.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func printRuns(w io.Writer, runs []store.RunInfo) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs stored.")
		return err
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Run ID", "Combinations", "Courses", "Sections"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.RunID, r.Combinations, r.Courses, r.Sections})
	}
	t.Render()
	return nil
}

func printCombinations(w io.Writer, runID string, combos []model.Combination) error {
	if len(combos) == 0 {
		_, err := fmt.Fprintf(w, "No combinations stored for run %s.\n", runID)
		return err
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Major", "Career"})
	for _, c := range combos {
		t.AppendRow(table.Row{c.Major, c.Career})
	}
	t.Render()
	return nil
}
