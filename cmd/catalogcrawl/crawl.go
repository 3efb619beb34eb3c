package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/catalogcrawl/internal/browser"
	"github.com/nao1215/catalogcrawl/internal/config"
	"github.com/nao1215/catalogcrawl/internal/model"
	"github.com/nao1215/catalogcrawl/internal/report"
	"github.com/nao1215/catalogcrawl/internal/session"
	"github.com/nao1215/catalogcrawl/internal/store"
	"github.com/nao1215/catalogcrawl/internal/telemetry"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl every major and career combination",
		Long: `Crawl signs in through the course catalog link, reads the majors and
careers offered by the class search form and runs one search per
combination, majors varying slowest. Every class detail view of a result
page is visited and the courses with their sections are stored.

A combination the search form rejects (no classes found) is skipped. A
combination that fails is reported and the crawl moves on to the next one.

Examples:
  # Crawl everything, sites read from .env
  catalogcrawl crawl

  # Crawl two majors for undergraduates only
  catalogcrawl crawl --major COMPSCI --major MATH --career UGRD

  # Also keep results in SQLite and write a Markdown summary
  catalogcrawl crawl --sqlite --markdown -o summary.md

  # Watch the browser
  catalogcrawl crawl --headless=false`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	addSiteFlags(cmd)

	cmd.Flags().StringSliceP("major", "M", nil,
		"Major to crawl, repeatable (default: every major)")
	cmd.Flags().StringSliceP("career", "C", nil,
		"Career to crawl, repeatable (default: every career)")
	cmd.Flags().Duration("combination-timeout", config.DefaultCombinationTimeout,
		"Bound on the browser work of one combination")

	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir(),
		"Directory for per-combination JSON files (empty disables them)")
	cmd.Flags().Bool("sqlite", false,
		"Also store results in a SQLite database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the SQLite database")
	cmd.Flags().String("postgres-dsn", "",
		"Also store results in PostgreSQL (default: CATALOG_POSTGRES_DSN)")
	cmd.Flags().Int("persist-retries", config.DefaultPersistRetries,
		"Retries after a failed save")

	cmd.Flags().BoolP("json", "j", false,
		"Print the run summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the run summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the run summary to this file instead of stdout")
	cmd.Flags().Bool("show-skipped", false,
		"List skipped combinations in the text summary")
	cmd.Flags().String("otlp-endpoint", "",
		"Export traces to this OTLP/HTTP endpoint (default: CATALOG_OTLP_ENDPOINT)")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	showSkipped, err := cmd.Flags().GetBool("show-skipped")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	env := defaultEnv(cmd.OutOrStdout())
	env.showSkipped = showSkipped
	return runCrawl(ctx, cfg, logger, env)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// crawlEnv holds what runCrawl needs from the outside world.
type crawlEnv struct {
	newBrowser  func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (browser.Browser, error)
	newSettler  func(cfg *config.Config) browser.Settler
	stdout      io.Writer
	showSkipped bool
}

func defaultEnv(stdout io.Writer) crawlEnv {
	return crawlEnv{
		newBrowser: newChrome,
		newSettler: func(cfg *config.Config) browser.Settler {
			return browser.NewWheelSettler(cfg.SettleTimeout)
		},
		stdout: stdout,
	}
}

func newChrome(ctx context.Context, cfg *config.Config, logger *slog.Logger) (browser.Browser, error) {
	chrome, err := browser.NewChrome(ctx,
		browser.WithHeadless(cfg.Headless),
		browser.WithExecPath(cfg.ChromePath),
		browser.WithUserAgent(cfg.UserAgent),
		browser.WithChromeLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return chrome, nil
}

// runCrawl runs one full crawl and writes the summary.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, env crawlEnv) (err error) {
	tel, err := telemetry.Setup(ctx, telemetry.Config{Endpoint: cfg.OTLPEndpoint})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	saver, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	b, err := env.newBrowser(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	sess := session.New(b, env.newSettler(cfg), saver,
		session.Site{LoginURL: cfg.LoginURL, SearchURL: cfg.SearchURL},
		session.WithLogger(logger),
		session.WithElementTimeout(cfg.ElementTimeout),
		session.WithCombinationTimeout(cfg.CombinationTimeout),
	)
	defer func() {
		if err := sess.Terminate(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	if err := sess.Initialize(ctx); err != nil {
		return err
	}

	summary, runErr := sess.Run(ctx, dimensionValues(cfg.Majors), dimensionValues(cfg.Careers))
	if summary != nil {
		if err := outputSummary(cfg, summary, env); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

// openStores opens every enabled store and wraps them in a Retry.
// The returned func closes the database stores.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Saver, func(), error) {
	var (
		savers  []store.Saver
		closers []io.Closer
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warn("failed to close store", "error", err)
			}
		}
	}

	if cfg.OutputDir != "" {
		savers = append(savers, store.NewFile(cfg.OutputDir))
		logger.Debug("file store enabled", "dir", cfg.OutputDir)
	}
	if cfg.SaveToDB {
		db, err := store.OpenSQLite(cfg.DBDir, store.DefaultSQLiteOptions())
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		savers = append(savers, db)
		closers = append(closers, db)
		logger.Debug("sqlite store enabled", "path", db.Path())
	}
	if cfg.PostgresDSN != "" {
		pg, err := store.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		savers = append(savers, pg)
		closers = append(closers, pg)
		logger.Debug("postgres store enabled")
	}
	if len(savers) == 0 {
		return nil, nil, config.ErrNoStore
	}

	var saver store.Saver = savers[0]
	if len(savers) > 1 {
		saver = store.NewMulti(savers...)
	}
	return store.NewRetry(saver, cfg.PersistRetries,
		store.WithRetryInterval(cfg.PersistRetryInterval),
		store.WithRetryLogger(logger),
	), closeAll, nil
}

// outputSummary writes the run summary in the requested format.
func outputSummary(cfg *config.Config, summary *model.RunSummary, env crawlEnv) error {
	output := env.stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithShowEmpty(env.showSkipped),
		)
	}
	_, err := w.Write(summary)
	return err
}

// dimensionValues converts flag values. Nil stays nil so the session
// falls back to every discovered value.
func dimensionValues(values []string) []model.DimensionValue {
	if len(values) == 0 {
		return nil
	}
	out := make([]model.DimensionValue, len(values))
	for i, v := range values {
		out[i] = model.DimensionValue(v)
	}
	return out
}
