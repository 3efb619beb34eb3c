package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/catalogcrawl/internal/config"
	"github.com/nao1215/catalogcrawl/internal/log"
)

// addSiteFlags adds the flags every command that opens the site needs.
func addSiteFlags(cmd *cobra.Command) {
	cmd.Flags().String("login-url", "",
		"Login page with the course catalog link (default: LOGIN_PAGE)")
	cmd.Flags().String("search-url", "",
		"Class search page (default: SEARCH_PAGE)")

	cmd.Flags().Bool("headless", true,
		"Run Chrome without a window")
	cmd.Flags().String("chrome-path", "",
		"Chrome executable (default: found on PATH)")
	cmd.Flags().String("user-agent", "",
		"Override Chrome's user agent")
	cmd.Flags().Duration("settle-timeout", config.DefaultSettleTimeout,
		"Bound on each wait for the processing indicator")
	cmd.Flags().Duration("element-timeout", config.DefaultElementTimeout,
		"Bound on each wait for an element to appear")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .catalogcrawl in current or home directory)")
	cmd.Flags().String("env-file", config.DefaultEnvFile,
		"dotenv file with LOGIN_PAGE and SEARCH_PAGE")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON lines")
}

// buildConfig layers defaults, the dotenv file, the configuration file and
// the flags the user set, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	cfg := config.NewConfig()

	var err error
	if cfg.EnvFile, err = flags.GetString("env-file"); err != nil {
		return nil, err
	}
	env, err := config.ReadEnv(cfg.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cfg.EnvFile, err)
	}
	cfg.ApplyEnv(env)

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	// An explicit path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// applyFlags copies every flag the user set into cfg. Flags a command does
// not define are skipped.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	changed := f.Changed

	steps := []error{
		setIfChanged(changed, "login-url", f.GetString, &cfg.LoginURL),
		setIfChanged(changed, "search-url", f.GetString, &cfg.SearchURL),
		setIfChanged(changed, "headless", f.GetBool, &cfg.Headless),
		setIfChanged(changed, "chrome-path", f.GetString, &cfg.ChromePath),
		setIfChanged(changed, "user-agent", f.GetString, &cfg.UserAgent),
		setIfChanged(changed, "settle-timeout", f.GetDuration, &cfg.SettleTimeout),
		setIfChanged(changed, "element-timeout", f.GetDuration, &cfg.ElementTimeout),
		setIfChanged(changed, "log-json", f.GetBool, &cfg.LogJSON),

		setIfChanged(changed, "major", f.GetStringSlice, &cfg.Majors),
		setIfChanged(changed, "career", f.GetStringSlice, &cfg.Careers),
		setIfChanged(changed, "combination-timeout", f.GetDuration, &cfg.CombinationTimeout),
		setIfChanged(changed, "output-dir", f.GetString, &cfg.OutputDir),
		setIfChanged(changed, "sqlite", f.GetBool, &cfg.SaveToDB),
		setIfChanged(changed, "db-dir", f.GetString, &cfg.DBDir),
		setIfChanged(changed, "postgres-dsn", f.GetString, &cfg.PostgresDSN),
		setIfChanged(changed, "persist-retries", f.GetInt, &cfg.PersistRetries),
		setIfChanged(changed, "json", f.GetBool, &cfg.JSONReport),
		setIfChanged(changed, "markdown", f.GetBool, &cfg.MarkdownReport),
		setIfChanged(changed, "output", f.GetString, &cfg.ReportFile),
		setIfChanged(changed, "otlp-endpoint", f.GetString, &cfg.OTLPEndpoint),
	}
	for _, err := range steps {
		if err != nil {
			return err
		}
	}
	return nil
}

// setIfChanged stores the value of flag name in dst when the user set it.
func setIfChanged[T any](changed func(string) bool, name string, get func(string) (T, error), dst *T) error {
	if !changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the secure logger for cfg and installs it as default.
func setupLogger(cfg *config.Config) *slog.Logger {
	logger := log.New(os.Stderr, cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)
	return logger
}

// shutdownTimeout bounds flushing traces and closing stores on exit.
const shutdownTimeout = 5 * time.Second
