package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "catalogcrawl"

	// DefaultSettleTimeout bounds one wait for the processing indicator.
	DefaultSettleTimeout = 30 * time.Second

	// DefaultElementTimeout bounds one wait for an element to appear.
	DefaultElementTimeout = 30 * time.Second

	// DefaultCombinationTimeout bounds the browser work of one combination.
	// Large majors have a few hundred sections and each detail view costs
	// two postbacks.
	DefaultCombinationTimeout = 10 * time.Minute

	// DefaultPersistRetries is the number of retries after a failed save.
	DefaultPersistRetries = 3

	// DefaultPersistRetryInterval is the first backoff interval between saves.
	DefaultPersistRetryInterval = 500 * time.Millisecond
)

// Config holds every option of a crawl run. It is built once from defaults,
// the environment, the configuration file and CLI flags, in that order, and
// then passed down explicitly.
type Config struct {
	// LoginURL is the sign-in page that links to the course catalog.
	LoginURL string

	// SearchURL is the class search form.
	SearchURL string

	// Majors and Careers restrict the crawl. Empty means every value the
	// search form offers.
	Majors  []string
	Careers []string

	// OutputDir receives one JSON file per combination under a run
	// directory. Empty disables the file store.
	OutputDir string

	// SaveToDB enables the SQLite store in DBDir.
	SaveToDB bool

	// DBDir is the directory of the SQLite database.
	DBDir string

	// PostgresDSN enables the PostgreSQL store when set.
	PostgresDSN string

	// Headless runs Chrome without a window.
	Headless bool

	// ChromePath overrides the Chrome executable. Empty lets chromedp find it.
	ChromePath string

	// UserAgent overrides Chrome's user agent when set.
	UserAgent string

	// SettleTimeout bounds each wait for the processing indicator.
	SettleTimeout time.Duration

	// ElementTimeout bounds each wait for an element to become visible.
	ElementTimeout time.Duration

	// CombinationTimeout bounds the browser work of one combination.
	CombinationTimeout time.Duration

	// PersistRetries is the number of retries after a failed save.
	PersistRetries int

	// PersistRetryInterval is the first backoff interval between saves.
	PersistRetryInterval time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// JSONReport and MarkdownReport select the run summary format. Plain
	// text is used when neither is set.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile receives the run summary instead of stdout.
	ReportFile string

	// OTLPEndpoint is the OTLP/HTTP traces URL. Empty disables tracing.
	OTLPEndpoint string

	// ConfigFilePath is the YAML configuration file given on the command
	// line. Empty means search the default locations.
	ConfigFilePath string

	// EnvFile is the dotenv file read for site URLs.
	EnvFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:            DefaultOutputDir(),
		DBDir:                XDGDataDir(),
		Headless:             true,
		SettleTimeout:        DefaultSettleTimeout,
		ElementTimeout:       DefaultElementTimeout,
		CombinationTimeout:   DefaultCombinationTimeout,
		PersistRetries:       DefaultPersistRetries,
		PersistRetryInterval: DefaultPersistRetryInterval,
		EnvFile:              DefaultEnvFile,
	}
}

// XDGDataDir returns the XDG data directory for catalogcrawl.
// On Linux: ~/.local/share/catalogcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for catalogcrawl.
// On Linux: ~/.config/catalogcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultOutputDir is where per-combination JSON files go by default.
func DefaultOutputDir() string {
	return filepath.Join(XDGDataDir(), "data")
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.LoginURL == "" {
		return ErrNoLoginURL
	}
	if c.SearchURL == "" {
		return ErrNoSearchURL
	}
	if !isHTTPURL(c.LoginURL) || !isHTTPURL(c.SearchURL) {
		return ErrInvalidURL
	}
	if c.SettleTimeout <= 0 || c.ElementTimeout <= 0 {
		return ErrInvalidSettleTimeout
	}
	if c.CombinationTimeout <= 0 {
		return ErrInvalidCombinationTimeout
	}
	if c.PersistRetries < 0 {
		return ErrInvalidPersistRetries
	}
	if c.OutputDir == "" && !c.SaveToDB && c.PostgresDSN == "" {
		return ErrNoStore
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ValidateSite checks only the site URLs. Commands that never persist
// anything use it instead of Validate.
func (c *Config) ValidateSite() error {
	if c.LoginURL == "" {
		return ErrNoLoginURL
	}
	if c.SearchURL == "" {
		return ErrNoSearchURL
	}
	if !isHTTPURL(c.LoginURL) || !isHTTPURL(c.SearchURL) {
		return ErrInvalidURL
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
