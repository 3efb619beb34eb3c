package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig documents the defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("timeouts", func(t *testing.T) {
		t.Parallel()
		if cfg.SettleTimeout != 30*time.Second {
			t.Errorf("SettleTimeout = %v, want 30s", cfg.SettleTimeout)
		}
		if cfg.ElementTimeout != 30*time.Second {
			t.Errorf("ElementTimeout = %v, want 30s", cfg.ElementTimeout)
		}
		if cfg.CombinationTimeout != 10*time.Minute {
			t.Errorf("CombinationTimeout = %v, want 10m", cfg.CombinationTimeout)
		}
	})

	t.Run("persistence", func(t *testing.T) {
		t.Parallel()
		if cfg.PersistRetries != 3 {
			t.Errorf("PersistRetries = %d, want 3", cfg.PersistRetries)
		}
		if cfg.OutputDir != DefaultOutputDir() {
			t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, DefaultOutputDir())
		}
		if cfg.SaveToDB {
			t.Error("expected SQLite store to be off by default")
		}
		if cfg.PostgresDSN != "" {
			t.Error("expected no PostgreSQL DSN by default")
		}
	})

	t.Run("browser is headless", func(t *testing.T) {
		t.Parallel()
		if !cfg.Headless {
			t.Error("expected Headless to be true")
		}
	})

	t.Run("site URLs are unset", func(t *testing.T) {
		t.Parallel()
		if cfg.LoginURL != "" || cfg.SearchURL != "" {
			t.Error("expected empty site URLs")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.LoginURL = "https://campus.example.edu/login"
		cfg.SearchURL = "https://campus.example.edu/psc/SEARCH"
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "valid", modify: func(*Config) {}, want: nil},
		{name: "missing login URL", modify: func(c *Config) { c.LoginURL = "" }, want: ErrNoLoginURL},
		{name: "missing search URL", modify: func(c *Config) { c.SearchURL = "" }, want: ErrNoSearchURL},
		{name: "relative URL", modify: func(c *Config) { c.SearchURL = "/psc/SEARCH" }, want: ErrInvalidURL},
		{name: "non-http URL", modify: func(c *Config) { c.LoginURL = "ftp://campus.example.edu/" }, want: ErrInvalidURL},
		{name: "zero settle timeout", modify: func(c *Config) { c.SettleTimeout = 0 }, want: ErrInvalidSettleTimeout},
		{name: "negative element timeout", modify: func(c *Config) { c.ElementTimeout = -time.Second }, want: ErrInvalidSettleTimeout},
		{name: "zero combination timeout", modify: func(c *Config) { c.CombinationTimeout = 0 }, want: ErrInvalidCombinationTimeout},
		{name: "negative retries", modify: func(c *Config) { c.PersistRetries = -1 }, want: ErrInvalidPersistRetries},
		{name: "zero retries is valid", modify: func(c *Config) { c.PersistRetries = 0 }, want: nil},
		{name: "no store", modify: func(c *Config) { c.OutputDir = "" }, want: ErrNoStore},
		{
			name:   "SQLite only",
			modify: func(c *Config) { c.OutputDir = ""; c.SaveToDB = true },
			want:   nil,
		},
		{
			name:   "PostgreSQL only",
			modify: func(c *Config) { c.OutputDir = ""; c.PostgresDSN = "postgres://localhost/catalog" },
			want:   nil,
		},
		{
			name:   "conflicting report formats",
			modify: func(c *Config) { c.JSONReport = true; c.MarkdownReport = true },
			want:   ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigValidateSite(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		LoginURL:  "http://localhost:8080/login",
		SearchURL: "http://localhost:8080/search",
	}
	// Stores and timeouts are ignored.
	if err := cfg.ValidateSite(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	cfg.LoginURL = ""
	if err := cfg.ValidateSite(); !errors.Is(err, ErrNoLoginURL) {
		t.Errorf("expected ErrNoLoginURL, got %v", err)
	}
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("overrides set fields only", func(t *testing.T) {
		t.Parallel()

		headless := false
		sqlite := true
		retries := 0
		f := &File{
			Site:    SiteFile{LoginURL: "https://a.example.edu/login"},
			Majors:  []string{"COMPSCI"},
			Browser: BrowserFile{Headless: &headless, SettleTimeout: 5 * time.Second},
			Storage: StorageFile{SQLite: &sqlite, DBDir: "/var/lib/catalog", PersistRetries: &retries},
		}

		cfg := NewConfig()
		cfg.SearchURL = "https://a.example.edu/search"
		f.Apply(cfg)

		if cfg.LoginURL != "https://a.example.edu/login" {
			t.Errorf("LoginURL = %q", cfg.LoginURL)
		}
		if cfg.SearchURL != "https://a.example.edu/search" {
			t.Errorf("SearchURL should be untouched, got %q", cfg.SearchURL)
		}
		if diff := cmp.Diff([]string{"COMPSCI"}, cfg.Majors); diff != "" {
			t.Errorf("Majors mismatch (-want +got):\n%s", diff)
		}
		if cfg.Careers != nil {
			t.Errorf("Careers should be untouched, got %v", cfg.Careers)
		}
		if cfg.Headless {
			t.Error("expected explicit headless: false to apply")
		}
		if cfg.SettleTimeout != 5*time.Second {
			t.Errorf("SettleTimeout = %v", cfg.SettleTimeout)
		}
		if cfg.ElementTimeout != DefaultElementTimeout {
			t.Errorf("ElementTimeout should be untouched, got %v", cfg.ElementTimeout)
		}
		if !cfg.SaveToDB || cfg.DBDir != "/var/lib/catalog" {
			t.Errorf("SQLite settings not applied: %v %q", cfg.SaveToDB, cfg.DBDir)
		}
		if cfg.PersistRetries != 0 {
			t.Errorf("PersistRetries = %d, want explicit 0", cfg.PersistRetries)
		}
	})

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()

		var f *File
		cfg := NewConfig()
		f.Apply(cfg)
		if diff := cmp.Diff(NewConfig(), cfg); diff != "" {
			t.Errorf("config changed (-want +got):\n%s", diff)
		}
	})

	t.Run("copies dimension slices", func(t *testing.T) {
		t.Parallel()

		f := &File{Careers: []string{"UGRD"}}
		cfg := NewConfig()
		f.Apply(cfg)
		f.Careers[0] = "GRAD"
		if cfg.Careers[0] != "UGRD" {
			t.Error("Apply should not alias the file's slice")
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.catalogcrawl")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".catalogcrawl")
		content := `site:
  loginURL: "https://campus.example.edu/login"
  searchURL: "https://campus.example.edu/search"
majors:
  - COMPSCI
  - MATH
careers:
  - UGRD
browser:
  headless: false
  settleTimeout: 45s
storage:
  sqlite: true
  persistRetries: 5
combinationTimeout: 20m
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Site.SearchURL != "https://campus.example.edu/search" {
			t.Errorf("SearchURL = %q", cfg.Site.SearchURL)
		}
		if diff := cmp.Diff([]string{"COMPSCI", "MATH"}, cfg.Majors); diff != "" {
			t.Errorf("Majors mismatch (-want +got):\n%s", diff)
		}
		if cfg.Browser.Headless == nil || *cfg.Browser.Headless {
			t.Error("expected headless: false")
		}
		if cfg.Browser.SettleTimeout != 45*time.Second {
			t.Errorf("SettleTimeout = %v", cfg.Browser.SettleTimeout)
		}
		if cfg.Storage.PersistRetries == nil || *cfg.Storage.PersistRetries != 5 {
			t.Error("expected persistRetries: 5")
		}
		if cfg.CombinationTimeout != 20*time.Minute {
			t.Errorf("CombinationTimeout = %v", cfg.CombinationTimeout)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".catalogcrawl")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("majors: []"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		t.Chdir(dir)

		got := FindConfigFile("")
		if filepath.Base(got) != DefaultConfigFile {
			t.Errorf("expected %s in cwd, got %q", DefaultConfigFile, got)
		}
	})
}

func TestReadEnv(t *testing.T) {
	t.Parallel()

	noEnv := func(string) (string, bool) { return "", false }

	t.Run("reads dotenv file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".env")
		content := "LOGIN_PAGE=https://campus.example.edu/login\nSEARCH_PAGE=https://campus.example.edu/search\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		env, err := readEnv(path, noEnv)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env[EnvLoginPage] != "https://campus.example.edu/login" {
			t.Errorf("LOGIN_PAGE = %q", env[EnvLoginPage])
		}
	})

	t.Run("process environment wins", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("SEARCH_PAGE=https://file.example.edu/\n"), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		lookup := func(key string) (string, bool) {
			if key == EnvSearchPage {
				return "https://process.example.edu/", true
			}
			return "", false
		}

		env, err := readEnv(path, lookup)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env[EnvSearchPage] != "https://process.example.edu/" {
			t.Errorf("SEARCH_PAGE = %q", env[EnvSearchPage])
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		t.Parallel()

		env, err := readEnv(filepath.Join(t.TempDir(), "missing.env"), noEnv)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(env) != 0 {
			t.Errorf("expected empty env, got %v", env)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.ApplyEnv(map[string]string{
		EnvLoginPage:    "https://campus.example.edu/login",
		EnvSearchPage:   "https://campus.example.edu/search",
		EnvPostgresDSN:  "postgres://catalog@localhost/catalog",
		EnvOTLPEndpoint: "http://localhost:4318/v1/traces",
		"UNRELATED":     "ignored",
	})

	if cfg.LoginURL != "https://campus.example.edu/login" {
		t.Errorf("LoginURL = %q", cfg.LoginURL)
	}
	if cfg.SearchURL != "https://campus.example.edu/search" {
		t.Errorf("SearchURL = %q", cfg.SearchURL)
	}
	if cfg.PostgresDSN != "postgres://catalog@localhost/catalog" {
		t.Errorf("PostgresDSN = %q", cfg.PostgresDSN)
	}
	if cfg.OTLPEndpoint != "http://localhost:4318/v1/traces" {
		t.Errorf("OTLPEndpoint = %q", cfg.OTLPEndpoint)
	}
	if cfg.OutputDir != DefaultOutputDir() {
		t.Errorf("OutputDir should be untouched, got %q", cfg.OutputDir)
	}
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if XDGDataDir() == "" {
		t.Error("expected non-empty XDG data dir")
	}
	if XDGConfigDir() == "" {
		t.Error("expected non-empty XDG config dir")
	}
	if filepath.Dir(DefaultOutputDir()) != XDGDataDir() {
		t.Errorf("DefaultOutputDir %q is not under %q", DefaultOutputDir(), XDGDataDir())
	}
}
