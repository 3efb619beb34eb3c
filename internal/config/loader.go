package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".catalogcrawl"

// DefaultEnvFile is the dotenv file read when none is given.
const DefaultEnvFile = ".env"

// Environment variables read by ApplyEnv.
const (
	EnvLoginPage    = "LOGIN_PAGE"
	EnvSearchPage   = "SEARCH_PAGE"
	EnvPostgresDSN  = "CATALOG_POSTGRES_DSN"
	EnvOutputDir    = "CATALOG_OUTPUT_DIR"
	EnvOTLPEndpoint = "CATALOG_OTLP_ENDPOINT"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .catalogcrawl in the current directory
// 3. Look for .catalogcrawl in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// ReadEnv returns the variables of the dotenv file at path overlaid with
// the process environment. A missing file is not an error.
func ReadEnv(path string) (map[string]string, error) {
	return readEnv(path, os.LookupEnv)
}

func readEnv(path string, lookup func(string) (string, bool)) (map[string]string, error) {
	env := make(map[string]string)
	if path != "" {
		fileEnv, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}

	for _, key := range []string{EnvLoginPage, EnvSearchPage, EnvPostgresDSN, EnvOutputDir, EnvOTLPEndpoint} {
		if v, ok := lookup(key); ok && v != "" {
			env[key] = v
		}
	}
	return env, nil
}

// ApplyEnv copies the known variables of env into c.
func (c *Config) ApplyEnv(env map[string]string) {
	if v := env[EnvLoginPage]; v != "" {
		c.LoginURL = v
	}
	if v := env[EnvSearchPage]; v != "" {
		c.SearchURL = v
	}
	if v := env[EnvPostgresDSN]; v != "" {
		c.PostgresDSN = v
	}
	if v := env[EnvOutputDir]; v != "" {
		c.OutputDir = v
	}
	if v := env[EnvOTLPEndpoint]; v != "" {
		c.OTLPEndpoint = v
	}
}
