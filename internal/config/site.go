package config

import "time"

// File is the structure of the .catalogcrawl YAML configuration file.
// Unset fields leave the corresponding Config value untouched.
type File struct {
	// Site locates the PeopleSoft pages.
	Site SiteFile `yaml:"site,omitempty"`

	// Majors and Careers restrict the crawl.
	Majors  []string `yaml:"majors,omitempty"`
	Careers []string `yaml:"careers,omitempty"`

	// Browser tunes Chrome and the wait bounds.
	Browser BrowserFile `yaml:"browser,omitempty"`

	// Storage selects where results are written.
	Storage StorageFile `yaml:"storage,omitempty"`

	// CombinationTimeout bounds the browser work of one combination.
	CombinationTimeout time.Duration `yaml:"combinationTimeout,omitempty"`

	// OTLPEndpoint enables trace export.
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty"`
}

// SiteFile holds the site URLs.
type SiteFile struct {
	LoginURL  string `yaml:"loginURL,omitempty"`
	SearchURL string `yaml:"searchURL,omitempty"`
}

// BrowserFile holds Chrome settings. Headless is a pointer so that an
// explicit false can be told apart from an unset value.
type BrowserFile struct {
	Headless       *bool         `yaml:"headless,omitempty"`
	ChromePath     string        `yaml:"chromePath,omitempty"`
	UserAgent      string        `yaml:"userAgent,omitempty"`
	SettleTimeout  time.Duration `yaml:"settleTimeout,omitempty"`
	ElementTimeout time.Duration `yaml:"elementTimeout,omitempty"`
}

// StorageFile holds store settings.
type StorageFile struct {
	OutputDir      string `yaml:"outputDir,omitempty"`
	SQLite         *bool  `yaml:"sqlite,omitempty"`
	DBDir          string `yaml:"dbDir,omitempty"`
	PostgresDSN    string `yaml:"postgresDSN,omitempty"`
	PersistRetries *int   `yaml:"persistRetries,omitempty"`
}

// Apply copies every set field of f into c.
func (f *File) Apply(c *Config) {
	if f == nil {
		return
	}

	if f.Site.LoginURL != "" {
		c.LoginURL = f.Site.LoginURL
	}
	if f.Site.SearchURL != "" {
		c.SearchURL = f.Site.SearchURL
	}
	if len(f.Majors) > 0 {
		c.Majors = append([]string(nil), f.Majors...)
	}
	if len(f.Careers) > 0 {
		c.Careers = append([]string(nil), f.Careers...)
	}

	if f.Browser.Headless != nil {
		c.Headless = *f.Browser.Headless
	}
	if f.Browser.ChromePath != "" {
		c.ChromePath = f.Browser.ChromePath
	}
	if f.Browser.UserAgent != "" {
		c.UserAgent = f.Browser.UserAgent
	}
	if f.Browser.SettleTimeout != 0 {
		c.SettleTimeout = f.Browser.SettleTimeout
	}
	if f.Browser.ElementTimeout != 0 {
		c.ElementTimeout = f.Browser.ElementTimeout
	}

	if f.Storage.OutputDir != "" {
		c.OutputDir = f.Storage.OutputDir
	}
	if f.Storage.SQLite != nil {
		c.SaveToDB = *f.Storage.SQLite
	}
	if f.Storage.DBDir != "" {
		c.DBDir = f.Storage.DBDir
	}
	if f.Storage.PostgresDSN != "" {
		c.PostgresDSN = f.Storage.PostgresDSN
	}
	if f.Storage.PersistRetries != nil {
		c.PersistRetries = *f.Storage.PersistRetries
	}

	if f.CombinationTimeout != 0 {
		c.CombinationTimeout = f.CombinationTimeout
	}
	if f.OTLPEndpoint != "" {
		c.OTLPEndpoint = f.OTLPEndpoint
	}
}
