package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	// ErrNoLoginURL is returned when the login page URL is missing.
	ErrNoLoginURL = errors.New("no login page URL: set LOGIN_PAGE, loginURL or --login-url")

	// ErrNoSearchURL is returned when the class search URL is missing.
	ErrNoSearchURL = errors.New("no search page URL: set SEARCH_PAGE, searchURL or --search-url")

	// ErrInvalidURL is returned when a site URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid site URL: must be an absolute http or https URL")

	// ErrInvalidSettleTimeout is returned when a browser wait bound is not positive.
	ErrInvalidSettleTimeout = errors.New("invalid settle timeout: must be positive")

	// ErrInvalidCombinationTimeout is returned when the per-combination bound is not positive.
	ErrInvalidCombinationTimeout = errors.New("invalid combination timeout: must be positive")

	// ErrInvalidPersistRetries is returned when the retry count is negative.
	ErrInvalidPersistRetries = errors.New("invalid persist retries: must be non-negative")

	// ErrNoStore is returned when every result store is disabled.
	ErrNoStore = errors.New("no result store: enable the output directory, SQLite or PostgreSQL")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
