// Package log builds the slog loggers of catalogcrawl.
//
// Every logger wraps its handler in a SecureHandler, which masks the values
// of attributes that may carry credentials: PeopleSoft session cookies
// (PS_TOKEN, PS_TOKENEXPIRE, PSJSESSIONID), sign-in form fields, and
// database DSNs. Passwords embedded in URLs are stripped from any string
// attribute.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Info("opened store", "dsn", "postgres://crawler:pw@db/catalog") // dsn=***REDACTED***
package log
