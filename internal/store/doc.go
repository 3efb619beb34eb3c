// Package store persists crawl results.
//
// Every store implements Saver and writes the CrawlResult of one
// combination under the run that produced it:
//
//   - File writes <dir>/<runID>/<MAJOR>__<CAREER>.json
//   - SQLite keeps results in a local catalog database (modernc.org/sqlite)
//   - Postgres keeps results in a PostgreSQL table (pgx)
//
// Multi fans a save out to several stores at once and Retry wraps a store
// with exponential backoff, reporting exhausted retries as a
// *PersistenceError.
package store
