// Package model defines the catalog data shared by the crawler, the
// session, the stores and the report writers.
//
// A crawl searches one Combination of a major and a career at a time. Each
// search yields a CrawlResult: the Courses on the result page, each with the
// Sections read from the class detail views. The session records how every
// combination ended as an Outcome and collects them in a RunSummary.
//
// All types serialize to JSON for the file, SQLite and PostgreSQL stores.
package model
