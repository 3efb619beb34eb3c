// Package report renders the summary of a crawl run.
//
// Three writers are provided:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: a Markdown document with an outcome pie chart
//   - JSONWriter: a stable JSON document for other tools
//
// All of them implement Writer and can be combined with MultiWriter.
package report
