// Package crawler walks one PeopleSoft class search result page.
//
// # Architecture
//
// A ResultPage is attached to a browser page that is already showing the
// results of a search. It reads the course list from the page, then visits
// every section detail view in turn (click, settle, read, back, settle) and
// finally returns the page to a fresh search form. The section records are
// merged into the course records by course number.
//
// The page moves through a small set of states:
//
//	Results -> Detail -> Results -> ... -> Returning -> Done
//
// and the ResultPage records every state it enters so the sequence can be
// inspected after a run.
//
// # Components
//
//   - ResultPage: attach, discover detail controls, run the detail cycle
//   - ExtractCourses / ExtractSection: goquery-based parsers for the result
//     list and for one detail view
//   - Merge: attaches sections to their courses
//
// # Usage
//
//	rp, err := crawler.Attach(ctx, page, settler, searchURL, crawler.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	result, err := rp.Run(ctx)
//
// # Errors
//
// Attach returns an *AttachmentError when the page is not a result page.
// Run returns a *DataIntegrityError when a section names a course that is
// not on the result list; no partial result is returned in that case.
package crawler
