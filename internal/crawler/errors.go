package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrNotResultPage is wrapped by AttachmentError.
	ErrNotResultPage = errors.New("page is not a search result page")

	// ErrUnmatchedSection is wrapped by DataIntegrityError.
	ErrUnmatchedSection = errors.New("section does not belong to any listed course")

	// ErrMalformedDetail is returned when a detail view lacks a required field
	// or carries a value that cannot be parsed.
	ErrMalformedDetail = errors.New("malformed section detail")
)

// AttachmentError reports that a ResultPage could not be attached because
// the browser page is not showing search results.
type AttachmentError struct {
	// URL is the address the page was at.
	URL string

	// Reason describes which check failed.
	Reason string
}

// Error implements error.
func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attach result page at %s: %s", e.URL, e.Reason)
}

// Unwrap returns ErrNotResultPage.
func (e *AttachmentError) Unwrap() error {
	return ErrNotResultPage
}

// DataIntegrityError reports a section whose course number has no matching
// course on the result list.
type DataIntegrityError struct {
	// Section is the class number of the orphaned section.
	Section string

	// CourseNumber is the course number the section claimed.
	CourseNumber string
}

// Error implements error.
func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("section %s references unknown course %q", e.Section, e.CourseNumber)
}

// Unwrap returns ErrUnmatchedSection.
func (e *DataIntegrityError) Unwrap() error {
	return ErrUnmatchedSection
}
