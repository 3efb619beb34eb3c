package browser

import "errors"

var (
	// ErrSettleTimeout is returned when the page does not quiesce within the
	// settle bound. It is the crawl's navigation timeout.
	ErrSettleTimeout = errors.New("page did not settle in time")

	// ErrElementTimeout is returned by WaitFor when an expected element never
	// becomes visible.
	ErrElementTimeout = errors.New("element did not appear in time")

	// ErrOptionNotFound is returned by SetSelected when the select control or
	// the requested option is missing.
	ErrOptionNotFound = errors.New("select option not found")
)
