package browser

import (
	"context"
	"strconv"
)

// Page is one browser tab. Every method blocks until the underlying
// operation has completed or ctx is done.
type Page interface {
	// Navigate loads url in the tab and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// URL returns the tab's current location.
	URL(ctx context.Context) (string, error)

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// WaitVisible blocks until an element matching selector is visible.
	// It does not time out on its own; bound it with ctx or use WaitFor.
	WaitVisible(ctx context.Context, selector string) error

	// Exists reports whether at least one element matches selector,
	// without waiting.
	Exists(ctx context.Context, selector string) (bool, error)

	// Text returns the text content of the first element matching selector.
	Text(ctx context.Context, selector string) (string, error)

	// AttributeAll returns attr of every element matching selector, in
	// document order. Elements without the attribute yield "".
	AttributeAll(ctx context.Context, selector, attr string) ([]string, error)

	// SetSelected marks the option with the given value of the select
	// control matching selectSelector as selected.
	SetSelected(ctx context.Context, selectSelector, value string) error

	// HTML returns the rendered markup of the whole document.
	HTML(ctx context.Context) (string, error)

	// Evaluate runs a JavaScript expression and decodes its result into out.
	Evaluate(ctx context.Context, expression string, out any) error
}

// Browser owns a browser process and its single working tab.
type Browser interface {
	// Page returns the working tab. The same Page is returned on every call.
	Page() Page

	// Close releases the browser. The Page must not be used afterwards.
	Close() error
}

// ID returns a CSS selector matching the element whose id is exactly id.
// Unlike "#"+id it works for ids containing '$'.
func ID(id string) string {
	return "[id=" + strconv.Quote(id) + "]"
}
