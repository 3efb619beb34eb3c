// Package browser provides the browser and DOM access surface used by the
// crawl.
//
// The crawl never talks to Chrome directly. It goes through two small
// interfaces:
//
//   - Page: navigate, click, read text and attributes, select form options and
//     read the rendered HTML of the current tab.
//   - Settler: block until the page's pending UI and network activity has
//     quiesced (the PeopleSoft "processing" wheel is gone).
//
// Chrome implements Browser and Page on top of chromedp. Tests use the
// scripted fake in the browsertest subpackage instead.
//
// # Selectors
//
// PeopleSoft element ids contain '$' characters (for example
// "MTG_LOC$0"), which are not valid in a bare CSS "#id" selector. Use ID to
// build an attribute selector that matches the raw id.
package browser
