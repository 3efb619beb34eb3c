package browsertest

import (
	"sync"

	"github.com/nao1215/catalogcrawl/internal/browser"
)

// Browser is a browser.Browser holding a single scripted Page.
type Browser struct {
	page *Page

	mu     sync.Mutex
	closes int
}

// NewBrowser returns a Browser serving page.
func NewBrowser(page *Page) *Browser {
	return &Browser{page: page}
}

// Page implements browser.Browser.
func (b *Browser) Page() browser.Page {
	return b.page
}

// Close implements browser.Browser.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return nil
}

// Closes returns how many times Close was called.
func (b *Browser) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}
