// Package browsertest provides an in-memory browser.Page for tests.
//
// Page renders a fixed HTML document per "screen" and evaluates selectors
// with goquery, so crawl code can be exercised without Chrome. Navigation
// and clicks are scripted with Route and OnClick; Catalog builds on top of
// it to emulate the PeopleSoft class search site.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoRoute is returned by Navigate for a URL without a registered route.
var ErrNoRoute = errors.New("browsertest: no route for url")

// ErrNoElement is returned when a selector matches nothing.
var ErrNoElement = errors.New("browsertest: no element matches selector")

// Handler reacts to a navigation or click by changing the page.
type Handler func(p *Page) error

// Page is a scripted browser.Page.
// It is safe for concurrent use, but handlers run without the lock held.
type Page struct {
	mu       sync.Mutex
	url      string
	html     string
	doc      *goquery.Document
	routes   map[string]Handler
	clicks   map[string]Handler
	selected map[string]string
	actions  []string

	// busyPolls is the number of upcoming Evaluate calls that report the
	// page as busy.
	busyPolls int

	// evaluate replaces the default Evaluate behaviour when set.
	evaluate func(expression string, out any) error
}

// NewPage returns an empty page at about:blank.
func NewPage() *Page {
	p := &Page{
		routes:   make(map[string]Handler),
		clicks:   make(map[string]Handler),
		selected: make(map[string]string),
	}
	p.Show("about:blank", "<html><body></body></html>")
	return p
}

// Show replaces the current screen.
func (p *Page) Show(url, html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// x/net/html accepts any input, so this cannot happen for strings.
		panic(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.html = html
	p.doc = doc
}

// Route registers the handler run when Navigate is called with url.
func (p *Page) Route(url string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[url] = h
}

// OnClick registers the handler run when selector is clicked.
// Clicking an existing element without a handler does nothing.
func (p *Page) OnClick(selector string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks[selector] = h
}

// SetBusy makes the next n Evaluate calls report a busy page.
func (p *Page) SetBusy(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busyPolls = n
}

// SetEvaluate overrides Evaluate.
func (p *Page) SetEvaluate(fn func(expression string, out any) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evaluate = fn
}

// Selected returns the value chosen for a select control, or "".
func (p *Page) Selected(selectSelector string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected[selectSelector]
}

// ClearSelections forgets all chosen select values.
func (p *Page) ClearSelections() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = make(map[string]string)
}

// Actions returns the navigations and clicks performed so far, formatted as
// "navigate <url>" and "click <selector>".
func (p *Page) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.actions...)
}

func (p *Page) record(action string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, action)
}

// Navigate implements browser.Page.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record("navigate " + url)

	p.mu.Lock()
	h, ok := p.routes[url]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoRoute, url)
	}
	return h(p)
}

// URL implements browser.Page.
func (p *Page) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

// Click implements browser.Page.
func (p *Page) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record("click " + selector)

	p.mu.Lock()
	found := p.doc.Find(selector).Length() > 0
	h := p.clicks[selector]
	p.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: %s", ErrNoElement, selector)
	}
	if h == nil {
		return nil
	}
	return h(p)
}

// WaitVisible implements browser.Page. The DOM only changes through
// handlers, so a missing element blocks until ctx is done.
func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	ok, err := p.Exists(ctx, selector)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

// Exists implements browser.Page.
func (p *Page) Exists(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find(selector).Length() > 0, nil
}

// Text implements browser.Page.
func (p *Page) Text(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoElement, selector)
	}
	return sel.Text(), nil
}

// AttributeAll implements browser.Page.
func (p *Page) AttributeAll(ctx context.Context, selector, attr string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	values := make([]string, 0)
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(attr)
		values = append(values, v)
	})
	return values, nil
}

// SetSelected implements browser.Page.
func (p *Page) SetSelected(ctx context.Context, selectSelector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	option := p.doc.Find(selectSelector).Find("option[value=" + strconv.Quote(value) + "]")
	if option.Length() == 0 {
		return fmt.Errorf("%w: option %q in %s", ErrNoElement, value, selectSelector)
	}
	p.selected[selectSelector] = value
	return nil
}

// HTML implements browser.Page.
func (p *Page) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html, nil
}

// Evaluate implements browser.Page. By default every expression evaluates
// to true (an idle page) unless SetBusy is pending; out must then be *bool.
func (p *Page) Evaluate(ctx context.Context, expression string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	fn := p.evaluate
	idle := p.busyPolls == 0
	if !idle {
		p.busyPolls--
	}
	p.mu.Unlock()

	if fn != nil {
		return fn(expression, out)
	}
	b, ok := out.(*bool)
	if !ok {
		return fmt.Errorf("browsertest: unsupported evaluate target %T", out)
	}
	*b = idle
	return nil
}
