package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// Chrome is a Browser backed by a Chrome process driven through chromedp.
type Chrome struct {
	allocCancel context.CancelFunc
	tabCancel   context.CancelFunc
	page        *chromePage
	logger      *slog.Logger
}

// ChromeOption configures Chrome.
type ChromeOption func(*chromeOptions)

type chromeOptions struct {
	headless  bool
	execPath  string
	userAgent string
	logger    *slog.Logger
}

// WithHeadless toggles headless mode. The default is headless.
func WithHeadless(headless bool) ChromeOption {
	return func(o *chromeOptions) {
		o.headless = headless
	}
}

// WithExecPath sets the Chrome binary. Empty means chromedp's lookup.
func WithExecPath(path string) ChromeOption {
	return func(o *chromeOptions) {
		o.execPath = path
	}
}

// WithUserAgent overrides the browser's User-Agent.
func WithUserAgent(ua string) ChromeOption {
	return func(o *chromeOptions) {
		o.userAgent = ua
	}
}

// WithChromeLogger sets the logger receiving chromedp's error output.
func WithChromeLogger(logger *slog.Logger) ChromeOption {
	return func(o *chromeOptions) {
		o.logger = logger
	}
}

// NewChrome starts a Chrome process and opens its working tab.
// The returned Chrome must be closed to release the process.
func NewChrome(ctx context.Context, opts ...ChromeOption) (*Chrome, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	o := chromeOptions{
		headless: true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", o.headless))
	if o.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(o.execPath))
	}
	if o.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(o.userAgent))
	}

	// The allocator and tab live for the whole session, so they are not
	// derived from ctx: cancelling a single operation must not kill Chrome.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(func(format string, args ...any) {
		o.logger.Debug("chromedp", "message", fmt.Sprintf(format, args...))
	}))

	// The first Run starts the process and the tab's event loop, both bound
	// to the context it is given, so it must run on tabCtx itself. ctx may
	// still abort the start.
	stop := context.AfterFunc(ctx, tabCancel)
	err := chromedp.Run(tabCtx)
	if !stop() {
		err = errors.Join(ctx.Err(), err)
	}
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}
	page := &chromePage{tabCtx: tabCtx}

	return &Chrome{
		allocCancel: allocCancel,
		tabCancel:   tabCancel,
		page:        page,
		logger:      o.logger,
	}, nil
}

// Page returns the working tab.
func (c *Chrome) Page() Page {
	return c.page
}

// Close closes the tab and stops the Chrome process.
func (c *Chrome) Close() error {
	c.tabCancel()
	c.allocCancel()
	return nil
}

// chromePage implements Page on a chromedp tab context.
type chromePage struct {
	tabCtx context.Context
}

// run executes actions on the started tab while honouring the caller's
// ctx. chromedp needs a context derived from the tab context, so the
// caller's deadline and cancellation are grafted onto a child of tabCtx.
// It must not be used before the first chromedp.Run on tabCtx.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ctxErr, err)
		}
		return err
	}
	return nil
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *chromePage) URL(ctx context.Context) (string, error) {
	var location string
	if err := p.run(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *chromePage) Exists(ctx context.Context, selector string) (bool, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

func (p *chromePage) Text(ctx context.Context, selector string) (string, error) {
	var text string
	if err := p.run(ctx, chromedp.TextContent(selector, &text, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return text, nil
}

func (p *chromePage) AttributeAll(ctx context.Context, selector, attr string) ([]string, error) {
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%s)).map(e => e.getAttribute(%s) || "")`,
		jsString(selector), jsString(attr),
	)
	var values []string
	if err := p.Evaluate(ctx, expr, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (p *chromePage) SetSelected(ctx context.Context, selectSelector, value string) error {
	expr := fmt.Sprintf(`(() => {
	const sel = document.querySelector(%s);
	if (!sel) return false;
	const opt = Array.from(sel.options).find(o => o.value === %s);
	if (!opt) return false;
	opt.setAttribute("selected", "selected");
	sel.value = opt.value;
	return true;
})()`, jsString(selectSelector), jsString(value))

	var ok bool
	if err := p.Evaluate(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: option %q in %s", ErrOptionNotFound, value, selectSelector)
	}
	return nil
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) Evaluate(ctx context.Context, expression string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expression, out))
}

// jsString encodes s as a JavaScript string literal.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshalling a string cannot fail.
		panic(err)
	}
	return string(b)
}
