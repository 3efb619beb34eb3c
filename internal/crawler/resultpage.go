package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/catalogcrawl/internal/browser"
	"github.com/nao1215/catalogcrawl/internal/model"
)

// DefaultElementTimeout bounds waits for controls on result and detail views.
const DefaultElementTimeout = 30 * time.Second

// State is the position of a ResultPage in its detail cycle.
type State int

const (
	// StateResults means the page shows the result list.
	StateResults State = iota

	// StateDetail means the page shows one section detail view.
	StateDetail

	// StateReturning means the new-search control has been triggered.
	StateReturning

	// StateDone means the page is back at the search form.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateResults:
		return "results"
	case StateDetail:
		return "detail"
	case StateReturning:
		return "returning"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ResultPage crawls one result page. It borrows the browser page for the
// duration of one combination and must not be reused after Run.
type ResultPage struct {
	// page is the browser page, owned by the caller.
	page browser.Page

	// settler waits for postbacks to finish after each click.
	settler browser.Settler

	// logger receives progress lines.
	logger *slog.Logger

	// tracer creates spans around Run.
	tracer trace.Tracer

	// elementTimeout bounds each wait for a control.
	elementTimeout time.Duration

	// controls are the live detail control ids, set by Discover.
	controls []string

	// discovered reports whether Discover has run.
	discovered bool

	// history records every state entered, starting with StateResults.
	history []State
}

// Option configures a ResultPage.
type Option func(*ResultPage)

// WithLogger sets the logger for progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(rp *ResultPage) {
		if logger != nil {
			rp.logger = logger
		}
	}
}

// WithTracer sets the tracer used for Run spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(rp *ResultPage) {
		if tracer != nil {
			rp.tracer = tracer
		}
	}
}

// WithElementTimeout bounds waits for result and detail controls.
func WithElementTimeout(d time.Duration) Option {
	return func(rp *ResultPage) {
		if d > 0 {
			rp.elementTimeout = d
		}
	}
}

// Attach binds a ResultPage to page after checking that page is at
// searchURL and shows the "Search Results" heading. Otherwise it returns an
// *AttachmentError.
func Attach(ctx context.Context, page browser.Page, settler browser.Settler, searchURL string, opts ...Option) (*ResultPage, error) {
	current, err := page.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page url: %w", err)
	}
	if current != searchURL {
		return nil, &AttachmentError{URL: current, Reason: "expected " + searchURL}
	}

	ok, err := page.Exists(ctx, resultsTitleSelector)
	if err != nil {
		return nil, fmt.Errorf("look up results heading: %w", err)
	}
	if !ok {
		return nil, &AttachmentError{URL: current, Reason: "results heading not found"}
	}
	title, err := page.Text(ctx, resultsTitleSelector)
	if err != nil {
		return nil, fmt.Errorf("read results heading: %w", err)
	}
	if got := NormalizeText(title); got != resultsTitle {
		return nil, &AttachmentError{URL: current, Reason: fmt.Sprintf("heading reads %q", got)}
	}

	rp := &ResultPage{
		page:           page,
		settler:        settler,
		logger:         slog.Default(),
		tracer:         otel.Tracer("github.com/nao1215/catalogcrawl/internal/crawler"),
		elementTimeout: DefaultElementTimeout,
		history:        []State{StateResults},
	}
	for _, opt := range opts {
		opt(rp)
	}
	return rp, nil
}

// Discover returns the ids of the live detail controls in document order.
// The page renders every section control twice, so only the second of each
// pair (odd zero-based positions) is kept.
func (rp *ResultPage) Discover(ctx context.Context) ([]string, error) {
	ids, err := rp.page.AttributeAll(ctx, detailControlSelector, "id")
	if err != nil {
		return nil, fmt.Errorf("list detail controls: %w", err)
	}

	controls := make([]string, 0, len(ids)/2)
	for i, id := range ids {
		if i%2 == 1 {
			controls = append(controls, id)
		}
	}
	rp.controls = controls
	rp.discovered = true
	return controls, nil
}

// State returns the current state.
func (rp *ResultPage) State() State {
	return rp.history[len(rp.history)-1]
}

// History returns every state entered so far.
func (rp *ResultPage) History() []State {
	return append([]State(nil), rp.history...)
}

func (rp *ResultPage) enter(s State) {
	rp.history = append(rp.history, s)
}

// Run reads the course list, visits every detail control, returns the page
// to the search form and merges the sections into their courses.
func (rp *ResultPage) Run(ctx context.Context) (result model.CrawlResult, err error) {
	ctx, span := rp.tracer.Start(ctx, "crawler.ResultPage.Run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	html, err := rp.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read result page: %w", err)
	}
	courses, err := ExtractCourses(html)
	if err != nil {
		return nil, err
	}

	if !rp.discovered {
		if _, err := rp.Discover(ctx); err != nil {
			return nil, err
		}
	}
	span.SetAttributes(
		attribute.Int("catalog.courses", len(courses)),
		attribute.Int("catalog.detail_controls", len(rp.controls)),
	)

	sections := make([]model.Section, 0, len(rp.controls))
	for i, id := range rp.controls {
		rp.logger.Debug("visiting section detail", "control", id, "index", i+1, "total", len(rp.controls))

		section, err := rp.visit(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("detail %s: %w", id, err)
		}
		sections = append(sections, section)
	}

	rp.enter(StateReturning)
	if err := rp.clickAndSettle(ctx, browser.ID(newSearchID)); err != nil {
		return nil, fmt.Errorf("start new search: %w", err)
	}
	rp.enter(StateDone)

	return Merge(courses, sections)
}

// visit opens one detail view, reads it and goes back to the result list.
func (rp *ResultPage) visit(ctx context.Context, id string) (model.Section, error) {
	if err := rp.clickAndSettle(ctx, browser.ID(id)); err != nil {
		return model.Section{}, err
	}
	if err := browser.WaitFor(ctx, rp.page, browser.ID(backTopID), rp.elementTimeout); err != nil {
		return model.Section{}, err
	}
	rp.enter(StateDetail)

	html, err := rp.page.HTML(ctx)
	if err != nil {
		return model.Section{}, fmt.Errorf("read detail view: %w", err)
	}
	section, err := ExtractSection(html)
	if err != nil {
		return model.Section{}, err
	}

	if err := rp.clickAndSettle(ctx, browser.ID(backID)); err != nil {
		return model.Section{}, fmt.Errorf("back to results: %w", err)
	}
	rp.enter(StateResults)
	return section, nil
}

// clickAndSettle waits for selector, clicks it and waits for the postback.
func (rp *ResultPage) clickAndSettle(ctx context.Context, selector string) error {
	if err := browser.WaitFor(ctx, rp.page, selector, rp.elementTimeout); err != nil {
		return err
	}
	if err := rp.page.Click(ctx, selector); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return rp.settler.Settle(ctx, rp.page)
}
