package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/catalogcrawl/internal/browser"
	"github.com/nao1215/catalogcrawl/internal/crawler"
	"github.com/nao1215/catalogcrawl/internal/model"
)

// Search form elements.
const (
	catalogLinkSelector = "a[name=CourseCatalogLink]"
	subjectSelectID     = "CLASS_SRCH_WRK2_SUBJECT$108$"
	careerSelectID      = "CLASS_SRCH_WRK2_ACAD_CAREER"
	clearButtonID       = "CLASS_SRCH_WRK2_SSR_PB_CLEAR"
	searchButtonID      = "CLASS_SRCH_WRK2_SSR_PB_CLASS_SRCH"
	searchErrorID       = "DERIVED_CLSMSG_ERROR_TEXT"
	resultsReadyID      = "CLASS_SRCH_WRK2_SSR_PB_NEW_SEARCH$62$"
)

// Default bounds.
const (
	DefaultElementTimeout     = 30 * time.Second
	DefaultCombinationTimeout = 10 * time.Minute
)

// Store persists the result of one combination.
type Store interface {
	Save(ctx context.Context, runID string, combo model.Combination, result model.CrawlResult) error
}

// Site holds the two entry points of the class search application.
type Site struct {
	// LoginURL is the landing page with the course catalog link.
	LoginURL string

	// SearchURL is the class search form. Result and detail views are
	// served at the same address.
	SearchURL string
}

// lifecycle is the coarse state of a Session.
type lifecycle int

const (
	lifecycleNew lifecycle = iota
	lifecycleReady
	lifecycleTerminated
)

// Session drives the class search application through one browser page.
// It owns the browser: Terminate closes it.
//
// A Session is not safe for concurrent use; combinations are crawled one at
// a time on the same page.
type Session struct {
	browser browser.Browser
	page    browser.Page
	settler browser.Settler
	store   Store
	site    Site

	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time

	elementTimeout     time.Duration
	combinationTimeout time.Duration

	state      lifecycle
	dimensions model.Dimensions
	machine    *machine
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer sets the tracer for session spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Session) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithElementTimeout bounds every wait for a form control.
func WithElementTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.elementTimeout = d
		}
	}
}

// WithCombinationTimeout bounds the browser work of a single combination.
func WithCombinationTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.combinationTimeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a session on b. The session takes ownership of b.
func New(b browser.Browser, settler browser.Settler, store Store, site Site, opts ...Option) *Session {
	s := &Session{
		browser:            b,
		page:               b.Page(),
		settler:            settler,
		store:              store,
		site:               site,
		logger:             slog.Default(),
		tracer:             otel.Tracer("github.com/nao1215/catalogcrawl/internal/session"),
		now:                time.Now,
		elementTimeout:     DefaultElementTimeout,
		combinationTimeout: DefaultCombinationTimeout,
		machine:            newMachine(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize logs in through the course catalog link, opens the search form
// and discovers the major and career options. Any failure is returned as an
// *InitializationError.
func (s *Session) Initialize(ctx context.Context) (err error) {
	switch s.state {
	case lifecycleTerminated:
		return ErrTerminated
	case lifecycleReady:
		return ErrAlreadyInitialized
	}

	ctx, span := s.tracer.Start(ctx, "session.Initialize")
	defer func() { endSpan(span, err) }()

	s.logger.Info("opening class search", "login_url", s.site.LoginURL)

	if err := s.page.Navigate(ctx, s.site.LoginURL); err != nil {
		return &InitializationError{Step: "open login page", Err: err}
	}
	if err := s.clickAndSettle(ctx, catalogLinkSelector); err != nil {
		return &InitializationError{Step: "follow course catalog link", Err: err}
	}
	if err := s.openSearchForm(ctx); err != nil {
		return &InitializationError{Step: "open search form", Err: err}
	}

	majors, err := s.readOptions(ctx, subjectSelectID)
	if err != nil {
		return &InitializationError{Step: "read majors", Err: err}
	}
	careers, err := s.readOptions(ctx, careerSelectID)
	if err != nil {
		return &InitializationError{Step: "read careers", Err: err}
	}

	s.dimensions = model.Dimensions{Majors: majors, Careers: careers}
	s.state = lifecycleReady
	span.SetAttributes(
		attribute.Int("catalog.majors", len(majors)),
		attribute.Int("catalog.careers", len(careers)),
	)
	s.logger.Info("discovered search dimensions", "majors", len(majors), "careers", len(careers))
	return nil
}

// readOptions returns the option values of a select control, trimmed and
// whitespace-collapsed, without the leading placeholder option.
func (s *Session) readOptions(ctx context.Context, selectID string) ([]model.DimensionValue, error) {
	raw, err := s.page.AttributeAll(ctx, browser.ID(selectID)+" option", "value")
	if err != nil {
		return nil, err
	}
	values := make([]model.DimensionValue, 0, len(raw))
	for i, v := range raw {
		if i == 0 {
			continue
		}
		values = append(values, model.DimensionValue(crawler.NormalizeText(v)))
	}
	return values, nil
}

// Dimensions returns the majors and careers discovered by Initialize.
func (s *Session) Dimensions() model.Dimensions {
	return model.Dimensions{
		Majors:  append([]model.DimensionValue(nil), s.dimensions.Majors...),
		Careers: append([]model.DimensionValue(nil), s.dimensions.Careers...),
	}
}

// Run crawls every combination of majors and careers in order, majors
// varying slowest. A nil argument stands for every discovered value.
//
// A failed combination is recorded as a fatal outcome and the page is sent
// back to the search form before the next one. Run stops early when ctx is
// cancelled or when that recovery itself fails; the summary returned then
// holds the outcomes gathered so far.
func (s *Session) Run(ctx context.Context, majors, careers []model.DimensionValue) (summary *model.RunSummary, err error) {
	switch s.state {
	case lifecycleTerminated:
		return nil, ErrTerminated
	case lifecycleNew:
		return nil, ErrNotInitialized
	}

	if majors == nil {
		majors = s.dimensions.Majors
	}
	if careers == nil {
		careers = s.dimensions.Careers
	}
	combos := model.Combinations(majors, careers)

	started := s.now()
	summary = &model.RunSummary{
		RunID:     strconv.FormatInt(started.UnixMilli(), 10),
		StartedAt: started,
		Outcomes:  make([]model.Outcome, 0, len(combos)),
	}
	defer func() { summary.FinishedAt = s.now() }()

	ctx, span := s.tracer.Start(ctx, "session.Run", trace.WithAttributes(
		attribute.String("catalog.run_id", summary.RunID),
		attribute.Int("catalog.combinations", len(combos)),
	))
	defer func() { endSpan(span, err) }()

	s.logger.Info("starting crawl", "run_id", summary.RunID, "combinations", len(combos))

	if err := s.openSearchForm(ctx); err != nil {
		return summary, fmt.Errorf("open search form: %w", err)
	}

	for i, combo := range combos {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("crawl interrupted", "completed", i, "total", len(combos))
			return summary, err
		}

		s.logger.Info("searching", "major", combo.Major, "career", combo.Career, "index", i+1, "total", len(combos))
		outcome := s.crawlCombination(ctx, summary.RunID, combo)
		summary.Outcomes = append(summary.Outcomes, outcome)

		switch outcome.Kind {
		case model.OutcomeSuccess:
			s.logger.Info("saved combination", "combination", combo.String(),
				"courses", len(outcome.Result), "sections", outcome.Result.SectionCount(), "duration", outcome.Duration)
		case model.OutcomeSkipped:
			s.logger.Info("skipped combination", "combination", combo.String(), "reason", outcome.Reason)
		case model.OutcomeFatal:
			s.logger.Error("combination failed", "combination", combo.String(), "error", outcome.Err)
			if ctx.Err() != nil {
				continue
			}
			if err := s.recoverPage(ctx); err != nil {
				return summary, fmt.Errorf("recover after %s: %w", combo, err)
			}
		}
	}

	s.logger.Info("crawl finished", "run_id", summary.RunID,
		"succeeded", summary.Count(model.OutcomeSuccess),
		"skipped", summary.Count(model.OutcomeSkipped),
		"failed", summary.Count(model.OutcomeFatal))
	return summary, nil
}

// crawlCombination runs the search cycle for combo and persists the result.
func (s *Session) crawlCombination(ctx context.Context, runID string, combo model.Combination) model.Outcome {
	start := s.now()

	ctx, span := s.tracer.Start(ctx, "session.crawlCombination", trace.WithAttributes(
		attribute.String("catalog.major", combo.Major.String()),
		attribute.String("catalog.career", combo.Career.String()),
	))
	defer span.End()

	outcome := s.searchAndSave(ctx, runID, combo)
	outcome.Duration = s.now().Sub(start)

	span.SetAttributes(attribute.String("catalog.outcome", outcome.Kind.String()))
	if outcome.Kind == model.OutcomeFatal {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
	}
	return outcome
}

func (s *Session) searchAndSave(ctx context.Context, runID string, combo model.Combination) model.Outcome {
	searchCtx, cancel := context.WithTimeout(ctx, s.combinationTimeout)
	defer cancel()

	result, err := s.search(searchCtx, combo)
	switch {
	case errors.Is(err, ErrSearchForm):
		return model.Skipped(combo, err.Error())
	case err != nil:
		return model.Fatal(combo, err)
	}

	if err := s.store.Save(ctx, runID, combo, result); err != nil {
		return model.Fatal(combo, fmt.Errorf("save %s: %w", combo, err))
	}
	return model.Success(combo, result)
}

// search drives the form for one combination and, when results appear,
// hands the page to a crawler.ResultPage.
func (s *Session) search(ctx context.Context, combo model.Combination) (model.CrawlResult, error) {
	m := s.machine
	m.reset()

	if err := s.clickAndSettle(ctx, browser.ID(clearButtonID)); err != nil {
		return nil, fmt.Errorf("clear search form: %w", err)
	}
	if err := m.transition(StateFormReset); err != nil {
		return nil, err
	}

	if err := s.page.SetSelected(ctx, browser.ID(subjectSelectID), combo.Major.String()); err != nil {
		return nil, fmt.Errorf("select major %s: %w", combo.Major, err)
	}
	if err := s.page.SetSelected(ctx, browser.ID(careerSelectID), combo.Career.String()); err != nil {
		return nil, fmt.Errorf("select career %s: %w", combo.Career, err)
	}
	if err := m.transition(StateFiltersSet); err != nil {
		return nil, err
	}

	if err := s.clickAndSettle(ctx, browser.ID(searchButtonID)); err != nil {
		return nil, fmt.Errorf("submit search: %w", err)
	}
	if err := m.transition(StateSubmitted); err != nil {
		return nil, err
	}

	hasError, err := s.page.Exists(ctx, browser.ID(searchErrorID))
	if err != nil {
		return nil, fmt.Errorf("check search error: %w", err)
	}
	if hasError {
		if err := m.transition(StateErrorDetected); err != nil {
			return nil, err
		}
		if err := m.transition(StateIdle); err != nil {
			return nil, err
		}
		return nil, ErrSearchForm
	}

	if err := browser.WaitFor(ctx, s.page, browser.ID(resultsReadyID), s.elementTimeout); err != nil {
		return nil, fmt.Errorf("wait for results: %w", err)
	}
	if err := m.transition(StateResultsReady); err != nil {
		return nil, err
	}

	rp, err := crawler.Attach(ctx, s.page, s.settler, s.site.SearchURL,
		crawler.WithLogger(s.logger),
		crawler.WithTracer(s.tracer),
		crawler.WithElementTimeout(s.elementTimeout),
	)
	if err != nil {
		return nil, err
	}
	if err := m.transition(StateDelegated); err != nil {
		return nil, err
	}

	result, err := rp.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.transition(StateIdle); err != nil {
		return nil, err
	}
	return result, nil
}

// recoverPage sends the page back to a bare search form after a failure.
func (s *Session) recoverPage(ctx context.Context) error {
	s.logger.Warn("returning to search form", "search_url", s.site.SearchURL)
	s.machine.reset()
	return s.openSearchForm(ctx)
}

// openSearchForm navigates to the search form and waits until its filter
// controls are present.
func (s *Session) openSearchForm(ctx context.Context) error {
	if err := s.page.Navigate(ctx, s.site.SearchURL); err != nil {
		return err
	}
	if err := s.settler.Settle(ctx, s.page); err != nil {
		return err
	}
	for _, id := range []string{subjectSelectID, careerSelectID} {
		if err := browser.WaitFor(ctx, s.page, browser.ID(id), s.elementTimeout); err != nil {
			return err
		}
	}
	return nil
}

// clickAndSettle waits for selector, clicks it and waits for the postback.
func (s *Session) clickAndSettle(ctx context.Context, selector string) error {
	if err := browser.WaitFor(ctx, s.page, selector, s.elementTimeout); err != nil {
		return err
	}
	if err := s.page.Click(ctx, selector); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return s.settler.Settle(ctx, s.page)
}

// History returns the states of the most recent combination's search cycle.
func (s *Session) History() []State {
	return append([]State(nil), s.machine.history...)
}

// Terminate closes the browser. The session refuses every later call with
// ErrTerminated. Calling Terminate again is a no-op.
func (s *Session) Terminate() error {
	if s.state == lifecycleTerminated {
		return nil
	}
	s.state = lifecycleTerminated
	if err := s.browser.Close(); err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
