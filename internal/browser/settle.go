package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Settler blocks until the current page has quiesced.
type Settler interface {
	Settle(ctx context.Context, page Page) error
}

// SettlerFunc adapts a function to Settler.
type SettlerFunc func(ctx context.Context, page Page) error

// Settle calls f(ctx, page).
func (f SettlerFunc) Settle(ctx context.Context, page Page) error {
	return f(ctx, page)
}

// idleExpression is true when the document has loaded and PeopleSoft's
// processing indicator (WAIT_win0) is absent or hidden.
const idleExpression = `(() => {
	if (document.readyState !== "complete") return false;
	const w = document.getElementById("WAIT_win0");
	if (!w) return true;
	const s = window.getComputedStyle(w);
	return s.display === "none" || s.visibility === "hidden";
})()`

// Default settle parameters.
const (
	DefaultSettleTimeout  = 30 * time.Second
	DefaultSettleInterval = 100 * time.Millisecond
	DefaultStablePolls    = 3
)

// WheelSettler polls the page until the processing indicator has been idle
// for StablePolls consecutive polls.
//
// Requiring several idle polls covers the gap between a click and the
// moment the indicator first becomes visible.
type WheelSettler struct {
	Timeout     time.Duration
	Interval    time.Duration
	StablePolls int
}

// NewWheelSettler returns a WheelSettler with the given bound and default
// polling parameters.
func NewWheelSettler(timeout time.Duration) *WheelSettler {
	return &WheelSettler{
		Timeout:     timeout,
		Interval:    DefaultSettleInterval,
		StablePolls: DefaultStablePolls,
	}
}

// Settle implements Settler. It returns ErrSettleTimeout when the page is
// still busy after Timeout.
func (s *WheelSettler) Settle(ctx context.Context, page Page) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSettleTimeout
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultSettleInterval
	}
	stable := s.StablePolls
	if stable <= 0 {
		stable = 1
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	idle := 0
	for {
		// An evaluation error usually means the document was swapped out
		// mid-postback, so it counts as busy.
		var ok bool
		if err := page.Evaluate(ctx, idleExpression, &ok); err == nil && ok {
			idle++
			if idle >= stable {
				return nil
			}
		} else {
			idle = 0
		}

		select {
		case <-ctx.Done():
			return settleErr(ctx)
		case <-ticker.C:
		}
	}
}

// settleErr maps the bounded context's error to ErrSettleTimeout while
// keeping a parent cancellation distinguishable.
func settleErr(ctx context.Context) error {
	if errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrSettleTimeout, ctx.Err())
	}
	return ctx.Err()
}

// WaitFor waits up to timeout for selector to become visible on page.
// It returns ErrElementTimeout when the bound is hit.
func WaitFor(ctx context.Context, page Page, selector string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := page.WaitVisible(ctx, selector); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrElementTimeout, selector)
		}
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}
