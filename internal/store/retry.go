package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// Default retry parameters.
const (
	DefaultMaxRetries    = 3
	DefaultRetryInterval = 500 * time.Millisecond
)

// Retry retries failed saves with exponential backoff.
type Retry struct {
	next       Saver
	maxRetries uint64
	interval   time.Duration
	logger     *slog.Logger
}

// RetryOption configures a Retry.
type RetryOption func(*Retry)

// WithRetryInterval sets the first backoff interval.
func WithRetryInterval(d time.Duration) RetryOption {
	return func(r *Retry) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithRetryLogger sets the logger that reports each retry.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(r *Retry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRetry wraps next so that a failed save is retried up to maxRetries
// times. A negative maxRetries is treated as zero.
func NewRetry(next Saver, maxRetries int, opts ...RetryOption) *Retry {
	if maxRetries < 0 {
		maxRetries = 0
	}
	r := &Retry{
		next:       next,
		maxRetries: uint64(maxRetries),
		interval:   DefaultRetryInterval,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save implements Saver. When every attempt fails the last error is
// returned inside a *PersistenceError. Cancellation of ctx stops retrying.
func (r *Retry) Save(ctx context.Context, runID string, combo model.Combination, result model.CrawlResult) error {
	attempts := 0
	operation := func() error {
		attempts++
		err := r.next.Save(ctx, runID, combo, result)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.interval
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, r.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("save failed, retrying",
			"combination", combo.String(), "attempt", attempts, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return &PersistenceError{Combination: combo, Attempts: attempts, Err: err}
	}
	return nil
}
