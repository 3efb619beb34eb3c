package model

import (
	"time"
)

// OutcomeKind classifies how a combination's crawl ended.
type OutcomeKind int

const (
	// OutcomeSuccess means the combination was crawled and persisted.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeSkipped means the search form rejected the combination
	// (for example, no classes match). Nothing is persisted.
	OutcomeSkipped

	// OutcomeFatal means the combination failed. The run continues with the
	// next combination but this one produced no output.
	OutcomeFatal
)

// String returns the lower-case name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the result of crawling one combination.
// Exactly one of Result (Success), Reason (Skipped) or Err (Fatal) is
// meaningful, selected by Kind.
type Outcome struct {
	Combination Combination
	Kind        OutcomeKind
	Result      CrawlResult
	Reason      string
	Err         error
	Duration    time.Duration
}

// Success builds a successful outcome.
func Success(combo Combination, result CrawlResult) Outcome {
	return Outcome{Combination: combo, Kind: OutcomeSuccess, Result: result}
}

// Skipped builds a skipped outcome with a human-readable reason.
func Skipped(combo Combination, reason string) Outcome {
	return Outcome{Combination: combo, Kind: OutcomeSkipped, Reason: reason}
}

// Fatal builds a failed outcome.
func Fatal(combo Combination, err error) Outcome {
	return Outcome{Combination: combo, Kind: OutcomeFatal, Err: err}
}

// RunSummary collects the outcomes of one crawl run.
type RunSummary struct {
	// RunID identifies the run. It is the run start time in Unix milliseconds
	// and also names the output directory.
	RunID string

	StartedAt  time.Time
	FinishedAt time.Time

	// Outcomes are in combination order.
	Outcomes []Outcome
}

// Count returns the number of outcomes of the given kind.
func (s *RunSummary) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// CourseCount returns the number of courses persisted across the run.
func (s *RunSummary) CourseCount() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Kind == OutcomeSuccess {
			n += len(o.Result)
		}
	}
	return n
}

// SectionCount returns the number of sections persisted across the run.
func (s *RunSummary) SectionCount() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Kind == OutcomeSuccess {
			n += o.Result.SectionCount()
		}
	}
	return n
}

// Elapsed returns the wall-clock duration of the run.
func (s *RunSummary) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
