package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// JSONWriter outputs the run summary as JSON for other tools.
type JSONWriter struct {
	baseWriter

	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents the output with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SummaryJSON is the JSON shape of a run summary.
type SummaryJSON struct {
	RunID      string        `json:"runId"`
	StartedAt  string        `json:"startedAt"`
	FinishedAt string        `json:"finishedAt"`
	ElapsedMS  int64         `json:"elapsedMs"`
	Courses    int           `json:"courses"`
	Sections   int           `json:"sections"`
	Outcomes   []OutcomeJSON `json:"outcomes"`
}

// OutcomeJSON is the JSON shape of one combination outcome. Course data is
// not repeated here; it lives in the stores.
type OutcomeJSON struct {
	Major      string `json:"major"`
	Career     string `json:"career"`
	Outcome    string `json:"outcome"`
	Courses    int    `json:"courses"`
	Sections   int    `json:"sections"`
	DurationMS int64  `json:"durationMs"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewSummaryJSON converts summary to its JSON shape.
func NewSummaryJSON(summary *model.RunSummary) SummaryJSON {
	out := SummaryJSON{
		RunID:      summary.RunID,
		StartedAt:  summary.StartedAt.Format(time.RFC3339),
		FinishedAt: summary.FinishedAt.Format(time.RFC3339),
		ElapsedMS:  summary.Elapsed().Milliseconds(),
		Courses:    summary.CourseCount(),
		Sections:   summary.SectionCount(),
		Outcomes:   make([]OutcomeJSON, 0, len(summary.Outcomes)),
	}
	for _, o := range summary.Outcomes {
		oj := OutcomeJSON{
			Major:      o.Combination.Major.String(),
			Career:     o.Combination.Career.String(),
			Outcome:    o.Kind.String(),
			Courses:    len(o.Result),
			Sections:   o.Result.SectionCount(),
			DurationMS: o.Duration.Milliseconds(),
			Reason:     o.Reason,
		}
		if o.Err != nil {
			oj.Error = o.Err.Error()
		}
		out.Outcomes = append(out.Outcomes, oj)
	}
	return out
}

// Write implements Writer.
func (w *JSONWriter) Write(summary *model.RunSummary) (int, error) {
	var (
		data []byte
		err  error
	)
	v := NewSummaryJSON(summary)
	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
