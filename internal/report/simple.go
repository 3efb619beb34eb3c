package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/catalogcrawl/internal/model"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter outputs a plain text summary for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty lists skipped combinations too.
	showEmpty bool

	// verbose prints full error text instead of a truncated one.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty lists skipped combinations in the outcome table.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose prints untruncated errors.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeTotals(&sb, summary)
	w.writeOutcomes(&sb, summary)
	w.writeFailures(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        CATALOG CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:   %s\n", summary.RunID)
	fmt.Fprintf(sb, "Started:  %s\n", summary.StartedAt.Format(timeLayout))
	fmt.Fprintf(sb, "Elapsed:  %s\n", summary.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(sb, "Status:   %s\n", statusText(summary))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTotals(sb *strings.Builder, summary *model.RunSummary) {
	writeSectionTitle(sb, "TOTALS")

	fmt.Fprintf(sb, "  COMBINATIONS: %d\n", len(summary.Outcomes))
	fmt.Fprintf(sb, "  SUCCESS:      %d\n", summary.Count(model.OutcomeSuccess))
	fmt.Fprintf(sb, "  SKIPPED:      %d\n", summary.Count(model.OutcomeSkipped))
	fmt.Fprintf(sb, "  FATAL:        %d\n", summary.Count(model.OutcomeFatal))
	fmt.Fprintf(sb, "  COURSES:      %d\n", summary.CourseCount())
	fmt.Fprintf(sb, "  SECTIONS:     %d\n", summary.SectionCount())
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeOutcomes(sb *strings.Builder, summary *model.RunSummary) {
	rows := make([]model.Outcome, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		if o.Kind == model.OutcomeSkipped && !w.showEmpty {
			continue
		}
		rows = append(rows, o)
	}
	if len(rows) == 0 && !w.showEmpty {
		return
	}

	writeSectionTitle(sb, "COMBINATIONS")

	if len(rows) == 0 {
		sb.WriteString("  No combinations crawled\n\n")
		return
	}

	fmt.Fprintf(sb, "  %-24s %-8s %8s %9s %10s\n", "COMBINATION", "OUTCOME", "COURSES", "SECTIONS", "DURATION")
	for _, o := range rows {
		fmt.Fprintf(sb, "  [%s] %-20s %-8s %8d %9d %10s\n",
			outcomeIndicator(o.Kind),
			truncateString(o.Combination.String(), 20),
			o.Kind,
			len(o.Result),
			o.Result.SectionCount(),
			o.Duration.Round(time.Millisecond),
		)
	}
	sb.WriteString("\n")
}

// writeFailures lists why combinations were skipped or failed.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, summary *model.RunSummary) {
	if summary.Count(model.OutcomeFatal) == 0 && !(w.showEmpty && summary.Count(model.OutcomeSkipped) > 0) {
		return
	}

	writeSectionTitle(sb, "PROBLEMS")

	for _, o := range summary.Outcomes {
		if o.Kind == model.OutcomeSuccess || (o.Kind == model.OutcomeSkipped && !w.showEmpty) {
			continue
		}
		detail := outcomeDetail(o)
		if !w.verbose {
			detail = truncateString(detail, 60)
		}
		fmt.Fprintf(sb, "  * %s (%s)\n", o.Combination, o.Kind)
		fmt.Fprintf(sb, "    %s\n", detail)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Summary generated by catalogcrawl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func writeSectionTitle(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func outcomeIndicator(kind model.OutcomeKind) string {
	switch kind {
	case model.OutcomeSuccess:
		return "+"
	case model.OutcomeSkipped:
		return "-"
	case model.OutcomeFatal:
		return "!"
	default:
		return "?"
	}
}

// statusText describes the run as a whole.
func statusText(summary *model.RunSummary) string {
	switch fatal := summary.Count(model.OutcomeFatal); {
	case len(summary.Outcomes) == 0:
		return "No combinations"
	case fatal == 0:
		return "Complete"
	case fatal == len(summary.Outcomes):
		return "Failed"
	default:
		return fmt.Sprintf("Partial (%d failed)", fatal)
	}
}
