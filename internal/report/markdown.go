package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// MarkdownWriter outputs the run summary as a Markdown document.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeTotals(md, summary)
	w.writeOutcomes(md, summary)
	w.writeFailures(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("Catalog Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + summary.RunID + "`"},
			{"Started", summary.StartedAt.Format(timeLayout)},
			{"Elapsed", summary.Elapsed().Round(time.Millisecond).String()},
			{"Status", statusText(summary)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTotals(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Totals")
	md.PlainText("")

	success := summary.Count(model.OutcomeSuccess)
	skipped := summary.Count(model.OutcomeSkipped)
	fatal := summary.Count(model.OutcomeFatal)

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Combinations", strconv.Itoa(len(summary.Outcomes))},
			{"Success", strconv.Itoa(success)},
			{"Skipped", strconv.Itoa(skipped)},
			{"Fatal", strconv.Itoa(fatal)},
			{"Courses", strconv.Itoa(summary.CourseCount())},
			{"Sections", strconv.Itoa(summary.SectionCount())},
		},
	})
	md.PlainText("")

	if len(summary.Outcomes) > 0 {
		w.writePieChart(md, success, skipped, fatal)
	}
	w.writeAlert(md, summary, fatal)
}

// writePieChart writes a mermaid pie chart of outcome kinds.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, success, skipped, fatal int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Combination Outcomes"),
		piechart.WithShowData(true),
	)

	if success > 0 {
		chart.LabelAndIntValue("Success", uint64(success))
	}
	if skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(skipped))
	}
	if fatal > 0 {
		chart.LabelAndIntValue("Fatal", uint64(fatal))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary, fatal int) {
	switch {
	case len(summary.Outcomes) == 0:
		md.Note("No combinations were crawled.")
	case fatal == len(summary.Outcomes):
		md.Cautionf("Every combination failed (%d). Check the site URLs and browser setup.", fatal)
	case fatal > 0:
		md.Warningf("%d combination(s) failed and produced no output.", fatal)
	case summary.CourseCount() == 0:
		md.Importantf("The run finished without finding any course.")
	default:
		md.Tip("All combinations completed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Combinations")
	md.PlainText("")

	if len(summary.Outcomes) == 0 {
		md.PlainText("No combinations crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Outcomes))
	for i, o := range summary.Outcomes {
		rows[i] = []string{
			"`" + o.Combination.String() + "`",
			o.Kind.String(),
			strconv.Itoa(len(o.Result)),
			strconv.Itoa(o.Result.SectionCount()),
			o.Duration.Round(time.Millisecond).String(),
			escapeCell(truncateString(outcomeDetail(o), 60)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Combination", "Outcome", "Courses", "Sections", "Duration", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures adds the full error text of each fatal outcome.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, summary *model.RunSummary) {
	if summary.Count(model.OutcomeFatal) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")
	for _, o := range summary.Outcomes {
		if o.Kind != model.OutcomeFatal {
			continue
		}
		md.Details(o.Combination.String(), outcomeDetail(o))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by catalogcrawl*")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
