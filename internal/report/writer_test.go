package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// newTestSummary returns a run with one success, one skip and one failure.
func newTestSummary() *model.RunSummary {
	start := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	ok := model.Success(
		model.Combination{Major: "COMPSCI", Career: "UGRD"},
		model.CrawlResult{
			{Number: "COMPSCI 121", Title: "Intro", Sections: []model.Section{{Number: "1001"}, {Number: "1002"}}},
			{Number: "COMPSCI 122", Title: "Data Structures", Sections: []model.Section{{Number: "1003"}}},
		},
	)
	ok.Duration = 1500 * time.Millisecond

	skipped := model.Skipped(model.Combination{Major: "COMPSCI", Career: "GRAD"}, "no classes match")
	skipped.Duration = 200 * time.Millisecond

	fatal := model.Fatal(model.Combination{Major: "MATH", Career: "UGRD"}, errors.New("settle timeout | page stuck"))
	fatal.Duration = 3 * time.Second

	return &model.RunSummary{
		RunID:      "1725192000000",
		StartedAt:  start,
		FinishedAt: start.Add(5 * time.Second),
		Outcomes:   []model.Outcome{ok, skipped, fatal},
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(newTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"CATALOG CRAWL SUMMARY",
			"Run ID:   1725192000000",
			"Elapsed:  5s",
			"Status:   Partial (1 failed)",
			"COURSES:      2",
			"SECTIONS:     3",
			"FATAL:        1",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("hides skipped combinations by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(newTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "COMPSCI/GRAD") {
			t.Error("expected skipped combination to be hidden")
		}
		if !strings.Contains(output, "MATH/UGRD") {
			t.Error("expected failed combination to be listed")
		}
	})

	t.Run("shows skipped combinations with WithShowEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(newTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "COMPSCI/GRAD") {
			t.Error("expected skipped combination to be listed")
		}
		if !strings.Contains(output, "no classes match") {
			t.Error("expected skip reason")
		}
	})

	t.Run("truncates errors unless verbose", func(t *testing.T) {
		t.Parallel()

		summary := newTestSummary()
		long := strings.Repeat("x", 100)
		summary.Outcomes[2].Err = errors.New(long)

		var short bytes.Buffer
		if _, err := NewSimpleWriter(&short).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(short.String(), long) {
			t.Error("expected error to be truncated")
		}

		var full bytes.Buffer
		if _, err := NewSimpleWriter(&full, WithVerbose(true)).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(full.String(), long) {
			t.Error("expected full error in verbose mode")
		}
	})

	t.Run("returns bytes written", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("n = %d, want %d", n, buf.Len())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(newTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Catalog Crawl Report",
			"## Totals",
			"## Combinations",
			"## Failures",
			"pie",
			"Combination Outcomes",
			"`COMPSCI/UGRD`",
			"[!WARNING]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("escapes pipes in table cells", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(newTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `settle timeout \| page stuck`) {
			t.Error("expected escaped pipe in detail cell")
		}
	})

	t.Run("clean run gets a tip", func(t *testing.T) {
		t.Parallel()

		summary := newTestSummary()
		summary.Outcomes = summary.Outcomes[:1]

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected tip alert")
		}
		if strings.Contains(output, "## Failures") {
			t.Error("expected no failures section")
		}
	})

	t.Run("all failed gets a caution", func(t *testing.T) {
		t.Parallel()

		summary := newTestSummary()
		summary.Outcomes = summary.Outcomes[2:]

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!CAUTION]") {
			t.Error("expected caution alert")
		}
	})

	t.Run("empty run", func(t *testing.T) {
		t.Parallel()

		summary := newTestSummary()
		summary.Outcomes = nil

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "Combination Outcomes") {
			t.Error("expected no chart for an empty run")
		}
		if !strings.Contains(output, "No combinations crawled.") {
			t.Error("expected empty message")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output decodes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(newTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got SummaryJSON
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.RunID != "1725192000000" {
			t.Errorf("RunID = %q", got.RunID)
		}
		if got.ElapsedMS != 5000 {
			t.Errorf("ElapsedMS = %d, want 5000", got.ElapsedMS)
		}
		if len(got.Outcomes) != 3 {
			t.Fatalf("len(Outcomes) = %d, want 3", len(got.Outcomes))
		}
		if got.Outcomes[0].Sections != 3 || got.Outcomes[0].Courses != 2 {
			t.Errorf("unexpected counts: %+v", got.Outcomes[0])
		}
		if got.Outcomes[1].Reason != "no classes match" {
			t.Errorf("Reason = %q", got.Outcomes[1].Reason)
		}
		if got.Outcomes[2].Error == "" || got.Outcomes[2].Outcome != "fatal" {
			t.Errorf("unexpected fatal outcome: %+v", got.Outcomes[2])
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected single-line output")
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(newTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"runId\"") {
			t.Error("expected indented output")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, md bytes.Buffer
	w := NewMultiWriter(NewSimpleWriter(&text), NewMarkdownWriter(&md))

	n, err := w.Write(newTestSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text.Len() == 0 || md.Len() == 0 {
		t.Fatal("expected both writers to produce output")
	}
	if n <= text.Len() {
		t.Errorf("n = %d, want more than the text output alone (%d)", n, text.Len())
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short", input: "abc", maxLen: 5, want: "abc"},
		{name: "exact", input: "abcde", maxLen: 5, want: "abcde"},
		{name: "long", input: "abcdefgh", maxLen: 6, want: "abc..."},
		{name: "tiny limit", input: "abcdefgh", maxLen: 2, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
