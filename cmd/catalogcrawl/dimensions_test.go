package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/catalogcrawl/internal/model"
)

func TestNewDimensionsCmd(t *testing.T) {
	t.Parallel()

	cmd := NewDimensionsCmd()
	if cmd.Use != "dimensions" {
		t.Errorf("expected use 'dimensions', got %q", cmd.Use)
	}
	for _, flag := range []string{"login-url", "search-url", "json", "headless"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag %q to exist", flag)
		}
	}
	// Nothing is stored, so no storage flags.
	if cmd.Flags().Lookup("output-dir") != nil {
		t.Error("output-dir flag should not exist")
	}
}

func TestPrintDimensions(t *testing.T) {
	t.Parallel()

	dims := model.Dimensions{
		Majors:  []model.DimensionValue{"COMPSCI", "MATH"},
		Careers: []model.DimensionValue{"UGRD"},
	}

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := printDimensions(&buf, dims, false); err != nil {
			t.Fatal(err)
		}
		want := "Majors (2):\n  COMPSCI\n  MATH\nCareers (1):\n  UGRD\n"
		if diff := cmp.Diff(want, buf.String()); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := printDimensions(&buf, dims, true); err != nil {
			t.Fatal(err)
		}
		var got dimensionsJSON
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("not JSON: %v", err)
		}
		if diff := cmp.Diff(dimensionsJSON{Majors: dims.Majors, Careers: dims.Careers}, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("json empty lists", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := printDimensions(&buf, model.Dimensions{}, true); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `"majors": []`) {
			t.Errorf("expected empty majors array:\n%s", buf.String())
		}
	})
}
