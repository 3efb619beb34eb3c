package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestCombinations verifies the row-major ordering of the combination space.
func TestCombinations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		majors  []DimensionValue
		careers []DimensionValue
		want    []Combination
	}{
		{
			name:    "majors outer, careers inner",
			majors:  []DimensionValue{"COMPSCI", "MATH"},
			careers: []DimensionValue{"UGRD"},
			want: []Combination{
				{Major: "COMPSCI", Career: "UGRD"},
				{Major: "MATH", Career: "UGRD"},
			},
		},
		{
			name:    "two by two keeps input order",
			majors:  []DimensionValue{"MATH", "COMPSCI"},
			careers: []DimensionValue{"UGRD", "GRAD"},
			want: []Combination{
				{Major: "MATH", Career: "UGRD"},
				{Major: "MATH", Career: "GRAD"},
				{Major: "COMPSCI", Career: "UGRD"},
				{Major: "COMPSCI", Career: "GRAD"},
			},
		},
		{
			name:    "empty axis yields nothing",
			majors:  []DimensionValue{"MATH"},
			careers: nil,
			want:    []Combination{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Combinations(tt.majors, tt.careers)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Combinations() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestSectionMarshalJSON checks the wire shape of sections.
func TestSectionMarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("online section omits room and time", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(Section{
			Number:       "12345",
			Online:       true,
			Room:         "should not appear",
			CourseNumber: "COMPSCI 121",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, key := range []string{"room", "time", "courseNumber", "CourseNumber"} {
			if _, ok := fields[key]; ok {
				t.Errorf("expected %q to be absent, got %s", key, data)
			}
		}
		if fields["model"] != "Section" {
			t.Errorf("expected model Section, got %v", fields["model"])
		}
		if fields["online"] != true {
			t.Errorf("expected online true, got %v", fields["online"])
		}
	})

	t.Run("in-person section always carries room and time", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(Section{Number: "1", Room: "", Time: "MoWe 10:00AM"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), `"room":""`) {
			t.Errorf("expected empty room to be present, got %s", data)
		}
		if !strings.Contains(string(data), `"time":"MoWe 10:00AM"`) {
			t.Errorf("expected time to be present, got %s", data)
		}
	})

	t.Run("nil lists serialize as empty arrays", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(Section{Online: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), `"components":[]`) || !strings.Contains(string(data), `"professors":[]`) {
			t.Errorf("expected empty arrays, got %s", data)
		}
	})

	t.Run("decoding restores fields except the transient course number", func(t *testing.T) {
		t.Parallel()

		in := Section{
			Number:       "54321",
			Category:     "Lecture",
			MinUnit:      1,
			MaxUnit:      3,
			Components:   []string{"Lecture", "Discussion"},
			Career:       "Undergraduate",
			Room:         "LGRT 0123",
			Time:         "TuTh 1:00PM - 2:15PM",
			Professors:   []string{"Ada Lovelace"},
			CourseNumber: "MATH 235",
		}
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var out Section
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		in.CourseNumber = ""
		if diff := cmp.Diff(in, out); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestCrawlResultSectionCount tests section counting across courses.
func TestCrawlResultSectionCount(t *testing.T) {
	t.Parallel()

	result := CrawlResult{
		{Number: "A", Sections: []Section{{Number: "1"}, {Number: "2"}}},
		{Number: "B"},
		{Number: "C", Sections: []Section{{Number: "3"}}},
	}
	if got := result.SectionCount(); got != 3 {
		t.Errorf("expected 3 sections, got %d", got)
	}
}
