package model

import (
	"encoding/json"
	"fmt"
)

// DimensionValue is one selectable option of a search filter axis.
// The value is the option's "value" attribute as rendered by the class search
// form (for example "COMPSCI" for a major or "UGRD" for a career).
type DimensionValue string

// String returns the raw option value.
func (v DimensionValue) String() string {
	return string(v)
}

// Dimensions holds the filter axes discovered from the search form.
// The sets are read once per session and must not be modified afterwards.
type Dimensions struct {
	// Majors are the values of the subject (major) select control.
	Majors []DimensionValue `json:"majors"`

	// Careers are the values of the academic career select control.
	Careers []DimensionValue `json:"careers"`
}

// Combination is one (major, career) pair driving one search cycle.
type Combination struct {
	Major  DimensionValue `json:"major"`
	Career DimensionValue `json:"career"`
}

// String returns a human-readable form used in log lines.
func (c Combination) String() string {
	return fmt.Sprintf("%s/%s", c.Major, c.Career)
}

// Combinations returns the cartesian product majors × careers in row-major
// order: the outer loop runs over majors and the inner loop over careers.
// The order of each input slice is preserved.
func Combinations(majors, careers []DimensionValue) []Combination {
	combos := make([]Combination, 0, len(majors)*len(careers))
	for _, m := range majors {
		for _, c := range careers {
			combos = append(combos, Combination{Major: m, Career: c})
		}
	}
	return combos
}

// Course is one course line of a search result page.
// Before sections are merged in, a Course is called a scaffold.
type Course struct {
	// Number is the catalog number (e.g. "COMPSCI 121"). It is the join key
	// between a course and its sections.
	Number string `json:"number"`

	// Title is the course title. Titles may contain hyphens.
	Title string `json:"title"`

	// Sections are the class sections offered for this course, in the order
	// their detail views were visited.
	Sections []Section `json:"sections"`
}

// Section is one class section read from a detail view.
type Section struct {
	// Number is the class number of the section.
	Number string

	// Category is the section's class category (e.g. "Lecture").
	Category string

	// MinUnit and MaxUnit are the credit range. They are equal when the
	// section carries a fixed number of units.
	MinUnit float64
	MaxUnit float64

	// Components lists the class components (e.g. "Lecture", "Discussion").
	Components []string

	// Career is the academic career long name.
	Career string

	// Online is true when the meeting location is "On-Line".
	// Room and Time are only meaningful when Online is false.
	Online bool
	Room   string
	Time   string

	// Professors lists the instructors of the section.
	Professors []string

	// CourseNumber links the section to its course until the merge step.
	// It is never serialized and is cleared once the section is merged.
	CourseNumber string
}

// sectionModelName is written as the "model" discriminator of every section.
const sectionModelName = "Section"

// sectionJSON is the wire representation of a Section.
// Room and Time are pointers so that online sections omit them while
// in-person sections always carry them, even when empty.
type sectionJSON struct {
	Model      string   `json:"model"`
	Number     string   `json:"number"`
	Category   string   `json:"category"`
	MinUnit    float64  `json:"minUnit"`
	MaxUnit    float64  `json:"maxUnit"`
	Components []string `json:"components"`
	Career     string   `json:"career"`
	Online     bool     `json:"online"`
	Room       *string  `json:"room,omitempty"`
	Time       *string  `json:"time,omitempty"`
	Professors []string `json:"professors"`
}

// MarshalJSON implements json.Marshaler.
func (s Section) MarshalJSON() ([]byte, error) {
	out := sectionJSON{
		Model:      sectionModelName,
		Number:     s.Number,
		Category:   s.Category,
		MinUnit:    s.MinUnit,
		MaxUnit:    s.MaxUnit,
		Components: nonNil(s.Components),
		Career:     s.Career,
		Online:     s.Online,
		Professors: nonNil(s.Professors),
	}
	if !s.Online {
		room, schedule := s.Room, s.Time
		out.Room = &room
		out.Time = &schedule
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Section) UnmarshalJSON(data []byte) error {
	var in sectionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Section{
		Number:     in.Number,
		Category:   in.Category,
		MinUnit:    in.MinUnit,
		MaxUnit:    in.MaxUnit,
		Components: in.Components,
		Career:     in.Career,
		Online:     in.Online,
		Professors: in.Professors,
	}
	if in.Room != nil {
		s.Room = *in.Room
	}
	if in.Time != nil {
		s.Time = *in.Time
	}
	return nil
}

// nonNil makes empty lists serialize as [] instead of null.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// CrawlResult is the full output for one combination: the courses of the
// result page with their sections merged in.
type CrawlResult []Course

// SectionCount returns the total number of sections across all courses.
func (r CrawlResult) SectionCount() int {
	n := 0
	for _, c := range r {
		n += len(c.Sections)
	}
	return n
}
