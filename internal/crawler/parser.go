package crawler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/catalogcrawl/internal/browser"
	"github.com/nao1215/catalogcrawl/internal/model"
)

// leadingNumber matches the numeric prefix a unit value starts with, e.g.
// "3" in "3 units" or "1.50" in "1.50".
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// NormalizeText trims s and collapses every run of whitespace to one space.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitCourseLine splits a "NUMBER - TITLE" descriptor on its first hyphen.
// Any further hyphens belong to the title. A line without a hyphen is all
// number.
func SplitCourseLine(line string) (number, title string) {
	number, title, _ = strings.Cut(line, "-")
	return NormalizeText(number), NormalizeText(title)
}

// ParseUnits parses a unit range such as "3.00" or "1 - 4". A single value
// yields equal minimum and maximum. A range whose minimum exceeds its
// maximum is malformed.
func ParseUnits(s string) (minUnit, maxUnit float64, err error) {
	lo, hi, isRange := strings.Cut(s, "-")
	if minUnit, err = parseLeadingFloat(lo); err != nil {
		return 0, 0, err
	}
	if !isRange {
		return minUnit, minUnit, nil
	}
	if maxUnit, err = parseLeadingFloat(hi); err != nil {
		return 0, 0, err
	}
	if minUnit > maxUnit {
		return 0, 0, fmt.Errorf("%w: unit range %q is reversed", ErrMalformedDetail, s)
	}
	return minUnit, maxUnit, nil
}

// parseLeadingFloat reads the number at the start of s, ignoring anything
// after it.
func parseLeadingFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("%w: no number in unit value %q", ErrMalformedDetail, s)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unit value %q: %w", ErrMalformedDetail, s, err)
	}
	return v, nil
}

// categoryOf returns the text after the last "|" of a page key descriptor,
// e.g. "Lecture" in "Fall 2024 | Regular | Lecture".
func categoryOf(keyDescr string) string {
	if i := strings.LastIndex(keyDescr, "|"); i >= 0 {
		keyDescr = keyDescr[i+1:]
	}
	return NormalizeText(keyDescr)
}

// splitProfessors splits an instructor cell on commas. Empty names are
// dropped.
func splitProfessors(s string) []string {
	professors := make([]string, 0)
	for _, name := range strings.Split(s, ",") {
		if name = NormalizeText(name); name != "" {
			professors = append(professors, name)
		}
	}
	return professors
}

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// textByID returns the normalized text of the element with id and whether
// it exists.
func textByID(doc *goquery.Document, id string) (string, bool) {
	sel := doc.Find(browser.ID(id)).First()
	if sel.Length() == 0 {
		return "", false
	}
	return NormalizeText(sel.Text()), true
}

// ExtractCourses reads the course list of a result page. Lines are numbered
// from zero and the first missing index ends the list. Sections are left
// empty.
//
// The result depends only on html, so calling it twice on the same page
// yields identical courses.
func ExtractCourses(html string) ([]model.Course, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	courses := make([]model.Course, 0)
	for i := 0; ; i++ {
		sel := doc.Find(courseLineSelector(i)).First()
		if sel.Length() == 0 {
			break
		}
		number, title := SplitCourseLine(sel.Text())
		courses = append(courses, model.Course{
			Number:   number,
			Title:    title,
			Sections: make([]model.Section, 0),
		})
	}
	return courses, nil
}

// ExtractSection reads one section detail view. The returned section
// carries the course number it belongs to in CourseNumber.
func ExtractSection(html string) (model.Section, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return model.Section{}, err
	}

	line, ok := textByID(doc, courseLineID)
	if !ok {
		return model.Section{}, fmt.Errorf("%w: missing course descriptor", ErrMalformedDetail)
	}
	courseNumber, _ := SplitCourseLine(line)

	number, ok := textByID(doc, classNumberID)
	if !ok {
		return model.Section{}, fmt.Errorf("%w: missing class number", ErrMalformedDetail)
	}

	units, ok := textByID(doc, unitsRangeID)
	if !ok {
		return model.Section{}, fmt.Errorf("%w: section %s: missing units", ErrMalformedDetail, number)
	}
	minUnit, maxUnit, err := ParseUnits(units)
	if err != nil {
		return model.Section{}, fmt.Errorf("section %s: %w", number, err)
	}

	keyDescr, _ := textByID(doc, keyDescrID)
	career, _ := textByID(doc, careerID)
	location, _ := textByID(doc, locationID)
	instructors, _ := textByID(doc, instructorsID)

	section := model.Section{
		Number:       number,
		Category:     categoryOf(keyDescr),
		MinUnit:      minUnit,
		MaxUnit:      maxUnit,
		Components:   extractComponents(doc),
		Career:       career,
		Online:       location == onlineLocation,
		Professors:   splitProfessors(instructors),
		CourseNumber: courseNumber,
	}
	if !section.Online {
		section.Room = location
		section.Time, _ = textByID(doc, scheduleID)
	}
	return section, nil
}

// extractComponents reads component names. The loop is driven by the
// DESC container ids while the names live in the DESCR elements; a missing
// name reads as "".
func extractComponents(doc *goquery.Document) []string {
	components := make([]string, 0)
	for i := 0; ; i++ {
		if doc.Find(browser.ID(fmt.Sprintf(componentProbeFmt, i))).Length() == 0 {
			break
		}
		name, _ := textByID(doc, fmt.Sprintf(componentTextFmt, i))
		components = append(components, name)
	}
	return components
}
