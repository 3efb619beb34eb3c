package browsertest

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// Raw element ids of the emulated class search site.
const (
	catalogLinkName   = "CourseCatalogLink"
	subjectSelectID   = "CLASS_SRCH_WRK2_SUBJECT$108$"
	careerSelectID    = "CLASS_SRCH_WRK2_ACAD_CAREER"
	clearButtonID     = "CLASS_SRCH_WRK2_SSR_PB_CLEAR"
	searchButtonID    = "CLASS_SRCH_WRK2_SSR_PB_CLASS_SRCH"
	searchErrorID     = "DERIVED_CLSMSG_ERROR_TEXT"
	resultsTitleDivID = "win0divDERIVED_CLSRCH_SSR_CLASS_LBLlbl"
	newSearchTopID    = "CLASS_SRCH_WRK2_SSR_PB_NEW_SEARCH$62$"
	newSearchID       = "CLASS_SRCH_WRK2_SSR_PB_NEW_SEARCH"
	backTopID         = "CLASS_SRCH_WRK2_SSR_PB_BACK$154$"
	backID            = "CLASS_SRCH_WRK2_SSR_PB_BACK"
)

// Detail is the raw text of one section detail view.
type Detail struct {
	// CourseLine is the "NUMBER - TITLE" descriptor shown on the detail page.
	CourseLine  string
	KeyDescr    string
	ClassNumber string
	Units       string
	Components  []string
	Career      string
	Location    string
	Schedule    string
	Instructors string
}

// Results is the raw content of one combination's result page.
type Results struct {
	// CourseLines are the "NUMBER - TITLE" lines of the result list.
	CourseLines []string

	// Details has one entry per detail control, in document order.
	Details []Detail
}

// Catalog emulates the PeopleSoft class search site on a Page.
//
// Every combination with an entry in Results shows a result page; any other
// combination, and every combination listed in SearchErrors, shows the
// search form with an error message.
type Catalog struct {
	LoginURL  string
	SearchURL string
	Majors    []string
	Careers   []string

	Results      map[model.Combination]Results
	SearchErrors map[model.Combination]bool

	// Searches counts submitted searches per combination.
	Searches map[model.Combination]int
}

// NewCatalog returns an empty catalog served at the given addresses.
func NewCatalog(loginURL, searchURL string) *Catalog {
	return &Catalog{
		LoginURL:     loginURL,
		SearchURL:    searchURL,
		Results:      make(map[model.Combination]Results),
		SearchErrors: make(map[model.Combination]bool),
		Searches:     make(map[model.Combination]int),
	}
}

// LiveControlID returns the id of the i-th live detail control.
func LiveControlID(i int) string {
	return fmt.Sprintf("MTG_CLASS_NBR$%d", i)
}

// MirrorControlID returns the id of the i-th duplicate detail control.
func MirrorControlID(i int) string {
	return fmt.Sprintf("MTG_CLASSNAME$%d", i)
}

// Install wires the catalog's routes and click handlers into p.
func (c *Catalog) Install(p *Page) {
	p.Route(c.LoginURL, func(p *Page) error {
		p.Show(c.LoginURL, c.LoginHTML())
		return nil
	})
	p.Route(c.SearchURL, func(p *Page) error {
		p.ClearSelections()
		p.Show(c.SearchURL, c.SearchHTML(false))
		return nil
	})
	p.OnClick(byID(clearButtonID), func(p *Page) error {
		p.ClearSelections()
		p.Show(c.SearchURL, c.SearchHTML(false))
		return nil
	})
	p.OnClick(byID(searchButtonID), func(p *Page) error {
		combo := model.Combination{
			Major:  model.DimensionValue(p.Selected(byID(subjectSelectID))),
			Career: model.DimensionValue(p.Selected(byID(careerSelectID))),
		}
		c.Searches[combo]++

		results, ok := c.Results[combo]
		if !ok || c.SearchErrors[combo] {
			p.Show(c.SearchURL, c.SearchHTML(true))
			return nil
		}
		c.showResults(p, results)
		return nil
	})
}

// showResults renders a result page and wires its detail controls.
func (c *Catalog) showResults(p *Page, results Results) {
	p.Show(c.SearchURL, ResultsHTML(results))

	for i, d := range results.Details {
		detail := d
		p.OnClick(byID(LiveControlID(i)), func(p *Page) error {
			p.Show(c.SearchURL, DetailHTML(detail))
			return nil
		})
	}
	p.OnClick(byID(backID), func(p *Page) error {
		p.Show(c.SearchURL, ResultsHTML(results))
		return nil
	})
	p.OnClick(byID(newSearchID), func(p *Page) error {
		p.ClearSelections()
		p.Show(c.SearchURL, c.SearchHTML(false))
		return nil
	})
}

// LoginHTML renders the login landing page.
func (c *Catalog) LoginHTML() string {
	return `<html><body><a name="` + catalogLinkName + `" href="#">Search Course Catalog</a></body></html>`
}

// SearchHTML renders the search form. withError adds the error message
// element shown after a rejected search.
func (c *Catalog) SearchHTML(withError bool) string {
	var b strings.Builder
	b.WriteString("<html><body><form>")
	if withError {
		fmt.Fprintf(&b, `<span id=%s>The search returns no results that match the criteria specified.</span>`, attr(searchErrorID))
	}
	writeSelect(&b, subjectSelectID, c.Majors)
	writeSelect(&b, careerSelectID, c.Careers)
	fmt.Fprintf(&b, `<a id=%s>Clear</a>`, attr(clearButtonID))
	fmt.Fprintf(&b, `<a id=%s>Search</a>`, attr(searchButtonID))
	b.WriteString("</form></body></html>")
	return b.String()
}

func writeSelect(b *strings.Builder, id string, values []string) {
	fmt.Fprintf(b, `<select id=%s><option value=""> </option>`, attr(id))
	for _, v := range values {
		fmt.Fprintf(b, `<option value=%s>%s</option>`, attr(v), html.EscapeString(v))
	}
	b.WriteString("</select>")
}

// ResultsHTML renders a result page. Each detail control is rendered twice:
// a mirror followed by the live control, like the real site.
func ResultsHTML(results Results) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, `<div id=%s><span>Search Results</span></div>`, attr(resultsTitleDivID))
	fmt.Fprintf(&b, `<a id=%s>New Search</a>`, attr(newSearchTopID))
	for i, line := range results.CourseLines {
		fmt.Fprintf(&b, `<div><span id=%s>%s</span></div>`,
			attr(fmt.Sprintf("DERIVED_CLSRCH_DESCR200$%d", i)), html.EscapeString(line))
	}
	for i := range results.Details {
		fmt.Fprintf(&b, `<a class="PSHYPERLINKACTIVE" id=%s>Section %d</a>`, attr(MirrorControlID(i)), i)
		fmt.Fprintf(&b, `<a class="PSHYPERLINKACTIVE" id=%s>%d</a>`, attr(LiveControlID(i)), i)
	}
	fmt.Fprintf(&b, `<a id=%s>New Search</a>`, attr(newSearchID))
	b.WriteString("</body></html>")
	return b.String()
}

// DetailHTML renders a section detail view.
func DetailHTML(d Detail) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, `<a id=%s>Back</a>`, attr(backTopID))
	writeSpan(&b, "DERIVED_CLSRCH_DESCR200", d.CourseLine)
	writeSpan(&b, "DERIVED_CLSRCH_SSS_PAGE_KEYDESCR", d.KeyDescr)
	writeSpan(&b, "SSR_CLS_DTL_WRK_CLASS_NBR", d.ClassNumber)
	writeSpan(&b, "SSR_CLS_DTL_WRK_UNITS_RANGE", d.Units)
	for i, comp := range d.Components {
		fmt.Fprintf(&b, `<div id=%s>`, attr(fmt.Sprintf("SSR_CLS_DTL_WRK_DESC$%d", i)))
		writeSpan(&b, fmt.Sprintf("SSR_CLS_DTL_WRK_DESCR$%d", i), comp)
		b.WriteString("</div>")
	}
	writeSpan(&b, "PSXLATITEM_XLATLONGNAME$33$", d.Career)
	writeSpan(&b, "MTG_SCHED$0", d.Schedule)
	writeSpan(&b, "MTG_LOC$0", d.Location)
	writeSpan(&b, "MTG_INSTR$0", d.Instructors)
	fmt.Fprintf(&b, `<a id=%s>Back</a>`, attr(backID))
	b.WriteString("</body></html>")
	return b.String()
}

func writeSpan(b *strings.Builder, id, text string) {
	fmt.Fprintf(b, `<span id=%s>%s</span>`, attr(id), html.EscapeString(text))
}

// attr quotes an attribute value.
func attr(v string) string {
	return `"` + html.EscapeString(v) + `"`
}

// byID mirrors browser.ID without importing it into fixtures.
func byID(id string) string {
	return "[id=" + strconv.Quote(id) + "]"
}
