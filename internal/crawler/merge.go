package crawler

import "github.com/nao1215/catalogcrawl/internal/model"

// Merge attaches every section to the course whose number matches the
// section's CourseNumber, in the order sections were read. CourseNumber is
// cleared on merged sections.
//
// Course numbers are unique in the result; a repeated course line keeps its
// first occurrence. A section without a matching course aborts the merge
// with a *DataIntegrityError and no result.
func Merge(courses []model.Course, sections []model.Section) (model.CrawlResult, error) {
	result := make(model.CrawlResult, 0, len(courses))
	index := make(map[string]int, len(courses))

	for _, c := range courses {
		if _, dup := index[c.Number]; dup {
			continue
		}
		index[c.Number] = len(result)
		result = append(result, model.Course{
			Number:   c.Number,
			Title:    c.Title,
			Sections: append(make([]model.Section, 0, len(c.Sections)), c.Sections...),
		})
	}

	for _, s := range sections {
		i, ok := index[s.CourseNumber]
		if !ok {
			return nil, &DataIntegrityError{Section: s.Number, CourseNumber: s.CourseNumber}
		}
		s.CourseNumber = ""
		result[i].Sections = append(result[i].Sections, s)
	}
	return result, nil
}
