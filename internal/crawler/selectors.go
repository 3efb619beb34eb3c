package crawler

import (
	"fmt"

	"github.com/nao1215/catalogcrawl/internal/browser"
)

// Result page elements.
const (
	// resultsTitleSelector holds the page heading; it reads "Search Results"
	// on a result page.
	resultsTitleSelector = "#win0divDERIVED_CLSRCH_SSR_CLASS_LBLlbl span"
	resultsTitle         = "Search Results"

	// detailControlSelector matches the section links. Each section is
	// rendered twice and only every second match is live.
	detailControlSelector = ".PSHYPERLINKACTIVE"

	newSearchID = "CLASS_SRCH_WRK2_SSR_PB_NEW_SEARCH"
)

// Detail view elements.
const (
	backTopID         = "CLASS_SRCH_WRK2_SSR_PB_BACK$154$"
	backID            = "CLASS_SRCH_WRK2_SSR_PB_BACK"
	courseLineID      = "DERIVED_CLSRCH_DESCR200"
	keyDescrID        = "DERIVED_CLSRCH_SSS_PAGE_KEYDESCR"
	classNumberID     = "SSR_CLS_DTL_WRK_CLASS_NBR"
	unitsRangeID      = "SSR_CLS_DTL_WRK_UNITS_RANGE"
	careerID          = "PSXLATITEM_XLATLONGNAME$33$"
	locationID        = "MTG_LOC$0"
	scheduleID        = "MTG_SCHED$0"
	instructorsID     = "MTG_INSTR$0"
	onlineLocation    = "On-Line"
	componentProbeFmt = "SSR_CLS_DTL_WRK_DESC$%d"
	componentTextFmt  = "SSR_CLS_DTL_WRK_DESCR$%d"
)

// courseLineSelector returns the selector of the i-th course line on a
// result page.
func courseLineSelector(i int) string {
	return browser.ID(fmt.Sprintf("%s$%d", courseLineID, i))
}
