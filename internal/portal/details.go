package portal

import (
	"context"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// CourseDetail fetches the stateless enrollment-detail page for one class
// number. This page carries both the course-level fields (description,
// units, requirements) and the section-level ones (meeting info, seats).
func (c *Client) CourseDetail(ctx context.Context, term, classNbr string) (*models.Page, error) {
	return c.get(ctx, c.cfg.DetailPath, map[string]string{
		"Page":        "SSR_SSENRL_DETAIL",
		"Action":      "A",
		"STRM":        term,
		"CLASS_NBR":   classNbr,
		"ACAD_CAREER": c.cfg.Career,
	})
}

// SectionDetail drills into one listing row through the search component
// itself, posting the row's detail action against the listing's servlet
// state. It is the fallback when the stateless detail page rejects a class
// number (some components are only reachable from search results).
func (c *Client) SectionDetail(ctx context.Context, listing *Listing, term, classNbr string) (*models.Page, error) {
	form := make(map[string]string, len(listing.FormState)+3)
	for k, v := range listing.FormState {
		form[k] = v
	}
	form["ICAction"] = "DERIVED_CLSRCH_SSR_CLASSNAME_LONG$" + classNbr
	form["CLASS_SRCH_WRK2_STRM$273$"] = term
	form["SSR_CLS_DTL_WRK_CLASS_NBR"] = classNbr

	return c.postForm(ctx, c.cfg.SearchPath, searchQuery, form)
}
