package portal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lionpath-labs/coursecrawl/internal/parse"
	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// Listing is the result of one subject search: its section rows plus the
// servlet state needed for follow-up posts against the same search.
type Listing struct {
	Subject   models.Subject
	Summaries []models.SectionSummary
	FormState map[string]string
}

// SubjectListing runs the class search for one subject. The servlet keeps
// the whole search as server-side component state, so each search needs a
// fresh page load: ticking the subject checkbox (ICAction = checkbox id)
// is what submits the search.
func (c *Client) SubjectListing(ctx context.Context, subject models.Subject) (*Listing, error) {
	page, err := c.SearchPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("subject %s: load search page: %w", subject.Code, err)
	}

	form := parse.FormState(page.Body)
	if form["ICSID"] == "" {
		return nil, fmt.Errorf("subject %s: %w", subject.Code, ErrFormState)
	}

	form[subject.CheckboxID] = "Y"
	form["ICAction"] = subject.CheckboxID

	result, err := c.postForm(ctx, c.cfg.SearchPath, searchQuery, form)
	if err != nil {
		return nil, fmt.Errorf("subject %s: submit search: %w", subject.Code, err)
	}

	summaries := parse.SectionSummaries(result.Body, subject.Code)
	log.Debug().
		Str("subject", subject.Code).
		Int("sections", len(summaries)).
		Bool("cached", result.FromCache).
		Msg("Subject listing fetched")

	return &Listing{
		Subject:   subject,
		Summaries: summaries,
		FormState: parse.FormState(result.Body),
	}, nil
}
