package portal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/lionpath-labs/coursecrawl/internal/parse"
	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// searchQuery identifies the public class-search component. "Action: U"
// asks the servlet for a fresh (unsaved) search page.
var searchQuery = map[string]string{
	"Page":   "PE_SR175_CLS_SRCH",
	"Action": "U",
}

// SearchPage fetches the class-search landing page, which carries both the
// subject checkboxes and the servlet state for follow-up posts.
func (c *Client) SearchPage(ctx context.Context) (*models.Page, error) {
	return c.get(ctx, c.cfg.SearchPath, searchQuery)
}

// Subjects discovers every subject area offered on the search page.
func (c *Client) Subjects(ctx context.Context) ([]models.Subject, error) {
	page, err := c.SearchPage(ctx)
	if err != nil {
		return nil, err
	}

	subjects := parse.Subjects(page.Body)
	if len(subjects) == 0 {
		return nil, ErrNoSubjects
	}

	log.Debug().Int("count", len(subjects)).Msg("Discovered subjects")
	return subjects, nil
}
