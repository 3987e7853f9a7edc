package portal

import "errors"

var (
	// ErrNoSubjects means the search page rendered without any subject
	// checkboxes, usually a maintenance page or a changed layout.
	ErrNoSubjects = errors.New("portal: no subjects found on search page")

	// ErrFormState means the search page carried no servlet state (ICSID),
	// so no search can be submitted against it.
	ErrFormState = errors.New("portal: search page missing servlet state")
)
