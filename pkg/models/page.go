package models

import "time"

// Page is a fetched portal response. The body is kept as a string because
// every consumer is a text/regex parser.
type Page struct {
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Body       string    `json:"-"`
	FetchedAt  time.Time `json:"fetched_at"`
	FromCache  bool      `json:"-"`
}
