package parse

import "regexp"

// PeopleSoft pages round-trip their entire component state through hidden
// inputs (ICSID, ICStateNum, ...). Every POST must echo them back or the
// servlet resets the search.
var hiddenInputRe = regexp.MustCompile(`(?i)<input[^>]*type=["']hidden["'][^>]*name=["']([^"']+)["'][^>]*value=["']([^"']*)["'][^>]*>`)

// FormState extracts all hidden form fields from a page.
func FormState(html string) map[string]string {
	form := make(map[string]string)
	for _, m := range hiddenInputRe.FindAllStringSubmatch(html, -1) {
		form[m[1]] = m[2]
	}
	return form
}
