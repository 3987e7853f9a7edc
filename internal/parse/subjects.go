package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

var (
	// Subject checkboxes are labelled "CODE / Long Name"; the label id
	// carries the same index as the checkbox element.
	subjectLabelRe = regexp.MustCompile(`(?is)<label[^>]*id="PTS_SELECT_LBL\$(\d+)"[^>]*>([^<]+)</label>`)
	subjectCodeRe  = regexp.MustCompile(`^[A-Z]+-?[A-Z]*$`)
	labelIndexRe   = regexp.MustCompile(`\$(\d+)$`)
)

// Subjects extracts the subject list from the class-search page. A fast
// regex pass runs first; if the portal markup shifted, a goquery pass over
// the checkbox elements is tried before giving up.
func Subjects(html string) []models.Subject {
	subjects := subjectsFromRegex(html)
	if len(subjects) == 0 {
		subjects = subjectsFromDOM(html)
	}

	sort.Slice(subjects, func(i, j int) bool {
		return subjects[i].Code < subjects[j].Code
	})
	return subjects
}

func subjectsFromRegex(html string) []models.Subject {
	var subjects []models.Subject
	for _, m := range subjectLabelRe.FindAllStringSubmatch(html, -1) {
		if s, ok := subjectFromLabel(m[2], "PTS_SELECT$"+m[1]); ok {
			subjects = append(subjects, s)
		}
	}
	return subjects
}

func subjectsFromDOM(rawHTML string) []models.Subject {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var subjects []models.Subject
	doc.Find(`input[id^='PTS_SELECT$']`).Each(func(i int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		idx := labelIndexRe.FindStringSubmatch(id)
		if idx == nil {
			return
		}

		label := doc.Find(`label[id='PTS_SELECT_LBL$` + idx[1] + `']`).First()
		if label.Length() == 0 {
			return
		}

		if s, ok := subjectFromLabel(label.Text(), id); ok {
			subjects = append(subjects, s)
		}
	})
	return subjects
}

// subjectFromLabel parses "CMPSC / Computer Science" into a Subject,
// rejecting labels that don't look like subject codes.
func subjectFromLabel(label, checkboxID string) (models.Subject, bool) {
	label = strings.TrimSpace(label)
	if !strings.Contains(label, "/") || len(label) <= 5 {
		return models.Subject{}, false
	}

	parts := strings.SplitN(label, "/", 2)
	code := strings.TrimSpace(parts[0])
	name := code
	if len(parts) > 1 {
		name = strings.TrimSpace(parts[1])
	}

	if !subjectCodeRe.MatchString(code) {
		return models.Subject{}, false
	}

	return models.Subject{
		Code:       code,
		Name:       name,
		CheckboxID: checkboxID,
	}, true
}
