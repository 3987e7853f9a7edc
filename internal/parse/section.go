package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

var (
	// Listing rows link into the detail view through an inline JS call;
	// the arguments are the term (STRM) and class number we need.
	classDetailsRe = regexp.MustCompile(`javascript:showClassDetails\((\d+),(\d+)\)[^>]*>([^<]+)<`)

	courseCodeRe    = regexp.MustCompile(`^([A-Z]+-?[A-Z]+)\s+(\d+[A-Z]*)`)
	courseCodeAltRe = regexp.MustCompile(`^([A-Z]{2,})\s+(\d+[A-Z]*)`)
	sectionNumRe    = regexp.MustCompile(`(\d{3}[A-Z]*|[A-Z]\d{2}|\d{2,3})`)

	timeRangeRe = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*[AP]M)\s*(?:-|to)+\s*(\d{1,2}:\d{2}\s*[AP]M)`)
	dateRangeRe = regexp.MustCompile(`(?i)(?:Meeting Dates?|Dates?)[:\s]+(\d{1,2}/\d{1,2}/\d{4})\s*(?:-|to)+\s*(\d{1,2}/\d{1,2}/\d{4})`)
	startEndRe  = regexp.MustCompile(`(?is)Start Date[:\s]+(\d{1,2}/\d{1,2}/\d{4}).*?End Date[:\s]+(\d{1,2}/\d{1,2}/\d{4})`)
	nonWordRe   = regexp.MustCompile(`[^\w\s]`)
)

// campusNames are the non-UP campuses that appear in listing row text.
var campusNames = []string{
	"World Campus", "Berks", "Abington", "Altoona", "Brandywine",
	"Dubois", "Erie", "Fayette", "Greater Allegheny", "Harrisburg",
	"Hazleton", "Lehigh Valley", "Mont Alto", "New Kensington",
	"Schuylkill", "Shenango", "Wilkes-Barre", "York",
}

// SectionSummaries extracts every section row from a subject listing page.
// Duplicate class numbers (the portal repeats rows across result pagelets)
// are dropped, first occurrence wins.
func SectionSummaries(html, subjectCode string) []models.SectionSummary {
	var summaries []models.SectionSummary
	seen := make(map[string]struct{})

	for _, m := range classDetailsRe.FindAllStringSubmatch(html, -1) {
		strm, classNbr, text := m[1], m[2], m[3]
		if _, dup := seen[classNbr]; dup {
			continue
		}

		summary, ok := summaryFromRowText(text, strm, classNbr)
		if !ok {
			log.Debug().
				Str("subject", subjectCode).
				Str("row", strings.TrimSpace(text)).
				Msg("Skipping row without a parseable course code")
			continue
		}

		seen[classNbr] = struct{}{}
		summaries = append(summaries, summary)
	}

	return summaries
}

// summaryFromRowText parses a listing row like
// "CMPSC 121 - 001 Lecture University Park" into a SectionSummary.
func summaryFromRowText(text, strm, classNbr string) (models.SectionSummary, bool) {
	text = strings.TrimSpace(text)

	m := courseCodeRe.FindStringSubmatch(text)
	if m == nil {
		m = courseCodeAltRe.FindStringSubmatch(text)
	}
	if m == nil {
		return models.SectionSummary{}, false
	}

	summary := models.SectionSummary{
		Subject:       m[1],
		CatalogNumber: m[2],
		CourseCode:    m[1] + " " + m[2],
		ClassNumber:   classNbr,
		Term:          strm,
	}

	// Everything after the first " - " names the section and campus
	if idx := strings.Index(text, " - "); idx >= 0 {
		rest := text[idx+3:]

		if sm := sectionNumRe.FindStringSubmatch(rest); sm != nil {
			summary.Section = sm[1]
		}

		for _, campus := range campusNames {
			if strings.Contains(rest, campus) {
				summary.Campus = campus
				break
			}
		}
		if summary.Campus == "" {
			summary.Campus = "UP"
		}
	}

	return summary, true
}

// EnrichSection fills section fields from a class-detail page. Fields the
// page doesn't carry keep their summary-level values; the section always
// comes back usable.
func EnrichSection(sec *models.Section, html string) {
	text := PageText(html)

	if v := labelValue(text, "Status"); v != "" {
		sec.Status = v
	}
	if v := labelValue(text, "Class Type", "Component", "Section Type"); v != "" {
		sec.Component = v
	}

	if v := labelValue(text, "Days?"); v != "" {
		sec.Days = squash(nonWordRe.ReplaceAllString(v, ""))
	}

	if m := timeRangeRe.FindStringSubmatch(text); m != nil {
		sec.StartTime = squash(m[1])
		sec.EndTime = squash(m[2])
		sec.Times = sec.StartTime + " to " + sec.EndTime
	}

	if m := dateRangeRe.FindStringSubmatch(text); m != nil {
		sec.StartDate, sec.EndDate = m[1], m[2]
	} else if m := startEndRe.FindStringSubmatch(text); m != nil {
		sec.StartDate, sec.EndDate = m[1], m[2]
	}
	if sec.StartDate != "" {
		sec.MeetingDates = sec.StartDate + " - " + sec.EndDate
	}

	if v := labelValue(text, "Instruction Mode", "Delivery Mode"); v != "" {
		sec.InstructionMode = v
	}
	if v := labelValue(text, "Location", "Campus"); v != "" {
		sec.Location = v
	}
	if v := labelValue(text, "Building"); v != "" {
		sec.Building = v
	}
	if v := labelValue(text, "Room"); v != "" {
		sec.Room = v
	}
	if v := labelValue(text, "Instructor", "Professor", "Taught by"); v != "" {
		sec.Instructor = v
	}

	if n := intValue(text, "Class Capacity"); n >= 0 {
		sec.ClassCapacity = n
	}
	if n := intValue(text, "Enrollment Total", "Total Enrolled", "Enrolled", "Current Enrollment"); n >= 0 {
		sec.EnrollmentTotal = n
	}
	if n := intValue(text, "Available Seats?", "Seats Available"); n >= 0 {
		sec.AvailableSeats = n
	} else if sec.ClassCapacity > 0 {
		sec.AvailableSeats = sec.ClassCapacity - sec.EnrollmentTotal
		if sec.AvailableSeats < 0 {
			sec.AvailableSeats = 0
		}
	}
	if n := intValue(text, "Wait ?List Capacity"); n >= 0 {
		sec.WaitlistCapacity = n
	}
	if n := intValue(text, "Wait ?List Total"); n >= 0 {
		sec.WaitlistTotal = n
	}

	if v := labelValue(text, "Class Notes?", "Section Notes?"); v != "" && !strings.Contains(v, "No Class Notes") {
		sec.ClassNotes = v
	}
	if v := labelValue(text, "Add Consent"); v != "" {
		sec.AddConsent = v
	}
	if v := labelValue(text, "Drop Consent"); v != "" {
		sec.DropConsent = v
	}

	sec.ScrapedAt = time.Now()
}
