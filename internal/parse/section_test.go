package parse

import (
	"testing"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

const listingPage = `
<html><body>
<a href="javascript:showClassDetails(2251,12345)" id="row1">CMPSC 121 - 001 Lecture</a>
<a href="javascript:showClassDetails(2251,12346)" id="row2">CMPSC 121 - 002W Lecture World Campus</a>
<a href="javascript:showClassDetails(2251,12345)" id="dup">CMPSC 121 - 001 Lecture</a>
<a href="javascript:showClassDetails(2251,12399)" id="bad">see class search for details</a>
<a href="javascript:showClassDetails(2251,12400)" id="row3">MATH 230 - 003 Lecture Berks</a>
</body></html>`

func TestSectionSummaries(t *testing.T) {
	summaries := SectionSummaries(listingPage, "CMPSC")

	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d: %+v", len(summaries), summaries)
	}

	first := summaries[0]
	if first.CourseCode != "CMPSC 121" || first.Subject != "CMPSC" || first.CatalogNumber != "121" {
		t.Errorf("unexpected course fields: %+v", first)
	}
	if first.Section != "001" || first.ClassNumber != "12345" || first.Term != "2251" {
		t.Errorf("unexpected section fields: %+v", first)
	}
	if first.Campus != "UP" {
		t.Errorf("campus = %q, want UP default", first.Campus)
	}

	if summaries[1].Campus != "World Campus" {
		t.Errorf("campus = %q, want World Campus", summaries[1].Campus)
	}
	if summaries[1].Section != "002W" {
		t.Errorf("section = %q, want 002W", summaries[1].Section)
	}
	if summaries[2].Campus != "Berks" {
		t.Errorf("campus = %q, want Berks", summaries[2].Campus)
	}
}

func TestSectionSummariesDedupe(t *testing.T) {
	summaries := SectionSummaries(listingPage, "CMPSC")
	seen := make(map[string]int)
	for _, s := range summaries {
		seen[s.ClassNumber]++
	}
	if seen["12345"] != 1 {
		t.Errorf("class 12345 appeared %d times, want 1", seen["12345"])
	}
}

const detailPage = `
<html><body><table>
<tr><td>Status</td><td>Open</td></tr>
<tr><td>Class Type</td><td>Lecture</td></tr>
<tr><td>Days</td><td>Mo/We/Fr</td></tr>
<tr><td>Times</td><td>10:10AM - 11:00AM</td></tr>
<tr><td>Meeting Dates</td><td>8/25/2025 - 12/12/2025</td></tr>
<tr><td>Instruction Mode</td><td>In Person</td></tr>
<tr><td>Location</td><td>University Park</td></tr>
<tr><td>Room</td><td>110 Westgate Bldg</td></tr>
<tr><td>Instructor</td><td>Jane Doe</td></tr>
<tr><td>Class Capacity</td><td>150</td></tr>
<tr><td>Enrollment Total</td><td>147</td></tr>
<tr><td>Wait List Capacity</td><td>20</td></tr>
<tr><td>Wait List Total</td><td>0</td></tr>
<tr><td>Add Consent</td><td>No Special Consent Required</td></tr>
<tr><td>Class Notes</td><td>Bring a laptop to every class.</td></tr>
</table></body></html>`

func TestEnrichSection(t *testing.T) {
	sec := models.Section{Section: "001", ClassNumber: "12345"}
	EnrichSection(&sec, detailPage)

	if sec.Status != "Open" {
		t.Errorf("Status = %q", sec.Status)
	}
	if sec.Component != "Lecture" {
		t.Errorf("Component = %q", sec.Component)
	}
	if sec.Days != "MoWeFr" {
		t.Errorf("Days = %q, want MoWeFr", sec.Days)
	}
	if sec.StartTime != "10:10AM" || sec.EndTime != "11:00AM" {
		t.Errorf("times = %q / %q", sec.StartTime, sec.EndTime)
	}
	if sec.StartDate != "8/25/2025" || sec.EndDate != "12/12/2025" {
		t.Errorf("dates = %q / %q", sec.StartDate, sec.EndDate)
	}
	if sec.InstructionMode != "In Person" {
		t.Errorf("InstructionMode = %q", sec.InstructionMode)
	}
	if sec.Instructor != "Jane Doe" {
		t.Errorf("Instructor = %q", sec.Instructor)
	}
	if sec.ClassCapacity != 150 || sec.EnrollmentTotal != 147 {
		t.Errorf("capacity/enrolled = %d/%d", sec.ClassCapacity, sec.EnrollmentTotal)
	}
	// Not on the page, so derived from capacity - enrolled
	if sec.AvailableSeats != 3 {
		t.Errorf("AvailableSeats = %d, want 3", sec.AvailableSeats)
	}
	if sec.WaitlistCapacity != 20 || sec.WaitlistTotal != 0 {
		t.Errorf("waitlist = %d/%d", sec.WaitlistCapacity, sec.WaitlistTotal)
	}
	if sec.ClassNotes != "Bring a laptop to every class." {
		t.Errorf("ClassNotes = %q", sec.ClassNotes)
	}
	if sec.ScrapedAt.IsZero() {
		t.Error("ScrapedAt not set")
	}
}

func TestEnrichSectionOverEnrolled(t *testing.T) {
	page := `<table>
<tr><td>Class Capacity</td><td>30</td></tr>
<tr><td>Enrollment Total</td><td>35</td></tr>
</table>`

	var sec models.Section
	EnrichSection(&sec, page)

	if sec.AvailableSeats != 0 {
		t.Errorf("AvailableSeats = %d, want 0 when over-enrolled", sec.AvailableSeats)
	}
}

func TestEnrichSectionExplicitSeats(t *testing.T) {
	page := `<table>
<tr><td>Class Capacity</td><td>30</td></tr>
<tr><td>Enrollment Total</td><td>10</td></tr>
<tr><td>Available Seats</td><td>5</td></tr>
</table>`

	var sec models.Section
	EnrichSection(&sec, page)

	// The page's own number wins over the derived one.
	if sec.AvailableSeats != 5 {
		t.Errorf("AvailableSeats = %d, want 5", sec.AvailableSeats)
	}
}

func TestEnrichSectionSkipsPlaceholderNotes(t *testing.T) {
	var sec models.Section
	EnrichSection(&sec, `<tr><td>Class Notes</td><td>No Class Notes</td></tr>`)
	if sec.ClassNotes != "" {
		t.Errorf("ClassNotes = %q, want empty for placeholder", sec.ClassNotes)
	}
}
