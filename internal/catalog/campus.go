package catalog

import (
	"strings"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// nonUPCampuses are commonwealth-campus names the listing rows use. A row
// naming one of these is never a University Park section.
var nonUPCampuses = []string{
	"World Campus", "Abington", "Altoona", "Beaver", "Behrend", "Berks",
	"Brandywine", "Dubois", "Erie", "Fayette", "Greater Allegheny",
	"Harrisburg", "Hazleton", "Lehigh Valley", "Mont Alto",
	"New Kensington", "Schuylkill", "Shenango", "Wilkes-Barre", "York",
}

// IsUniversityPark reports whether a section belongs to the University Park
// campus. The portal is inconsistent about labelling UP rows, so the check
// is exclusionary: a section is UP unless its campus names another campus
// or its section number carries a World Campus / web suffix.
func IsUniversityPark(s models.SectionSummary) bool {
	for _, campus := range nonUPCampuses {
		if strings.EqualFold(s.Campus, campus) {
			return false
		}
	}

	// World Campus and web sections end in W or Y even when the row
	// doesn't name the campus.
	if n := len(s.Section); n > 0 {
		switch s.Section[n-1] {
		case 'W', 'Y':
			return false
		}
	}

	return true
}

// FilterCampus keeps only the summaries matching the requested campus.
// "all" keeps everything; "UP" applies the University Park rules; any other
// value matches the campus name case-insensitively.
func FilterCampus(summaries []models.SectionSummary, campus string) []models.SectionSummary {
	if strings.EqualFold(campus, "all") {
		return summaries
	}

	out := summaries[:0:0]
	for _, s := range summaries {
		switch {
		case strings.EqualFold(campus, "UP"):
			if IsUniversityPark(s) {
				out = append(out, s)
			}
		case strings.EqualFold(s.Campus, campus):
			out = append(out, s)
		}
	}
	return out
}
