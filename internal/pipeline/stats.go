package pipeline

import (
	"time"

	"github.com/rs/zerolog/log"
)

// RunStats summarizes one scrape run for the end-of-run report.
type RunStats struct {
	TotalSubjects     int           `json:"total_subjects"`
	ProcessedSubjects int           `json:"processed_subjects"`
	FailedSubjects    []string      `json:"failed_subjects,omitempty"`
	TotalSections     int           `json:"total_sections"`
	UniqueCourses     int           `json:"unique_courses"`
	DetailedSections  int           `json:"detailed_sections"`
	FailedDetails     int           `json:"failed_details"`
	Duration          time.Duration `json:"duration"`
}

// Log writes the run summary through the structured logger.
func (s RunStats) Log() {
	perSecond := 0.0
	if s.Duration > 0 {
		perSecond = float64(s.TotalSections) / s.Duration.Seconds()
	}

	evt := log.Info().
		Int("subjects", s.ProcessedSubjects).
		Int("courses", s.UniqueCourses).
		Int("sections", s.TotalSections).
		Int("detailed", s.DetailedSections).
		Dur("duration", s.Duration).
		Float64("sections_per_sec", perSecond)

	if len(s.FailedSubjects) > 0 {
		evt = evt.Strs("failed_subjects", s.FailedSubjects)
	}
	if s.FailedDetails > 0 {
		evt = evt.Int("failed_details", s.FailedDetails)
	}

	evt.Msg("Scrape complete")
}
