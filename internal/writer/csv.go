package writer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

var csvHeader = []string{
	"course_code", "title", "subject", "catalog_number", "units",
	"section", "class_number", "component", "status",
	"days", "times", "meeting_dates", "campus", "location", "instruction_mode",
	"instructor",
	"class_capacity", "enrollment_total", "available_seats",
	"waitlist_capacity", "waitlist_total",
	"class_attributes",
}

// encodeCSV flattens records to one row per section.
func encodeCSV(w io.Writer, records []*models.CourseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, rec := range records {
		attrs := strings.Join(rec.Course.ClassAttributes, "; ")
		for _, sec := range rec.Sections {
			row := []string{
				rec.Course.Code,
				rec.Course.Title,
				rec.Course.Subject,
				rec.Course.CatalogNumber,
				rec.Course.Units,
				sec.Section,
				sec.ClassNumber,
				sec.Component,
				sec.Status,
				sec.Days,
				sec.Times,
				sec.MeetingDates,
				sec.Campus,
				sec.Location,
				sec.InstructionMode,
				sec.Instructor,
				strconv.Itoa(sec.ClassCapacity),
				strconv.Itoa(sec.EnrollmentTotal),
				strconv.Itoa(sec.AvailableSeats),
				strconv.Itoa(sec.WaitlistCapacity),
				strconv.Itoa(sec.WaitlistTotal),
				attrs,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
