// Package models defines the course catalog data structures shared across packages.
package models

import (
	"sort"
	"time"
)

// Subject is a subject area offered by the portal (e.g. "CMPSC / Computer Science").
type Subject struct {
	Code string `json:"code"`
	Name string `json:"name"`

	// CheckboxID is the portal form element that selects this subject
	// in the class search. It is a scraping detail, not output data.
	CheckboxID string `json:"-"`
}

// SectionSummary is the minimal record extracted from a subject listing page.
// It carries just enough to group sections under courses and to fetch details.
type SectionSummary struct {
	CourseCode    string
	Subject       string
	CatalogNumber string
	Section       string
	ClassNumber   string
	Campus        string
	Term          string // portal STRM identifier
}

// Section holds section-specific fields that vary per class number.
type Section struct {
	Section     string `json:"section"`
	ClassNumber string `json:"class_number"`
	Component   string `json:"component,omitempty"` // Lecture, Laboratory, Recitation...
	Status      string `json:"status,omitempty"`

	Days         string `json:"days,omitempty"`
	StartTime    string `json:"start_time,omitempty"`
	EndTime      string `json:"end_time,omitempty"`
	Times        string `json:"times,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	MeetingDates string `json:"meeting_dates,omitempty"`

	Campus          string `json:"campus,omitempty"`
	Location        string `json:"location,omitempty"`
	Building        string `json:"building,omitempty"`
	Room            string `json:"room,omitempty"`
	InstructionMode string `json:"instruction_mode,omitempty"`

	Instructor string `json:"instructor,omitempty"`

	ClassCapacity    int `json:"class_capacity"`
	EnrollmentTotal  int `json:"enrollment_total"`
	AvailableSeats   int `json:"available_seats"`
	WaitlistCapacity int `json:"waitlist_capacity"`
	WaitlistTotal    int `json:"waitlist_total"`

	AddConsent  string `json:"add_consent,omitempty"`
	DropConsent string `json:"drop_consent,omitempty"`
	ClassNotes  string `json:"class_notes,omitempty"`

	ScrapedAt time.Time `json:"scraped_at"`
}

// Course holds course-level fields that stay constant across sections.
type Course struct {
	Code          string `json:"code"`
	Title         string `json:"title,omitempty"`
	Subject       string `json:"subject"`
	CatalogNumber string `json:"catalog_number"`

	Units     string `json:"units,omitempty"`
	Career    string `json:"career,omitempty"`
	Grading   string `json:"grading,omitempty"`
	Component string `json:"component,omitempty"`

	Description string `json:"description,omitempty"`
	// DescriptionHTML keeps the raw fragment so the markdown writer can
	// render formatting the plain-text field loses.
	DescriptionHTML string `json:"-"`

	EnrollmentRequirements string   `json:"enrollment_requirements,omitempty"`
	EnforcedConcurrent     string   `json:"enforced_concurrent,omitempty"`
	ClassAttributes        []string `json:"class_attributes,omitempty"`
	AcademicOrg            string   `json:"academic_organization,omitempty"`
	CourseNotes            string   `json:"course_notes,omitempty"`
	TextbookInfo           string   `json:"textbook_info,omitempty"`

	Term      string    `json:"term,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseStats aggregates enrollment numbers across a course's sections.
type CourseStats struct {
	TotalCapacity   int      `json:"total_capacity"`
	TotalEnrollment int      `json:"total_enrollment"`
	AvailableSeats  int      `json:"available_seats"`
	SectionCount    int      `json:"section_count"`
	Campuses        []string `json:"campuses,omitempty"`
}

// CourseRecord is the unit of output: one course, its sections, and stats.
type CourseRecord struct {
	Course   Course      `json:"course"`
	Sections []Section   `json:"sections"`
	Stats    CourseStats `json:"stats"`
}

// ComputeStats recalculates the Stats block from the current sections.
func (r *CourseRecord) ComputeStats() {
	stats := CourseStats{SectionCount: len(r.Sections)}
	campuses := make(map[string]struct{})
	for _, s := range r.Sections {
		stats.TotalCapacity += s.ClassCapacity
		stats.TotalEnrollment += s.EnrollmentTotal
		stats.AvailableSeats += s.AvailableSeats
		if s.Campus != "" {
			campuses[s.Campus] = struct{}{}
		}
	}
	for c := range campuses {
		stats.Campuses = append(stats.Campuses, c)
	}
	sort.Strings(stats.Campuses)
	r.Stats = stats
}

// SortSections orders sections by section number, then class number, so
// repeated runs produce identical output.
func (r *CourseRecord) SortSections() {
	sort.Slice(r.Sections, func(i, j int) bool {
		if r.Sections[i].Section != r.Sections[j].Section {
			return r.Sections[i].Section < r.Sections[j].Section
		}
		return r.Sections[i].ClassNumber < r.Sections[j].ClassNumber
	})
}
