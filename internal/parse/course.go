package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

var (
	courseTitleRe = regexp.MustCompile(`(?m)^([A-Z]+-?[A-Z]+ \d+[A-Z]*)\s*[-–]?\s+(.{4,}?)$`)
	unitsRe       = regexp.MustCompile(`(?im)^Units?[:\s]+(\d+(?:\.\d+)?)`)
	descriptionRe = regexp.MustCompile(`(?is)(?:Course )?Description[:\s]*\n(.+?)(?:\n\n|\nEnrollment|\nClass Notes|$)`)
	attrSplitRe   = regexp.MustCompile(`[,;\n]`)
)

// EnrichCourse fills course-level fields from an enrollment-detail page.
// Parsing is best-effort: absent fields keep their existing values so a
// partially rendered page never degrades the summary record.
func EnrichCourse(c *models.Course, html string) {
	text := PageText(html)

	if m := courseTitleRe.FindStringSubmatch(text); m != nil {
		title := squash(m[2])
		if len(title) > 3 && !strings.HasPrefix(title, "Section") {
			c.Code = squash(m[1])
			c.Title = title
		}
	}

	if m := unitsRe.FindStringSubmatch(text); m != nil {
		c.Units = m[1]
	}
	if v := labelValue(text, "Career"); v != "" {
		c.Career = v
	}
	if v := labelValue(text, "Grading"); v != "" {
		c.Grading = v
	}
	if v := labelValue(text, "Component"); v != "" {
		c.Component = v
	}

	if frag := DescriptionHTML(html); frag != "" {
		c.DescriptionHTML = frag
	}
	if m := descriptionRe.FindStringSubmatch(text); m != nil {
		desc := squash(m[1])
		// Short matches are usually a stray label, not a description
		if len(desc) > 50 {
			c.Description = desc
		}
	}
	if c.Description == "" && c.DescriptionHTML != "" {
		c.Description = squash(PageText(c.DescriptionHTML))
	}

	if v := labelValue(text, "Enrollment Requirements?", "Enforced Prerequisites?", "Prerequisites?"); v != "" {
		c.EnrollmentRequirements = v
	}
	if v := labelValue(text, "Enforced Concurrent"); v != "" {
		c.EnforcedConcurrent = v
	}

	if v := labelValue(text, "Class Attributes?", "Attributes?"); v != "" && !strings.Contains(v, "No Class Attributes") {
		var attrs []string
		for _, a := range attrSplitRe.Split(v, -1) {
			if a = strings.TrimSpace(a); a != "" {
				attrs = append(attrs, a)
			}
		}
		c.ClassAttributes = attrs
	}

	if v := labelValue(text, "Academic Organization"); v != "" {
		c.AcademicOrg = v
	}
	if v := labelValue(text, "Course Notes?"); v != "" && !strings.Contains(v, "No Course Notes") {
		c.CourseNotes = v
	}
	if v := labelValue(text, "Text ?Books?", "Textbooks?"); v != "" {
		c.TextbookInfo = v
	}

	c.UpdatedAt = time.Now()
}
