package writer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// encodeMarkdown renders a human-readable catalog. Descriptions that still
// carry their HTML fragment are converted so formatting survives; otherwise
// the plain-text description is used as-is.
func encodeMarkdown(w io.Writer, records []*models.CourseRecord) error {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Course Catalog\n\n%d courses\n", len(records))

	for _, rec := range records {
		c := rec.Course

		fmt.Fprintf(bw, "\n## %s", c.Code)
		if c.Title != "" {
			fmt.Fprintf(bw, " - %s", c.Title)
		}
		fmt.Fprintln(bw)

		var meta []string
		if c.Units != "" {
			meta = append(meta, c.Units+" units")
		}
		if c.Career != "" {
			meta = append(meta, c.Career)
		}
		if c.Grading != "" {
			meta = append(meta, c.Grading)
		}
		if len(meta) > 0 {
			fmt.Fprintf(bw, "\n*%s*\n", strings.Join(meta, " · "))
		}

		if desc := description(conv, c); desc != "" {
			fmt.Fprintf(bw, "\n%s\n", desc)
		}
		if c.EnrollmentRequirements != "" {
			fmt.Fprintf(bw, "\n**Prerequisites:** %s\n", c.EnrollmentRequirements)
		}
		if len(c.ClassAttributes) > 0 {
			fmt.Fprintf(bw, "\n**Attributes:** %s\n", strings.Join(c.ClassAttributes, ", "))
		}

		if len(rec.Sections) > 0 {
			fmt.Fprintln(bw, "\n| Section | Class # | Days | Times | Instructor | Seats |")
			fmt.Fprintln(bw, "|---|---|---|---|---|---|")
			for _, sec := range rec.Sections {
				fmt.Fprintf(bw, "| %s | %s | %s | %s | %s | %d/%d |\n",
					sec.Section, sec.ClassNumber, sec.Days, sec.Times,
					sec.Instructor, sec.AvailableSeats, sec.ClassCapacity)
			}
		}
	}

	return bw.Flush()
}

func description(conv *md.Converter, c models.Course) string {
	if c.DescriptionHTML != "" {
		if out, err := conv.ConvertString(c.DescriptionHTML); err == nil {
			return strings.TrimSpace(out)
		}
	}
	return c.Description
}
