// Package catalog groups scraped section rows into per-course records and
// applies campus filtering.
package catalog

import (
	"sort"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// Aggregate groups section summaries by course code into catalog records.
// Each record starts with skeleton sections carrying the listing-level
// fields; detail enrichment fills the rest in place later. Records come
// back sorted by course code.
func Aggregate(summaries []models.SectionSummary, term string) []*models.CourseRecord {
	byCourse := make(map[string]*models.CourseRecord)

	for _, s := range summaries {
		rec, ok := byCourse[s.CourseCode]
		if !ok {
			rec = &models.CourseRecord{
				Course: models.Course{
					Code:          s.CourseCode,
					Subject:       s.Subject,
					CatalogNumber: s.CatalogNumber,
					Term:          term,
				},
			}
			if term == "" {
				rec.Course.Term = s.Term
			}
			byCourse[s.CourseCode] = rec
		}

		rec.Sections = append(rec.Sections, models.Section{
			Section:     s.Section,
			ClassNumber: s.ClassNumber,
			Campus:      s.Campus,
		})
	}

	records := make([]*models.CourseRecord, 0, len(byCourse))
	for _, rec := range byCourse {
		rec.SortSections()
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Course.Code < records[j].Course.Code
	})
	return records
}

// Finalize recomputes stats on every record after detail enrichment.
func Finalize(records []*models.CourseRecord) {
	for _, rec := range records {
		rec.SortSections()
		rec.ComputeStats()
	}
}
