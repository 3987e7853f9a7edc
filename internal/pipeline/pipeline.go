// Package pipeline orchestrates a scrape run: subject discovery, concurrent
// listing fetches, aggregation, and concurrent detail enrichment.
package pipeline

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/lionpath-labs/coursecrawl/internal/catalog"
	"github.com/lionpath-labs/coursecrawl/internal/config"
	"github.com/lionpath-labs/coursecrawl/internal/parse"
	"github.com/lionpath-labs/coursecrawl/internal/portal"
	"github.com/lionpath-labs/coursecrawl/internal/retry"
	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// Pipeline runs the staged scrape against one portal client.
type Pipeline struct {
	cfg    *config.Config
	client *portal.Client
}

// Options select what a run covers.
type Options struct {
	// Subjects restricts the run to these subject codes; empty means all.
	Subjects []string

	// MaxSubjects caps how many subjects are fetched (0 = no cap).
	MaxSubjects int

	// SkipDetails stops after the listing stage, leaving records with
	// listing-level fields only.
	SkipDetails bool

	// Progress renders progress bars on stderr.
	Progress bool
}

// Result is what a run produced, complete or not. On cancellation the
// records gathered so far are still returned so callers can flush them.
type Result struct {
	Records []*models.CourseRecord
	Stats   RunStats
}

func New(cfg *config.Config, client *portal.Client) *Pipeline {
	return &Pipeline{cfg: cfg, client: client}
}

// Run executes the full scrape. The returned error is non-nil when the run
// was cancelled or when subject discovery itself failed; per-subject and
// per-section failures are recorded in the stats instead.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	started := time.Now()

	subjects, err := p.client.Subjects(ctx)
	if err != nil {
		return nil, err
	}
	subjects = selectSubjects(subjects, opts)

	stats := RunStats{TotalSubjects: len(subjects)}
	log.Info().Int("subjects", len(subjects)).Msg("Starting scrape")

	listings := p.fetchListings(ctx, subjects, opts.Progress, &stats)

	summaries, origins := collectSummaries(listings)
	summaries = catalog.FilterCampus(summaries, p.cfg.Campus)
	records := catalog.Aggregate(summaries, p.cfg.Term)
	stats.UniqueCourses = len(records)
	stats.TotalSections = len(summaries)

	if !opts.SkipDetails && ctx.Err() == nil {
		p.fetchDetails(ctx, records, origins, opts.Progress, &stats)
	}

	catalog.Finalize(records)
	stats.Duration = time.Since(started)
	stats.Log()

	return &Result{Records: records, Stats: stats}, ctx.Err()
}

// selectSubjects applies the subject filter and cap.
func selectSubjects(subjects []models.Subject, opts Options) []models.Subject {
	if len(opts.Subjects) > 0 {
		want := make(map[string]struct{}, len(opts.Subjects))
		for _, code := range opts.Subjects {
			want[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
		}

		kept := subjects[:0:0]
		for _, s := range subjects {
			if _, ok := want[s.Code]; ok {
				kept = append(kept, s)
			}
		}
		subjects = kept
	}

	if opts.MaxSubjects > 0 && len(subjects) > opts.MaxSubjects {
		subjects = subjects[:opts.MaxSubjects]
	}
	return subjects
}

// fetchListings runs the subject searches through a worker pool. A failed
// subject is logged and counted, never fatal to the run.
func (p *Pipeline) fetchListings(ctx context.Context, subjects []models.Subject, progress bool, stats *RunStats) []*portal.Listing {
	if len(subjects) == 0 {
		return nil
	}

	jobs := make(chan models.Subject, len(subjects))
	results := make(chan *portal.Listing, len(subjects))
	failures := make(chan string, len(subjects))
	bar := newBar(len(subjects), "subjects", progress)

	var wg sync.WaitGroup
	for w := 0; w < p.cfg.SubjectWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for subject := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				listing, err := p.client.SubjectListing(ctx, subject)
				if err != nil {
					log.Warn().Str("subject", subject.Code).Err(err).Msg("Subject failed")
					failures <- subject.Code
				} else {
					results <- listing
				}
				_ = bar.Add(1)
			}
		}()
	}

	for _, s := range subjects {
		jobs <- s
	}
	close(jobs)
	wg.Wait()
	close(results)
	close(failures)
	_ = bar.Finish()

	var listings []*portal.Listing
	for listing := range results {
		listings = append(listings, listing)
	}
	for code := range failures {
		stats.FailedSubjects = append(stats.FailedSubjects, code)
	}
	sort.Strings(stats.FailedSubjects)
	stats.ProcessedSubjects = len(listings)

	return listings
}

// origin ties a class number back to the listing it came from, for the
// stateful detail fallback and the term (STRM) the detail URL needs.
type origin struct {
	listing *portal.Listing
	term    string
}

func collectSummaries(listings []*portal.Listing) ([]models.SectionSummary, map[string]origin) {
	var summaries []models.SectionSummary
	origins := make(map[string]origin)

	for _, listing := range listings {
		for _, s := range listing.Summaries {
			// Cross-listed classes show up under several subjects;
			// the first occurrence wins.
			if _, dup := origins[s.ClassNumber]; dup {
				continue
			}
			summaries = append(summaries, s)
			origins[s.ClassNumber] = origin{listing: listing, term: s.Term}
		}
	}
	return summaries, origins
}

type detailJob struct {
	record *models.CourseRecord
	index  int

	// course marks the one section per course that also fills the
	// course-level fields, so no two workers write the same Course.
	course bool
}

// fetchDetails enriches every section in place through a worker pool.
func (p *Pipeline) fetchDetails(ctx context.Context, records []*models.CourseRecord, origins map[string]origin, progress bool, stats *RunStats) {
	var total int
	for _, rec := range records {
		total += len(rec.Sections)
	}
	if total == 0 {
		return
	}

	jobs := make(chan detailJob, total)
	results := make(chan error, total)
	bar := newBar(total, "sections", progress)

	var wg sync.WaitGroup
	for w := 0; w < p.cfg.DetailWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				results <- p.enrichSection(ctx, job, origins)
				_ = bar.Add(1)
			}
		}()
	}

	for _, rec := range records {
		for i := range rec.Sections {
			jobs <- detailJob{record: rec, index: i, course: i == 0}
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	_ = bar.Finish()

	for err := range results {
		if err != nil {
			stats.FailedDetails++
		} else {
			stats.DetailedSections++
		}
	}
}

func (p *Pipeline) enrichSection(ctx context.Context, job detailJob, origins map[string]origin) error {
	sec := &job.record.Sections[job.index]
	org := origins[sec.ClassNumber]

	term := org.term
	if term == "" {
		term = job.record.Course.Term
	}

	page, err := p.client.CourseDetail(ctx, term, sec.ClassNumber)
	if err != nil {
		// Some class numbers are only reachable through the search
		// component itself; retry through the stateful path.
		var httpErr retry.HTTPError
		if errors.As(err, &httpErr) && org.listing != nil {
			page, err = p.client.SectionDetail(ctx, org.listing, term, sec.ClassNumber)
		}
	}
	if err != nil {
		log.Debug().
			Str("course", job.record.Course.Code).
			Str("class_nbr", sec.ClassNumber).
			Err(err).
			Msg("Detail fetch failed, keeping listing fields")
		return err
	}

	parse.EnrichSection(sec, page.Body)
	if job.course {
		parse.EnrichCourse(&job.record.Course, page.Body)
	}
	return nil
}

// newBar builds a stderr progress bar, or a silent one when disabled.
func newBar(total int, label string, enabled bool) *progressbar.ProgressBar {
	if !enabled {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(30),
	)
}
