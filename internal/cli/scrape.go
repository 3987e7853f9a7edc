package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lionpath-labs/coursecrawl/internal/pipeline"
	"github.com/lionpath-labs/coursecrawl/internal/ui"
	"github.com/lionpath-labs/coursecrawl/internal/writer"
)

var (
	scrapeOutput      string
	scrapeFormat      string
	scrapeSubjects    string
	scrapeMaxSubjects int
	scrapeNoDetails   bool
	scrapeNoProgress  bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a full catalog scrape",
	Long: `Scrape discovers all subjects, fetches every subject's section listing,
enriches each section from its detail page, and writes the catalog.

On interrupt (Ctrl-C) the records gathered so far are still flushed to
the output file, so a long run is never a total loss.`,
	Example: `  coursecrawl scrape -o courses.jsonl
  coursecrawl scrape --subjects CMPSC,MATH --campus all -o math-cs.json
  coursecrawl scrape --no-details --max-subjects 5 -o quick-look.csv`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "courses.jsonl", "Output path (\"-\" for stdout)")
	scrapeCmd.Flags().StringVarP(&scrapeFormat, "format", "f", "", "Output format: jsonl, json, csv, markdown (default: by extension)")
	scrapeCmd.Flags().StringVar(&scrapeSubjects, "subjects", "", "Only these subject codes, comma-separated")
	scrapeCmd.Flags().IntVar(&scrapeMaxSubjects, "max-subjects", 0, "Stop after this many subjects (0 = all)")
	scrapeCmd.Flags().BoolVar(&scrapeNoDetails, "no-details", false, "Skip detail pages, keep listing-level fields only")
	scrapeCmd.Flags().BoolVar(&scrapeNoProgress, "no-progress", false, "Disable progress bars")

	scrapeCmd.Flags().String("term", "", "Term label stamped on records")
	scrapeCmd.Flags().String("campus", "", "Campus filter: UP (default), a campus name, or \"all\"")
	scrapeCmd.Flags().Float64("rate-limit", 0, "Requests per second against the portal")
	scrapeCmd.Flags().Int("burst", 0, "Rate limiter burst size")
	scrapeCmd.Flags().Int("retries", 0, "Attempts per request")
	scrapeCmd.Flags().Int("subject-workers", 0, "Concurrent subject listing fetches")
	scrapeCmd.Flags().Int("detail-workers", 0, "Concurrent detail fetches")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := getApp()
	ctx := cmd.Context()

	format, err := writer.Detect(scrapeFormat, scrapeOutput)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		MaxSubjects: scrapeMaxSubjects,
		SkipDetails: scrapeNoDetails,
		Progress:    !scrapeNoProgress && scrapeOutput != "-",
	}
	if scrapeSubjects != "" {
		opts.Subjects = strings.Split(scrapeSubjects, ",")
	}

	result, runErr := pipeline.New(a.Config, a.Portal).Run(ctx, opts)

	// Flush whatever the run produced, even after cancellation.
	if result != nil && len(result.Records) > 0 {
		if err := writer.Write(scrapeOutput, format, result.Records); err != nil {
			return err
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) && result != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %d partial records to %s\n",
				ui.Info("Interrupted:"), len(result.Records), scrapeOutput)
			return nil
		}
		return runErr
	}

	if scrapeOutput != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d courses, %d sections -> %s\n",
			ui.Success("Done:"), result.Stats.UniqueCourses, result.Stats.TotalSections, scrapeOutput)
		if n := len(result.Stats.FailedSubjects); n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d subjects failed: %s\n",
				ui.Error("Warning:"), n, strings.Join(result.Stats.FailedSubjects, ", "))
		}
	}
	return nil
}
