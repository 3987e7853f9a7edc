package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lionpath-labs/coursecrawl/internal/app"
	"github.com/lionpath-labs/coursecrawl/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "coursecrawl",
	Short: "Scrape the public LionPath class search into a course catalog",
	Long: `coursecrawl walks the public class-search portal: it discovers every
subject area, fetches each subject's section listing, drills into
per-class detail pages, and writes the aggregated catalog as JSONL,
JSON, CSV, or Markdown.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. The context carries signal cancellation from main,
// so Ctrl-C propagates into every in-flight request.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	config.RegisterFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if getApp() != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		setApp(a)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a := getApp(); a != nil {
			_ = a.Close(cmd.Context())
		}
	}
}
