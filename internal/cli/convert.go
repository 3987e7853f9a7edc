package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lionpath-labs/coursecrawl/internal/ui"
	"github.com/lionpath-labs/coursecrawl/internal/writer"
)

var (
	convertOutput string
	convertFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert <catalog.jsonl>",
	Short: "Convert a scraped JSONL catalog to another format",
	Example: `  coursecrawl convert courses.jsonl -o courses.csv
  coursecrawl convert courses.jsonl -f markdown -o catalog.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := writer.ReadJSONL(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("%s contains no records", args[0])
		}

		format, err := writer.Detect(convertFormat, convertOutput)
		if err != nil {
			return err
		}
		if err := writer.Write(convertOutput, format, records); err != nil {
			return err
		}

		if convertOutput != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d courses -> %s (%s)\n",
				ui.Success("Converted:"), len(records), convertOutput, format)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "-", "Output path (\"-\" for stdout)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format: jsonl, json, csv, markdown (default: by extension)")
	rootCmd.AddCommand(convertCmd)
}
