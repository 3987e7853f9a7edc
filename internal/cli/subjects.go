package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lionpath-labs/coursecrawl/internal/ui"
)

var subjectsJSON bool

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List the subject areas offered on the portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()

		subjects, err := a.Portal.Subjects(cmd.Context())
		if err != nil {
			return err
		}

		if subjectsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(subjects)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\t%s\n", ui.Bold("CODE"), ui.Bold("NAME"))
		for _, s := range subjects {
			fmt.Fprintf(tw, "%s\t%s\n", s.Code, s.Name)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d subjects\n", len(subjects))
		return nil
	},
}

func init() {
	subjectsCmd.Flags().BoolVar(&subjectsJSON, "as-json", false, "Print subjects as JSON")
	rootCmd.AddCommand(subjectsCmd)
}
