package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lionpath-labs/coursecrawl/internal/ui"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved portal sessions",
	Long: `Sessions keep portal cookies between runs. Save one at the end of a
scrape with --session, then reuse it so follow-up runs skip cookie
renegotiation.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := getApp().Sessions.List()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions")
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var sessionsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current portal cookies under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()

		// Touch the search page so there are cookies worth saving.
		if _, err := a.Portal.SearchPage(cmd.Context()); err != nil {
			return err
		}

		sess, err := a.Portal.ExportSession(args[0])
		if err != nil {
			return err
		}
		if err := a.Sessions.Save(sess); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s session %q (%d cookies)\n",
			ui.Success("Saved:"), sess.Name, len(sess.Cookies))
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getApp().Sessions.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %q\n", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsSaveCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}
