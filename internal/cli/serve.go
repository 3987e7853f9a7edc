package cli

import (
	"github.com/spf13/cobra"

	"github.com/lionpath-labs/coursecrawl/internal/api"
	"github.com/lionpath-labs/coursecrawl/internal/writer"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <catalog.jsonl>",
	Short: "Serve a scraped catalog over a local HTTP API",
	Long: `Serve loads a JSONL catalog and exposes it read-only:

  GET /healthz
  GET /api/courses[?subject=CMPSC][&open=true]
  GET /api/courses/{code}
  GET /api/subjects
  GET /api/subjects/{subject}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := writer.ReadJSONL(args[0])
		if err != nil {
			return err
		}

		return api.NewServer(records).ListenAndServe(cmd.Context(), serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
