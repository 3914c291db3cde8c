package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperpilot/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start a JSON HTTP API over the index:

  POST /v1/index   multipart upload of papers (field "files"), rebuilds the index
  POST /v1/ask     {"question": "...", "k": 4}
  POST /v1/search  {"query": "...", "k": 4}
  GET  /v1/index   index status`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", httpapi.DefaultAddr, "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := httpapi.NewServer(&httpapi.Ports{
		QA:       qaService,
		QAForK:   qaForK,
		Indexing: indexingService,
	})
	if err != nil {
		return err
	}

	cmd.Printf("HTTP API listening on %s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}
