package cli

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperpilot/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose your papers to AI assistants over MCP",
	Long: `Start a Model Context Protocol server so an assistant can query the
paper index on your behalf.

Tools:     ask, search, reindex, index_status
Resources: paperpilot://index, paperpilot://workspaces

The server speaks JSON-RPC over stdio unless --port is given, in which case
it serves the streamable HTTP transport on --host:--port.

Claude Desktop configuration:
  {
    "mcpServers": {
      "paperpilot": {"command": "paperpilot", "args": ["mcp", "serve"]}
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve over HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "interface to bind when --port is set")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		QA:        qaService,
		Indexing:  indexingService,
		Workspace: workspaceService,
	})
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server listening on http://%s/\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
