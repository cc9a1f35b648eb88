package main

import (
	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/debug"
	"github.com/steveyegge/skein/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "setup",
	Short:   "Serve the task tools over MCP on stdio",
	Long: `Run an MCP server on stdin/stdout exposing the full task lifecycle as
tools. This is the interface agent harnesses use instead of shelling
out to the CLI per operation.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		debug.Logf("sk: serving MCP on stdio for %s\n", cfg.Dir)
		return mcpserver.ServeStdio(mcpserver.New(eng, version))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
