package main

import (
	"github.com/felixgeelhaar/mcp-go"
	"github.com/spf13/cobra"

	mcptools "github.com/felixgeelhaar/junction/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agent integration",
	Long: `Start a Model Context Protocol (MCP) server for AI agent integration.

Available tools:
  - junction_create   Create a junction (requires confirm=true)
  - junction_delete   Delete a junction (requires confirm=true)
  - junction_exists   Report whether a path is a junction
  - junction_target   Return the target of a junction
  - junction_status   Inspect several paths at once

Examples:
  junction mcp                  # Start stdio MCP server
  junction mcp --http :8080     # Start HTTP MCP server`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

var mcpHTTP string

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpHTTP, "http", "", "Start HTTP server on address (e.g., :8080)")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	j, _, err := setup(cmd)
	if err != nil {
		return err
	}

	srv := mcptools.NewServer(j, mcptools.VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})

	if mcpHTTP != "" {
		return mcp.ServeHTTP(cmd.Context(), srv, mcpHTTP)
	}
	return mcp.ServeStdio(cmd.Context(), srv)
}
