package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcp-amp",
	Short: "MCP server for Amazon Managed Service for Prometheus",
	Long: `mcp-amp is a Model Context Protocol (MCP) server that provides access
to Amazon Managed Service for Prometheus (AMP) workspaces through
standardized MCP interfaces.

This allows AI assistants to discover AMP workspaces, inspect their
status, and execute PromQL queries against their query endpoints.

Every request to AWS is signed with Signature Version 4. Credentials
come from static configuration, environment variables, or the AWS SDK
default provider chain (shared config profiles, instance roles).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version for the root command
func SetVersion(version string) {
	rootCmd.Version = version
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
