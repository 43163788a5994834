// Package cmd provides the command-line interface for the MCP AMP server.
//
// This package implements the Cobra CLI framework to provide commands for:
// - Starting the MCP server with various transport options (stdio, sse, http)
// - Managing server configuration and lifecycle
// - Printing version information
//
// The main entry point is the serve command which starts the MCP server and
// registers all AMP-related tools for discovering workspaces, inspecting
// their status, and executing PromQL queries against their query endpoints.
//
// Environment Variables:
//   - AWS_REGION / AWS_DEFAULT_REGION: AWS region for AMP API calls
//   - AWS_PROFILE: Optional shared config profile
//   - AWS_ACCESS_KEY_ID: Optional static access key
//   - AWS_SECRET_ACCESS_KEY: Optional static secret key
//   - AWS_SESSION_TOKEN: Optional session token for temporary credentials
//
// Example usage:
//
//	mcp-amp serve --transport stdio
//	mcp-amp serve --transport sse --http-addr :8080
//	mcp-amp serve --region eu-west-1 --profile staging
package cmd
