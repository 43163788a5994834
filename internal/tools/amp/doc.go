// Package amp provides MCP tools for Amazon Managed Service for Prometheus.
//
// This package implements the following MCP tools:
//
// Workspace Tools:
//   - list_workspaces: List workspaces in a region (single page, with
//     pagination token passthrough)
//   - get_workspace: Get detailed information about a workspace
//   - get_workspace_status: Get the current status of a workspace
//
// Query Tools:
//   - query_metrics: Execute PromQL instant and range queries against a
//     workspace's query endpoint
//   - get_label_values: List values of a label in a workspace
//   - get_series: Find series matching a label selector
//
// Authentication:
//   - Every provider call is signed with AWS Signature Version 4
//   - Credentials come from static configuration or the SDK default chain
//     (environment variables, shared config profile, instance role)
//
// Query results are returned verbatim in the query engine's native response
// schema; the tools never parse or aggregate them.
//
// Example tool usage:
//
//	list_workspaces: {"region": "us-east-1"}
//	get_workspace: {"workspace_id": "ws-12345678-abcd-1234-abcd-123456789012"}
//	query_metrics: {"workspace_id": "ws-1234...", "query": "up"}
//	query_metrics: {"workspace_id": "ws-1234...", "query": "rate(http_requests_total[5m])", "start_time": "2023-01-01T00:00:00Z", "end_time": "2023-01-01T01:00:00Z", "step": "1m"}
//	get_workspace_status: {"workspace_id": "ws-1234..."}
package amp
