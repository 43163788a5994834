package amp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-amp/internal/observability"
	"github.com/giantswarm/mcp-amp/internal/server"
)

// RegisterAMPTools registers the workspace and query tools with the MCP server
func RegisterAMPTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Create AMP client for the default region
	client := NewClient(sc.AMPConfig(), sc.Logger())

	// list_workspaces tool
	listWorkspacesTool := mcp.NewTool("list_workspaces",
		mcp.WithDescription("List Amazon Managed Prometheus workspaces in a region (first page; a next_token is returned when more exist)"),
		mcp.WithString("region",
			mcp.Description("AWS region to query (default: configured region)"),
		),
		mcp.WithString("alias",
			mcp.Description("Optional alias filter"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of workspaces to return in this page"),
		),
		mcp.WithString("next_token",
			mcp.Description("Pagination token from a previous call"),
		),
	)

	s.AddTool(listWorkspacesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListWorkspaces(ctx, request, client, sc)
	})

	// get_workspace tool
	getWorkspaceTool := mcp.NewTool("get_workspace",
		mcp.WithDescription("Get detailed information about a specific Amazon Managed Prometheus workspace"),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("The ID of the workspace to retrieve"),
		),
		mcp.WithString("region",
			mcp.Description("AWS region where the workspace is located (default: configured region)"),
		),
	)

	s.AddTool(getWorkspaceTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetWorkspace(ctx, request, client, sc)
	})

	// query_metrics tool
	queryMetricsTool := mcp.NewTool("query_metrics",
		mcp.WithDescription("Execute a PromQL query against an Amazon Managed Prometheus workspace"),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("The ID of the workspace to query"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("PromQL query string (passed through to the provider unchanged)"),
		),
		mcp.WithString("region",
			mcp.Description("AWS region where the workspace is located (default: configured region)"),
		),
		mcp.WithString("start_time",
			mcp.Description("Start time for range queries (RFC3339 format)"),
		),
		mcp.WithString("end_time",
			mcp.Description("End time for range queries (RFC3339 format)"),
		),
		mcp.WithString("step",
			mcp.Description("Query resolution step for range queries (e.g. '15s', '1m')"),
		),
	)

	s.AddTool(queryMetricsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleQueryMetrics(ctx, request, client, sc)
	})

	// get_workspace_status tool
	getWorkspaceStatusTool := mcp.NewTool("get_workspace_status",
		mcp.WithDescription("Get the current status of an Amazon Managed Prometheus workspace"),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("The ID of the workspace"),
		),
		mcp.WithString("region",
			mcp.Description("AWS region where the workspace is located (default: configured region)"),
		),
	)

	s.AddTool(getWorkspaceStatusTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetWorkspaceStatus(ctx, request, client, sc)
	})

	// get_label_values tool
	getLabelValuesTool := mcp.NewTool("get_label_values",
		mcp.WithDescription("Get all values of a label in an Amazon Managed Prometheus workspace"),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("The ID of the workspace to query"),
		),
		mcp.WithString("label",
			mcp.Required(),
			mcp.Description("The label name to list values for"),
		),
		mcp.WithString("region",
			mcp.Description("AWS region where the workspace is located (default: configured region)"),
		),
	)

	s.AddTool(getLabelValuesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetLabelValues(ctx, request, client, sc)
	})

	// get_series tool
	getSeriesTool := mcp.NewTool("get_series",
		mcp.WithDescription("Find series matching label matchers in an Amazon Managed Prometheus workspace"),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("The ID of the workspace to query"),
		),
		mcp.WithString("match",
			mcp.Required(),
			mcp.Description("Series selector (e.g. 'up{job=\"api\"}')"),
		),
		mcp.WithString("start_time",
			mcp.Description("Start time for the lookup (RFC3339 format)"),
		),
		mcp.WithString("end_time",
			mcp.Description("End time for the lookup (RFC3339 format)"),
		),
		mcp.WithString("region",
			mcp.Description("AWS region where the workspace is located (default: configured region)"),
		),
	)

	s.AddTool(getSeriesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetSeries(ctx, request, client, sc)
	})

	return nil
}

// requestParams extracts the argument map from a tool request
func requestParams(request mcp.CallToolRequest) map[string]interface{} {
	params := make(map[string]interface{})
	if request.Params.Arguments != nil {
		if argsMap, ok := request.Params.Arguments.(map[string]interface{}); ok {
			params = argsMap
		}
	}
	return params
}

// clientForRegion returns the shared client, or a fresh one when the call
// overrides the configured region
func clientForRegion(sc *server.ServerContext, base *Client, region string) *Client {
	if region == "" || region == base.config.Region {
		return base
	}
	cfg := sc.AMPConfig()
	cfg.Region = region
	return NewClient(cfg, sc.Logger())
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Error encoding result: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}
}

// toolSpan opens a handler-level span carrying the tool name; provider call
// spans nest under it.
func toolSpan(ctx context.Context, tool string) (context.Context, func()) {
	ctx, span := observability.StartSpan(ctx, "tool."+tool, observability.AttrTool.String(tool))
	return ctx, func() { span.End() }
}

// handleListWorkspaces handles the list_workspaces tool
func handleListWorkspaces(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	ctx, end := toolSpan(ctx, "list_workspaces")
	defer end()
	params := requestParams(request)

	region, _ := params["region"].(string)
	alias, _ := params["alias"].(string)
	nextToken, _ := params["next_token"].(string)
	maxResults := 0
	if v, ok := params["max_results"].(float64); ok {
		maxResults = int(v)
	}

	sc.Logger().Debug("Listing workspaces", "region", region, "alias", alias)

	result, err := clientForRegion(sc, client, region).ListWorkspaces(ctx, ListWorkspacesOptions{
		Alias:      alias,
		MaxResults: maxResults,
		NextToken:  nextToken,
	})
	if err != nil {
		sc.Logger().Error("Failed to list workspaces", "error", err)
		return errorResult(fmt.Sprintf("Error listing workspaces: %v", err)), nil
	}

	return jsonResult(result), nil
}

// handleGetWorkspace handles the get_workspace tool
func handleGetWorkspace(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	ctx, end := toolSpan(ctx, "get_workspace")
	defer end()
	params := requestParams(request)

	workspaceID, ok := params["workspace_id"].(string)
	if !ok || workspaceID == "" {
		return errorResult("Error: workspace_id parameter is required and must be a string"), nil
	}
	region, _ := params["region"].(string)

	sc.Logger().Debug("Getting workspace", "workspaceID", workspaceID, "region", region)

	workspace, err := clientForRegion(sc, client, region).DescribeWorkspace(ctx, workspaceID)
	if err != nil {
		sc.Logger().Error("Failed to get workspace", "error", err, "workspaceID", workspaceID)
		return errorResult(fmt.Sprintf("Error getting workspace '%s': %v", workspaceID, err)), nil
	}

	return jsonResult(map[string]interface{}{"workspace": workspace}), nil
}

// handleQueryMetrics handles the query_metrics tool
func handleQueryMetrics(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	ctx, end := toolSpan(ctx, "query_metrics")
	defer end()
	params := requestParams(request)

	workspaceID, ok := params["workspace_id"].(string)
	if !ok || workspaceID == "" {
		return errorResult("Error: workspace_id parameter is required and must be a string"), nil
	}
	query, ok := params["query"].(string)
	if !ok || query == "" {
		return errorResult("Error: query parameter is required and must be a string"), nil
	}

	region, _ := params["region"].(string)
	startTime, _ := params["start_time"].(string)
	endTime, _ := params["end_time"].(string)
	step, _ := params["step"].(string)

	if (startTime == "") != (endTime == "") {
		return errorResult("Error: start_time and end_time must be provided together for range queries"), nil
	}

	sc.Logger().Debug("Executing PromQL query", "workspaceID", workspaceID, "query", query, "start", startTime, "end", endTime, "step", step)

	result, err := clientForRegion(sc, client, region).QueryMetrics(ctx, workspaceID, query, startTime, endTime, step)
	if err != nil {
		sc.Logger().Error("Failed to execute query", "error", err, "workspaceID", workspaceID)
		return errorResult(fmt.Sprintf("Error executing query: %v", err)), nil
	}

	return jsonResult(result), nil
}

// handleGetWorkspaceStatus handles the get_workspace_status tool
func handleGetWorkspaceStatus(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	ctx, end := toolSpan(ctx, "get_workspace_status")
	defer end()
	params := requestParams(request)

	workspaceID, ok := params["workspace_id"].(string)
	if !ok || workspaceID == "" {
		return errorResult("Error: workspace_id parameter is required and must be a string"), nil
	}
	region, _ := params["region"].(string)

	sc.Logger().Debug("Getting workspace status", "workspaceID", workspaceID)

	status, err := clientForRegion(sc, client, region).WorkspaceStatus(ctx, workspaceID)
	if err != nil {
		sc.Logger().Error("Failed to get workspace status", "error", err, "workspaceID", workspaceID)
		return errorResult(fmt.Sprintf("Error getting status for workspace '%s': %v", workspaceID, err)), nil
	}

	return jsonResult(status), nil
}

// handleGetLabelValues handles the get_label_values tool
func handleGetLabelValues(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	ctx, end := toolSpan(ctx, "get_label_values")
	defer end()
	params := requestParams(request)

	workspaceID, ok := params["workspace_id"].(string)
	if !ok || workspaceID == "" {
		return errorResult("Error: workspace_id parameter is required and must be a string"), nil
	}
	label, ok := params["label"].(string)
	if !ok || label == "" {
		return errorResult("Error: label parameter is required and must be a string"), nil
	}
	region, _ := params["region"].(string)

	sc.Logger().Debug("Getting label values", "workspaceID", workspaceID, "label", label)

	values, err := clientForRegion(sc, client, region).LabelValues(ctx, workspaceID, label)
	if err != nil {
		sc.Logger().Error("Failed to get label values", "error", err, "workspaceID", workspaceID, "label", label)
		return errorResult(fmt.Sprintf("Error getting values for label '%s': %v", label, err)), nil
	}

	return jsonResult(map[string]interface{}{
		"workspace_id": workspaceID,
		"label":        label,
		"result":       values,
	}), nil
}

// handleGetSeries handles the get_series tool
func handleGetSeries(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	ctx, end := toolSpan(ctx, "get_series")
	defer end()
	params := requestParams(request)

	workspaceID, ok := params["workspace_id"].(string)
	if !ok || workspaceID == "" {
		return errorResult("Error: workspace_id parameter is required and must be a string"), nil
	}
	match, ok := params["match"].(string)
	if !ok || match == "" {
		return errorResult("Error: match parameter is required and must be a string"), nil
	}
	region, _ := params["region"].(string)
	startTime, _ := params["start_time"].(string)
	endTime, _ := params["end_time"].(string)

	sc.Logger().Debug("Getting series", "workspaceID", workspaceID, "match", match)

	series, err := clientForRegion(sc, client, region).Series(ctx, workspaceID, []string{match}, startTime, endTime)
	if err != nil {
		sc.Logger().Error("Failed to get series", "error", err, "workspaceID", workspaceID)
		return errorResult(fmt.Sprintf("Error getting series: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"workspace_id": workspaceID,
		"result":       series,
	}), nil
}
