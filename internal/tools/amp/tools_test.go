package amp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-amp/internal/server"
)

func newTestServerContext(t *testing.T, stub *ampStub) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(),
		server.WithAMPConfig(server.AMPConfig{
			Region:          "us-east-1",
			Endpoint:        stub.server.URL,
			AccessKeyID:     "AKIDEXAMPLE",
			SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		}),
		server.WithLogger(&TestLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to create server context: %v", err)
	}
	t.Cleanup(func() { sc.Shutdown() })
	return sc
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("result content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestRegisterAMPTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "1.0.0")

	sc, err := server.NewServerContext(context.Background(),
		server.WithAMPConfig(server.AMPConfig{
			Region: "us-east-1",
		}),
		server.WithLogger(&TestLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to create server context: %v", err)
	}
	defer sc.Shutdown()

	if err := RegisterAMPTools(s, sc); err != nil {
		t.Fatalf("Failed to register tools: %v", err)
	}
}

func TestHandleListWorkspaces(t *testing.T) {
	stub := newAMPStub(t)
	sc := newTestServerContext(t, stub)
	client := NewClient(sc.AMPConfig(), sc.Logger())

	request := callRequest("list_workspaces", map[string]interface{}{})

	result, err := handleListWorkspaces(context.Background(), request, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}

	text := resultText(t, result)
	if !strings.Contains(text, testWorkspaceID) || !strings.Contains(text, testWorkspaceID2) {
		t.Errorf("result missing workspace ids: %s", text)
	}
	if !strings.Contains(text, "page-2-token") {
		t.Errorf("result missing pagination token: %s", text)
	}
}

func TestHandleGetWorkspace(t *testing.T) {
	stub := newAMPStub(t)
	sc := newTestServerContext(t, stub)
	client := NewClient(sc.AMPConfig(), sc.Logger())

	// Valid request
	request := callRequest("get_workspace", map[string]interface{}{
		"workspace_id": testWorkspaceID,
	})

	result, err := handleGetWorkspace(context.Background(), request, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}
	if text := resultText(t, result); !strings.Contains(text, "production") {
		t.Errorf("result missing alias: %s", text)
	}

	// Missing workspace_id parameter
	requestBad := callRequest("get_workspace", map[string]interface{}{})

	result, err = handleGetWorkspace(context.Background(), requestBad, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error for missing workspace_id parameter")
	}

	// Unknown workspace surfaces the not-found error as a tool error
	requestMissing := callRequest("get_workspace", map[string]interface{}{
		"workspace_id": "ws-does-not-exist",
	})

	result, err = handleGetWorkspace(context.Background(), requestMissing, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error for unknown workspace")
	}
}

func TestHandleQueryMetrics(t *testing.T) {
	stub := newAMPStub(t)
	sc := newTestServerContext(t, stub)
	client := NewClient(sc.AMPConfig(), sc.Logger())

	// Valid instant query
	request := callRequest("query_metrics", map[string]interface{}{
		"workspace_id": testWorkspaceID,
		"query":        "up",
	})

	result, err := handleQueryMetrics(context.Background(), request, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}

	// Missing query parameter
	requestBad := callRequest("query_metrics", map[string]interface{}{
		"workspace_id": testWorkspaceID,
	})

	result, err = handleQueryMetrics(context.Background(), requestBad, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error for missing query parameter")
	}

	// start_time without end_time is rejected before any provider call
	requestHalfRange := callRequest("query_metrics", map[string]interface{}{
		"workspace_id": testWorkspaceID,
		"query":        "up",
		"start_time":   "2023-01-01T00:00:00Z",
	})

	result, err = handleQueryMetrics(context.Background(), requestHalfRange, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error for start_time without end_time")
	}
}

func TestHandleQueryMetricsRange(t *testing.T) {
	stub := newAMPStub(t)
	stub.queryResponse = `{"status":"success","data":{"resultType":"matrix","result":[]}}`
	sc := newTestServerContext(t, stub)
	client := NewClient(sc.AMPConfig(), sc.Logger())

	request := callRequest("query_metrics", map[string]interface{}{
		"workspace_id": testWorkspaceID,
		"query":        "rate(http_requests_total[5m])",
		"start_time":   "2023-01-01T00:00:00Z",
		"end_time":     "2023-01-01T01:00:00Z",
		"step":         "1m",
	})

	result, err := handleQueryMetrics(context.Background(), request, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}
	if stub.lastDataPath != "/api/v1/query_range" {
		t.Errorf("data plane path = %q, want /api/v1/query_range", stub.lastDataPath)
	}
	if got := stub.lastQueryParams["step"]; len(got) != 1 || got[0] != "1m" {
		t.Errorf("step = %v, want 1m", got)
	}
}

func TestHandleGetWorkspaceStatus(t *testing.T) {
	stub := newAMPStub(t)
	sc := newTestServerContext(t, stub)
	client := NewClient(sc.AMPConfig(), sc.Logger())

	request := callRequest("get_workspace_status", map[string]interface{}{
		"workspace_id": testWorkspaceID,
	})

	result, err := handleGetWorkspaceStatus(context.Background(), request, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"status": "ACTIVE"`) {
		t.Errorf("result missing status: %s", text)
	}
	if !strings.Contains(text, `"has_endpoint": true`) {
		t.Errorf("result missing endpoint flag: %s", text)
	}
}

func TestHandleGetLabelValues(t *testing.T) {
	stub := newAMPStub(t)
	stub.queryResponse = `{"status":"success","data":["api","worker"]}`
	sc := newTestServerContext(t, stub)
	client := NewClient(sc.AMPConfig(), sc.Logger())

	request := callRequest("get_label_values", map[string]interface{}{
		"workspace_id": testWorkspaceID,
		"label":        "job",
	})

	result, err := handleGetLabelValues(context.Background(), request, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}
	if text := resultText(t, result); !strings.Contains(text, "worker") {
		t.Errorf("result missing label value: %s", text)
	}

	// Missing label parameter
	requestBad := callRequest("get_label_values", map[string]interface{}{
		"workspace_id": testWorkspaceID,
	})

	result, err = handleGetLabelValues(context.Background(), requestBad, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error for missing label parameter")
	}
}

func TestHandleGetSeries(t *testing.T) {
	stub := newAMPStub(t)
	stub.queryResponse = `{"status":"success","data":[{"__name__":"up","job":"api"}]}`
	sc := newTestServerContext(t, stub)
	client := NewClient(sc.AMPConfig(), sc.Logger())

	request := callRequest("get_series", map[string]interface{}{
		"workspace_id": testWorkspaceID,
		"match":        `up{job="api"}`,
	})

	result, err := handleGetSeries(context.Background(), request, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}
	if stub.lastDataPath != "/api/v1/series" {
		t.Errorf("data plane path = %q, want /api/v1/series", stub.lastDataPath)
	}

	// Missing match parameter
	requestBad := callRequest("get_series", map[string]interface{}{
		"workspace_id": testWorkspaceID,
	})

	result, err = handleGetSeries(context.Background(), requestBad, client, sc)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error for missing match parameter")
	}
}
