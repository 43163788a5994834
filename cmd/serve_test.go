package cmd

import (
	"strings"
	"testing"
)

func TestNewServeCmdFlags(t *testing.T) {
	cmd := newServeCmd()

	defaults := map[string]string{
		"transport":        "stdio",
		"http-addr":        ":8080",
		"sse-endpoint":     "/sse",
		"message-endpoint": "/message",
		"http-endpoint":    "/mcp",
		"otlp-endpoint":    "localhost:4318",
		"region":           "",
		"profile":          "",
	}
	for name, want := range defaults {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("flag %q not registered", name)
			continue
		}
		if flag.DefValue != want {
			t.Errorf("flag %q default = %q, want %q", name, flag.DefValue, want)
		}
	}
}

// TestRunServeUnsupportedTransport drives runServe through context creation,
// telemetry setup, and tool registration before it rejects the transport.
func TestRunServeUnsupportedTransport(t *testing.T) {
	err := runServe("carrier-pigeon", false, "us-east-1", "",
		false, "localhost:4318",
		":8080", "/sse", "/message", "/mcp")
	if err == nil {
		t.Fatal("expected error for unsupported transport")
	}
	if !strings.Contains(err.Error(), "unsupported transport type") {
		t.Errorf("error = %v, want unsupported transport type", err)
	}
}
