package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/mcp-amp/internal/observability"
	"github.com/giantswarm/mcp-amp/internal/server"
	"github.com/giantswarm/mcp-amp/internal/tools/amp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const shutdownTimeout = 30 * time.Second

// simpleLogger provides basic logging for the server
type simpleLogger struct{}

func (l *simpleLogger) Debug(msg string, args ...interface{}) {
	log.Printf("[DEBUG] %s %v", msg, args)
}

func (l *simpleLogger) Info(msg string, args ...interface{}) {
	log.Printf("[INFO] %s %v", msg, args)
}

func (l *simpleLogger) Warn(msg string, args ...interface{}) {
	log.Printf("[WARN] %s %v", msg, args)
}

func (l *simpleLogger) Error(msg string, args ...interface{}) {
	log.Printf("[ERROR] %s %v", msg, args)
}

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var (
		debugMode bool

		// AWS options
		region  string
		profile string

		// Tracing options
		tracingEnabled bool
		otlpEndpoint   string

		// Transport options
		transport       string
		httpAddr        string
		sseEndpoint     string
		messageEndpoint string
		httpEndpoint    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP AMP server",
		Long: `Start the MCP AMP server to provide tools for interacting with
Amazon Managed Service for Prometheus via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Environment Variables:
  AWS_REGION / AWS_DEFAULT_REGION - AWS region for AMP API calls
  AWS_PROFILE                     - Shared config profile to use
  AWS_ACCESS_KEY_ID               - Optional: static access key
  AWS_SECRET_ACCESS_KEY           - Optional: static secret key
  AWS_SESSION_TOKEN               - Optional: session token for temporary credentials

When no static credentials are set, the AWS SDK default provider chain
is used (shared config files, SSO, instance roles).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport, debugMode, region, profile,
				tracingEnabled, otlpEndpoint,
				httpAddr, sseEndpoint, messageEndpoint, httpEndpoint)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging (default: false)")

	// AWS flags
	cmd.Flags().StringVar(&region, "region", "", "AWS region for AMP API calls (default: AWS_REGION)")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS shared config profile (default: AWS_PROFILE)")

	// Tracing flags
	cmd.Flags().BoolVar(&tracingEnabled, "tracing-enabled", false, "Enable OpenTelemetry trace export")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "localhost:4318", "OTLP HTTP endpoint for trace export")

	// Transport flags
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&sseEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&messageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	return cmd
}

// runServe contains the main server logic with support for multiple transports
func runServe(transport string, debugMode bool, region, profile string,
	tracingEnabled bool, otlpEndpoint string,
	httpAddr, sseEndpoint, messageEndpoint, httpEndpoint string) error {

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create server context
	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithDebugMode(debugMode),
		server.WithLogger(&simpleLogger{}),
		server.WithAMPConfig(server.AMPConfig{
			Region:  region,
			Profile: profile,
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			log.Printf("Error during server context shutdown: %v", err)
		}
	}()

	// Initialize tracing
	err = observability.Init(shutdownCtx, observability.Config{
		Enabled:     tracingEnabled,
		Endpoint:    otlpEndpoint,
		ServiceName: "mcp-amp",
		Version:     rootCmd.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := observability.Shutdown(context.Background()); err != nil {
			log.Printf("Error during telemetry shutdown: %v", err)
		}
	}()

	// Log configuration. Secret values are never printed.
	config := serverContext.AMPConfig()
	fmt.Printf("AMP configuration:\n")
	fmt.Printf("  Region: %s\n", config.Region)
	if config.Profile != "" {
		fmt.Printf("  Profile: %s\n", config.Profile)
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		fmt.Printf("  Credentials: static\n")
	} else {
		fmt.Printf("  Credentials: default provider chain\n")
	}
	if observability.Enabled() {
		fmt.Printf("  Tracing: enabled (%s)\n", otlpEndpoint)
	}

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("mcp-amp", rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register AMP tools
	if err := amp.RegisterAMPTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register AMP tools: %w", err)
	}

	fmt.Printf("Starting MCP AMP server with %s transport...\n", transport)

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "sse":
		sseServer := mcpserver.NewSSEServer(mcpSrv,
			mcpserver.WithSSEEndpoint(sseEndpoint),
			mcpserver.WithMessageEndpoint(messageEndpoint),
		)
		fmt.Printf("SSE server starting on %s\n", httpAddr)
		fmt.Printf("  SSE endpoint: %s\n", sseEndpoint)
		fmt.Printf("  Message endpoint: %s\n", messageEndpoint)
		return runHTTPServer(shutdownCtx, "SSE", httpAddr,
			sseServer.Start, sseServer.Shutdown)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath(httpEndpoint),
		)
		fmt.Printf("Streamable HTTP server starting on %s\n", httpAddr)
		fmt.Printf("  HTTP endpoint: %s\n", httpEndpoint)
		return runHTTPServer(shutdownCtx, "HTTP", httpAddr,
			httpServer.Start, httpServer.Shutdown)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", transport)
	}
}

// runStdioServer runs the server with STDIO transport
func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	fmt.Println("Server gracefully stopped")
	return nil
}

// runHTTPServer runs an HTTP-based transport until the context is cancelled
// or the listener fails.
func runHTTPServer(ctx context.Context, name, addr string,
	start func(string) error, shutdown func(context.Context) error) error {

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server stopped with error: %w", name, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		fmt.Printf("Shutdown signal received, stopping %s server...\n", name)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down %s server: %w", name, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("%s server gracefully stopped\n", name)
	return nil
}
