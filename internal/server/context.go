package server

import (
	"context"
	"os"
	"sync"
)

// Logger interface for structured logging
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// AMPConfig holds the Amazon Managed Service for Prometheus configuration.
// Credential fields are optional; when empty, the AWS SDK default provider
// chain (environment, shared profile, instance role) is used instead.
type AMPConfig struct {
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Endpoint overrides the control-plane base URL. Used by tests; leave
	// empty for the regional aps endpoint.
	Endpoint string
}

// ServerContext holds the server configuration and shared resources
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	mutex  sync.RWMutex

	// Configuration
	debugMode bool
	logger    Logger

	// AMP configuration
	ampConfig AMPConfig
}

// ServerOption is a functional option for configuring ServerContext
type ServerOption func(*ServerContext)

// WithDebugMode sets whether debug logging is enabled
func WithDebugMode(enabled bool) ServerOption {
	return func(sc *ServerContext) {
		sc.debugMode = enabled
	}
}

// WithLogger sets the logger for the server context
func WithLogger(logger Logger) ServerOption {
	return func(sc *ServerContext) {
		sc.logger = logger
	}
}

// WithAMPConfig sets the AMP configuration
func WithAMPConfig(config AMPConfig) ServerOption {
	return func(sc *ServerContext) {
		sc.ampConfig = config
	}
}

// NewServerContext creates a new server context with the given options
func NewServerContext(ctx context.Context, opts ...ServerOption) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
	}

	// Apply options
	for _, opt := range opts {
		opt(sc)
	}

	// Set default logger if none provided
	if sc.logger == nil {
		sc.logger = &noopLogger{}
	}

	// Fill AMP configuration from the environment where not provided
	if sc.ampConfig.Region == "" {
		sc.ampConfig.Region = os.Getenv("AWS_REGION")
	}
	if sc.ampConfig.Region == "" {
		sc.ampConfig.Region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if sc.ampConfig.Region == "" {
		sc.ampConfig.Region = "us-east-1"
	}
	if sc.ampConfig.Profile == "" {
		sc.ampConfig.Profile = os.Getenv("AWS_PROFILE")
	}
	if sc.ampConfig.AccessKeyID == "" {
		sc.ampConfig.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
		sc.ampConfig.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
		sc.ampConfig.SessionToken = os.Getenv("AWS_SESSION_TOKEN")
	}

	return sc, nil
}

// Context returns the context associated with the server
func (sc *ServerContext) Context() context.Context {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.ctx
}

// IsDebugMode returns whether debug logging is enabled
func (sc *ServerContext) IsDebugMode() bool {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.debugMode
}

// Logger returns the configured logger
func (sc *ServerContext) Logger() Logger {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.logger
}

// AMPConfig returns the AMP configuration
func (sc *ServerContext) AMPConfig() AMPConfig {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.ampConfig
}

// SetDebugMode dynamically sets whether debug logging is enabled
func (sc *ServerContext) SetDebugMode(enabled bool) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	sc.debugMode = enabled
}

// Shutdown gracefully shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.cancel != nil {
		sc.cancel()
		sc.cancel = nil
	}

	return nil
}

// noopLogger is a logger that does nothing
type noopLogger struct{}

func (l *noopLogger) Debug(msg string, args ...interface{}) {}
func (l *noopLogger) Info(msg string, args ...interface{})  {}
func (l *noopLogger) Warn(msg string, args ...interface{})  {}
func (l *noopLogger) Error(msg string, args ...interface{}) {}
