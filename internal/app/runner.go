package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/a11y-audit/internal/config"
	mcputil "github.com/sha1n/a11y-audit/internal/mcp"
	"github.com/sha1n/a11y-audit/internal/repoaudit"
	"github.com/spf13/pflag"
)

// Server bundles the MCP server with the HTTP audit API served next to it.
type Server struct {
	MCP *mcp.Server
	// API is mounted on the SSE server mux. It may be nil.
	API http.Handler
}

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	StartSSEServer    func(*Server, *config.Settings) error
	CreateServer      func(*config.Settings) (*Server, func(), error)
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:   config.LoadSettingsWithFlags,
		ValidSettings:  config.ValidateSettings,
		StartSSEServer: StartSSEServer,
		CreateServer:   CreateMCPServer,
	}
}

// ConfigureLogging installs the default logger. Logs always go to stderr so stdout stays
// free for the stdio transport and for reports.
func ConfigureLogging() {
	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))
}

// RunWithDeps executes the server with the provided dependencies
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	// Load settings
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Validate settings for conflicting configurations
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ConfigureLogging()

	slog.Info("Starting accessibility audit server", "version", version)
	config.Log(settings)

	server, cleanup, err := params.CreateServer(settings)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Start server
	if settings.Transport == "stdio" {
		// Use custom transport if provided (for testing), otherwise use stdio
		transport := params.CustomIOTransport
		if transport == nil {
			transport = &mcp.StdioTransport{}
		}
		return server.MCP.Run(ctx, transport)
	}

	slog.Info("Starting SSE server", "host", settings.Host, "port", settings.Port)
	return params.StartSSEServer(server, settings)
}

// CreateMCPServer creates the MCP server with registered tools and the audit API
func CreateMCPServer(settings *config.Settings) (*Server, func(), error) {
	svc, err := repoaudit.NewService(settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create audit service: %w", err)
	}

	cleanup := func() {
		if err := svc.Close(); err != nil {
			slog.Error("Failed to close audit service", "error", err)
		}
	}

	mcpServer := mcputil.CreateServer(mcputil.ServerConfig{
		Name:     "a11y-audit",
		Version:  "1.0.0",
		AuditSvc: svc,
	})

	return &Server{MCP: mcpServer, API: repoaudit.NewAPIHandler(svc)}, cleanup, nil
}
