package repoaudit

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/a11y-audit/internal/report"
)

// AuditArgument defines audit parameters.
type AuditArgument struct {
	RepositoryURL string `json:"repository_url" jsonschema_description:"Repository URL (e.g., https://github.com/org/repo)"`
	Format        string `json:"format,omitempty" jsonschema_description:"Report format: json, yaml, sarif or text (default json)"`
}

// AuditHandler handles the audit MCP tool.
type AuditHandler struct {
	service *Service
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(service *Service) *AuditHandler {
	return &AuditHandler{
		service: service,
	}
}

// Handle audits a repository and returns the report.
func (h *AuditHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args AuditArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.RepositoryURL) == "" {
		return errorResult("Repository URL is required"), nil, nil
	}

	format := report.FormatJSON
	if args.Format != "" {
		f, err := report.ParseFormat(args.Format)
		if err != nil {
			return errorResult(fmt.Sprintf("Invalid format: %s", err)), nil, nil
		}
		format = f
	}

	outcome, err := h.service.Audit(ctx, args.RepositoryURL)
	if err != nil {
		return errorResult(describeError(err)), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Audited %s: %d files, %d issues", outcome.Repository.Display(), len(outcome.Run.Results), outcome.Run.TotalIssues())
	if outcome.RunID != "" {
		fmt.Fprintf(&sb, " (run %s)", outcome.RunID)
	}
	sb.WriteString("\n\n")

	if err := report.Write(&sb, format, outcome.Run); err != nil {
		return errorResult(fmt.Sprintf("Failed to render report: %s", err)), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: sb.String()},
		},
	}, nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *AuditHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "audit_repository",
		Description: "Clone a repository and audit its React components for accessibility issues",
	}
}

// RegisterAuditTool registers the audit tool with an MCP server.
func RegisterAuditTool(server *mcp.Server, service *Service) {
	handler := NewAuditHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// describeError returns a user facing message for an audit error.
func describeError(err error) string {
	switch Classify(err) {
	case ClassInvalidInput:
		return fmt.Sprintf("Please provide a valid GitHub repository URL: %s", err)
	case ClassNotFound:
		return "No React component files found in components or pages directories"
	case ClassTimeout:
		return fmt.Sprintf("Audit did not complete: %s", err)
	}
	return fmt.Sprintf("Audit failed: %s", err)
}
