package repoaudit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListAuditsArgument takes no parameters.
type ListAuditsArgument struct{}

// ListAuditsHandler lists the latest audit of every repository.
type ListAuditsHandler struct {
	service *Service
}

// NewListAuditsHandler creates a new list handler.
func NewListAuditsHandler(service *Service) *ListAuditsHandler {
	return &ListAuditsHandler{
		service: service,
	}
}

// Handle returns the audit ledger, most recent first.
func (h *ListAuditsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ListAuditsArgument) (*mcp.CallToolResult, any, error) {
	store := h.service.History()
	if store == nil {
		return errorResult("Audit history is disabled."), nil, nil
	}

	records, err := store.Audits()
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to read audit history: %s", err)), nil, nil
	}

	if len(records) == 0 {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: "No audits recorded yet"},
			},
		}, nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d audited repositories:\n\n", len(records))
	for _, rec := range records {
		fmt.Fprintf(&sb, "- %s (%s)\n", rec.Repository, rec.AuditedAt.UTC().Format(time.RFC3339))
		if rec.Error != "" {
			fmt.Fprintf(&sb, "  failed: %s\n", rec.Error)
		} else {
			fmt.Fprintf(&sb, "  %d files, %d issues\n", rec.FileCount, rec.IssueCount)
		}
		fmt.Fprintf(&sb, "  run: %s\n", rec.RunID)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: sb.String()},
		},
	}, nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *ListAuditsHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_audits",
		Description: "List the most recent accessibility audit of every repository",
	}
}

// RegisterListAuditsTool registers the list tool with an MCP server.
func RegisterListAuditsTool(server *mcp.Server, service *Service) {
	handler := NewListAuditsHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

// RegisterTools registers every repository audit tool. Search and history tools are
// registered only when history is enabled.
func RegisterTools(server *mcp.Server, service *Service) {
	RegisterAuditTool(server, service)
	if service.History() != nil {
		RegisterSearchTool(server, service)
		RegisterListAuditsTool(server, service)
	}
}
