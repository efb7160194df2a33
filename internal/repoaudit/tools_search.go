package repoaudit

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/a11y-audit/internal/history"
)

// SearchArgument defines finding search parameters.
type SearchArgument struct {
	Query      string `json:"query" jsonschema_description:"Text to match against issue descriptions and suggestions"`
	Repository string `json:"repository,omitempty" jsonschema_description:"Filter by repository name (e.g., github.com/org/repo)"`
}

// SearchHandler handles the finding search MCP tool.
type SearchHandler struct {
	service *Service
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service *Service) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// Handle searches recorded findings.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	store := h.service.History()
	if store == nil {
		return errorResult("Search is not available. Audit history is disabled."), nil, nil
	}

	if strings.TrimSpace(args.Query) == "" {
		return errorResult("Query cannot be empty"), nil, nil
	}

	results, err := store.Search(ctx, args.Query, strings.TrimSpace(args.Repository), h.service.Settings().History.MaxResults)
	if err != nil {
		return errorResult(fmt.Sprintf("Search failed: %s", err)), nil, nil
	}

	return formatSearchResults(results, args.Query), nil, nil
}

func formatSearchResults(results *history.SearchResult, queryStr string) *mcp.CallToolResult {
	if results.Total == 0 {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("No findings found for query: %s", queryStr)},
			},
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d findings for '%s':\n\n", results.Total, queryStr)

	for i, hit := range results.Hits {
		fmt.Fprintf(&sb, "### %d. %s:%s", i+1, hit.Repository, hit.File)
		if hit.Line > 0 {
			fmt.Fprintf(&sb, ":%d", hit.Line)
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "**Issue**: %s\n", hit.Issue)
		fmt.Fprintf(&sb, "**Suggestion**: %s\n", hit.Suggestion)
		if hit.Rule != "" {
			fmt.Fprintf(&sb, "**Rule**: %s\n", hit.Rule)
		}
		fmt.Fprintf(&sb, "**Run**: %s\n\n", hit.RunID)
	}

	if results.Total > uint64(len(results.Hits)) {
		fmt.Fprintf(&sb, "... and %d more findings\n", results.Total-uint64(len(results.Hits)))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: sb.String()},
		},
	}
}

// GetToolDefinition returns the MCP tool definition.
func (h *SearchHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_findings",
		Description: "Search accessibility findings recorded by previous audits using full-text search",
	}
}

// RegisterSearchTool registers the search tool with an MCP server.
func RegisterSearchTool(server *mcp.Server, service *Service) {
	handler := NewSearchHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
