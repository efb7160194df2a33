package domain

// IssueDocument represents a single finding stored in the Bleve history index.
type IssueDocument struct {
	// ID is unique per finding.
	// Format: "<run id>/<location>#<ordinal>"
	ID string `json:"id"`

	// RunID identifies the audit run the finding belongs to.
	RunID string `json:"run_id"`

	// Repository is the human-readable repository identifier.
	// Format: "github.com/org/repo"
	Repository string `json:"repository"`

	// File is the path relative to the repository root.
	File string `json:"file"`

	Line       int    `json:"line"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
	Rule       string `json:"rule"`
}

// Bleve field name constants for consistent field references in queries and mappings.
const (
	IssueFieldID         = "id"
	IssueFieldRunID      = "run_id"
	IssueFieldRepository = "repository"
	IssueFieldFile       = "file"
	IssueFieldLine       = "line"
	IssueFieldIssue      = "issue"
	IssueFieldSuggestion = "suggestion"
	IssueFieldRule       = "rule"
)
