package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sha1n/a11y-audit/internal/domain"
)

// ErrInvalidAnalyzerOutput indicates analyzer output that does not match the result schema.
var ErrInvalidAnalyzerOutput = errors.New("invalid analyzer output")

// resultSchema describes the {file, issues:[{line, issue, suggestion}]} shape every
// analyzer must produce.
var resultSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"file", "issues"},
	Properties: map[string]*jsonschema.Schema{
		"file": {Type: "string"},
		"issues": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type:     "object",
				Required: []string{"line", "issue", "suggestion"},
				Properties: map[string]*jsonschema.Schema{
					"line":       {Type: "integer"},
					"issue":      {Type: "string"},
					"suggestion": {Type: "string"},
					"rule":       {Type: "string"},
				},
			},
		},
	},
}

var resolvedSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	return resultSchema.Resolve(nil)
})

// DecodeResult parses raw analyzer output and validates it against the result schema.
func DecodeResult(raw []byte) (domain.AuditResult, error) {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return domain.AuditResult{}, fmt.Errorf("%w: %v", ErrInvalidAnalyzerOutput, err)
	}

	resolved, err := resolvedSchema()
	if err != nil {
		return domain.AuditResult{}, fmt.Errorf("failed to resolve result schema: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return domain.AuditResult{}, fmt.Errorf("%w: %v", ErrInvalidAnalyzerOutput, err)
	}

	var result domain.AuditResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.AuditResult{}, fmt.Errorf("%w: %v", ErrInvalidAnalyzerOutput, err)
	}

	for i, issue := range result.Issues {
		if strings.TrimSpace(issue.Issue) == "" || strings.TrimSpace(issue.Suggestion) == "" {
			return domain.AuditResult{}, fmt.Errorf("%w: issue %d has empty text", ErrInvalidAnalyzerOutput, i)
		}
	}
	if result.Issues == nil {
		result.Issues = []domain.AccessibilityIssue{}
	}

	return result, nil
}

// ValidateResult runs an in-process analyzer result through the same checks as raw output.
func ValidateResult(result domain.AuditResult) (domain.AuditResult, error) {
	if result.Issues == nil {
		result.Issues = []domain.AccessibilityIssue{}
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return domain.AuditResult{}, fmt.Errorf("%w: %v", ErrInvalidAnalyzerOutput, err)
	}
	return DecodeResult(raw)
}
