package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sha1n/a11y-audit/internal/domain"
)

const promptTemplate = `You are an accessibility expert. Audit the following React component for accessibility issues based on WCAG 2.1 Level AA. List each issue with line number, description, and suggestion for fix.

File: %s
Content:
%s

Please respond with a JSON object in this format:
{
  "file": "%s",
  "issues": [
    {
      "line": 12,
      "issue": "Missing label on input",
      "suggestion": "Wrap the input in a <label> element or use aria-label."
    }
  ]
}`

// BuildPrompt renders the instruction sent to a model-backed analyzer for one file.
func BuildPrompt(path, content string) string {
	return fmt.Sprintf(promptTemplate, path, content, path)
}

// analyzeRequest is the body posted to the analyzer endpoint.
type analyzeRequest struct {
	File    string `json:"file"`
	Content string `json:"content"`
	Prompt  string `json:"prompt"`
}

// HTTPAnalyzer delegates analysis to a remote endpoint. The endpoint receives the file
// and a prompt and must answer with an AuditResult JSON body.
type HTTPAnalyzer struct {
	client   *resty.Client
	endpoint string
}

// NewHTTPAnalyzer creates an analyzer posting to endpoint. apiKey, when set, is sent as
// a bearer token.
func NewHTTPAnalyzer(endpoint, apiKey string, timeout time.Duration) *HTTPAnalyzer {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &HTTPAnalyzer{
		client:   client,
		endpoint: endpoint,
	}
}

// Analyze posts the file to the endpoint and decodes the validated response.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, path, content string) (domain.AuditResult, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(analyzeRequest{
			File:    path,
			Content: content,
			Prompt:  BuildPrompt(path, content),
		}).
		Post(a.endpoint)
	if err != nil {
		return domain.AuditResult{}, fmt.Errorf("analyzer request failed: %w", err)
	}
	if resp.IsError() {
		return domain.AuditResult{}, fmt.Errorf("analyzer returned status %d", resp.StatusCode())
	}

	return DecodeResult(resp.Body())
}
