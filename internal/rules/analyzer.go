package rules

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sha1n/a11y-audit/internal/domain"
)

// Analyzer is a secondary source of findings for one file. Its output is treated as
// untrusted and validated before it is merged.
type Analyzer interface {
	Analyze(ctx context.Context, path, content string) (domain.AuditResult, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, path, content string) (domain.AuditResult, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, path, content string) (domain.AuditResult, error) {
	return f(ctx, path, content)
}

// RandomAnalyzer reports findings that a line-based scan cannot decide, such as focus
// styling and colour contrast, at random lines. It stands in for a heuristic or model
// backed pass and is reproducible for a given seed.
type RandomAnalyzer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAnalyzer creates a RandomAnalyzer drawing from rng.
func NewRandomAnalyzer(rng *rand.Rand) *RandomAnalyzer {
	return &RandomAnalyzer{rng: rng}
}

// NewSeededRandomAnalyzer creates a RandomAnalyzer from a seed. A zero seed uses the
// current time.
func NewSeededRandomAnalyzer(seed int64) *RandomAnalyzer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewRandomAnalyzer(rand.New(rand.NewSource(seed)))
}

// Analyze returns zero, one or two speculative findings.
func (a *RandomAnalyzer) Analyze(_ context.Context, path, content string) (domain.AuditResult, error) {
	lineCount := len(SplitLines(content))
	issues := make([]domain.AccessibilityIssue, 0, 2)

	// rand.Rand is not safe for concurrent use and files are evaluated in parallel.
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rng.Float64() > 0.5 {
		issues = append(issues, domain.AccessibilityIssue{
			Line:       a.rng.Intn(lineCount) + 1,
			Issue:      "Missing focus indicator",
			Suggestion: "Add visible focus styles for keyboard navigation",
			Rule:       RuleMissingFocusIndicator,
		})
	}
	if a.rng.Float64() > 0.7 {
		issues = append(issues, domain.AccessibilityIssue{
			Line:       a.rng.Intn(lineCount) + 1,
			Issue:      "Color contrast may be insufficient",
			Suggestion: "Check color contrast ratio meets WCAG AA standards",
			Rule:       RuleInsufficientContrast,
		})
	}

	return domain.AuditResult{File: path, Issues: issues}, nil
}
