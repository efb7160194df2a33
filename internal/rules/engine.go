package rules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sha1n/a11y-audit/internal/domain"
)

// Mode controls how external analyzer findings combine with the rule findings.
type Mode string

const (
	// ModeAdditional appends external findings after the rule findings.
	ModeAdditional Mode = "additional"

	// ModeReplace skips the rules and uses only analyzer findings.
	ModeReplace Mode = "replace"
)

// DefaultExternalTimeout bounds a single external analyzer call.
const DefaultExternalTimeout = 30 * time.Second

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces the baseline rule set.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithSupplementary adds analyzers whose findings follow the rule findings.
func WithSupplementary(analyzers ...Analyzer) Option {
	return func(e *Engine) {
		e.supplementary = append(e.supplementary, analyzers...)
	}
}

// WithExternal sets the external analyzer. A non-positive timeout uses DefaultExternalTimeout.
func WithExternal(analyzer Analyzer, mode Mode, timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout <= 0 {
			timeout = DefaultExternalTimeout
		}
		if mode == "" {
			mode = ModeAdditional
		}
		e.external = analyzer
		e.mode = mode
		e.timeout = timeout
	}
}

// Engine evaluates rules and analyzers against a single file.
type Engine struct {
	rules         []Rule
	supplementary []Analyzer
	external      Analyzer
	mode          Mode
	timeout       time.Duration
}

// NewEngine creates an Engine with the baseline rules and no analyzers.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules: Baseline(),
		mode:  ModeAdditional,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate audits one file. It never fails: a rule panic becomes a single synthetic
// finding, and analyzer failures contribute no findings.
func (e *Engine) Evaluate(ctx context.Context, path, content string) domain.AuditResult {
	issues := make([]domain.AccessibilityIssue, 0)

	if e.external == nil || e.mode != ModeReplace {
		found, err := e.applyRules(SplitLines(content))
		if err != nil {
			slog.Warn("Rule evaluation failed", "file", path, "error", err)
			return domain.AuditResult{
				File:   path,
				Issues: []domain.AccessibilityIssue{domain.NewFailureIssue("Audit failed", err)},
			}
		}
		issues = append(issues, found...)
	}

	for _, analyzer := range e.supplementary {
		issues = append(issues, e.analyze(ctx, analyzer, path, content, 0)...)
	}

	if e.external != nil {
		issues = append(issues, e.analyze(ctx, e.external, path, content, e.timeout)...)
	}

	return domain.AuditResult{File: path, Issues: issues}
}

// applyRules runs every rule on every line, in line order then rule order.
func (e *Engine) applyRules(lines []string) (issues []domain.AccessibilityIssue, err error) {
	defer func() {
		if r := recover(); r != nil {
			issues = nil
			err = fmt.Errorf("rule panicked: %v", r)
		}
	}()

	for i, line := range lines {
		for _, rule := range e.rules {
			if rule.Match(line) {
				issues = append(issues, domain.AccessibilityIssue{
					Line:       i + 1,
					Issue:      rule.Issue,
					Suggestion: rule.Suggestion,
					Rule:       rule.ID,
				})
			}
		}
	}
	return issues, nil
}

// analyze calls an analyzer and returns its validated findings, or nil on any failure.
func (e *Engine) analyze(ctx context.Context, analyzer Analyzer, path, content string, timeout time.Duration) []domain.AccessibilityIssue {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := callAnalyzer(ctx, analyzer, path, content)
	if err != nil {
		slog.Warn("Analyzer failed, discarding its findings", "file", path, "error", err)
		return nil
	}

	validated, err := ValidateResult(result)
	if err != nil {
		slog.Warn("Analyzer returned malformed output, discarding its findings", "file", path, "error", err)
		return nil
	}
	return validated.Issues
}

type analyzerOutcome struct {
	result domain.AuditResult
	err    error
}

// callAnalyzer runs the analyzer in its own goroutine so that an implementation that
// ignores ctx cannot hold up the evaluation past the deadline.
func callAnalyzer(ctx context.Context, analyzer Analyzer, path, content string) (domain.AuditResult, error) {
	done := make(chan analyzerOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- analyzerOutcome{err: fmt.Errorf("analyzer panicked: %v", r)}
			}
		}()
		result, err := analyzer.Analyze(ctx, path, content)
		done <- analyzerOutcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return domain.AuditResult{}, ctx.Err()
	}
}
