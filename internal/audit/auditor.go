package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/sha1n/a11y-audit/internal/discovery"
	"github.com/sha1n/a11y-audit/internal/domain"
)

var (
	// ErrWorkspaceUnreadable indicates the workspace root is missing or cannot be read.
	ErrWorkspaceUnreadable = discovery.ErrWorkspaceUnreadable

	// ErrNothingToAudit indicates that discovery found no component files.
	ErrNothingToAudit = errors.New("no component files found in components or pages directories")
)

// DefaultConcurrency is the maximum number of files evaluated at once.
const DefaultConcurrency = 8

// Discoverer enumerates the component files of a workspace.
type Discoverer interface {
	Discover(ctx context.Context, workspaceRoot string) ([]domain.ComponentFile, error)
}

// Evaluator audits a single file.
type Evaluator interface {
	Evaluate(ctx context.Context, path, content string) domain.AuditResult
}

// Auditor runs an Evaluator over every discovered file of a workspace.
type Auditor struct {
	discoverer  Discoverer
	evaluator   Evaluator
	concurrency int
}

// NewAuditor creates an Auditor. A non-positive concurrency evaluates all files at once.
func NewAuditor(discoverer Discoverer, evaluator Evaluator, concurrency int) *Auditor {
	return &Auditor{
		discoverer:  discoverer,
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// Run audits the workspace. Results are returned in discovery order regardless of the
// order in which evaluations complete. If ctx is cancelled, Run returns ctx.Err()
// without waiting for in-flight evaluations and discards their results.
func (a *Auditor) Run(ctx context.Context, workspaceRoot string) (*domain.AuditRun, error) {
	start := time.Now()

	files, err := a.discoverer.Discover(ctx, workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNothingToAudit
	}

	slog.Info("Auditing component files", "count", len(files))

	limit := a.concurrency
	if limit <= 0 || limit > len(files) {
		limit = len(files)
	}

	// Every task owns exactly one slot, so no two goroutines write the same memory.
	results := make([]domain.AuditResult, len(files))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, file domain.ComponentFile) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			results[i] = a.evaluate(ctx, file)
			results[i].Location = location(workspaceRoot, file)
		}(i, file)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	// Evaluations may have observed cancellation and returned early.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := &domain.AuditRun{Results: results}
	slog.Info("Audit complete",
		"files", len(results),
		"issues", run.TotalIssues(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return run, nil
}

// evaluate audits one file, converting read errors and evaluator panics into a
// synthetic finding for that file.
func (a *Auditor) evaluate(ctx context.Context, file domain.ComponentFile) (result domain.AuditResult) {
	if file.ReadErr != nil {
		return domain.AuditResult{
			File:   file.Path,
			Issues: []domain.AccessibilityIssue{domain.NewFailureIssue("Failed to read file", file.ReadErr)},
		}
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("File audit panicked", "file", file.FullPath, "panic", r)
			result = domain.AuditResult{
				File:   file.Path,
				Issues: []domain.AccessibilityIssue{domain.NewFailureIssue("Audit failed", fmt.Errorf("%v", r))},
			}
		}
	}()

	result = a.evaluator.Evaluate(ctx, file.Path, file.Content)
	result.File = file.Path
	if result.Issues == nil {
		result.Issues = []domain.AccessibilityIssue{}
	}
	return result
}

// location returns the slash-separated path of file relative to the workspace root.
func location(workspaceRoot string, file domain.ComponentFile) string {
	rel, err := filepath.Rel(workspaceRoot, file.FullPath)
	if err != nil {
		return file.Path
	}
	return filepath.ToSlash(rel)
}
