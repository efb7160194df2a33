package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sha1n/a11y-audit/internal/config"
	"github.com/sha1n/a11y-audit/internal/domain"
	"github.com/sha1n/a11y-audit/internal/repoaudit"
	"github.com/sha1n/a11y-audit/internal/report"
	"github.com/spf13/pflag"
)

// ErrIssuesFound is returned by RunAudit when fail-on-issues is set and the audit
// reported at least one issue.
var ErrIssuesFound = errors.New("accessibility issues found")

// AuditOptions selects what a one-shot audit targets and how the report is written.
type AuditOptions struct {
	// RepositoryURL is cloned and audited unless Path is set.
	RepositoryURL string
	// Path audits a local directory instead of cloning.
	Path         string
	Format       report.Format
	FailOnIssues bool
}

// AuditParams contains dependencies for RunAudit
type AuditParams struct {
	LoadSettings  func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings func(*config.Settings) error
	NewService    func(*config.Settings) (*repoaudit.Service, error)
}

// DefaultAuditParams returns production dependencies
func DefaultAuditParams() AuditParams {
	return AuditParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateSettings,
		NewService:    repoaudit.NewService,
	}
}

// RunAudit runs a single audit and writes the report to out.
func RunAudit(ctx context.Context, params AuditParams, flags *pflag.FlagSet, opts AuditOptions, out io.Writer) error {
	if opts.Path == "" && opts.RepositoryURL == "" {
		return fmt.Errorf("a repository URL or --path is required")
	}

	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ConfigureLogging()

	svc, err := params.NewService(settings)
	if err != nil {
		return fmt.Errorf("failed to create audit service: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			slog.Error("Failed to close audit service", "error", err)
		}
	}()

	var run *domain.AuditRun
	if opts.Path != "" {
		run, err = svc.AuditPath(ctx, opts.Path)
	} else {
		var outcome *repoaudit.Outcome
		outcome, err = svc.Audit(ctx, opts.RepositoryURL)
		if outcome != nil {
			run = outcome.Run
		}
	}
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if err := report.Write(out, opts.Format, run); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.FailOnIssues && run.TotalIssues() > 0 {
		return fmt.Errorf("%w: %d", ErrIssuesFound, run.TotalIssues())
	}
	return nil
}
