package repoaudit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sha1n/a11y-audit/internal/audit"
	"github.com/sha1n/a11y-audit/internal/config"
	"github.com/sha1n/a11y-audit/internal/discovery"
	"github.com/sha1n/a11y-audit/internal/domain"
	"github.com/sha1n/a11y-audit/internal/history"
	"github.com/sha1n/a11y-audit/internal/rules"
	"github.com/sha1n/a11y-audit/internal/workspace"
)

// Outcome is the result of auditing one repository.
type Outcome struct {
	Repository workspace.Locator
	Run        *domain.AuditRun
	// RunID is set when the audit was recorded in history.
	RunID string
}

// Service coordinates workspace acquisition, auditing and history.
type Service struct {
	settings *config.Settings
	provider workspace.Provider
	local    workspace.Provider
	auditor  *audit.Auditor
	history  *history.Store
}

// NewService creates a Service from settings. History is opened only when enabled.
func NewService(settings *config.Settings) (*Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}

	var store *history.Store
	if settings.History.Enabled {
		s, err := history.OpenStore(settings.History.BaseDir, settings.History.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		store = s
	}

	provider := workspace.NewGitProvider(settings.Audit.WorkDir, settings.Audit.CloneDepth)
	return NewServiceWithDeps(settings, provider, NewAuditor(settings), store), nil
}

// NewServiceWithDeps creates a Service with explicit collaborators (for testing).
// store may be nil.
func NewServiceWithDeps(settings *config.Settings, provider workspace.Provider, auditor *audit.Auditor, store *history.Store) *Service {
	return &Service{
		settings: settings,
		provider: provider,
		local:    workspace.NewLocalProvider(),
		auditor:  auditor,
		history:  store,
	}
}

// NewAuditor builds the audit pipeline described by settings.
func NewAuditor(settings *config.Settings) *audit.Auditor {
	policy := discovery.SkipUnreadable
	if settings.Audit.ReportUnreadable {
		policy = discovery.ReportUnreadable
	}
	discoverer := discovery.New(
		discovery.WithFilter(discovery.NewFileFilterWithPatterns(discovery.DefaultExtensions, settings.Audit.ExcludePatterns)),
		discovery.WithReadPolicy(policy),
	)
	return audit.NewAuditor(discoverer, NewEngine(settings), settings.Audit.Concurrency)
}

// NewEngine builds the rule engine with the analyzers enabled in settings.
func NewEngine(settings *config.Settings) *rules.Engine {
	var opts []rules.Option
	if settings.Audit.Supplementary.Enabled {
		opts = append(opts, rules.WithSupplementary(rules.NewSeededRandomAnalyzer(settings.Audit.Supplementary.Seed)))
	}
	if a := settings.Analyzer; a.Enabled {
		opts = append(opts, rules.WithExternal(
			rules.NewHTTPAnalyzer(a.URL, a.APIKey, a.Timeout),
			rules.Mode(a.Mode),
			a.Timeout,
		))
	}
	return rules.NewEngine(opts...)
}

// Audit clones the repository at rawURL and audits it. The whole operation is bounded
// by the configured audit timeout.
func (s *Service) Audit(ctx context.Context, rawURL string) (*Outcome, error) {
	loc, err := workspace.ParseLocator(rawURL, s.settings.Audit.AllowedHosts)
	if err != nil {
		return nil, err
	}

	if s.settings.Audit.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Audit.Timeout)
		defer cancel()
	}

	start := time.Now()
	slog.Info("Auditing repository", "repository", loc.Display())

	var run *domain.AuditRun
	err = workspace.With(ctx, s.provider, loc.CloneURL, func(root string) error {
		var runErr error
		run, runErr = s.auditor.Run(ctx, root)
		return runErr
	})

	outcome := &Outcome{Repository: loc, Run: run}
	if s.history != nil {
		outcome.RunID = s.record(loc, run, err)
	}

	if err != nil {
		slog.Warn("Repository audit failed", "repository", loc.Display(), "error", err)
		return nil, err
	}

	slog.Info("Repository audited",
		"repository", loc.Display(),
		"files", len(run.Results),
		"issues", run.TotalIssues(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return outcome, nil
}

// AuditPath audits a directory on the local filesystem. Local audits are not recorded.
func (s *Service) AuditPath(ctx context.Context, path string) (*domain.AuditRun, error) {
	var run *domain.AuditRun
	err := workspace.With(ctx, s.local, path, func(root string) error {
		var runErr error
		run, runErr = s.auditor.Run(ctx, root)
		return runErr
	})
	return run, err
}

// History returns the history store, or nil when history is disabled.
func (s *Service) History() *history.Store {
	return s.history
}

// Settings returns the service settings.
func (s *Service) Settings() *config.Settings {
	return s.settings
}

// Close releases the history store.
func (s *Service) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}

// record stores the outcome in history. Failures are logged and do not fail the audit.
func (s *Service) record(loc workspace.Locator, run *domain.AuditRun, auditErr error) string {
	// The audit context may already be expired; recording gets its own budget.
	ctx, cancel := context.WithTimeout(context.Background(), s.settings.History.LockTimeout+time.Second)
	defer cancel()

	runID, err := s.history.Record(ctx, loc, run, auditErr)
	if err != nil {
		slog.Error("Failed to record audit", "repository", loc.Display(), "error", err)
		return ""
	}
	return runID
}

// ErrorClass classifies an audit error for transport layers.
type ErrorClass int

// Error classes returned by Classify.
const (
	ClassInternal ErrorClass = iota
	ClassInvalidInput
	ClassNotFound
	ClassTimeout
)

// Classify maps an audit error to its class.
func Classify(err error) ErrorClass {
	switch {
	case errors.Is(err, workspace.ErrInvalidLocator), errors.Is(err, workspace.ErrHostNotAllowed):
		return ClassInvalidInput
	case errors.Is(err, audit.ErrNothingToAudit):
		return ClassNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	}
	return ClassInternal
}
