package history

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sha1n/a11y-audit/internal/domain"
	"github.com/sha1n/a11y-audit/internal/workspace"
)

const (
	// LockFilename is the name of the ledger lock file.
	LockFilename = "ledger.lock"

	// DefaultLockTimeout bounds how long Record waits for the ledger lock.
	DefaultLockTimeout = 10 * time.Second
)

// Store records audit runs.
type Store struct {
	baseDir     string
	index       *Index
	lock        *FileLock
	lockTimeout time.Duration
	mu          sync.Mutex
	now         func() time.Time
}

// OpenStore opens or creates the history under baseDir.
func OpenStore(baseDir string, lockTimeout time.Duration) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("history base directory cannot be empty")
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	index, err := OpenIndex(baseDir)
	if err != nil {
		return nil, err
	}

	return &Store{
		baseDir:     baseDir,
		index:       index,
		lock:        NewFileLock(filepath.Join(baseDir, LockFilename)),
		lockTimeout: lockTimeout,
		now:         time.Now,
	}, nil
}

// Record stores the outcome of auditing repo and returns the new run ID. Findings are
// indexed only when run is non-nil; auditErr is kept in the ledger.
func (s *Store) Record(ctx context.Context, repo workspace.Locator, run *domain.AuditRun, auditErr error) (string, error) {
	runID := uuid.NewString()

	rec := AuditRecord{
		Repository: repo.Display(),
		URL:        repo.Raw,
		RunID:      runID,
		AuditedAt:  s.now().UTC(),
	}
	if auditErr != nil {
		rec.Error = auditErr.Error()
	}

	if run != nil {
		indexed, err := s.index.Add(runID, repo.Display(), run)
		if err != nil {
			return "", fmt.Errorf("failed to index findings: %w", err)
		}
		rec.FileCount = len(run.Results)
		rec.IssueCount = run.TotalIssues()
		slog.Debug("Indexed findings", "repository", rec.Repository, "run_id", runID, "count", indexed)
	}

	if err := s.updateLedger(ctx, repo.ID, rec); err != nil {
		return "", err
	}
	return runID, nil
}

// Audits returns the latest record of every audited repository, most recent first.
func (s *Store) Audits() ([]AuditRecord, error) {
	ledger, err := LoadLedger(s.ledgerPath())
	if err != nil {
		return nil, err
	}
	return ledger.Records(), nil
}

// Search queries the findings index. See Index.Search.
func (s *Store) Search(ctx context.Context, text, repository string, size int) (*SearchResult, error) {
	return s.index.Search(ctx, text, repository, size)
}

// Close closes the findings index.
func (s *Store) Close() error {
	return s.index.Close()
}

func (s *Store) updateLedger(ctx context.Context, repoID string, rec AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(ctx, s.lockTimeout); err != nil {
		return fmt.Errorf("failed to acquire ledger lock: %w", err)
	}
	defer func() {
		if uerr := s.lock.Unlock(); uerr != nil {
			slog.Error("Failed to unlock ledger", "error", uerr)
		}
	}()

	// Reload under the lock so records written by other processes are kept.
	ledger, err := LoadLedger(s.ledgerPath())
	if err != nil {
		return err
	}
	ledger.Set(repoID, rec)
	return ledger.Save(s.ledgerPath())
}

func (s *Store) ledgerPath() string {
	return filepath.Join(s.baseDir, LedgerFilename)
}
