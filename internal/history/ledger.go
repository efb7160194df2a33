package history

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	// LedgerVersion is the current schema version.
	LedgerVersion = 1

	// LedgerFilename is the ledger file name under the history base dir.
	LedgerFilename = "ledger.json"
)

// Ledger records the most recent audit of every repository.
type Ledger struct {
	Version int                    `json:"version"`
	Repos   map[string]AuditRecord `json:"repos"`
}

// AuditRecord summarizes one audit run of a repository.
type AuditRecord struct {
	Repository string    `json:"repository"`
	URL        string    `json:"url"`
	RunID      string    `json:"run_id"`
	AuditedAt  time.Time `json:"audited_at"`
	FileCount  int       `json:"file_count"`
	IssueCount int       `json:"issue_count"`
	Error      string    `json:"error,omitempty"`
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Version: LedgerVersion,
		Repos:   make(map[string]AuditRecord),
	}
}

// LoadLedger reads a ledger from disk. A missing file yields an empty ledger.
func LoadLedger(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLedger(), nil
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}
	if ledger.Repos == nil {
		ledger.Repos = make(map[string]AuditRecord)
	}
	return &ledger, nil
}

// Save writes the ledger through a temporary file and a rename so readers never see a
// partial file.
func (l *Ledger) Save(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename ledger file: %w", err)
	}
	return nil
}

// Set replaces the record of a repository.
func (l *Ledger) Set(repoID string, rec AuditRecord) {
	l.Repos[repoID] = rec
}

// Get returns the record of a repository.
func (l *Ledger) Get(repoID string) (AuditRecord, bool) {
	rec, ok := l.Repos[repoID]
	return rec, ok
}

// Records returns all records, most recent first.
func (l *Ledger) Records() []AuditRecord {
	records := make([]AuditRecord, 0, len(l.Repos))
	for _, rec := range l.Repos {
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b AuditRecord) int {
		if c := b.AuditedAt.Compare(a.AuditedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Repository, b.Repository)
	})
	return records
}

