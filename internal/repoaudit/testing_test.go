package repoaudit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sha1n/a11y-audit/internal/config"
	"github.com/sha1n/a11y-audit/internal/history"
)

const testRepoURL = "https://github.com/acme/storefront"

// dirProvider hands out a fixed directory instead of cloning.
type dirProvider struct {
	root     string
	err      error
	acquired []string
	released int
}

func (p *dirProvider) Acquire(ctx context.Context, source string) (string, error) {
	p.acquired = append(p.acquired, source)
	if p.err != nil {
		return "", p.err
	}
	return p.root, nil
}

func (p *dirProvider) Release(string) error {
	p.released++
	return nil
}

func testSettings(t *testing.T, historyEnabled bool) *config.Settings {
	t.Helper()
	return &config.Settings{
		Transport: "stdio",
		Auth:      config.AuthSettings{Type: config.AuthTypeNone},
		Audit: config.AuditSettings{
			Concurrency:  2,
			Timeout:      time.Minute,
			CloneDepth:   1,
			AllowedHosts: []string{"github.com"},
		},
		Analyzer: config.AnalyzerSettings{Mode: config.AnalyzerModeAdditional},
		History: config.HistorySettings{
			Enabled:     historyEnabled,
			BaseDir:     filepath.Join(t.TempDir(), "history"),
			MaxResults:  20,
			LockTimeout: time.Second,
		},
	}
}

// writeWorkspace creates a workspace with two components: one with an input missing a
// label and an image missing alt text, and one clean component.
func writeWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"components/Form.tsx":  "<form>\n<input type=\"text\">\n<img src=\"logo.png\">\n</form>",
		"components/Clean.tsx": "<img src=\"a.png\" alt=\"A\">",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
	}
	return root
}

// newTestService creates a Service over a fixture workspace.
func newTestService(t *testing.T, historyEnabled bool) (*Service, *dirProvider) {
	t.Helper()
	settings := testSettings(t, historyEnabled)

	var store *history.Store
	if historyEnabled {
		s, err := history.OpenStore(settings.History.BaseDir, settings.History.LockTimeout)
		if err != nil {
			t.Fatalf("Failed to open history: %v", err)
		}
		store = s
	}

	provider := &dirProvider{root: writeWorkspace(t)}
	svc := NewServiceWithDeps(settings, provider, NewAuditor(settings), store)
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Errorf("Failed to close service: %v", err)
		}
	})
	return svc, provider
}
