package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initRepo creates a local git repository with a single commit containing files.
func initRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree failed: %v", err)
	}

	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if _, err := wt.Add(filepath.ToSlash(rel)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return dir
}

type failingCloner struct {
	err  error
	dest string
}

func (f *failingCloner) Clone(_ context.Context, _, dest string, _ int) error {
	f.dest = dest
	_ = os.WriteFile(filepath.Join(dest, "partial"), []byte("x"), 0644)
	return f.err
}

func TestGitProvider_CloneAndRelease(t *testing.T) {
	src := initRepo(t, map[string]string{
		"components/Button.tsx": "<button>Go</button>",
		"README.md":             "# demo",
	})
	workDir := filepath.Join(t.TempDir(), "work")

	p := NewGitProvider(workDir, 0)
	root, err := p.Acquire(context.Background(), src)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if filepath.Dir(root) != workDir {
		t.Errorf("Expected workspace under %s, got %s", workDir, root)
	}
	if !strings.HasPrefix(filepath.Base(root), "audit-") {
		t.Errorf("Expected audit- prefix, got %s", filepath.Base(root))
	}

	data, err := os.ReadFile(filepath.Join(root, "components", "Button.tsx"))
	if err != nil {
		t.Fatalf("Cloned file missing: %v", err)
	}
	if string(data) != "<button>Go</button>" {
		t.Errorf("Unexpected content: %q", data)
	}

	if err := p.Release(root); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("Expected workspace to be removed, stat err: %v", err)
	}
}

func TestGitProvider_CloneFailureRemovesDirectory(t *testing.T) {
	workDir := t.TempDir()
	cloner := &failingCloner{err: errors.New("repository not found")}

	_, err := NewGitProviderWithCloner(workDir, 1, cloner).Acquire(context.Background(), "https://github.com/org/missing.git")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.Is(err, cloner.err) {
		t.Errorf("Expected wrapped clone error, got %v", err)
	}

	if _, statErr := os.Stat(cloner.dest); !os.IsNotExist(statErr) {
		t.Errorf("Expected %s to be removed", cloner.dest)
	}
	entries, _ := os.ReadDir(workDir)
	if len(entries) != 0 {
		t.Errorf("Expected empty work dir, got %d entries", len(entries))
	}
}

func TestGitProvider_CancelledClone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cloner := &failingCloner{err: errors.New("interrupted")}

	_, err := NewGitProviderWithCloner(t.TempDir(), 1, cloner).Acquire(ctx, "https://github.com/org/repo.git")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWith_GitProviderCleansUp(t *testing.T) {
	src := initRepo(t, map[string]string{"pages/index.jsx": "<img src=\"a.png\">"})
	p := NewGitProvider(t.TempDir(), 0)

	var root string
	err := With(context.Background(), p, src, func(r string) error {
		root = r
		_, err := os.Stat(filepath.Join(r, "pages", "index.jsx"))
		return err
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("Expected workspace %s to be removed", root)
	}
}
