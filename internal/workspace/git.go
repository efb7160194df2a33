package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
)

// Cloner abstracts repository cloning for testing.
type Cloner interface {
	// Clone fetches url into the empty directory dest. A depth of 0 fetches full history.
	Clone(ctx context.Context, url, dest string, depth int) error
}

// GoGitCloner clones repositories in-process with go-git.
type GoGitCloner struct{}

// Clone performs a single-branch clone without tags.
func (GoGitCloner) Clone(ctx context.Context, url, dest string, depth int) error {
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:          url,
		Depth:        depth,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	return err
}

// GitProvider clones each source into a fresh temporary directory.
type GitProvider struct {
	workDir string
	depth   int
	cloner  Cloner
}

// NewGitProvider creates a GitProvider that clones under workDir (the system temp
// directory when empty) with the given history depth.
func NewGitProvider(workDir string, depth int) *GitProvider {
	return NewGitProviderWithCloner(workDir, depth, GoGitCloner{})
}

// NewGitProviderWithCloner creates a GitProvider with a custom cloner (for testing).
func NewGitProviderWithCloner(workDir string, depth int, cloner Cloner) *GitProvider {
	return &GitProvider{
		workDir: workDir,
		depth:   depth,
		cloner:  cloner,
	}
}

// Acquire clones url into a new directory. The directory is removed again if the clone
// fails.
func (p *GitProvider) Acquire(ctx context.Context, url string) (string, error) {
	if p.workDir != "" {
		if err := os.MkdirAll(p.workDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create work directory: %w", err)
		}
	}

	dir, err := os.MkdirTemp(p.workDir, "audit-")
	if err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}

	start := time.Now()
	slog.Info("Cloning repository", "url", url, "path", dir, "depth", p.depth)

	if err := p.cloner.Clone(ctx, url, dir, p.depth); err != nil {
		if rerr := os.RemoveAll(dir); rerr != nil {
			slog.Warn("Failed to clean up workspace", "path", dir, "error", rerr)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("git clone failed: %w", err)
	}

	slog.Info("Repository cloned", "url", url, "duration", time.Since(start).Round(time.Millisecond))
	return dir, nil
}

// Release removes the cloned directory.
func (p *GitProvider) Release(root string) error {
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	return nil
}
