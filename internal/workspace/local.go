package workspace

import (
	"context"
	"fmt"
	"path/filepath"
)

// LocalProvider serves directories that already exist on disk.
type LocalProvider struct{}

// NewLocalProvider creates a LocalProvider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Acquire returns the absolute form of source. The directory itself is validated by
// discovery.
func (p *LocalProvider) Acquire(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if source == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidLocator)
	}
	return filepath.Abs(source)
}

// Release is a no-op; local directories are never removed.
func (p *LocalProvider) Release(string) error {
	return nil
}
