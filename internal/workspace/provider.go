package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Provider materializes a source into a local directory.
type Provider interface {
	// Acquire returns the root of a local directory holding the source.
	Acquire(ctx context.Context, source string) (string, error)
	// Release frees a directory returned by Acquire.
	Release(root string) error
}

// With acquires source from p, calls fn with the workspace root and releases the
// workspace exactly once, including when fn fails or panics. A release failure is
// returned only if fn itself succeeded.
func With(ctx context.Context, p Provider, source string, fn func(root string) error) (err error) {
	root, err := p.Acquire(ctx, source)
	if err != nil {
		return err
	}

	defer func() {
		if rerr := p.Release(root); rerr != nil {
			slog.Warn("Failed to release workspace", "path", root, "error", rerr)
			if err == nil {
				err = fmt.Errorf("release workspace: %w", rerr)
			} else {
				err = errors.Join(err, rerr)
			}
		}
	}()

	return fn(root)
}
