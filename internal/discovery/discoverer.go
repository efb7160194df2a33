package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sha1n/a11y-audit/internal/domain"
)

// ErrWorkspaceUnreadable indicates the workspace root is missing or cannot be listed.
var ErrWorkspaceUnreadable = errors.New("workspace root is not readable")

// DefaultRoots are the candidate directories searched, in order, relative to the workspace root.
var DefaultRoots = []string{"components", "pages", "src/components", "src/pages"}

// ReadPolicy controls what happens to a matching file whose content cannot be read.
type ReadPolicy int

const (
	// SkipUnreadable logs a warning and leaves the file out of the result.
	SkipUnreadable ReadPolicy = iota

	// ReportUnreadable keeps the file with ComponentFile.ReadErr set.
	ReportUnreadable
)

// entryKind is the result of classifying one directory entry.
type entryKind int

const (
	kindOther entryKind = iota
	kindFile
	kindDirectory
)

func classify(d fs.DirEntry) entryKind {
	switch {
	case d.IsDir():
		return kindDirectory
	case d.Type().IsRegular():
		return kindFile
	default:
		// symlinks, devices, sockets
		return kindOther
	}
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithRoots overrides the candidate root directories.
func WithRoots(roots ...string) Option {
	return func(d *Discoverer) {
		d.roots = roots
	}
}

// WithFilter overrides the file filter.
func WithFilter(filter *FileFilter) Option {
	return func(d *Discoverer) {
		d.filter = filter
	}
}

// WithReadPolicy sets the policy for unreadable files.
func WithReadPolicy(policy ReadPolicy) Option {
	return func(d *Discoverer) {
		d.policy = policy
	}
}

// WithReadFile replaces the function used to read file content.
func WithReadFile(readFile func(string) ([]byte, error)) Option {
	return func(d *Discoverer) {
		d.readFile = readFile
	}
}

// Discoverer finds UI component source files under a workspace.
type Discoverer struct {
	roots    []string
	filter   *FileFilter
	policy   ReadPolicy
	readFile func(string) ([]byte, error)
}

// New creates a Discoverer with the default roots, filter and skip policy.
func New(opts ...Option) *Discoverer {
	d := &Discoverer{
		roots:    DefaultRoots,
		filter:   NewFileFilter(),
		policy:   SkipUnreadable,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover walks every existing candidate root under workspaceRoot and returns the
// matching files. The order is candidate-root order, then lexical walk order, so
// repeated calls over an unchanged tree return the same sequence.
func (d *Discoverer) Discover(ctx context.Context, workspaceRoot string) ([]domain.ComponentFile, error) {
	info, err := os.Stat(workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspaceUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrWorkspaceUnreadable, workspaceRoot)
	}
	if _, err := os.ReadDir(workspaceRoot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspaceUnreadable, err)
	}

	var files []domain.ComponentFile
	seen := make(map[string]struct{})

	for _, dir := range d.roots {
		root := filepath.Join(workspaceRoot, dir)
		found, err := d.scanRoot(ctx, root, seen)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	return files, nil
}

// scanRoot walks one candidate root. A missing root yields no files and no error.
func (d *Discoverer) scanRoot(ctx context.Context, root string, seen map[string]struct{}) ([]domain.ComponentFile, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	// WalkDir does not descend into a symlinked root, so resolve it once.
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		slog.Warn("Cannot resolve candidate root", "root", root, "error", err)
		return nil, nil
	}

	var files []domain.ComponentFile
	err = filepath.WalkDir(walkRoot, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			slog.Warn("Skipping unreadable path", "path", path, "error", walkErr)
			return nil
		}

		if classify(entry) != kindFile {
			return nil
		}

		relPath, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return nil
		}
		if !d.filter.Include(relPath) {
			return nil
		}

		// Keyed on the resolved path so a root symlinked to another root is not audited twice.
		physical := filepath.Join(walkRoot, relPath)
		if _, dup := seen[physical]; dup {
			return nil
		}
		fullPath := filepath.Join(root, relPath)

		file := domain.ComponentFile{
			Root:     root,
			Path:     filepath.ToSlash(relPath),
			FullPath: fullPath,
		}

		content, err := d.readFile(path)
		if err != nil {
			if d.policy == SkipUnreadable {
				slog.Warn("Skipping unreadable file", "path", fullPath, "error", err)
				return nil
			}
			file.ReadErr = err
		} else {
			file.Content = string(content)
		}

		seen[physical] = struct{}{}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
