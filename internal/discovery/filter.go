package discovery

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions are the UI component source extensions included by default.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

// FileFilter decides which walked files become component files.
type FileFilter struct {
	extensions map[string]struct{}
	excludes   []string
}

// NewFileFilter creates a filter with the default extension allow-list and no exclusions.
func NewFileFilter() *FileFilter {
	return NewFileFilterWithPatterns(DefaultExtensions, nil)
}

// NewFileFilterWithPatterns creates a filter with custom extensions and exclusion patterns.
// Extensions are matched case-insensitively and may be given with or without the leading dot.
func NewFileFilterWithPatterns(extensions, excludes []string) *FileFilter {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &FileFilter{
		extensions: exts,
		excludes:   excludes,
	}
}

// Include reports whether a file, given by its path relative to the candidate root,
// should be audited.
func (f *FileFilter) Include(relPath string) bool {
	ext := strings.ToLower(filepath.Ext(relPath))
	if _, ok := f.extensions[ext]; !ok {
		return false
	}
	return !f.ShouldExclude(relPath)
}

// ShouldExclude returns true if the path matches any exclusion pattern.
func (f *FileFilter) ShouldExclude(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range f.excludes {
		if matchPattern(pattern, relPath) {
			return true
		}
	}
	return false
}

// matchPattern matches a slash-separated path against a glob pattern.
// Supports "dir/**" for a directory at any depth, "*.ext" for suffixes,
// and filepath.Match syntax against the full path or the base name.
func matchPattern(pattern, path string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
		parts := strings.Split(path, "/")
		// A directory component anywhere but the final (file) segment.
		for _, part := range parts[:len(parts)-1] {
			if part == dir {
				return true
			}
		}
		return false
	}

	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return strings.HasSuffix(strings.ToLower(path), "."+strings.ToLower(suffix))
	}

	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	matched, _ := filepath.Match(pattern, filepath.Base(path))
	return matched
}
