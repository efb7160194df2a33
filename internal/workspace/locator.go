package workspace

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gitsight/go-vcsurl"
)

var (
	// ErrInvalidLocator indicates the repository locator is empty or cannot be parsed.
	ErrInvalidLocator = errors.New("invalid repository locator")

	// ErrHostNotAllowed indicates the locator points at a host outside the allow-list.
	ErrHostNotAllowed = errors.New("repository host not allowed")
)

// DefaultAllowedHosts lists the hosts accepted when no allow-list is configured.
var DefaultAllowedHosts = []string{"github.com"}

// Locator identifies a remote repository.
type Locator struct {
	// Raw is the locator as supplied by the caller.
	Raw string
	// CloneURL is the HTTPS remote used for cloning.
	CloneURL string
	// Host is the VCS host, e.g. github.com.
	Host string
	// FullName is the repository path on the host, e.g. org/repo.
	FullName string
	// ID is a filesystem-safe identifier, e.g. github.com_org_repo.
	ID string
}

// Display returns host/full-name.
func (l Locator) Display() string {
	return l.Host + "/" + l.FullName
}

// ParseLocator validates raw and resolves it to a Locator. Both HTTPS and SSH forms are
// accepted. Hosts are matched case-insensitively against allowedHosts, which defaults
// to DefaultAllowedHosts when empty.
//
// Examples:
//   - https://github.com/org/repo -> clone https://github.com/org/repo.git, id github.com_org_repo
//   - git@github.com:org/repo.git -> clone https://github.com/org/repo.git, id github.com_org_repo
func ParseLocator(raw string, allowedHosts []string) (Locator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Locator{}, fmt.Errorf("%w: repository URL is required", ErrInvalidLocator)
	}

	info, err := vcsurl.Parse(raw)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}

	host := strings.ToLower(string(info.Host))
	if !hostAllowed(host, allowedHosts) {
		return Locator{}, fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
	}

	cloneURL, err := info.Remote(vcsurl.HTTPS)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}

	fullName := strings.Trim(strings.TrimSuffix(info.FullName, ".git"), "/")
	if fullName == "" {
		return Locator{}, fmt.Errorf("%w: missing repository path", ErrInvalidLocator)
	}

	return Locator{
		Raw:      raw,
		CloneURL: cloneURL,
		Host:     host,
		FullName: fullName,
		ID:       RepoID(host, fullName),
	}, nil
}

// RepoID converts a host and repository path to a filesystem-safe identifier.
func RepoID(host, fullName string) string {
	return sanitizeForFilesystem(host + "/" + fullName)
}

func hostAllowed(host string, allowed []string) bool {
	if len(allowed) == 0 {
		allowed = DefaultAllowedHosts
	}
	return slices.ContainsFunc(allowed, func(h string) bool {
		return strings.EqualFold(strings.TrimSpace(h), host)
	})
}

// sanitizeForFilesystem replaces path separators and other unsafe characters with
// underscores.
func sanitizeForFilesystem(s string) string {
	return strings.NewReplacer("/", "_", ":", "_", "@", "_", "\\", "_").Replace(s)
}
