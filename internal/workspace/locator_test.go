package workspace

import (
	"errors"
	"strings"
	"testing"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fullName string
		id       string
	}{
		{"https", "https://github.com/acme/storefront", "acme/storefront", "github.com_acme_storefront"},
		{"https with .git", "https://github.com/acme/storefront.git", "acme/storefront", "github.com_acme_storefront"},
		{"ssh", "git@github.com:acme/storefront.git", "acme/storefront", "github.com_acme_storefront"},
		{"surrounding whitespace", "  https://github.com/acme/storefront  ", "acme/storefront", "github.com_acme_storefront"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseLocator(tt.raw, nil)
			if err != nil {
				t.Fatalf("ParseLocator failed: %v", err)
			}
			if loc.Host != "github.com" {
				t.Errorf("Expected host github.com, got %q", loc.Host)
			}
			if loc.FullName != tt.fullName {
				t.Errorf("Expected full name %q, got %q", tt.fullName, loc.FullName)
			}
			if loc.ID != tt.id {
				t.Errorf("Expected ID %q, got %q", tt.id, loc.ID)
			}
			if !strings.HasPrefix(loc.CloneURL, "https://github.com/acme/storefront") {
				t.Errorf("Unexpected clone URL %q", loc.CloneURL)
			}
			if loc.Display() != "github.com/acme/storefront" {
				t.Errorf("Unexpected display %q", loc.Display())
			}
		})
	}
}

func TestParseLocator_Empty(t *testing.T) {
	for _, raw := range []string{"", "   "} {
		_, err := ParseLocator(raw, nil)
		if !errors.Is(err, ErrInvalidLocator) {
			t.Errorf("ParseLocator(%q): expected ErrInvalidLocator, got %v", raw, err)
		}
	}
}

func TestParseLocator_HostNotAllowed(t *testing.T) {
	_, err := ParseLocator("https://gitlab.com/group/project", nil)
	if !errors.Is(err, ErrHostNotAllowed) {
		t.Errorf("Expected ErrHostNotAllowed, got %v", err)
	}
}

func TestParseLocator_CustomAllowList(t *testing.T) {
	loc, err := ParseLocator("https://gitlab.com/group/project", []string{"github.com", " GitLab.com "})
	if err != nil {
		t.Fatalf("ParseLocator failed: %v", err)
	}
	if loc.ID != "gitlab.com_group_project" {
		t.Errorf("Unexpected ID %q", loc.ID)
	}

	_, err = ParseLocator("https://github.com/acme/app", []string{"gitlab.com"})
	if !errors.Is(err, ErrHostNotAllowed) {
		t.Errorf("Expected ErrHostNotAllowed, got %v", err)
	}
}

func TestRepoID(t *testing.T) {
	if got := RepoID("github.com", "org/sub/repo"); got != "github.com_org_sub_repo" {
		t.Errorf("Unexpected repo ID %q", got)
	}
}
