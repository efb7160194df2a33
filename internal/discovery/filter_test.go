package discovery

import (
	"testing"
)

func TestNewFileFilter_DefaultExtensions(t *testing.T) {
	filter := NewFileFilter()

	tests := []struct {
		path    string
		include bool
	}{
		{"Button.tsx", true},
		{"Button.jsx", true},
		{"hooks/useFocus.ts", true},
		{"legacy/widget.js", true},
		{"UPPER.TSX", true},
		{"styles.css", false},
		{"README.md", false},
		{"Makefile", false},
		{"component.tsx.bak", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := filter.Include(tt.path); got != tt.include {
				t.Errorf("Include(%q) = %v, want %v", tt.path, got, tt.include)
			}
		})
	}
}

func TestNewFileFilterWithPatterns_NormalizesExtensions(t *testing.T) {
	filter := NewFileFilterWithPatterns([]string{"vue", ".Svelte", " ", ""}, nil)

	if !filter.Include("App.vue") {
		t.Error("Expected .vue to be included")
	}
	if !filter.Include("App.svelte") {
		t.Error("Expected .svelte to be included")
	}
	if filter.Include("App.tsx") {
		t.Error("Expected .tsx to be excluded with a custom allow-list")
	}
	if len(filter.extensions) != 2 {
		t.Errorf("Expected 2 extensions, got %d", len(filter.extensions))
	}
}

func TestFileFilter_ShouldExclude(t *testing.T) {
	filter := NewFileFilterWithPatterns(DefaultExtensions, []string{
		"node_modules/**",
		"*.stories.tsx",
		"__mocks__/**",
		"generated-*.ts",
	})

	tests := []struct {
		path    string
		exclude bool
	}{
		{"node_modules/pkg/index.js", true},
		{"deep/node_modules/pkg/index.js", true},
		{"node_modules", true},
		{"nodemodules/index.js", false},
		{"Button.stories.tsx", true},
		{"ui/Button.STORIES.tsx", true},
		{"Button.tsx", false},
		{"__mocks__/api.ts", true},
		{"generated-client.ts", true},
		{"lib/generated-client.ts", true},
		{"client-generated.ts", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := filter.ShouldExclude(tt.path); got != tt.exclude {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.exclude)
			}
		})
	}
}

func TestFileFilter_NoExclusionsByDefault(t *testing.T) {
	filter := NewFileFilter()

	for _, path := range []string{"node_modules/x.js", "dist/bundle.js", "a.min.js"} {
		if filter.ShouldExclude(path) {
			t.Errorf("ShouldExclude(%q) = true, want false with no patterns", path)
		}
	}
}

func TestFileFilter_IncludeRespectsExclusions(t *testing.T) {
	filter := NewFileFilterWithPatterns(DefaultExtensions, []string{"*.test.tsx"})

	if filter.Include("Nav.test.tsx") {
		t.Error("Expected excluded file not to be included")
	}
	if !filter.Include("Nav.tsx") {
		t.Error("Expected Nav.tsx to be included")
	}
}
