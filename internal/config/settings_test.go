package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// validSettings returns settings that pass validation with stdio transport and no auth.
func validSettings() *Settings {
	return &Settings{
		Transport: "stdio",
		Auth:      AuthSettings{Type: AuthTypeNone},
		Audit: AuditSettings{
			Concurrency:  8,
			Timeout:      time.Minute,
			CloneDepth:   1,
			AllowedHosts: []string{"github.com"},
		},
		Analyzer: AnalyzerSettings{Mode: AnalyzerModeAdditional},
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	_ = os.Unsetenv("A11Y_AUDIT_PORT")
	_ = os.Unsetenv("A11Y_AUDIT_AUTH_TYPE")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", settings.Port)
	}
	if settings.Auth.Type != AuthTypeNone {
		t.Errorf("Expected default auth type '%s', got '%s'", AuthTypeNone, settings.Auth.Type)
	}
	if settings.Transport != "stdio" {
		t.Errorf("Expected default transport 'stdio', got '%s'", settings.Transport)
	}
	if settings.Host != "0.0.0.0" {
		t.Errorf("Expected default host '0.0.0.0', got '%s'", settings.Host)
	}
	if err := ValidateSettings(settings); err != nil {
		t.Errorf("Expected defaults to be valid, got: %v", err)
	}
}

func TestLoadSettings_AuditDefaults(t *testing.T) {
	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	a := settings.Audit
	if a.WorkDir != "" {
		t.Errorf("Expected empty work dir, got %q", a.WorkDir)
	}
	if a.Concurrency != 8 {
		t.Errorf("Expected concurrency 8, got %d", a.Concurrency)
	}
	if a.Timeout != 5*time.Minute {
		t.Errorf("Expected timeout 5m, got %v", a.Timeout)
	}
	if a.CloneDepth != 1 {
		t.Errorf("Expected clone depth 1, got %d", a.CloneDepth)
	}
	if len(a.AllowedHosts) != 1 || a.AllowedHosts[0] != "github.com" {
		t.Errorf("Expected allowed hosts [github.com], got %v", a.AllowedHosts)
	}
	if a.ReportUnreadable {
		t.Error("Expected report_unreadable to default to false")
	}
	if a.Supplementary.Enabled {
		t.Error("Expected supplementary analyzer to be disabled by default")
	}
}

func TestLoadSettings_AnalyzerAndHistoryDefaults(t *testing.T) {
	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Analyzer.Enabled {
		t.Error("Expected analyzer to be disabled by default")
	}
	if settings.Analyzer.Mode != AnalyzerModeAdditional {
		t.Errorf("Expected analyzer mode additional, got %q", settings.Analyzer.Mode)
	}
	if settings.Analyzer.Timeout != 30*time.Second {
		t.Errorf("Expected analyzer timeout 30s, got %v", settings.Analyzer.Timeout)
	}

	if settings.History.Enabled {
		t.Error("Expected history to be disabled by default")
	}
	if settings.History.MaxResults != 20 {
		t.Errorf("Expected history max results 20, got %d", settings.History.MaxResults)
	}
	if settings.History.LockTimeout != 10*time.Second {
		t.Errorf("Expected lock timeout 10s, got %v", settings.History.LockTimeout)
	}
	if !strings.HasSuffix(settings.History.BaseDir, ".a11y-audit") {
		t.Errorf("Expected base dir to end with .a11y-audit, got %q", settings.History.BaseDir)
	}
}

func TestLoadSettings_EnvVars(t *testing.T) {
	t.Setenv("A11Y_AUDIT_PORT", "9090")
	t.Setenv("A11Y_AUDIT_AUTH_TYPE", "basic")
	t.Setenv("A11Y_AUDIT_AUTH_BASIC_USERNAME", "admin")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", settings.Port)
	}
	if settings.Auth.Type != AuthTypeBasic {
		t.Errorf("Expected auth type '%s', got '%s'", AuthTypeBasic, settings.Auth.Type)
	}
	if settings.Auth.Basic.Username != "admin" {
		t.Errorf("Expected username 'admin', got '%s'", settings.Auth.Basic.Username)
	}
}

func TestLoadSettings_AuditEnvVars(t *testing.T) {
	t.Setenv("A11Y_AUDIT_WORK_DIR", "/var/tmp/audits")
	t.Setenv("A11Y_AUDIT_CONCURRENCY", "3")
	t.Setenv("A11Y_AUDIT_TIMEOUT", "90s")
	t.Setenv("A11Y_AUDIT_CLONE_DEPTH", "0")
	t.Setenv("A11Y_AUDIT_REPORT_UNREADABLE", "true")
	t.Setenv("A11Y_AUDIT_SUPPLEMENTARY_ENABLED", "true")
	t.Setenv("A11Y_AUDIT_SUPPLEMENTARY_SEED", "42")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	a := settings.Audit
	if a.WorkDir != "/var/tmp/audits" {
		t.Errorf("Expected work dir /var/tmp/audits, got %q", a.WorkDir)
	}
	if a.Concurrency != 3 {
		t.Errorf("Expected concurrency 3, got %d", a.Concurrency)
	}
	if a.Timeout != 90*time.Second {
		t.Errorf("Expected timeout 90s, got %v", a.Timeout)
	}
	if a.CloneDepth != 0 {
		t.Errorf("Expected clone depth 0, got %d", a.CloneDepth)
	}
	if !a.ReportUnreadable {
		t.Error("Expected report_unreadable true")
	}
	if !a.Supplementary.Enabled || a.Supplementary.Seed != 42 {
		t.Errorf("Expected supplementary enabled with seed 42, got %+v", a.Supplementary)
	}
}

func TestLoadSettings_AnalyzerEnvVars(t *testing.T) {
	t.Setenv("A11Y_AUDIT_ANALYZER_ENABLED", "true")
	t.Setenv("A11Y_AUDIT_ANALYZER_URL", "http://localhost:9000/analyze")
	t.Setenv("A11Y_AUDIT_ANALYZER_API_KEY", "sk-test")
	t.Setenv("A11Y_AUDIT_ANALYZER_MODE", "replace")
	t.Setenv("A11Y_AUDIT_ANALYZER_TIMEOUT", "5s")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	a := settings.Analyzer
	if !a.Enabled {
		t.Error("Expected analyzer enabled")
	}
	if a.URL != "http://localhost:9000/analyze" {
		t.Errorf("Unexpected URL %q", a.URL)
	}
	if a.APIKey != "sk-test" {
		t.Errorf("Unexpected API key %q", a.APIKey)
	}
	if a.Mode != AnalyzerModeReplace {
		t.Errorf("Expected mode replace, got %q", a.Mode)
	}
	if a.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", a.Timeout)
	}
}

func TestLoadSettings_HistoryEnvVars(t *testing.T) {
	t.Setenv("A11Y_AUDIT_HISTORY_ENABLED", "true")
	t.Setenv("A11Y_AUDIT_HISTORY_BASE_DIR", "/data/history")
	t.Setenv("A11Y_AUDIT_HISTORY_MAX_RESULTS", "50")
	t.Setenv("A11Y_AUDIT_HISTORY_LOCK_TIMEOUT", "2s")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	h := settings.History
	if !h.Enabled || h.BaseDir != "/data/history" || h.MaxResults != 50 || h.LockTimeout != 2*time.Second {
		t.Errorf("Unexpected history settings: %+v", h)
	}
}

func TestLoadSettings_APIKeys_EnvVar(t *testing.T) {
	t.Setenv("A11Y_AUDIT_AUTH_API_KEYS", "key1, key2,key3")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	want := []string{"key1", "key2", "key3"}
	if len(settings.Auth.APIKeys) != len(want) {
		t.Fatalf("Expected 3 API keys, got %d", len(settings.Auth.APIKeys))
	}
	for i, key := range want {
		if settings.Auth.APIKeys[i] != key {
			t.Errorf("Expected %s, got '%s'", key, settings.Auth.APIKeys[i])
		}
	}
}

func TestLoadSettings_APIKeys_SingleKey(t *testing.T) {
	t.Setenv("A11Y_AUDIT_AUTH_API_KEYS", "singlekey")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if len(settings.Auth.APIKeys) != 1 {
		t.Fatalf("Expected 1 API key, got %d", len(settings.Auth.APIKeys))
	}
	if settings.Auth.APIKeys[0] != "singlekey" {
		t.Errorf("Expected singlekey, got '%s'", settings.Auth.APIKeys[0])
	}
}

func TestLoadSettings_AllowedHostsTrimAndFilter(t *testing.T) {
	t.Setenv("A11Y_AUDIT_ALLOWED_HOSTS", " github.com , ,gitlab.com ")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	hosts := settings.Audit.AllowedHosts
	if len(hosts) != 2 || hosts[0] != "github.com" || hosts[1] != "gitlab.com" {
		t.Errorf("Expected [github.com gitlab.com], got %q", hosts)
	}
}

func TestLoadSettings_ExcludePatterns(t *testing.T) {
	t.Setenv("A11Y_AUDIT_EXCLUDE_PATTERNS", "**/*.test.tsx, stories/**")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	patterns := settings.Audit.ExcludePatterns
	if len(patterns) != 2 || patterns[0] != "**/*.test.tsx" || patterns[1] != "stories/**" {
		t.Errorf("Unexpected exclude patterns %q", patterns)
	}
}

func TestLoadSettings_EnvFile(t *testing.T) {
	content := []byte("host=127.0.0.2\nport=7000")
	tmpEnv := ".env"
	if err := os.WriteFile(tmpEnv, content, 0644); err != nil {
		t.Fatalf("Failed to create .env file: %v", err)
	}
	defer func() { _ = os.Remove(tmpEnv) }()

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Host != "127.0.0.2" {
		t.Errorf("Expected host 127.0.0.2, got %s", settings.Host)
	}
	if settings.Port != 7000 {
		t.Errorf("Expected port 7000, got %d", settings.Port)
	}
}

func TestLoadSettings_InvalidConfig(t *testing.T) {
	t.Setenv("A11Y_AUDIT_PORT", "not-a-number")

	_, err := LoadSettings()
	if err == nil {
		t.Fatal("Expected error for invalid port type")
	}
}

func TestLoadSettings_HistoryBaseDirExpandHome(t *testing.T) {
	t.Setenv("A11Y_AUDIT_HISTORY_BASE_DIR", "~/audits")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "audits"); settings.History.BaseDir != want {
		t.Errorf("Expected %s, got %s", want, settings.History.BaseDir)
	}
}

func TestLoadSettingsWithFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("A11Y_AUDIT_PORT", "9090")
	t.Setenv("A11Y_AUDIT_TRANSPORT", "sse")
	t.Setenv("A11Y_AUDIT_CONCURRENCY", "2")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("transport", "", "")
	flags.Int("concurrency", 0, "")
	_ = flags.Set("port", "7777")
	_ = flags.Set("transport", "stdio")
	_ = flags.Set("concurrency", "16")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 7777 {
		t.Errorf("Expected CLI port 7777, got %d", settings.Port)
	}
	if settings.Transport != "stdio" {
		t.Errorf("Expected CLI transport 'stdio', got '%s'", settings.Transport)
	}
	if settings.Audit.Concurrency != 16 {
		t.Errorf("Expected CLI concurrency 16, got %d", settings.Audit.Concurrency)
	}
}

func TestLoadSettingsWithFlags_UnsetFlagsKeepDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("concurrency", 0, "")
	flags.Duration("timeout", 0, "")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Audit.Concurrency != 8 {
		t.Errorf("Expected default concurrency 8, got %d", settings.Audit.Concurrency)
	}
	if settings.Audit.Timeout != 5*time.Minute {
		t.Errorf("Expected default timeout 5m, got %v", settings.Audit.Timeout)
	}
}

func TestLoadSettingsWithFlags_AllFlagTypes(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("transport", "", "")
	flags.String("host", "", "")
	flags.Int("port", 0, "")
	flags.String("auth-type", "", "")
	flags.String("auth-basic-username", "", "")
	flags.String("auth-basic-password", "", "")
	flags.StringSlice("auth-api-keys", nil, "")
	flags.Duration("timeout", 0, "")
	flags.Bool("analyzer-enabled", false, "")
	flags.String("analyzer-url", "", "")
	flags.Bool("history-enabled", false, "")
	flags.String("history-base-dir", "", "")

	_ = flags.Set("transport", "sse")
	_ = flags.Set("host", "localhost")
	_ = flags.Set("port", "3000")
	_ = flags.Set("auth-type", "basic")
	_ = flags.Set("auth-basic-username", "testuser")
	_ = flags.Set("auth-basic-password", "testpass")
	_ = flags.Set("timeout", "45s")
	_ = flags.Set("analyzer-enabled", "true")
	_ = flags.Set("analyzer-url", "http://analyzer")
	_ = flags.Set("history-enabled", "true")
	_ = flags.Set("history-base-dir", "/tmp/history")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Transport != "sse" {
		t.Errorf("Expected transport 'sse', got '%s'", settings.Transport)
	}
	if settings.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", settings.Host)
	}
	if settings.Port != 3000 {
		t.Errorf("Expected port 3000, got %d", settings.Port)
	}
	if settings.Auth.Basic.Username != "testuser" || settings.Auth.Basic.Password != "testpass" {
		t.Errorf("Unexpected basic auth %+v", settings.Auth.Basic)
	}
	if settings.Audit.Timeout != 45*time.Second {
		t.Errorf("Expected timeout 45s, got %v", settings.Audit.Timeout)
	}
	if !settings.Analyzer.Enabled || settings.Analyzer.URL != "http://analyzer" {
		t.Errorf("Unexpected analyzer settings %+v", settings.Analyzer)
	}
	if !settings.History.Enabled || settings.History.BaseDir != "/tmp/history" {
		t.Errorf("Unexpected history settings %+v", settings.History)
	}
	if err := ValidateSettings(settings); err != nil {
		t.Errorf("Expected settings to be valid, got: %v", err)
	}
}

// --- ValidateSettings Tests ---

func TestValidateSettings_Transport(t *testing.T) {
	for _, transport := range []string{"stdio", "sse"} {
		s := validSettings()
		s.Transport = transport
		if err := ValidateSettings(s); err != nil {
			t.Errorf("Expected transport %q to be valid, got: %v", transport, err)
		}
	}

	s := validSettings()
	s.Transport = "websocket"
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for invalid transport")
	}
	if !strings.Contains(err.Error(), "transport must be") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestValidateSettings_Auth(t *testing.T) {
	tests := []struct {
		name    string
		auth    AuthSettings
		wantErr string
	}{
		{"none", AuthSettings{Type: AuthTypeNone}, ""},
		{"empty type", AuthSettings{}, ""},
		{"basic", AuthSettings{Type: AuthTypeBasic, Basic: BasicAuthSettings{Username: "admin", Password: "secret"}}, ""},
		{"apikey", AuthSettings{Type: AuthTypeAPIKey, APIKeys: []string{"key1", "key2"}}, ""},
		{"none with username", AuthSettings{Type: AuthTypeNone, Basic: BasicAuthSettings{Username: "admin"}}, "incompatible"},
		{"none with password", AuthSettings{Type: AuthTypeNone, Basic: BasicAuthSettings{Password: "secret"}}, "incompatible"},
		{"none with api keys", AuthSettings{Type: AuthTypeNone, APIKeys: []string{"key1"}}, "incompatible"},
		{"basic missing username", AuthSettings{Type: AuthTypeBasic, Basic: BasicAuthSettings{Password: "secret"}}, "username and password"},
		{"basic missing password", AuthSettings{Type: AuthTypeBasic, Basic: BasicAuthSettings{Username: "admin"}}, "username and password"},
		{"basic with api keys", AuthSettings{Type: AuthTypeBasic, Basic: BasicAuthSettings{Username: "a", Password: "b"}, APIKeys: []string{"k"}}, "mutually exclusive"},
		{"apikey missing keys", AuthSettings{Type: AuthTypeAPIKey}, "requires at least one"},
		{"apikey with basic creds", AuthSettings{Type: AuthTypeAPIKey, APIKeys: []string{"k"}, Basic: BasicAuthSettings{Username: "admin"}}, "mutually exclusive"},
		{"unknown type", AuthSettings{Type: "oauth"}, "unknown auth-type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.Auth = tt.auth
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected %q in error, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSettings_Audit(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AuditSettings)
		wantErr string
	}{
		{"zero concurrency", func(a *AuditSettings) { a.Concurrency = 0 }, "concurrency must be positive"},
		{"zero timeout", func(a *AuditSettings) { a.Timeout = 0 }, "timeout must be positive"},
		{"negative depth", func(a *AuditSettings) { a.CloneDepth = -1 }, "clone-depth"},
		{"no hosts", func(a *AuditSettings) { a.AllowedHosts = nil }, "allowed-hosts"},
		{"full history", func(a *AuditSettings) { a.CloneDepth = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s.Audit)
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSettings_Analyzer(t *testing.T) {
	tests := []struct {
		name     string
		analyzer AnalyzerSettings
		wantErr  string
	}{
		{"disabled", AnalyzerSettings{Mode: AnalyzerModeAdditional}, ""},
		{"enabled", AnalyzerSettings{Enabled: true, URL: "http://a", Mode: AnalyzerModeReplace, Timeout: time.Second}, ""},
		{"bad mode", AnalyzerSettings{Mode: "merge"}, "analyzer-mode"},
		{"missing url", AnalyzerSettings{Enabled: true, Mode: AnalyzerModeAdditional, Timeout: time.Second}, "analyzer-url"},
		{"zero timeout", AnalyzerSettings{Enabled: true, URL: "http://a", Mode: AnalyzerModeAdditional}, "analyzer-timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.Analyzer = tt.analyzer
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSettings_History(t *testing.T) {
	tests := []struct {
		name    string
		history HistorySettings
		wantErr string
	}{
		{"disabled ignores fields", HistorySettings{}, ""},
		{"valid", HistorySettings{Enabled: true, BaseDir: "/tmp/h", MaxResults: 10, LockTimeout: time.Second}, ""},
		{"empty base dir", HistorySettings{Enabled: true, MaxResults: 10, LockTimeout: time.Second}, "history-base-dir"},
		{"zero max results", HistorySettings{Enabled: true, BaseDir: "/tmp/h", LockTimeout: time.Second}, "history-max-results"},
		{"zero lock timeout", HistorySettings{Enabled: true, BaseDir: "/tmp/h", MaxResults: 10}, "history-lock-timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.History = tt.history
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpandHomeDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
		{"~other", "~other"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := expandHomeDir(tt.input); result != tt.expected {
				t.Errorf("expandHomeDir(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFilterEmptyStrings(t *testing.T) {
	result := filterEmptyStrings([]string{"a", "", "b", ""})
	if len(result) != 2 || result[0] != "a" || result[1] != "b" {
		t.Errorf("Unexpected result %q", result)
	}
	if filterEmptyStrings(nil) != nil {
		t.Error("Expected nil for nil input")
	}
}
