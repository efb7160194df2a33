package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by the server.
const EnvPrefix = "A11Y_AUDIT"

// Auth type constants
const (
	AuthTypeNone   = "none"
	AuthTypeBasic  = "basic"
	AuthTypeAPIKey = "apikey"
)

// Analyzer mode constants
const (
	AnalyzerModeAdditional = "additional"
	AnalyzerModeReplace    = "replace"
)

// AuthSettings configuration for authentication
type AuthSettings struct {
	Type    string            `mapstructure:"type"` // AuthTypeNone, AuthTypeBasic, or AuthTypeAPIKey
	Basic   BasicAuthSettings `mapstructure:"basic"`
	APIKeys []string          `mapstructure:"api_keys"`
}

// BasicAuthSettings configuration for basic auth
type BasicAuthSettings struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AuditSettings configures workspace acquisition and the audit pipeline.
type AuditSettings struct {
	WorkDir          string                `mapstructure:"work_dir"` // empty means the system temp dir
	Concurrency      int                   `mapstructure:"concurrency"`
	Timeout          time.Duration         `mapstructure:"timeout"`
	CloneDepth       int                   `mapstructure:"clone_depth"` // 0 fetches full history
	AllowedHosts     []string              `mapstructure:"allowed_hosts"`
	ReportUnreadable bool                  `mapstructure:"report_unreadable"`
	ExcludePatterns  []string              `mapstructure:"exclude_patterns"`
	Supplementary    SupplementarySettings `mapstructure:"supplementary"`
}

// SupplementarySettings configures the randomized supplementary analyzer.
type SupplementarySettings struct {
	Enabled bool  `mapstructure:"enabled"`
	Seed    int64 `mapstructure:"seed"` // 0 seeds from the clock
}

// AnalyzerSettings configures the external HTTP analyzer.
type AnalyzerSettings struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Mode    string        `mapstructure:"mode"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HistorySettings configures the audit history store.
type HistorySettings struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseDir     string        `mapstructure:"base_dir"`
	MaxResults  int           `mapstructure:"max_results"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// Settings application settings
type Settings struct {
	Transport string           `mapstructure:"transport"`
	Host      string           `mapstructure:"host"`
	Port      int              `mapstructure:"port"`
	Auth      AuthSettings     `mapstructure:"auth"`
	Audit     AuditSettings    `mapstructure:"audit"`
	Analyzer  AnalyzerSettings `mapstructure:"analyzer"`
	History   HistorySettings  `mapstructure:"history"`
}

// envBindings maps nested keys to their environment variables.
var envBindings = map[string]string{
	"auth.type":                   "AUTH_TYPE",
	"auth.basic.username":         "AUTH_BASIC_USERNAME",
	"auth.basic.password":         "AUTH_BASIC_PASSWORD",
	"auth.api_keys":               "AUTH_API_KEYS",
	"audit.work_dir":              "WORK_DIR",
	"audit.concurrency":           "CONCURRENCY",
	"audit.timeout":               "TIMEOUT",
	"audit.clone_depth":           "CLONE_DEPTH",
	"audit.allowed_hosts":         "ALLOWED_HOSTS",
	"audit.report_unreadable":     "REPORT_UNREADABLE",
	"audit.exclude_patterns":      "EXCLUDE_PATTERNS",
	"audit.supplementary.enabled": "SUPPLEMENTARY_ENABLED",
	"audit.supplementary.seed":    "SUPPLEMENTARY_SEED",
	"analyzer.enabled":            "ANALYZER_ENABLED",
	"analyzer.url":                "ANALYZER_URL",
	"analyzer.api_key":            "ANALYZER_API_KEY",
	"analyzer.mode":               "ANALYZER_MODE",
	"analyzer.timeout":            "ANALYZER_TIMEOUT",
	"history.enabled":             "HISTORY_ENABLED",
	"history.base_dir":            "HISTORY_BASE_DIR",
	"history.max_results":         "HISTORY_MAX_RESULTS",
	"history.lock_timeout":        "HISTORY_LOCK_TIMEOUT",
}

// flagBindings maps keys to CLI flag names.
var flagBindings = map[string]string{
	"transport":                   "transport",
	"host":                        "host",
	"port":                        "port",
	"auth.type":                   "auth-type",
	"auth.basic.username":         "auth-basic-username",
	"auth.basic.password":         "auth-basic-password",
	"auth.api_keys":               "auth-api-keys",
	"audit.work_dir":              "work-dir",
	"audit.concurrency":           "concurrency",
	"audit.timeout":               "timeout",
	"audit.clone_depth":           "clone-depth",
	"audit.allowed_hosts":         "allowed-hosts",
	"audit.report_unreadable":     "report-unreadable",
	"audit.exclude_patterns":      "exclude-patterns",
	"audit.supplementary.enabled": "supplementary-enabled",
	"audit.supplementary.seed":    "supplementary-seed",
	"analyzer.enabled":            "analyzer-enabled",
	"analyzer.url":                "analyzer-url",
	"analyzer.api_key":            "analyzer-api-key",
	"analyzer.mode":               "analyzer-mode",
	"analyzer.timeout":            "analyzer-timeout",
	"history.enabled":             "history-enabled",
	"history.base_dir":            "history-base-dir",
	"history.max_results":         "history-max-results",
	"history.lock_timeout":        "history-lock-timeout",
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("transport", "stdio")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("auth.type", AuthTypeNone)

	// Audit defaults
	v.SetDefault("audit.work_dir", "")
	v.SetDefault("audit.concurrency", 8)
	v.SetDefault("audit.timeout", 5*time.Minute)
	v.SetDefault("audit.clone_depth", 1)
	v.SetDefault("audit.allowed_hosts", []string{"github.com"})
	v.SetDefault("audit.report_unreadable", false)
	v.SetDefault("audit.supplementary.enabled", false)
	v.SetDefault("audit.supplementary.seed", int64(0))

	// Analyzer defaults
	v.SetDefault("analyzer.enabled", false)
	v.SetDefault("analyzer.mode", AnalyzerModeAdditional)
	v.SetDefault("analyzer.timeout", 30*time.Second)

	// History defaults
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.base_dir", defaultHistoryBaseDir())
	v.SetDefault("history.max_results", 20)
	v.SetDefault("history.lock_timeout", 10*time.Second)

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	for key, env := range envBindings {
		_ = v.BindEnv(key, EnvPrefix+"_"+env)
	}

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Comma-separated lists given through env vars arrive as a single element
	settings.Auth.APIKeys = listFromEnv("AUTH_API_KEYS", settings.Auth.APIKeys)
	settings.Audit.AllowedHosts = filterEmptyStrings(listFromEnv("ALLOWED_HOSTS", settings.Audit.AllowedHosts))
	settings.Audit.ExcludePatterns = filterEmptyStrings(listFromEnv("EXCLUDE_PATTERNS", settings.Audit.ExcludePatterns))

	// Expand home directory in paths
	settings.Audit.WorkDir = expandHomeDir(settings.Audit.WorkDir)
	settings.History.BaseDir = expandHomeDir(settings.History.BaseDir)

	return &settings, nil
}

// listFromEnv splits a comma-separated env var into values and trims spaces.
// The env var wins only when viper produced nothing or an unsplit single element.
func listFromEnv(env string, current []string) []string {
	raw := os.Getenv(EnvPrefix + "_" + env)
	if raw != "" {
		if len(current) == 0 || (len(current) == 1 && strings.Contains(current[0], ",")) {
			current = strings.Split(raw, ",")
		}
	}
	for i := range current {
		current[i] = strings.TrimSpace(current[i])
	}
	return current
}

// defaultHistoryBaseDir returns the default base directory for audit history
func defaultHistoryBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".a11y-audit"
	}
	return filepath.Join(home, ".a11y-audit")
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ValidateSettings checks for conflicting configurations.
// Returns an error if the settings contain mutually exclusive or incomplete config.
func ValidateSettings(s *Settings) error {
	// Validate transport type
	switch s.Transport {
	case "stdio", "sse":
		// valid
	default:
		return errors.New("transport must be 'stdio' or 'sse', got: " + s.Transport)
	}

	if err := validateAuthSettings(&s.Auth); err != nil {
		return err
	}
	if err := validateAuditSettings(&s.Audit); err != nil {
		return err
	}
	if err := validateAnalyzerSettings(&s.Analyzer); err != nil {
		return err
	}
	return validateHistorySettings(&s.History)
}

func validateAuthSettings(a *AuthSettings) error {
	hasBasicCreds := a.Basic.Username != "" || a.Basic.Password != ""
	hasAPIKeys := len(a.APIKeys) > 0

	switch a.Type {
	case AuthTypeNone, "":
		if hasBasicCreds || hasAPIKeys {
			return errors.New("auth-type 'none' is incompatible with auth credentials")
		}
	case AuthTypeBasic:
		if hasAPIKeys {
			return errors.New("auth-type 'basic' is mutually exclusive with auth-api-keys")
		}
		if a.Basic.Username == "" || a.Basic.Password == "" {
			return errors.New("auth-type 'basic' requires both username and password")
		}
	case AuthTypeAPIKey:
		if hasBasicCreds {
			return errors.New("auth-type 'apikey' is mutually exclusive with basic auth credentials")
		}
		if !hasAPIKeys {
			return errors.New("auth-type 'apikey' requires at least one API key")
		}
	default:
		return errors.New("unknown auth-type: " + a.Type)
	}
	return nil
}

func validateAuditSettings(a *AuditSettings) error {
	if a.Concurrency <= 0 {
		return errors.New("concurrency must be positive")
	}
	if a.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if a.CloneDepth < 0 {
		return errors.New("clone-depth cannot be negative")
	}
	if len(a.AllowedHosts) == 0 {
		return errors.New("allowed-hosts requires at least one host")
	}
	return nil
}

func validateAnalyzerSettings(a *AnalyzerSettings) error {
	switch a.Mode {
	case AnalyzerModeAdditional, AnalyzerModeReplace:
	default:
		return fmt.Errorf("analyzer-mode must be '%s' or '%s', got: %s", AnalyzerModeAdditional, AnalyzerModeReplace, a.Mode)
	}

	if !a.Enabled {
		return nil // No further validation needed when disabled
	}
	if a.URL == "" {
		return errors.New("analyzer-enabled requires analyzer-url")
	}
	if a.Timeout <= 0 {
		return errors.New("analyzer-timeout must be positive")
	}
	return nil
}

func validateHistorySettings(h *HistorySettings) error {
	if !h.Enabled {
		return nil
	}
	if h.BaseDir == "" {
		return errors.New("history-base-dir cannot be empty")
	}
	if h.MaxResults <= 0 {
		return errors.New("history-max-results must be positive")
	}
	if h.LockTimeout <= 0 {
		return errors.New("history-lock-timeout must be positive")
	}
	return nil
}
