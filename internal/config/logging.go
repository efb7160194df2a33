package config

import (
	"context"
	"log/slog"
)

const masked = "****"

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: transport", "value", s.Transport)
	if s.Transport == "sse" {
		logger.InfoContext(ctx, "Config: host", "value", s.Host)
		logger.InfoContext(ctx, "Config: port", "value", s.Port)
	}

	logger.InfoContext(ctx, "Config: auth.type", "value", s.Auth.Type)
	switch s.Auth.Type {
	case AuthTypeBasic:
		logger.InfoContext(ctx, "Config: auth.basic.username", "value", s.Auth.Basic.Username)
		logger.InfoContext(ctx, "Config: auth.basic.password", "value", masked)
	case AuthTypeAPIKey:
		logger.InfoContext(ctx, "Config: auth.api_keys", "count", len(s.Auth.APIKeys))
	}

	logger.InfoContext(ctx, "Config: audit", "value", AuditSettingsLogValue(s.Audit))

	logger.InfoContext(ctx, "Config: analyzer.enabled", "value", s.Analyzer.Enabled)
	if s.Analyzer.Enabled {
		logger.InfoContext(ctx, "Config: analyzer", "value", AnalyzerSettingsLogValue(s.Analyzer))
	}

	logger.InfoContext(ctx, "Config: history.enabled", "value", s.History.Enabled)
	if s.History.Enabled {
		logger.InfoContext(ctx, "Config: history", "value", HistorySettingsLogValue(s.History))
	}
}

// AuthSettingsLogValue returns a slog.Value for AuthSettings with masked data
func AuthSettingsLogValue(s AuthSettings) slog.Value {
	keys := make([]string, len(s.APIKeys))
	for i := range s.APIKeys {
		keys[i] = masked
	}
	return slog.GroupValue(
		slog.String("type", s.Type),
		slog.Any("basic", BasicAuthSettingsLogValue(s.Basic)),
		slog.Any("api_keys", keys),
	)
}

// BasicAuthSettingsLogValue returns a slog.Value for BasicAuthSettings with masked data
func BasicAuthSettingsLogValue(s BasicAuthSettings) slog.Value {
	return slog.GroupValue(
		slog.String("username", s.Username),
		slog.String("password", masked),
	)
}

// AuditSettingsLogValue returns a slog.Value for AuditSettings
func AuditSettingsLogValue(s AuditSettings) slog.Value {
	return slog.GroupValue(
		slog.String("work_dir", s.WorkDir),
		slog.Int("concurrency", s.Concurrency),
		slog.Duration("timeout", s.Timeout),
		slog.Int("clone_depth", s.CloneDepth),
		slog.Any("allowed_hosts", s.AllowedHosts),
		slog.Bool("report_unreadable", s.ReportUnreadable),
		slog.Any("exclude_patterns", s.ExcludePatterns),
		slog.Bool("supplementary", s.Supplementary.Enabled),
	)
}

// AnalyzerSettingsLogValue returns a slog.Value for AnalyzerSettings with the API key masked
func AnalyzerSettingsLogValue(s AnalyzerSettings) slog.Value {
	apiKey := ""
	if s.APIKey != "" {
		apiKey = masked
	}
	return slog.GroupValue(
		slog.Bool("enabled", s.Enabled),
		slog.String("url", s.URL),
		slog.String("api_key", apiKey),
		slog.String("mode", s.Mode),
		slog.Duration("timeout", s.Timeout),
	)
}

// HistorySettingsLogValue returns a slog.Value for HistorySettings
func HistorySettingsLogValue(s HistorySettings) slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", s.Enabled),
		slog.String("base_dir", s.BaseDir),
		slog.Int("max_results", s.MaxResults),
		slog.Duration("lock_timeout", s.LockTimeout),
	)
}

// SettingsLogValue returns a slog.Value for Settings with masked data
func SettingsLogValue(s Settings) slog.Value {
	return slog.GroupValue(
		slog.String("transport", s.Transport),
		slog.String("host", s.Host),
		slog.Int("port", s.Port),
		slog.Any("auth", AuthSettingsLogValue(s.Auth)),
		slog.Any("audit", AuditSettingsLogValue(s.Audit)),
		slog.Any("analyzer", AnalyzerSettingsLogValue(s.Analyzer)),
		slog.Any("history", HistorySettingsLogValue(s.History)),
	)
}
