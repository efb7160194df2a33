package app

import "github.com/spf13/pflag"

// RegisterFlags registers all CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("transport", "t", "", "Transport type: stdio or sse")
	flags.StringP("host", "H", "", "Host for SSE transport")
	flags.IntP("port", "p", 0, "Port for SSE transport")
	flags.StringP("auth-type", "a", "", "Authentication type: none, basic, or apikey")
	flags.StringP("auth-basic-username", "u", "", "Basic auth username")
	flags.StringP("auth-basic-password", "P", "", "Basic auth password")
	flags.StringSliceP("auth-api-keys", "k", nil, "API keys (comma-separated)")

	RegisterAuditFlags(flags)
}

// RegisterAuditFlags registers the flags that shape an audit run. They are shared by the
// server and the one-shot audit command.
func RegisterAuditFlags(flags *pflag.FlagSet) {
	flags.String("work-dir", "", "Directory for temporary repository clones (default: system temp dir)")
	flags.IntP("concurrency", "c", 0, "Maximum number of files audited at once")
	flags.Duration("timeout", 0, "Time limit for a single repository audit")
	flags.Int("clone-depth", 0, "Clone depth, 0 for full history")
	flags.StringSlice("allowed-hosts", nil, "Repository hosts accepted for audit (comma-separated)")
	flags.Bool("report-unreadable", false, "Report unreadable files as findings instead of skipping them")
	flags.StringSlice("exclude-patterns", nil, "Glob patterns of component files to skip (comma-separated)")
	flags.Bool("supplementary-enabled", false, "Enable the randomized supplementary checks")
	flags.Int64("supplementary-seed", 0, "Seed for the supplementary checks, 0 for a random seed")

	flags.Bool("analyzer-enabled", false, "Enable the external analyzer")
	flags.String("analyzer-url", "", "External analyzer endpoint URL")
	flags.String("analyzer-api-key", "", "External analyzer API key")
	flags.String("analyzer-mode", "", "External analyzer mode: additional or replace")
	flags.Duration("analyzer-timeout", 0, "External analyzer call timeout")

	flags.Bool("history-enabled", false, "Record audits in the local history")
	flags.String("history-base-dir", "", "Directory of the audit history")
	flags.Int("history-max-results", 0, "Maximum number of search results")
	flags.Duration("history-lock-timeout", 0, "Time to wait for the history lock")
}
