package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sha1n/a11y-audit/internal/app"
	"github.com/sha1n/a11y-audit/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "a11y-audit"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:     programName,
		Short:   "Accessibility audit MCP server",
		Long:    "Audits the React components of git repositories for common accessibility issues, over MCP and HTTP",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFlags(cmd.Context(), cmd.Flags(), version)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	app.RegisterFlags(rootCmd.Flags())
	rootCmd.AddCommand(newAuditCommand())
	rootCmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func newAuditCommand() *cobra.Command {
	var (
		format       string
		path         string
		failOnIssues bool
	)

	cmd := &cobra.Command{
		Use:   "audit [repository-url]",
		Short: "Audit a single repository and print a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			opts := app.AuditOptions{
				Path:         path,
				Format:       f,
				FailOnIssues: failOnIssues,
			}
			if len(args) == 1 {
				opts.RepositoryURL = args[0]
			}
			return app.RunAudit(cmd.Context(), app.DefaultAuditParams(), cmd.Flags(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), fmt.Sprintf("Report format: %s", strings.Join(formatNames(), ", ")))
	cmd.Flags().StringVar(&path, "path", "", "Audit a local directory instead of cloning a repository")
	cmd.Flags().BoolVar(&failOnIssues, "fail-on-issues", false, "Exit with an error when any issue is found")
	app.RegisterAuditFlags(cmd.Flags())

	return cmd
}

func formatNames() []string {
	var names []string
	for _, f := range report.Formats() {
		names = append(names, string(f))
	}
	return names
}

func runWithFlags(ctx context.Context, flags *pflag.FlagSet, version string) error {
	return app.RunWithDeps(ctx, app.DefaultRunParams(), flags, version)
}
