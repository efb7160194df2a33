package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sha1n/a11y-audit/internal/domain"
)

func writeText(w io.Writer, results []domain.AuditResult) error {
	var sb strings.Builder
	total := 0

	for _, res := range results {
		name := res.Location
		if name == "" {
			name = res.File
		}

		total += len(res.Issues)
		if len(res.Issues) == 0 {
			fmt.Fprintf(&sb, "%s: no issues\n", name)
			continue
		}

		fmt.Fprintf(&sb, "%s: %d %s\n", name, len(res.Issues), plural(len(res.Issues), "issue", "issues"))
		for _, issue := range res.Issues {
			if issue.Line > 0 {
				fmt.Fprintf(&sb, "  line %d: %s\n", issue.Line, issue.Issue)
			} else {
				fmt.Fprintf(&sb, "  %s\n", issue.Issue)
			}
			fmt.Fprintf(&sb, "    fix: %s\n", issue.Suggestion)
		}
	}

	fmt.Fprintf(&sb, "\nAudited %d %s, found %d %s.\n",
		len(results), plural(len(results), "file", "files"),
		total, plural(total, "issue", "issues"))

	_, err := io.WriteString(w, sb.String())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
