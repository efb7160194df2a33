package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/sha1n/a11y-audit/internal/domain"
)

const (
	toolName = "a11y-audit"
	toolURI  = "https://www.w3.org/WAI/WCAG21/quickref/"
)

func writeSARIF(w io.Writer, results []domain.AuditResult) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	for _, res := range results {
		uri := res.Location
		if uri == "" {
			uri = res.File
		}

		for _, issue := range res.Issues {
			ruleID := ruleIDFor(issue)
			rule := run.AddRule(ruleID).WithDescription(issue.Issue)
			if rule.Help == nil {
				help := issue.Suggestion
				rule.Help = &sarif.MultiformatMessageString{Text: &help}
			}

			physical := sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri))
			// Line 0 marks a file-level finding, which has no region.
			if issue.Line > 0 {
				physical = physical.WithRegion(sarif.NewRegion().WithStartLine(issue.Line))
			}

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(issue.Issue + ". " + issue.Suggestion)).
				WithLevel(levelFor(issue)).
				WithLocations([]*sarif.Location{sarif.NewLocation().WithPhysicalLocation(physical)})
			run.AddResult(result)
		}
	}
	report.AddRun(run)

	return report.PrettyWrite(w)
}

// ruleIDFor returns the rule identifier of issue, deriving one from the issue text for
// analyzer findings that carry none.
func ruleIDFor(issue domain.AccessibilityIssue) string {
	if issue.Rule != "" {
		return issue.Rule
	}

	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(issue.Issue) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	id := strings.TrimSuffix(sb.String(), "-")
	if id == "" {
		return "finding"
	}
	return id
}

func levelFor(issue domain.AccessibilityIssue) string {
	if issue.Rule == domain.FailureRule {
		return "error"
	}
	return "warning"
}
