package domain

import "fmt"

// FailureRule is the rule identifier carried by synthetic failure findings.
const FailureRule = "audit-failure"

// NewFailureIssue builds the file-level finding that stands in for a file whose
// audit could not complete.
func NewFailureIssue(summary string, err error) AccessibilityIssue {
	return AccessibilityIssue{
		Line:       0,
		Issue:      fmt.Sprintf("%s: %v", summary, err),
		Suggestion: "Re-run the audit; if the problem persists, review this file manually",
		Rule:       FailureRule,
	}
}
