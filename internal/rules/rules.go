package rules

import "strings"

// Rule is a line-local detection rule. Match sees the raw text of one line.
type Rule struct {
	ID         string
	Issue      string
	Suggestion string
	Match      func(line string) bool
}

// Baseline rule identifiers.
const (
	RuleInputMissingLabel     = "input-missing-label"
	RuleButtonMissingName     = "button-missing-name"
	RuleImageMissingAlt       = "img-missing-alt"
	RuleClickWithoutKeyboard  = "click-without-keyboard"
	RuleNegativeTabIndex      = "negative-tabindex"
	RuleMissingFocusIndicator = "focus-indicator"
	RuleInsufficientContrast  = "color-contrast"
)

// Baseline returns the default rule set. Matching is substring based and never spans
// lines, so multi-line tags and string literals produce false positives and negatives.
func Baseline() []Rule {
	return []Rule{
		{
			ID:         RuleInputMissingLabel,
			Issue:      "Input element missing label or aria-label",
			Suggestion: "Add aria-label attribute or wrap in a label element",
			Match: func(line string) bool {
				return strings.Contains(line, "<input") &&
					!strings.Contains(line, "aria-label") &&
					!strings.Contains(line, "id=")
			},
		},
		{
			ID:         RuleButtonMissingName,
			Issue:      "Button missing accessible name",
			Suggestion: "Add aria-label or ensure button has descriptive text content",
			Match: func(line string) bool {
				return strings.Contains(line, "<button") &&
					!strings.Contains(line, "aria-label") &&
					!strings.Contains(line, "aria-describedby")
			},
		},
		{
			ID:         RuleImageMissingAlt,
			Issue:      "Image missing alt attribute",
			Suggestion: "Add alt attribute with descriptive text",
			Match: func(line string) bool {
				return strings.Contains(line, "<img") && !strings.Contains(line, "alt=")
			},
		},
		{
			ID:         RuleClickWithoutKeyboard,
			Issue:      "Click handler without keyboard support",
			Suggestion: "Add onKeyDown handler for keyboard accessibility",
			Match: func(line string) bool {
				return strings.Contains(line, "onClick") &&
					!strings.Contains(line, "onKeyDown") &&
					!strings.Contains(line, "onKeyPress")
			},
		},
		{
			ID:         RuleNegativeTabIndex,
			Issue:      "Element removed from tab order",
			Suggestion: "Ensure keyboard users can access this element or provide alternative navigation",
			Match: func(line string) bool {
				return strings.Contains(line, `tabIndex="-1"`)
			},
		},
	}
}

// SplitLines splits content on line feeds. A trailing carriage return is trimmed from
// each line so CRLF and LF files report the same line numbers and text.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
