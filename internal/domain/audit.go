package domain

// ComponentFile is a candidate UI source file captured during discovery.
// Content is a snapshot taken at discovery time and is never modified afterwards.
type ComponentFile struct {
	// Root is the candidate root directory the file was found under.
	Root string

	// Path is the file path relative to Root. Two roots may yield the same Path.
	Path string

	// FullPath is the absolute filesystem path. It is the unique key for the file
	// within a single audit run.
	FullPath string

	// Content is the full text of the file.
	Content string

	// ReadErr is set when the file was discovered but its content could not be read.
	ReadErr error
}

// AccessibilityIssue is a single finding reported for a file.
type AccessibilityIssue struct {
	// Line is the 1-based line number. 0 marks a file-level finding.
	Line int `json:"line" yaml:"line"`

	// Issue is a short description of the defect.
	Issue string `json:"issue" yaml:"issue"`

	// Suggestion is the remediation text.
	Suggestion string `json:"suggestion" yaml:"suggestion"`

	// Rule is the identifier of the rule that produced the finding, if any.
	Rule string `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// AuditResult holds the findings for one audited file.
type AuditResult struct {
	// File is the display path, relative to the candidate root.
	File string `json:"file" yaml:"file"`

	// Issues are ordered by detection, not by line.
	Issues []AccessibilityIssue `json:"issues" yaml:"issues"`

	// Location is the path relative to the workspace root, e.g. "src/components/Nav.tsx".
	Location string `json:"-" yaml:"-"`
}

// AuditRun is the ordered result of auditing one workspace. Results follow
// discovery order.
type AuditRun struct {
	Results []AuditResult `json:"results" yaml:"results"`
}

// TotalIssues returns the number of findings across all files.
func (r *AuditRun) TotalIssues() int {
	total := 0
	for _, res := range r.Results {
		total += len(res.Issues)
	}
	return total
}

// Files returns the display paths of all results, in order.
func (r *AuditRun) Files() []string {
	files := make([]string, len(r.Results))
	for i, res := range r.Results {
		files[i] = res.File
	}
	return files
}
