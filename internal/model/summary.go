package model

import "time"

// Summary is a condensed, presentation-ready view of a scan.
// It carries the findings and severity counts that the report
// writers render, without the raw page bodies.
//
// Design decision: We keep a separate summary rather than rendering
// straight from ScanReport because:
// 1. It provides a consistent, curated view of the most important findings
// 2. It can be serialized to JSON for tools that want structured but simple output
// 3. It separates presentation concerns from data collection
type Summary struct {
	// Target is the scanned start URL.
	Target string `json:"target"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// === Severity Summary ===

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`

	// === Findings ===

	// Findings contains all categorized findings.
	Findings []Finding `json:"findings,omitempty"`

	// === Page Statistics ===

	// PagesCrawled is the number of pages successfully crawled.
	PagesCrawled int `json:"pages_crawled"`

	// TimedOut indicates if the scan was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the scan failed.
	Error string `json:"error,omitempty"`
}

// Finding represents a single vulnerability finding.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to the findingInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains the security implications of this finding.
	// This helps users understand why this finding matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific value found (attribute, snippet, pattern).
	Value string `json:"value,omitempty"`

	// Location is the page URL where the finding was discovered.
	Location string `json:"location,omitempty"`

	// Screenshot is the path to the page screenshot, when captured.
	Screenshot string `json:"screenshot,omitempty"`
}

// NewFinding builds a Finding for the given type, filling severity,
// impact, and recommendation from the shared mapping. Unknown types
// default to medium severity.
func NewFinding(findingType, title, description, value, location string) Finding {
	severity := SeverityMedium
	var impact, recommendation string
	if info, ok := GetFindingInfo(findingType); ok {
		severity = info.Severity
		impact = info.Impact
		recommendation = info.Recommendation
	}
	return Finding{
		Type:           findingType,
		Severity:       severity,
		SeverityText:   severity.String(),
		Title:          title,
		Description:    description,
		Impact:         impact,
		Recommendation: recommendation,
		Value:          value,
		Location:       location,
	}
}

// TotalFindings returns the total number of findings.
func (s *Summary) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *Summary) HasFindings() bool {
	return len(s.Findings) > 0
}

// FindingsBySeverity returns findings filtered by severity.
func (s *Summary) FindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}
