package model

import "time"

// ScanReport is the main scan result structure.
// It contains everything collected while scanning a single target:
// the crawled pages, the findings, and the scan state.
//
// Design decision: We use one struct per target rather than a global
// result registry so the pipeline, report writers, and database all
// operate on the same self-contained value.
type ScanReport struct {
	// Target is the start URL that was scanned.
	Target string `json:"target"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Crawls maps visited URLs to their HTTP status codes
	// (zero when the renderer could not observe the status).
	Crawls map[string]int `json:"crawls,omitempty"`

	// Pages contains all pages discovered during crawling.
	Pages []*Page `json:"-"` // Excluded from JSON due to size

	// ScreenshotsEnabled records whether screenshot capture was requested.
	ScreenshotsEnabled bool `json:"screenshots_enabled"`

	// RendererName identifies which render engine produced the pages
	// (chrome, firefox, or http).
	RendererName string `json:"renderer,omitempty"`

	// Summary contains the condensed findings for presentation.
	Summary *Summary `json:"summary,omitempty"`

	// TimedOut is true if the scan was terminated due to timeout or signal.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the pipeline steps that actually ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains any error that occurred during scanning.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewScanReport creates a new report for the given target URL.
func NewScanReport(target string) *ScanReport {
	return &ScanReport{
		Target:      target,
		DateScanned: time.Now(),
		Crawls:      make(map[string]int),
	}
}

// AddPage records a crawled page in the report.
func (r *ScanReport) AddPage(page *Page) {
	r.Crawls[page.URL] = page.StatusCode
	r.Pages = append(r.Pages, page)
}

// AddFinding adds a finding to the summary, initializing it on first use.
// Duplicate findings (same type, value, and location) are dropped.
//
// Design decision: Deduplication lives here rather than in the analyzers
// because several analyzers can legitimately flag the same construct
// (an event handler on an input is seen by both the input and the
// event-handler analyzer).
func (r *ScanReport) AddFinding(finding Finding) {
	if r.Summary == nil {
		r.Summary = &Summary{
			Target:      r.Target,
			DateScanned: r.DateScanned,
			Findings:    make([]Finding, 0),
		}
	}

	for _, f := range r.Summary.Findings {
		if f.Type == finding.Type && f.Value == finding.Value && f.Location == finding.Location {
			return
		}
	}

	r.Summary.Findings = append(r.Summary.Findings, finding)

	switch finding.Severity {
	case SeverityCritical:
		r.Summary.CriticalCount++
	case SeverityHigh:
		r.Summary.HighCount++
	case SeverityMedium:
		r.Summary.MediumCount++
	case SeverityLow:
		r.Summary.LowCount++
	case SeverityInfo:
		r.Summary.InfoCount++
	}
}

// Finalize syncs scan state into the summary after all pipeline steps
// have run. It is safe to call on a report with no findings; the
// summary is created so report writers always have one to render.
func (r *ScanReport) Finalize() {
	if r.Summary == nil {
		r.Summary = &Summary{
			Target:      r.Target,
			DateScanned: r.DateScanned,
			Findings:    make([]Finding, 0),
		}
	}
	r.Summary.PagesCrawled = len(r.Pages)
	r.Summary.TimedOut = r.TimedOut
	if r.Error != nil {
		r.ErrorMessage = r.Error.Error()
		r.Summary.Error = r.ErrorMessage
	}
}
