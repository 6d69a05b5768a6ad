package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vexscan/vexscan/internal/model"
)

// Vector categories reported by the built-in analyzers.
const (
	CategoryInput   = "input"
	CategoryEvent   = "event-handler"
	CategoryScript  = "script"
	CategoryURL     = "url"
	CategoryPattern = "pattern"
	CategoryForm    = "form"
)

// CheckAnalyzer is the interface implemented by all vector analyzers.
type CheckAnalyzer interface {
	// Name returns a short identifier for the analyzer.
	Name() string
	// Category returns the vector category the analyzer covers.
	Category() string
	// Analyze inspects the page data and returns any findings.
	Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error)
}

// AnalysisData carries the inputs shared by all analyzers for one page.
type AnalysisData struct {
	// Page is the rendered page under analysis.
	Page *model.Page

	// VisualFields holds input-field rectangles detected in the page
	// screenshot. Empty when screenshots are disabled or detection
	// found nothing.
	VisualFields []Rect
}

// Analyzer coordinates the registered vector analyzers.
//
// Design decision: analyzers run sequentially per page and a failing
// analyzer never aborts the run. One malformed document should not cost
// the findings the remaining analyzers would have produced.
type Analyzer struct {
	analyzers []CheckAnalyzer
	logger    *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for per-analyzer diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New returns an Analyzer with the full set of built-in vector
// analyzers registered.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Register(NewInputAnalyzer())
	a.Register(NewEventAnalyzer())
	a.Register(NewScriptAnalyzer())
	a.Register(NewLinkAnalyzer())
	a.Register(NewPatternAnalyzer())
	a.Register(NewFormAnalyzer())
	return a
}

// Register adds an analyzer to the coordinator.
func (a *Analyzer) Register(ca CheckAnalyzer) {
	a.analyzers = append(a.analyzers, ca)
}

// Analyzers returns the registered analyzers.
func (a *Analyzer) Analyzers() []CheckAnalyzer {
	return a.analyzers
}

// AnalyzePage runs every registered analyzer against the page and
// returns the deduplicated findings. When the page carries a
// screenshot, input-field detection on the image runs first so that
// DOM-level analyzers can corroborate their results.
func (a *Analyzer) AnalyzePage(ctx context.Context, page *model.Page) ([]model.Finding, error) {
	if page == nil {
		return nil, fmt.Errorf("analyzer: page is nil")
	}

	data := &AnalysisData{Page: page}
	if page.ScreenshotPath != "" {
		fields, err := DetectInputFields(page.ScreenshotPath)
		if err != nil {
			a.logger.Debug("visual input detection failed",
				slog.String("url", page.URL),
				slog.String("error", err.Error()))
		} else {
			data.VisualFields = fields
		}
	}

	var findings []model.Finding
	for _, ca := range a.analyzers {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		results, err := ca.Analyze(ctx, data)
		if err != nil {
			// Log error but continue with other analyzers.
			a.logger.Warn("analyzer failed",
				slog.String("analyzer", ca.Name()),
				slog.String("url", page.URL),
				slog.String("error", err.Error()))
			continue
		}
		findings = append(findings, results...)
	}

	for i := range findings {
		if findings[i].Location == "" {
			findings[i].Location = page.URL
		}
		if findings[i].Screenshot == "" {
			findings[i].Screenshot = page.ScreenshotPath
		}
	}

	return deduplicateFindings(findings), nil
}

// deduplicateFindings removes duplicate findings, keeping the more
// severe one when the same vector is reported twice.
func deduplicateFindings(findings []model.Finding) []model.Finding {
	seen := make(map[string]int, len(findings))
	result := make([]model.Finding, 0, len(findings))

	for _, f := range findings {
		key := f.Title + "|" + f.Value
		if idx, ok := seen[key]; ok {
			if f.Severity > result[idx].Severity {
				result[idx] = f
			}
			continue
		}
		seen[key] = len(result)
		result = append(result, f)
	}
	return result
}

// truncateValue shortens long vector payloads for display.
func truncateValue(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
