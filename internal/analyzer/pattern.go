package analyzer

import (
	"context"
	"regexp"

	"github.com/vexscan/vexscan/internal/model"
)

// markupPattern couples a raw-markup regex with its report metadata.
type markupPattern struct {
	re          *regexp.Regexp
	title       string
	description string
}

// markupPatterns match constructs in the raw page source that can
// carry script. They run on the unparsed markup so that payloads the
// HTML parser normalizes away are still seen.
var markupPatterns = []markupPattern{
	{
		re:          regexp.MustCompile(`(?i)javascript:[^"'\s>]+`),
		title:       "javascript: URL in markup",
		description: "The raw markup embeds a javascript: URL outside of a parsed attribute.",
	},
	{
		re:          regexp.MustCompile(`(?i)data:[^"'\s>]*base64`),
		title:       "base64 data: URL",
		description: "A base64 data: URL can smuggle an executable payload past content filters.",
	},
	{
		re:          regexp.MustCompile(`(?i)src\s*=\s*["'][^"']*javascript:`),
		title:       "javascript: in src attribute",
		description: "A src attribute points at a javascript: URL, executing its payload on load.",
	},
	{
		re:          regexp.MustCompile(`(?i)href\s*=\s*["'][^"']*javascript:`),
		title:       "javascript: in href attribute",
		description: "An href attribute points at a javascript: URL.",
	},
	{
		re:          regexp.MustCompile(`(?i)style\s*=\s*["'][^"']*expression\s*\(`),
		title:       "CSS expression in style attribute",
		description: "A style attribute uses expression(), a legacy construct that evaluates script from CSS.",
	},
	{
		re:          regexp.MustCompile(`(?i)<\w+[^>]*\sformaction\s*=`),
		title:       "formaction attribute",
		description: "A formaction attribute overrides the form target and can redirect submissions to a script URL.",
	},
	{
		re:          regexp.MustCompile(`(?i)<meta[^>]*\scontent\s*=\s*["'][^"']*url\s*=\s*javascript:`),
		title:       "meta refresh to javascript: URL",
		description: "A meta refresh redirects to a javascript: URL, executing its payload automatically.",
	},
}

// PatternAnalyzer scans the raw page markup for script-carrying
// constructs. Unlike the DOM analyzers it sees the source exactly as
// the server sent it, including broken markup the parser repaired.
type PatternAnalyzer struct{}

// NewPatternAnalyzer returns a PatternAnalyzer.
func NewPatternAnalyzer() *PatternAnalyzer {
	return &PatternAnalyzer{}
}

// Name returns the analyzer identifier.
func (pa *PatternAnalyzer) Name() string { return "pattern" }

// Category returns the vector category.
func (pa *PatternAnalyzer) Category() string { return CategoryPattern }

// Analyze implements CheckAnalyzer.
func (pa *PatternAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	var findings []model.Finding
	for _, mp := range markupPatterns {
		matches := mp.re.FindAllString(data.Page.HTML, 5)
		for _, match := range matches {
			findings = append(findings, model.NewFinding("pattern_xss",
				mp.title,
				mp.description,
				truncateValue(match, 100),
				data.Page.URL))
		}
	}
	return findings, nil
}
