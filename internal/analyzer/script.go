package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vexscan/vexscan/internal/model"
)

// Risk levels assigned by scoreScript.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
	RiskNone   = "none"
)

// highRiskScriptPatterns match code that executes strings or writes
// markup directly. Each match adds 25 points.
var highRiskScriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`eval\s*\(`),
	regexp.MustCompile(`document\.write\s*\(`),
	regexp.MustCompile(`innerHTML\s*=`),
	regexp.MustCompile(`outerHTML\s*=`),
	regexp.MustCompile("setTimeout\\s*\\(\\s*['\"`]"),
	regexp.MustCompile("setInterval\\s*\\(\\s*['\"`]"),
	regexp.MustCompile(`location\.href\s*=`),
	regexp.MustCompile(`document\.cookie\s*=`),
}

// mediumRiskScriptPatterns match DOM and network APIs that are only
// dangerous with attacker-controlled input. Each match adds 10 points,
// and they are only consulted when no high-risk pattern matched.
var mediumRiskScriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.ajax\s*\(`),
	regexp.MustCompile(`fetch\s*\(`),
	regexp.MustCompile(`XMLHttpRequest`),
	regexp.MustCompile(`\.src\s*=`),
	regexp.MustCompile(`document\.createElement\s*\(`),
}

// obfuscationPatterns match common encoding tricks used to hide
// payloads. Any match adds a flat 20 points.
var obfuscationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`String\.fromCharCode`),
	regexp.MustCompile(`atob\s*\(`),
	regexp.MustCompile(`\[\s*['"][^'"]+['"]\s*\+\s*['"]`),
}

// ScriptRisk is the result of scoring one script body.
type ScriptRisk struct {
	Score   int
	Level   string
	Matched []string
}

// scoreScript rates a script body from 0 to 100.
//
// Design decision: medium-risk patterns only count when no high-risk
// pattern matched. A script that calls eval is already flagged at the
// top rate, and stacking its fetch calls on top would not change the
// action a reviewer takes.
func scoreScript(content string) ScriptRisk {
	risk := ScriptRisk{Level: RiskNone}

	for _, re := range highRiskScriptPatterns {
		if re.MatchString(content) {
			risk.Score += 25
			risk.Matched = append(risk.Matched, re.String())
		}
	}

	if len(risk.Matched) == 0 {
		for _, re := range mediumRiskScriptPatterns {
			if re.MatchString(content) {
				risk.Score += 10
				risk.Matched = append(risk.Matched, re.String())
			}
		}
	}

	for _, re := range obfuscationPatterns {
		if re.MatchString(content) {
			risk.Score += 20
			risk.Matched = append(risk.Matched, "obfuscation:"+re.String())
			break
		}
	}

	if risk.Score > 100 {
		risk.Score = 100
	}

	switch {
	case risk.Score >= 70:
		risk.Level = RiskHigh
	case risk.Score >= 40:
		risk.Level = RiskMedium
	case risk.Score >= 10:
		risk.Level = RiskLow
	}
	return risk
}

// ScriptAnalyzer scores every inline script on the page and reports
// the high and medium risk ones.
type ScriptAnalyzer struct{}

// NewScriptAnalyzer returns a ScriptAnalyzer.
func NewScriptAnalyzer() *ScriptAnalyzer {
	return &ScriptAnalyzer{}
}

// Name returns the analyzer identifier.
func (sa *ScriptAnalyzer) Name() string { return "script" }

// Category returns the vector category.
func (sa *ScriptAnalyzer) Category() string { return CategoryScript }

// Analyze implements CheckAnalyzer.
func (sa *ScriptAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	var findings []model.Finding
	for i, script := range data.Page.InlineScripts() {
		risk := scoreScript(script.Content)

		switch {
		case risk.Level == RiskHigh:
			findings = append(findings, model.NewFinding("script_xss",
				fmt.Sprintf("High risk inline script #%d (score %d)", i+1, risk.Score),
				fmt.Sprintf("An inline script scored %d/100 for dangerous API use. Matched: %s. The script executes strings or writes markup directly, so any tainted value it handles becomes executable.", risk.Score, formatMatches(risk.Matched)),
				truncateValue(script.Content, 100),
				data.Page.URL))
		case risk.Level == RiskMedium && risk.Score >= 60:
			findings = append(findings, model.NewFinding("script_medium_risk",
				fmt.Sprintf("Medium risk inline script #%d (score %d)", i+1, risk.Score),
				fmt.Sprintf("An inline script scored %d/100. Matched: %s. The APIs involved are exploitable when fed unvalidated input.", risk.Score, formatMatches(risk.Matched)),
				truncateValue(script.Content, 100),
				data.Page.URL))
		}

		if suspicious := suspiciousJSPatterns(script.Content); len(suspicious) > 0 && risk.Level != RiskHigh {
			findings = append(findings, model.NewFinding("inline_script_xss",
				fmt.Sprintf("Suspicious construct in inline script #%d", i+1),
				fmt.Sprintf("An inline script contains: %s.", formatMatches(suspicious)),
				truncateValue(script.Content, 100),
				data.Page.URL))
		}
	}
	return findings, nil
}

// suspiciousConstructs maps a pattern to its report label.
var suspiciousConstructs = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`document\.write\s*\(`), "document.write call"},
	{regexp.MustCompile(`\.innerHTML\s*=`), "innerHTML assignment"},
	{regexp.MustCompile(`eval\s*\(`), "eval call"},
	{regexp.MustCompile(`location\s*=`), "location assignment"},
	{regexp.MustCompile(`window\.open\s*\(`), "window.open call"},
	{regexp.MustCompile(`document\.cookie`), "cookie access"},
	{regexp.MustCompile(`String\.fromCharCode`), "character-code decoding"},
	{regexp.MustCompile(`unescape\s*\(`), "unescape call"},
}

// suspiciousJSPatterns returns labels for the constructs present in
// the script body.
func suspiciousJSPatterns(content string) []string {
	var labels []string
	for _, c := range suspiciousConstructs {
		if c.re.MatchString(content) {
			labels = append(labels, c.label)
		}
	}
	return labels
}

func formatMatches(matched []string) string {
	return strings.Join(matched, ", ")
}
