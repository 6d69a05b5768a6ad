package analyzer

import (
	"context"
	"testing"

	"github.com/vexscan/vexscan/internal/model"
)

func TestScoreScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		wantScore int
		wantLevel string
	}{
		{
			name:      "empty script",
			content:   "",
			wantScore: 0,
			wantLevel: RiskNone,
		},
		{
			name:      "single high risk call",
			content:   "eval(data);",
			wantScore: 25,
			wantLevel: RiskLow,
		},
		{
			name:      "three high risk calls",
			content:   `eval(a); document.write(b); el.innerHTML = c;`,
			wantScore: 75,
			wantLevel: RiskHigh,
		},
		{
			name:      "medium risk only",
			content:   `fetch(url); var x = new XMLHttpRequest();`,
			wantScore: 20,
			wantLevel: RiskLow,
		},
		{
			name:      "medium risk ignored when high risk present",
			content:   `eval(a); fetch(url);`,
			wantScore: 25,
			wantLevel: RiskLow,
		},
		{
			name:      "obfuscation bonus",
			content:   `eval(String.fromCharCode(97, 98));`,
			wantScore: 45,
			wantLevel: RiskMedium,
		},
		{
			name:      "score capped at 100",
			content:   "eval(a); document.write(b); el.innerHTML = c; el.outerHTML = d; setTimeout('x', 1); atob(p);",
			wantScore: 100,
			wantLevel: RiskHigh,
		},
		{
			name:      "benign script",
			content:   `var greeting = "hello"; console.log(greeting);`,
			wantScore: 0,
			wantLevel: RiskNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			risk := scoreScript(tt.content)
			if risk.Score != tt.wantScore {
				t.Errorf("expected score %d, got %d (matched %v)", tt.wantScore, risk.Score, risk.Matched)
			}
			if risk.Level != tt.wantLevel {
				t.Errorf("expected level %s, got %s", tt.wantLevel, risk.Level)
			}
		})
	}
}

func TestScriptAnalyzer(t *testing.T) {
	t.Parallel()

	t.Run("high risk script", func(t *testing.T) {
		t.Parallel()

		page := testPage("<html></html>")
		page.Scripts = []model.Script{
			{Inline: true, Content: `eval(a); document.write(b); el.innerHTML = c;`},
		}

		sa := NewScriptAnalyzer()
		findings, err := sa.Analyze(context.Background(), &AnalysisData{Page: page})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
		}
		if findings[0].Type != "script_xss" {
			t.Errorf("expected script_xss, got %s", findings[0].Type)
		}
		if findings[0].Severity != model.SeverityHigh {
			t.Errorf("expected high severity, got %v", findings[0].Severity)
		}
	})

	t.Run("medium risk with elevated score", func(t *testing.T) {
		t.Parallel()

		page := testPage("<html></html>")
		page.Scripts = []model.Script{
			{Inline: true, Content: `fetch(u); new XMLHttpRequest(); img.src = s; document.createElement("div"); String.fromCharCode(65);`},
		}

		sa := NewScriptAnalyzer()
		findings, err := sa.Analyze(context.Background(), &AnalysisData{Page: page})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var types []string
		for _, f := range findings {
			types = append(types, f.Type)
		}
		if len(findings) == 0 || findings[0].Type != "script_medium_risk" {
			t.Errorf("expected script_medium_risk first, got %v", types)
		}
	})

	t.Run("suspicious construct below high risk", func(t *testing.T) {
		t.Parallel()

		page := testPage("<html></html>")
		page.Scripts = []model.Script{
			{Inline: true, Content: `var c = document.cookie;`},
		}

		sa := NewScriptAnalyzer()
		findings, err := sa.Analyze(context.Background(), &AnalysisData{Page: page})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
		}
		if findings[0].Type != "inline_script_xss" {
			t.Errorf("expected inline_script_xss, got %s", findings[0].Type)
		}
	})

	t.Run("external scripts skipped", func(t *testing.T) {
		t.Parallel()

		page := testPage("<html></html>")
		page.Scripts = []model.Script{
			{Inline: false, Src: "http://example.com/app.js"},
		}

		sa := NewScriptAnalyzer()
		findings, err := sa.Analyze(context.Background(), &AnalysisData{Page: page})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings for external scripts, got %d", len(findings))
		}
	})
}
