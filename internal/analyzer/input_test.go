package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/vexscan/vexscan/internal/model"
)

func TestInputAnalyzer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		wantType string
		want     int
	}{
		{
			name:     "input with event handler",
			html:     `<input name="search" onfocus="track()">`,
			wantType: "input_xss",
			want:     1,
		},
		{
			name:     "textarea with event handler",
			html:     `<textarea id="bio" onchange="save()"></textarea>`,
			wantType: "input_xss",
			want:     1,
		},
		{
			name:     "input with javascript attribute value",
			html:     `<input name="u" data-next="javascript:alert(1)">`,
			wantType: "input_xss",
			want:     1,
		},
		{
			name:     "select option with javascript value",
			html:     `<select name="dest"><option value="javascript:go()">go</option></select>`,
			wantType: "input_xss",
			want:     1,
		},
		{
			name: "plain input",
			html: `<input type="text" name="email" placeholder="you@example.com">`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ia := NewInputAnalyzer()
			findings, err := ia.Analyze(context.Background(), &AnalysisData{Page: testPage(tt.html)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(findings) != tt.want {
				t.Fatalf("expected %d findings, got %d: %+v", tt.want, len(findings), findings)
			}
			if tt.want > 0 && findings[0].Type != tt.wantType {
				t.Errorf("expected type %s, got %s", tt.wantType, findings[0].Type)
			}
		})
	}
}

func TestInputAnalyzerDangerousUsage(t *testing.T) {
	t.Parallel()

	page := testPage(`<input name="comment">`)
	page.Scripts = []model.Script{
		{Inline: true, Content: `var v = document.getElementsByName("comment")[0].value; out.innerHTML = v;`},
	}

	ia := NewInputAnalyzer()
	findings, err := ia.Analyze(context.Background(), &AnalysisData{Page: page})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, f := range findings {
		if f.Type == "input_dangerous_usage" {
			found = true
			if f.Severity != model.SeverityHigh {
				t.Errorf("expected high severity, got %v", f.Severity)
			}
		}
	}
	if !found {
		t.Errorf("expected input_dangerous_usage finding, got %+v", findings)
	}
}

func TestInputAnalyzerVisualCorroboration(t *testing.T) {
	t.Parallel()

	data := &AnalysisData{
		Page:         testPage(`<input name="q" onfocus="x()">`),
		VisualFields: []Rect{{X: 10, Y: 10, W: 200, H: 30}},
	}

	ia := NewInputAnalyzer()
	findings, err := ia.Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if !strings.Contains(findings[0].Description, "1 rendered input field") {
		t.Errorf("expected visual corroboration in description, got %q", findings[0].Description)
	}
}
