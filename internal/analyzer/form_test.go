package analyzer

import (
	"context"
	"testing"
)

func TestFormAnalyzer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want int
	}{
		{
			name: "javascript action",
			html: `<form action="javascript:submitHack()"><input name="x"></form>`,
			want: 1,
		},
		{
			name: "javascript action mixed case",
			html: `<form action="JavaScript:go()"></form>`,
			want: 1,
		},
		{
			name: "regular action",
			html: `<form action="/login" method="post"><input name="user"></form>`,
			want: 0,
		},
		{
			name: "form without action",
			html: `<form><input name="q"></form>`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fa := NewFormAnalyzer()
			findings, err := fa.Analyze(context.Background(), &AnalysisData{Page: testPage(tt.html)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(findings) != tt.want {
				t.Fatalf("expected %d findings, got %d: %+v", tt.want, len(findings), findings)
			}
			if tt.want > 0 && findings[0].Type != "form_action_xss" {
				t.Errorf("expected form_action_xss, got %s", findings[0].Type)
			}
		})
	}
}
