package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vexscan/vexscan/internal/model"
)

func testSummary() *model.Summary {
	return &model.Summary{
		Target:       "http://example.com",
		DateScanned:  time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		PagesCrawled: 3,
		HighCount:    1,
		MediumCount:  1,
		Findings: []model.Finding{
			{
				Type:           "script_xss",
				Severity:       model.SeverityHigh,
				SeverityText:   "High",
				Title:          "High risk inline script #1 (score 75)",
				Description:    "An inline script uses dangerous APIs.",
				Recommendation: "Avoid eval and document.write.",
				Value:          "eval(payload)",
				Location:       "http://example.com/page",
				Screenshot:     "/tmp/screens/abc123.png",
			},
			{
				Type:         "url_xss",
				Severity:     model.SeverityMedium,
				SeverityText: "Medium",
				Title:        "Link with javascript: target",
				Description:  "An anchor navigates to a javascript: URL.",
				Value:        "javascript:alert(1)",
				Location:     "http://example.com/",
			},
		},
	}
}

func testReport() *model.ScanReport {
	report := model.NewScanReport("http://example.com")
	report.AddPage(&model.Page{URL: "http://example.com/", StatusCode: 200})
	for _, f := range testSummary().Findings {
		report.AddFinding(f)
	}
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		n, err := w.WriteSummary(testSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected bytes written")
		}

		out := buf.String()
		for _, want := range []string{
			"VEXSCAN REPORT",
			"Target:        http://example.com",
			"SEVERITY SUMMARY",
			"HIGH:     1",
			"VECTOR TYPES",
			"Script XSS",
			"FINDINGS",
			"Link with javascript: target",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("verbose includes descriptions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))
		if _, err := w.WriteSummary(testSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Avoid eval and document.write.") {
			t.Error("expected recommendation in verbose output")
		}
	})

	t.Run("full report finalizes summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Pages Crawled: 1") {
			t.Error("expected page count from finalized report")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary round trip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		if _, err := w.WriteSummary(testSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if decoded.Target != "http://example.com" {
			t.Errorf("unexpected target %q", decoded.Target)
		}
		if len(decoded.Findings) != 2 {
			t.Errorf("expected 2 findings, got %d", len(decoded.Findings))
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())
		if _, err := w.WriteSummary(testSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")
		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var wrapped JSONReport
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if wrapped.Version != "1.2.3" {
			t.Errorf("expected version 1.2.3, got %q", wrapped.Version)
		}
		if wrapped.Summary == nil {
			t.Error("expected summary in wrapped report")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("findings render", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		if _, err := w.WriteSummary(testSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# XSS Scan Report",
			"## Severity Summary",
			"## Vector Types",
			"## Findings",
			"Link with javascript: target",
			"mermaid",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("no findings", func(t *testing.T) {
		t.Parallel()

		summary := &model.Summary{
			Target:      "http://example.com",
			DateScanned: time.Now(),
		}

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		if _, err := w.WriteSummary(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No XSS vectors detected.") {
			t.Error("expected empty-report text")
		}
	})
}

func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	t.Run("full report layout", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewHTMLWriter(&buf)
		n, err := w.WriteSummary(testSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected bytes written")
		}

		out := buf.String()
		for _, want := range []string{
			"<!DOCTYPE html>",
			"http://example.com",
			"severity-high",
			"vulnerability-card",
			"screenshots/abc123.png",
			"screenshot-modal",
			"Recommendation",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("finding values are escaped", func(t *testing.T) {
		t.Parallel()

		summary := testSummary()
		summary.Findings[0].Value = `<script>alert("boom")</script>`

		var buf bytes.Buffer
		w := NewHTMLWriter(&buf)
		if _, err := w.WriteSummary(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), `<script>alert("boom")</script>`) {
			t.Error("finding value rendered unescaped")
		}
	})

	t.Run("empty report page", func(t *testing.T) {
		t.Parallel()

		summary := &model.Summary{
			Target:       "http://example.com",
			DateScanned:  time.Now(),
			PagesCrawled: 4,
		}

		var buf bytes.Buffer
		w := NewHTMLWriter(&buf)
		if _, err := w.WriteSummary(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "No XSS vectors found") {
			t.Error("expected empty-report page")
		}
		if strings.Contains(out, "vulnerability-card") {
			t.Error("empty report should not contain finding cards")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, html bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewHTMLWriter(&html))

	n, err := mw.WriteSummary(testSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text.Len() == 0 || html.Len() == 0 {
		t.Error("expected output in both writers")
	}
	if n != text.Len()+html.Len() {
		t.Errorf("expected total %d, got %d", text.Len()+html.Len(), n)
	}
}

func TestCountByType(t *testing.T) {
	t.Parallel()

	findings := []model.Finding{
		{Type: "url_xss"},
		{Type: "script_xss"},
		{Type: "url_xss"},
	}

	counts := countByType(findings)
	if len(counts) != 2 {
		t.Fatalf("expected 2 types, got %d", len(counts))
	}
	if counts[0].Type != "url_xss" || counts[0].Count != 2 {
		t.Errorf("expected url_xss first with count 2, got %+v", counts[0])
	}
}

func TestTypeLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"input_xss", "Input XSS"},
		{"event_handler_critical", "Event Handler Critical"},
		{"script_medium_risk", "Script Medium Risk"},
	}

	for _, tt := range tests {
		if got := typeLabel(tt.in); got != tt.want {
			t.Errorf("typeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := truncateString("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncateString("abcdefghij", 8); got != "abcde..." {
		t.Errorf("unexpected %q", got)
	}
}
