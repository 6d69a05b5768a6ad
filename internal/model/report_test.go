package model

import (
	"errors"
	"testing"
)

// TestNewScanReport tests report construction.
func TestNewScanReport(t *testing.T) {
	t.Parallel()

	report := NewScanReport("http://example.com")

	if report.Target != "http://example.com" {
		t.Errorf("got target %q, expected %q", report.Target, "http://example.com")
	}
	if report.DateScanned.IsZero() {
		t.Error("expected DateScanned to be set")
	}
	if report.Crawls == nil {
		t.Error("expected Crawls map to be initialized")
	}
}

// TestScanReportAddPage tests page recording.
func TestScanReportAddPage(t *testing.T) {
	t.Parallel()

	report := NewScanReport("http://example.com")
	report.AddPage(&Page{URL: "http://example.com/", StatusCode: 200})
	report.AddPage(&Page{URL: "http://example.com/about", StatusCode: 404})

	if len(report.Pages) != 2 {
		t.Fatalf("got %d pages, expected 2", len(report.Pages))
	}
	if report.Crawls["http://example.com/about"] != 404 {
		t.Errorf("got status %d, expected 404", report.Crawls["http://example.com/about"])
	}
}

// TestScanReportAddFinding tests finding aggregation and deduplication.
func TestScanReportAddFinding(t *testing.T) {
	t.Parallel()

	t.Run("initializes summary and counts by severity", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("http://example.com")
		report.AddFinding(NewFinding("input_dangerous_usage", "Dangerous Input Usage",
			"input value reaches eval", "username", "http://example.com/login"))
		report.AddFinding(NewFinding("event_handler_xss", "Event Handler",
			"onclick handler found", "onclick", "http://example.com/"))

		if report.Summary == nil {
			t.Fatal("expected summary to be initialized")
		}
		if report.Summary.HighCount != 1 {
			t.Errorf("got %d high findings, expected 1", report.Summary.HighCount)
		}
		if report.Summary.MediumCount != 1 {
			t.Errorf("got %d medium findings, expected 1", report.Summary.MediumCount)
		}
		if report.Summary.TotalFindings() != 2 {
			t.Errorf("got %d findings, expected 2", report.Summary.TotalFindings())
		}
	})

	t.Run("drops duplicate findings", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("http://example.com")
		finding := NewFinding("url_xss", "Suspicious Link",
			"javascript: URL in href", "javascript:alert(1)", "http://example.com/")
		report.AddFinding(finding)
		report.AddFinding(finding)

		if report.Summary.TotalFindings() != 1 {
			t.Errorf("got %d findings, expected 1", report.Summary.TotalFindings())
		}
		if report.Summary.MediumCount != 1 {
			t.Errorf("got %d medium findings, expected 1", report.Summary.MediumCount)
		}
	})

	t.Run("same value at different locations is kept", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("http://example.com")
		report.AddFinding(NewFinding("url_xss", "Suspicious Link",
			"javascript: URL in href", "javascript:alert(1)", "http://example.com/a"))
		report.AddFinding(NewFinding("url_xss", "Suspicious Link",
			"javascript: URL in href", "javascript:alert(1)", "http://example.com/b"))

		if report.Summary.TotalFindings() != 2 {
			t.Errorf("got %d findings, expected 2", report.Summary.TotalFindings())
		}
	})
}

// TestScanReportFinalize tests summary synchronization.
func TestScanReportFinalize(t *testing.T) {
	t.Parallel()

	t.Run("creates empty summary when no findings exist", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("http://example.com")
		report.AddPage(&Page{URL: "http://example.com/", StatusCode: 200})
		report.Finalize()

		if report.Summary == nil {
			t.Fatal("expected summary after Finalize")
		}
		if report.Summary.PagesCrawled != 1 {
			t.Errorf("got %d pages crawled, expected 1", report.Summary.PagesCrawled)
		}
		if report.Summary.HasFindings() {
			t.Error("expected no findings")
		}
	})

	t.Run("propagates error and timeout state", func(t *testing.T) {
		t.Parallel()

		report := NewScanReport("http://example.com")
		report.TimedOut = true
		report.Error = errors.New("scan aborted")
		report.Finalize()

		if !report.Summary.TimedOut {
			t.Error("expected TimedOut in summary")
		}
		if report.Summary.Error != "scan aborted" {
			t.Errorf("got error %q, expected %q", report.Summary.Error, "scan aborted")
		}
		if report.ErrorMessage != "scan aborted" {
			t.Errorf("got error message %q, expected %q", report.ErrorMessage, "scan aborted")
		}
	})
}

// TestNewFinding tests finding construction from the shared mapping.
func TestNewFinding(t *testing.T) {
	t.Parallel()

	t.Run("fills metadata for known types", func(t *testing.T) {
		t.Parallel()

		f := NewFinding("script_xss", "High-Risk Script", "risky script", "eval(", "http://example.com/")
		if f.Severity != SeverityHigh {
			t.Errorf("got severity %v, expected %v", f.Severity, SeverityHigh)
		}
		if f.SeverityText != "HIGH" {
			t.Errorf("got severity text %q, expected %q", f.SeverityText, "HIGH")
		}
		if f.Impact == "" || f.Recommendation == "" {
			t.Error("expected impact and recommendation to be filled")
		}
	})

	t.Run("unknown types default to medium", func(t *testing.T) {
		t.Parallel()

		f := NewFinding("mystery", "Mystery", "", "", "")
		if f.Severity != SeverityMedium {
			t.Errorf("got severity %v, expected %v", f.Severity, SeverityMedium)
		}
	})
}

// TestSummaryFindingsBySeverity tests severity filtering.
func TestSummaryFindingsBySeverity(t *testing.T) {
	t.Parallel()

	report := NewScanReport("http://example.com")
	report.AddFinding(NewFinding("script_xss", "a", "", "1", ""))
	report.AddFinding(NewFinding("url_xss", "b", "", "2", ""))
	report.AddFinding(NewFinding("input_dangerous_usage", "c", "", "3", ""))

	high := report.Summary.FindingsBySeverity(SeverityHigh)
	if len(high) != 2 {
		t.Errorf("got %d high findings, expected 2", len(high))
	}
	if len(report.Summary.FindingsBySeverity(SeverityCritical)) != 0 {
		t.Error("expected no critical findings")
	}
}
