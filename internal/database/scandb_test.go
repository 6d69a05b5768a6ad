package database

import (
	"context"
	"testing"
	"time"

	"github.com/vexscan/vexscan/internal/model"
)

func openTestDB(t *testing.T) *ScanDB {
	t.Helper()

	sdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := sdb.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return sdb
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file", func(t *testing.T) {
		t.Parallel()
		openTestDB(t)
	})

	t.Run("missing database without create flag", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestInsertAndGetPage(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()
	target := "http://example.com"

	page := &model.Page{
		URL:            "http://example.com/login",
		StatusCode:     200,
		Title:          "Login",
		Hash:           "abc123",
		ScreenshotPath: "/tmp/s/abc123.png",
		Depth:          1,
	}

	if _, err := sdb.InsertPage(ctx, target, page); err != nil {
		t.Fatalf("failed to insert page: %v", err)
	}

	got, err := sdb.GetPage(ctx, page.URL, target)
	if err != nil {
		t.Fatalf("failed to get page: %v", err)
	}
	if got == nil {
		t.Fatal("expected page record")
	}
	if got.Title != "Login" || got.StatusCode != 200 || got.HTMLHash != "abc123" || got.Depth != 1 {
		t.Errorf("unexpected record: %+v", got)
	}

	t.Run("upsert replaces existing record", func(t *testing.T) {
		page.Title = "Sign in"
		page.StatusCode = 301
		if _, err := sdb.InsertPage(ctx, target, page); err != nil {
			t.Fatalf("failed to upsert page: %v", err)
		}

		got, err := sdb.GetPage(ctx, page.URL, target)
		if err != nil {
			t.Fatalf("failed to get page: %v", err)
		}
		if got.Title != "Sign in" || got.StatusCode != 301 {
			t.Errorf("expected updated record, got %+v", got)
		}
	})

	t.Run("unknown page returns nil", func(t *testing.T) {
		got, err := sdb.GetPage(ctx, "http://example.com/nope", target)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestHasRecentCrawl(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()

	page := &model.Page{URL: "http://example.com/", StatusCode: 200}
	if _, err := sdb.InsertPage(ctx, "http://example.com", page); err != nil {
		t.Fatalf("failed to insert page: %v", err)
	}

	recent, err := sdb.HasRecentCrawl(ctx, page.URL, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recent {
		t.Error("expected recent crawl")
	}

	recent, err = sdb.HasRecentCrawl(ctx, "http://example.com/other", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recent {
		t.Error("expected no recent crawl for unknown URL")
	}
}

func testScanReport(target string) *model.ScanReport {
	report := model.NewScanReport(target)
	report.AddPage(&model.Page{URL: target + "/", StatusCode: 200})
	report.AddFinding(model.Finding{
		Type:         "url_xss",
		Severity:     model.SeverityMedium,
		SeverityText: "Medium",
		Title:        "Link with javascript: target",
		Value:        "javascript:alert(1)",
		Location:     target + "/",
	})
	report.Finalize()
	return report
}

func TestSaveAndGetScanReport(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()
	target := "http://example.com"

	if err := sdb.SaveScanReport(ctx, testScanReport(target)); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	got, err := sdb.GetLatestScanReport(ctx, target)
	if err != nil {
		t.Fatalf("failed to get report: %v", err)
	}
	if got == nil {
		t.Fatal("expected report")
	}
	if got.Target != target {
		t.Errorf("unexpected target %q", got.Target)
	}
	if got.Summary == nil || got.Summary.MediumCount != 1 {
		t.Errorf("expected summary with one medium finding, got %+v", got.Summary)
	}

	t.Run("unknown target returns nil", func(t *testing.T) {
		got, err := sdb.GetLatestScanReport(ctx, "http://other.example")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestScanHistory(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()
	target := "http://example.com"

	for i := 0; i < 3; i++ {
		if err := sdb.SaveScanReport(ctx, testScanReport(target)); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}
	if err := sdb.SaveScanReport(ctx, testScanReport("http://other.example")); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	history, err := sdb.GetScanHistory(ctx, target)
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("expected 3 reports, got %d", len(history))
	}

	targets, err := sdb.ListScannedTargets(ctx)
	if err != nil {
		t.Fatalf("failed to list targets: %v", err)
	}
	if len(targets) != 2 {
		t.Errorf("expected 2 targets, got %v", targets)
	}
}

func TestListScans(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()

	if err := sdb.SaveScanReport(ctx, testScanReport("http://a.example")); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if err := sdb.SaveScanReport(ctx, testScanReport("http://b.example")); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	t.Run("all targets", func(t *testing.T) {
		scans, err := sdb.ListScans(ctx, "")
		if err != nil {
			t.Fatalf("failed to list scans: %v", err)
		}
		if len(scans) != 2 {
			t.Fatalf("expected 2 scans, got %d", len(scans))
		}
		for _, scan := range scans {
			if scan.RiskSummary["medium"] != 1 {
				t.Errorf("expected risk summary with one medium finding, got %v", scan.RiskSummary)
			}
		}
	})

	t.Run("filtered by target", func(t *testing.T) {
		scans, err := sdb.ListScans(ctx, "http://a.example")
		if err != nil {
			t.Fatalf("failed to list scans: %v", err)
		}
		if len(scans) != 1 {
			t.Fatalf("expected 1 scan, got %d", len(scans))
		}
		if scans[0].Target != "http://a.example" {
			t.Errorf("unexpected target %q", scans[0].Target)
		}
	})

	t.Run("report by id", func(t *testing.T) {
		scans, err := sdb.ListScans(ctx, "http://a.example")
		if err != nil {
			t.Fatalf("failed to list scans: %v", err)
		}
		report, err := sdb.GetScanReportByID(ctx, scans[0].ID)
		if err != nil {
			t.Fatalf("failed to get report: %v", err)
		}
		if report == nil || report.Target != "http://a.example" {
			t.Errorf("unexpected report: %+v", report)
		}
	})

	t.Run("missing id returns nil", func(t *testing.T) {
		report, err := sdb.GetScanReportByID(ctx, 99999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report != nil {
			t.Errorf("expected nil, got %+v", report)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"sqlite default", "2026-03-14 10:30:00", false},
		{"iso8601 with z", "2026-03-14T10:30:00Z", false},
		{"rfc3339", "2026-03-14T10:30:00+09:00", false},
		{"garbage", "not-a-timestamp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v, zero = %v", tt.input, got, tt.zero)
			}
		})
	}
}
