package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vexscan/vexscan/internal/browser"
	"github.com/vexscan/vexscan/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("crawls pages into the report", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><head><title>home</title></head><body><a href="/next">next</a></body></html>`))
		})
		mux.HandleFunc("/next", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><head><title>next</title></head><body>done</body></html>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		renderer := browser.NewHTTP(browser.Options{})
		defer renderer.Close()

		step := NewCrawlStep(renderer,
			WithCrawlMaxDepth(1),
			WithCrawlDelay(0),
			WithCrawlLogger(discardLogger()),
		)
		if step.Name() != "crawl" {
			t.Errorf("unexpected step name %q", step.Name())
		}

		report := model.NewScanReport(server.URL)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 2 {
			t.Errorf("expected 2 pages, got %d", len(report.Pages))
		}
	})

	t.Run("unreachable target yields empty report", func(t *testing.T) {
		t.Parallel()

		renderer := browser.NewHTTP(browser.Options{})
		defer renderer.Close()

		step := NewCrawlStep(renderer,
			WithCrawlDelay(0),
			WithCrawlLogger(discardLogger()),
		)

		report := model.NewScanReport("http://127.0.0.1:1/")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("crawl errors should be non-fatal, got: %v", err)
		}
		if len(report.Pages) != 0 {
			t.Errorf("expected no pages, got %d", len(report.Pages))
		}
	})
}

func TestAnalyzeStep(t *testing.T) {
	t.Parallel()

	t.Run("findings reach the report", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("http://example.com")
		report.AddPage(&model.Page{
			URL:  "http://example.com/",
			HTML: `<html><body><a href="javascript:alert(1)">x</a><input name="q" onfocus="f()"></body></html>`,
		})

		step := NewAnalyzeStep(WithAnalyzeLogger(discardLogger()))
		if step.Name() != "analyze" {
			t.Errorf("unexpected step name %q", step.Name())
		}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Summary == nil || !report.Summary.HasFindings() {
			t.Fatal("expected findings in report summary")
		}
	})

	t.Run("no pages is a no-op", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("http://example.com")
		step := NewAnalyzeStep(WithAnalyzeLogger(discardLogger()))
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Summary != nil && report.Summary.HasFindings() {
			t.Error("expected no findings")
		}
	})

	t.Run("concurrency across many pages", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport("http://example.com")
		for i := 0; i < 20; i++ {
			report.AddPage(&model.Page{
				URL:  "http://example.com/" + string(rune('a'+i)),
				HTML: `<div onclick="eval(x)">x</div>`,
			})
		}

		step := NewAnalyzeStep(
			WithAnalyzeConcurrency(8),
			WithAnalyzeLogger(discardLogger()),
		)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Summary == nil || report.Summary.TotalFindings() == 0 {
			t.Error("expected findings from concurrent analysis")
		}
	})
}

func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	renderer := browser.NewHTTP(browser.Options{})
	defer renderer.Close()

	p := DefaultPipeline(renderer,
		[]Option{WithLogger(discardLogger())},
		WithPipelineCrawlDepth(1),
		WithPipelineCrawlMaxPages(5),
		WithPipelineCrawlDelay(0),
	)

	names := p.StepNames()
	if len(names) != 2 || names[0] != "crawl" || names[1] != "analyze" {
		t.Errorf("unexpected pipeline steps: %v", names)
	}
}
