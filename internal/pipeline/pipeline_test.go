package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/vexscan/vexscan/internal/model"
)

// mockStep is a configurable Step for pipeline tests.
type mockStep struct {
	name   string
	err    error
	called bool
	onDo   func(report *model.ScanReport)
}

func (m *mockStep) Do(_ context.Context, report *model.ScanReport) error {
	m.called = true
	if m.onDo != nil {
		m.onDo(report)
	}
	return m.err
}

func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("all steps run in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		first := &mockStep{name: "first", onDo: func(*model.ScanReport) { order = append(order, "first") }}
		second := &mockStep{name: "second", onDo: func(*model.ScanReport) { order = append(order, "second") }}

		p := New(WithLogger(slog.New(slog.DiscardHandler)))
		p.AddSteps(first, second)

		report := model.NewScanReport("http://example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("unexpected execution order: %v", order)
		}
		if len(report.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %v", report.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{name: "failing", err: errors.New("boom")}
		next := &mockStep{name: "next"}

		p := New(WithLogger(slog.New(slog.DiscardHandler)))
		p.AddSteps(failing, next)

		report := model.NewScanReport("http://example.com")
		if err := p.Execute(context.Background(), report); err == nil {
			t.Fatal("expected error")
		}
		if next.called {
			t.Error("expected pipeline to stop before the second step")
		}
		if report.ErrorMessage != "boom" {
			t.Errorf("expected error recorded in report, got %q", report.ErrorMessage)
		}
	})

	t.Run("continueOnError runs remaining steps", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{name: "failing", err: errors.New("boom")}
		next := &mockStep{name: "next"}

		p := New(
			WithLogger(slog.New(slog.DiscardHandler)),
			WithContinueOnError(true),
		)
		p.AddSteps(failing, next)

		report := model.NewScanReport("http://example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !next.called {
			t.Error("expected second step to run")
		}
	})

	t.Run("cancelled context marks report timed out", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := New(WithLogger(slog.New(slog.DiscardHandler)))
		p.AddStep(&mockStep{name: "never"})

		report := model.NewScanReport("http://example.com")
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if !report.TimedOut {
			t.Error("expected report marked as timed out")
		}
	})
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(slog.New(slog.DiscardHandler)))
	p.AddSteps(&mockStep{name: "a"}, &mockStep{name: "b"})

	if p.StepCount() != 2 {
		t.Errorf("expected 2 steps, got %d", p.StepCount())
	}
	names := p.StepNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected step names: %v", names)
	}
}
