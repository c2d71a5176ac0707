package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/nao1215/urlextract/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.CrawlReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, report *model.CrawlReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})

	t.Run("applies WithLogger option", func(t *testing.T) {
		t.Parallel()

		logger := slog.New(slog.DiscardHandler)
		p := New(WithLogger(logger))

		if p.logger != logger {
			t.Error("expected custom logger")
		}
	})
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "test-step"})

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

		names := p.StepNames()
		expected := []string{"first", "second", "third"}
		if len(names) != len(expected) {
			t.Fatalf("expected %d names, got %d", len(expected), len(names))
		}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)
		record := func(name string) func(context.Context, *model.CrawlReport) error {
			return func(_ context.Context, _ *model.CrawlReport) error {
				executionOrder = append(executionOrder, name)
				return nil
			}
		}

		p := New()
		p.AddStep(&mockStep{name: "step-1", doFunc: record("step-1")})
		p.AddStep(&mockStep{name: "step-2", doFunc: record("step-2")})

		report := model.NewCrawlReport("example.com", 2)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executionOrder) != 2 || executionOrder[0] != "step-1" || executionOrder[1] != "step-2" {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
		if len(report.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %v", report.PerformedSteps)
		}
		if report.FinishedAt.IsZero() {
			t.Error("FinishedAt should be set")
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.CrawlReport) error {
				return expectedErr
			},
		})
		p.AddStep(second)

		report := model.NewCrawlReport("example.com", 2)
		err := p.Execute(context.Background(), report)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
		if report.ErrorMessage != "step failed" {
			t.Errorf("ErrorMessage = %q", report.ErrorMessage)
		}
		if !report.Failed() {
			t.Error("report should be failed")
		}
		if report.Cancelled {
			t.Error("report should not be cancelled")
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "should-run"}

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.CrawlReport) error {
				return errors.New("first failure")
			},
		})
		p.AddStep(&mockStep{
			name: "failing-again",
			doFunc: func(_ context.Context, _ *model.CrawlReport) error {
				return errors.New("second failure")
			},
		})
		p.AddStep(second)

		report := model.NewCrawlReport("example.com", 2)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Errorf("expected nil error with continueOnError, got %v", err)
		}
		if second.callCount != 1 {
			t.Error("last step should have been called")
		}
		if report.ErrorMessage != "first failure" {
			t.Errorf("expected first error to be kept, got %q", report.ErrorMessage)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "should-not-run"}
		p := New()
		p.AddStep(step)

		report := model.NewCrawlReport("example.com", 2)
		err := p.Execute(ctx, report)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not have been called")
		}
		if !report.Cancelled {
			t.Error("report.Cancelled should be true")
		}
	})

	t.Run("cancellation inside a step stops even with continueOnError", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		next := &mockStep{name: "next"}
		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "cancelling",
			doFunc: func(ctx context.Context, _ *model.CrawlReport) error {
				cancel()
				return ctx.Err()
			},
		})
		p.AddStep(next)

		report := model.NewCrawlReport("example.com", 2)
		err := p.Execute(ctx, report)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if next.callCount != 0 {
			t.Error("next step should not have been called")
		}
		if !report.Cancelled {
			t.Error("report.Cancelled should be true")
		}
	})
}
