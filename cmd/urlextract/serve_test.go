package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nao1215/urlextract/internal/config"
	"github.com/nao1215/urlextract/internal/database"
	"github.com/nao1215/urlextract/internal/fetch"
	"github.com/nao1215/urlextract/internal/job"
	"github.com/nao1215/urlextract/internal/model"
)

func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()
	for _, name := range []string{"listen", "max-jobs", "results-dir", "delay", "proxy", "data-dir", "save"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

func TestBuildServeConfig(t *testing.T) {
	t.Parallel()

	serve, _, err := NewRootCmd().Find([]string{"serve"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	args := []string{"-c", writeTestConfig(t), "-l", "127.0.0.1:0", "--max-jobs", "2", "-r", t.TempDir()}
	if err := serve.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg, err := buildServeConfig(serve)
	if err != nil {
		t.Fatalf("buildServeConfig() error = %v", err)
	}
	if cfg.ListenAddress != "127.0.0.1:0" {
		t.Errorf("ListenAddress = %q", cfg.ListenAddress)
	}
	if cfg.MaxJobs != 2 {
		t.Errorf("MaxJobs = %d, want 2", cfg.MaxJobs)
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("ValidateServer() error = %v", err)
	}
}

func newTestManager(t *testing.T, factory job.PipelineFactory) *job.Manager {
	t.Helper()

	m := job.NewManager(context.Background(), factory,
		job.WithResultsDir(t.TempDir()),
		job.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	})
	return m
}

func TestNewJobFactory(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("crawls and stores the report", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t)
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close()

		cfg := config.NewConfig()
		cfg.CrawlDelay = 0
		m := newTestManager(t, newJobFactory(cfg, db, fetch.NewHostLimiter(time.Millisecond, 1), logger))

		submitted, err := m.Submit(srv.URL, 2)
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		j, err := m.Wait(ctx, submitted.ID)
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if j.State != model.JobDone {
			t.Fatalf("State = %s (%s), want done", j.State, j.Message)
		}
		if j.Report.FoundCount() != 3 {
			t.Errorf("FoundCount() = %d, want 3", j.Report.FoundCount())
		}

		reports, err := db.ListReports(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("ListReports() error = %v", err)
		}
		if len(reports) != 1 || reports[0].FoundCount != 3 {
			t.Errorf("stored reports = %+v", reports)
		}
	})

	t.Run("bad proxy fails the job", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.ProxyAddress = "no-port"
		m := newTestManager(t, newJobFactory(cfg, nil, nil, logger))

		submitted, err := m.Submit("example.com", 1)
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		j, err := m.Wait(ctx, submitted.ID)
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if j.State != model.JobError {
			t.Fatalf("State = %s, want error", j.State)
		}
		if !errors.Is(j.Report.Error, fetch.ErrInvalidProxyAddress) {
			t.Errorf("Report.Error = %v, want ErrInvalidProxyAddress", j.Report.Error)
		}
	})
}
