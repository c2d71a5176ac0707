package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/urlextract/internal/config"
	"github.com/nao1215/urlextract/internal/crawler"
	"github.com/nao1215/urlextract/internal/database"
	"github.com/nao1215/urlextract/internal/fetch"
	"github.com/nao1215/urlextract/internal/job"
	"github.com/nao1215/urlextract/internal/model"
	"github.com/nao1215/urlextract/internal/pipeline"
	"github.com/nao1215/urlextract/internal/server"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server and jobs.
const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for crawl jobs",
		Long: `Serve starts an HTTP server that runs crawls as background jobs.

Endpoints:
  POST   /extract       {"url": "...", "depth": 2} starts a job, returns {"job_id"}
  POST   /extract?sync=1 runs the crawl and returns its summary
  GET    /status/{id}   job progress, counts and tier lists
  GET    /result/{id}   download the result file
  GET    /jobs          list jobs
  DELETE /jobs/{id}     cancel a job
  GET    /history       stored crawls (when --save is on)
  GET    /health        liveness probe

The PORT environment variable sets the default listen port.

Examples:
  urlextract serve
  urlextract serve -l 127.0.0.1:8080 --max-jobs 2 --log-json`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Listen address (default port taken from $PORT when set)")
	cmd.Flags().Int("max-jobs", config.DefaultMaxJobs,
		"Maximum number of crawl jobs running at once")
	cmd.Flags().StringP("results-dir", "r", config.DefaultResultsDir(),
		"Directory for result files")
	addFetchFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg, slog.LevelInfo)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServer(ctx, cfg, logger)
}

// buildServeConfig creates a Config from the serve command flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := buildBaseConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("listen") {
		if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
			return nil, err
		}
	}
	if cfg.MaxJobs, err = cmd.Flags().GetInt("max-jobs"); err != nil {
		return nil, err
	}
	if cfg.ResultsDir, err = cmd.Flags().GetString("results-dir"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newJobFactory builds the pipelines run by the job manager. Each job gets a
// client configured for its site.
func newJobFactory(cfg *config.Config, db *database.HistoryDB, limiter *fetch.HostLimiter, logger *slog.Logger) job.PipelineFactory {
	return func(target pipeline.Target, progress func(crawler.Progress)) *pipeline.Pipeline {
		siteCfg := cfg.Apply(target.Seed)
		pipelineOpts := []pipeline.Option{pipeline.WithLogger(logger)}

		client, err := newFetchClient(siteCfg, limiter, logger)
		if err != nil {
			p := pipeline.New(pipelineOpts...)
			p.AddStep(failStep{err: fmt.Errorf("failed to create HTTP client: %w", err)})
			return p
		}

		configOpts := []pipeline.DefaultPipelineOption{
			pipeline.WithPipelineCrawlDelay(siteCfg.CrawlDelay),
			pipeline.WithPipelineProgress(progress),
		}
		if db != nil {
			configOpts = append(configOpts, pipeline.WithPipelineSavers(db))
		}
		return pipeline.DefaultPipeline(client, pipelineOpts, configOpts...)
	}
}

// failStep is a pipeline step that always fails with err.
type failStep struct {
	err error
}

func (s failStep) Name() string { return "setup" }

func (s failStep) Do(context.Context, *model.CrawlReport) error { return s.err }

// runServer serves the API until ctx is done, then drains jobs.
func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var db *database.HistoryDB
	if cfg.SaveToDB && cfg.DBDir != "" {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	manager := job.NewManager(ctx,
		newJobFactory(cfg, db, newHostLimiter(cfg), logger),
		job.WithResultsDir(cfg.ResultsDir),
		job.WithMaxJobs(cfg.MaxJobs),
		job.WithLogger(logger),
	)

	serverOpts := []server.Option{server.WithLogger(logger)}
	if db != nil {
		serverOpts = append(serverOpts, server.WithHistory(db))
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.New(manager, serverOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server listening",
		"addr", cfg.ListenAddress,
		"resultsDir", cfg.ResultsDir,
		"maxJobs", cfg.MaxJobs,
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("job manager shutdown error", "error", err)
	}
	return nil
}
