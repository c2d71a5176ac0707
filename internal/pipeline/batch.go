package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/urlextract/internal/model"
	"golang.org/x/sync/errgroup"
)

// Target is one seed of a batch together with its crawl depth.
type Target struct {
	Seed  string
	Depth int
}

// Factory builds a fresh pipeline for one target. Pipelines are not shared
// between targets so site-specific settings can differ.
type Factory func(target Target) *Pipeline

// BatchProcessor handles concurrent crawling of multiple seeds.
// It uses errgroup to manage goroutines and respect the concurrency limit.
type BatchProcessor struct {
	// factory creates a new pipeline for each target.
	factory Factory

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls multiple targets concurrently.
//
// Reports are returned in target order. A failed crawl does not stop the
// others; its error is recorded in its report. The returned error is non-nil
// only when the batch was cancelled, in which case reports of targets that
// never started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []Target) ([]*model.CrawlReport, error) {
	results := make([]*model.CrawlReport, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(report *model.CrawlReport, index int) {
		results[index] = report
	})
	return results, err
}

// ProcessBatchWithCallback crawls multiple targets and calls callback for
// each finished crawl. This is useful for streaming results.
//
// The callback receives the report and the index of the target in the
// original slice. It is called from the goroutine that ran the crawl, so it
// must be safe for concurrent use when it touches shared state. Writing to a
// distinct slice index is safe.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []Target,
	callback func(report *model.CrawlReport, index int),
) error {
	bp.logger.Info("starting batch",
		"total_seeds", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			bp.logger.Info("crawling seed",
				"seed", target.Seed,
				"index", i+1,
				"total", len(targets),
			)

			report := model.NewCrawlReport(target.Seed, target.Depth)
			if err := bp.factory(target).Execute(gctx, report); err != nil {
				bp.logger.Warn("crawl failed",
					"seed", target.Seed,
					"error", err,
				)
			} else {
				bp.logger.Info("crawl completed",
					"seed", target.Seed,
					"found", report.FoundCount(),
				)
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	bp.logger.Info("batch complete",
		"total_seeds", len(targets),
		"elapsed", time.Since(startTime),
	)
	return err
}
