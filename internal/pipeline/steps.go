package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/urlextract/internal/classify"
	"github.com/nao1215/urlextract/internal/crawler"
	"github.com/nao1215/urlextract/internal/model"
)

// ResolveStep chooses the canonical origin of the report's seed.
// A seed that cannot be resolved fails the step with crawler.ErrUnreachable.
type ResolveStep struct {
	resolver *crawler.Resolver
}

// NewResolveStep creates a resolve step that probes through f.
func NewResolveStep(f crawler.Fetcher, logger *slog.Logger) *ResolveStep {
	return &ResolveStep{
		resolver: crawler.NewResolver(f, crawler.WithResolverLogger(logger)),
	}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do executes the resolve step.
func (s *ResolveStep) Do(ctx context.Context, report *model.CrawlReport) error {
	base, err := s.resolver.Resolve(ctx, report.Seed)
	if err != nil {
		return err
	}
	report.BaseURL = base
	report.Domain = base.Domain()
	return nil
}

// CrawlStep walks the resolved origin and records every page found.
// On cancellation the partial results are kept in the report.
type CrawlStep struct {
	spider *crawler.Spider
}

// NewCrawlStep creates a crawl step that uses spider.
func NewCrawlStep(spider *crawler.Spider) *CrawlStep {
	return &CrawlStep{spider: spider}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if report.BaseURL == "" {
		return fmt.Errorf("%w: origin not resolved", crawler.ErrInvalidURL)
	}

	result, err := s.spider.Crawl(ctx, report.BaseURL, report.Depth)
	if result != nil {
		report.Found = result.Found
		report.Stats = result.Stats
	}
	return err
}

// ClassifyStep fills the administrative fields of the report.
// Sites that do not look like Peruvian administrative portals are left
// unclassified.
type ClassifyStep struct{}

// NewClassifyStep creates a classify step.
func NewClassifyStep() *ClassifyStep {
	return &ClassifyStep{}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the classify step.
func (s *ClassifyStep) Do(_ context.Context, report *model.CrawlReport) error {
	if !classify.IsAdministrativeSite(report.BaseURL.String()) {
		return nil
	}
	report.AdministrativeSite = true
	report.Administrative = classify.FilterAdministrative(report.Found)
	report.Classification = classify.Classify(report.Administrative)
	return nil
}

// Saver stores a finished crawl report.
type Saver interface {
	Save(ctx context.Context, report *model.CrawlReport) error
}

// PersistStep hands the report to every configured Saver.
// FinishedAt is stamped before saving so stored reports carry their duration.
type PersistStep struct {
	savers []Saver
}

// NewPersistStep creates a persist step.
func NewPersistStep(savers ...Saver) *PersistStep {
	return &PersistStep{savers: savers}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, report *model.CrawlReport) error {
	report.FinishedAt = time.Now()
	for _, saver := range s.savers {
		if err := saver.Save(ctx, report); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
	}
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// SpiderOptions configure the crawl step.
	SpiderOptions []crawler.SpiderOption

	// Savers receive the finished report. No persist step is added when empty.
	Savers []Saver
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineCrawlDelay sets the pause after every successful page fetch.
func WithPipelineCrawlDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SpiderOptions = append(c.SpiderOptions, crawler.WithDelay(delay))
	}
}

// WithPipelineProgress registers a progress callback on the spider.
func WithPipelineProgress(fn func(crawler.Progress)) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SpiderOptions = append(c.SpiderOptions, crawler.WithProgress(fn))
	}
}

// WithPipelineSpiderOptions appends raw spider options.
func WithPipelineSpiderOptions(opts ...crawler.SpiderOption) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SpiderOptions = append(c.SpiderOptions, opts...)
	}
}

// WithPipelineSavers adds savers that receive the finished report.
func WithPipelineSavers(savers ...Saver) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Savers = append(c.Savers, savers...)
	}
}

// DefaultPipeline creates the resolve, crawl, classify and optional persist
// pipeline over fetcher f.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineCrawlDelay, etc).
func DefaultPipeline(f crawler.Fetcher, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}

	spiderOpts := append([]crawler.SpiderOption{crawler.WithLogger(p.logger)}, cfg.SpiderOptions...)

	p.AddSteps(
		NewResolveStep(f, p.logger),
		NewCrawlStep(crawler.NewSpider(f, spiderOpts...)),
		NewClassifyStep(),
	)
	if len(cfg.Savers) > 0 {
		p.AddStep(NewPersistStep(cfg.Savers...))
	}

	return p
}
