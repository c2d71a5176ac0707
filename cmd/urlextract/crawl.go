package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/urlextract/internal/config"
	"github.com/nao1215/urlextract/internal/crawler"
	"github.com/nao1215/urlextract/internal/database"
	"github.com/nao1215/urlextract/internal/fetch"
	"github.com/nao1215/urlextract/internal/model"
	"github.com/nao1215/urlextract/internal/pipeline"
	"github.com/nao1215/urlextract/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [site...]",
		Short: "Crawl one or more sites and list their URLs",
		Long: `Crawl resolves each site to a reachable origin, follows every same-origin
link up to the discovery budget of the chosen depth, and reports the pages it
found. Administrative portals get their pages sorted into departamentos,
provincias and distritos.

The result file (urls_<domain>.txt or urls_administrativas_<domain>.txt) is
written to --results-dir. Press Ctrl+C to stop a crawl and keep partial results.

Examples:
  # Crawl the default portal (enperu.org) at depth 2
  urlextract crawl

  # Crawl a site at depth 3
  urlextract crawl -d 3 https://www.example.gob.pe

  # Crawl several sites, two at a time
  urlextract crawl -b 2 site1.pe site2.pe site3.pe

  # Write a Markdown report
  urlextract crawl -f markdown -o report.md enperu.org

  # Write an Excel workbook with one sheet per tier
  urlextract crawl -f xlsx enperu.org

Configuration file (.urlextract) example:
  sites:
    enperu.org:
      depth: 3
      delay: 1s`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("depth", "d", config.DefaultDepth,
		"Crawl depth (1-5); values outside the range are clamped")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites crawled concurrently")
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Report format: "+strings.Join(config.Formats, ", "))
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file (single site only)")
	cmd.Flags().StringP("results-dir", "r", ".",
		"Directory for result files")
	cmd.Flags().BoolP("quiet", "q", false,
		"Do not print every URL while crawling")
	addFetchFlags(cmd)

	return cmd
}

// crawlOptions are settings of the crawl command that are not part of Config.
type crawlOptions struct {
	quiet  bool
	out    io.Writer
	errOut io.Writer
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCrawl(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.OutputFile != "" && len(cfg.Seeds) > 1 {
		return errors.New("--output can only be used with a single site")
	}

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg, slog.LevelWarn)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, crawlOptions{
		quiet:  quiet,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	})
}

// buildCrawlConfig creates a Config from the crawl command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildBaseConfig(cmd)
	if err != nil {
		return nil, err
	}

	depth, err := cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}
	cfg.Depth = config.ClampDepth(depth)

	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.Format, err = cmd.Flags().GetString("format"); err != nil {
		return nil, err
	}
	cfg.Format = strings.ToLower(cfg.Format)
	if cfg.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.ResultsDir, err = cmd.Flags().GetString("results-dir"); err != nil {
		return nil, err
	}

	for _, arg := range args {
		if seed := strings.TrimSpace(arg); seed != "" {
			cfg.Seeds = append(cfg.Seeds, seed)
		}
	}
	if len(cfg.Seeds) == 0 {
		cfg.Seeds = []string{config.DefaultSeed}
	}

	return cfg, nil
}

// crawlSite is the resolved configuration and client of one seed.
type crawlSite struct {
	config *config.Config
	client *fetch.Client
}

// runCrawl crawls every seed of cfg and writes the reports.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts crawlOptions) error {
	logger.Info("starting crawl",
		"seeds", len(cfg.Seeds),
		"depth", cfg.Depth,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

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

	limiter := newHostLimiter(cfg)
	sites := make(map[string]crawlSite, len(cfg.Seeds))
	targets := make([]pipeline.Target, 0, len(cfg.Seeds))
	for _, seed := range cfg.Seeds {
		siteCfg := cfg.Apply(seed)
		client, err := newFetchClient(siteCfg, limiter, logger)
		if err != nil {
			return fmt.Errorf("failed to create HTTP client for %s: %w", seed, err)
		}
		sites[seed] = crawlSite{config: siteCfg, client: client}
		targets = append(targets, pipeline.Target{Seed: seed, Depth: siteCfg.Depth})
	}

	var mu sync.Mutex
	progress := func(p crawler.Progress) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(opts.errOut, "Explorando (%d): %s\n", p.Visited, p.URL)
	}

	factory := func(target pipeline.Target) *pipeline.Pipeline {
		site := sites[target.Seed]
		configOpts := []pipeline.DefaultPipelineOption{
			pipeline.WithPipelineCrawlDelay(site.config.CrawlDelay),
		}
		if !opts.quiet {
			configOpts = append(configOpts, pipeline.WithPipelineProgress(progress))
		}
		if db != nil {
			configOpts = append(configOpts, pipeline.WithPipelineSavers(db))
		}
		return pipeline.DefaultPipeline(site.client, []pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	start := time.Now()
	var failures []error
	err := bp.ProcessBatchWithCallback(ctx, targets, func(rep *model.CrawlReport, _ int) {
		mu.Lock()
		defer mu.Unlock()

		if rep.Cancelled {
			classifyPartial(rep)
		}
		if err := outputReport(cfg, rep, opts.out, opts.errOut); err != nil {
			logger.Error("report failed", "seed", rep.Seed, "error", err)
			failures = append(failures, err)
		}
		if rep.Failed() && !rep.Cancelled {
			failures = append(failures, fmt.Errorf("%s: %s", rep.Seed, rep.ErrorMessage))
		}
	})

	if len(cfg.Seeds) > 1 {
		fmt.Fprintf(opts.errOut, "\nCrawled %d sites in %s\n", len(cfg.Seeds), elapsed(start))
	}

	switch {
	case errors.Is(err, context.Canceled):
		return errors.New("crawl interrupted: results are partial")
	case err != nil:
		return err
	case len(failures) == 1:
		return failures[0]
	case len(failures) > 1:
		return fmt.Errorf("%d of %d crawls failed", len(failures), len(cfg.Seeds))
	}
	return nil
}

// classifyPartial classifies the URLs an interrupted crawl found so far.
func classifyPartial(rep *model.CrawlReport) {
	if rep.BaseURL == "" || rep.Classification != nil {
		return
	}
	_ = pipeline.NewClassifyStep().Do(context.Background(), rep) //nolint:errcheck // classification does not fail
}

// outputReport prints the terminal summary, writes the result file and, when
// requested, the report in the chosen format.
func outputReport(cfg *config.Config, rep *model.CrawlReport, out, errOut io.Writer) error {
	formatted := cfg.Format != config.FormatText || cfg.OutputFile != ""

	// The summary goes to stderr when stdout carries the formatted report.
	summaryOut := out
	if formatted && cfg.OutputFile == "" && cfg.Format != config.FormatXLSX {
		summaryOut = errOut
	}
	if _, err := report.NewSimpleWriter(summaryOut).Write(rep); err != nil {
		return err
	}

	if rep.BaseURL == "" {
		return nil
	}

	path, err := report.WriteResultFile(cfg.ResultsDir, rep)
	if err != nil {
		return err
	}
	fmt.Fprintf(errOut, "Results saved to %s\n", path)

	if !formatted {
		return nil
	}
	return writeFormattedReport(cfg, rep, out, errOut)
}

// writeFormattedReport writes rep in cfg.Format to cfg.OutputFile, or to out.
// Workbooks are never written to out.
func writeFormattedReport(cfg *config.Config, rep *model.CrawlReport, out, errOut io.Writer) error {
	path := cfg.OutputFile
	if path == "" && cfg.Format == config.FormatXLSX {
		name := strings.TrimSuffix(report.ResultFileName(rep.Domain, rep.AdministrativeSite), ".txt")
		path = filepath.Join(cfg.ResultsDir, name+report.Extension(cfg.Format))
	}

	dest := out
	if path != "" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		dest = f
	}

	w, err := report.New(cfg.Format, dest, getVersion())
	if err != nil {
		return err
	}
	if _, err := w.Write(rep); err != nil {
		return fmt.Errorf("failed to write %s report: %w", cfg.Format, err)
	}
	if path != "" {
		fmt.Fprintf(errOut, "Report written to %s\n", path)
	}
	return nil
}
