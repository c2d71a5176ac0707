package crawler

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/nao1215/urlextract/internal/model"
)

const (
	// MinDepth and MaxDepth bound the depth argument of Crawl.
	MinDepth = 1
	MaxDepth = 5

	// DefaultDepth is used when the caller does not choose a depth.
	DefaultDepth = 2

	// MaxVisited is the hard ceiling on URLs attempted in one crawl.
	MaxVisited = 1000

	// DefaultDelay is the pause after every successful page fetch.
	DefaultDelay = 500 * time.Millisecond

	// urlsPerDepth multiplies (maxDepth + 1) to give the discovery budget.
	urlsPerDepth = 100
)

// skippedExtensions name resources that are never fetched as pages.
var skippedExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".zip", ".doc", ".docx", ".xls", ".xlsx",
}

// ClampDepth forces depth into MinDepth..MaxDepth.
func ClampDepth(depth int) int {
	return min(max(depth, MinDepth), MaxDepth)
}

// DiscoveryCap returns the number of visited plus queued URLs at which the
// spider stops adding new URLs to the frontier.
func DiscoveryCap(maxDepth int) int {
	return urlsPerDepth * (maxDepth + 1)
}

// Progress describes the spider's state after it pops a URL.
type Progress struct {
	// URL is the URL about to be processed.
	URL model.CanonicalURL

	// Visited is the number of URLs attempted so far, URL included.
	Visited int

	// Found is the number of pages found so far.
	Found int

	// Queued is the number of URLs still in the frontier.
	Queued int
}

// Result is the outcome of a crawl.
type Result struct {
	// Found lists every page fetched successfully, sorted.
	Found []model.CanonicalURL

	// Visited lists every URL attempted, in visiting order.
	Visited []model.CanonicalURL

	// Stats holds the traversal counters.
	Stats model.CrawlStats
}

// Spider walks a site from its base URL.
// A Spider holds no per-crawl state and may run several crawls concurrently.
type Spider struct {
	fetcher    Fetcher
	delay      time.Duration
	maxVisited int
	seed       *uint64
	progress   func(Progress)
	logger     *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithDelay sets the pause after each successful page fetch.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithMaxVisited lowers the visited ceiling. Values outside 1..MaxVisited
// are ignored.
func WithMaxVisited(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 && n <= MaxVisited {
			s.maxVisited = n
		}
	}
}

// WithSeed makes the frontier pop order deterministic.
func WithSeed(seed int64) SpiderOption {
	return func(s *Spider) {
		v := uint64(seed)
		s.seed = &v
	}
}

// WithProgress registers a callback invoked after each URL is marked visited.
// It runs on the crawling goroutine and must not block.
func WithProgress(fn func(Progress)) SpiderOption {
	return func(s *Spider) {
		s.progress = fn
	}
}

// WithLogger sets the logger used to trace the traversal.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that fetches through f.
func NewSpider(f Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:    f,
		delay:      DefaultDelay,
		maxVisited: MaxVisited,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// outcome classifies what happened to one visited URL.
type outcome int

const (
	outcomePage outcome = iota
	outcomeBadStatus
	outcomeSkippedExtension
	outcomeFailed
)

// fetchResult is the explicit per-URL result of visit.
type fetchResult struct {
	outcome outcome
	links   []model.CanonicalURL
	err     error
}

// crawlState is owned by one Crawl call.
type crawlState struct {
	frontier *Frontier
	visited  model.URLSet
	order    []model.CanonicalURL
	found    model.URLSet
	stats    model.CrawlStats
}

// Crawl walks the site rooted at base and returns the pages it found.
//
// maxDepth must be within 1..5. It does not bound link distance; it bounds
// discovery: a new URL is queued only while visited plus queued URLs number
// fewer than 100 × (maxDepth + 1). Only links whose host equals the host of
// base are followed.
//
// When ctx is cancelled Crawl stops before the next URL and returns the
// partial result together with ctx.Err().
func (s *Spider) Crawl(ctx context.Context, base model.CanonicalURL, maxDepth int) (*Result, error) {
	if maxDepth < MinDepth || maxDepth > MaxDepth {
		return nil, ErrInvalidDepth
	}
	if _, err := Normalize(base.String()); err != nil {
		return nil, err
	}

	originHost := base.Host()
	discoveryCap := DiscoveryCap(maxDepth)

	st := &crawlState{
		frontier: NewFrontier(s.newRand()),
		visited:  model.NewURLSet(),
		found:    model.NewURLSet(),
	}
	st.frontier.Add(base)

	for st.frontier.Len() > 0 && len(st.visited) < s.maxVisited {
		if err := ctx.Err(); err != nil {
			return st.result(), err
		}

		current, _ := st.frontier.Pop()
		if st.visited.Has(current) {
			continue
		}
		st.visited.Add(current)
		st.order = append(st.order, current)
		st.stats.Visited++
		s.report(current, st)

		res := s.visit(ctx, current, originHost)
		switch res.outcome {
		case outcomeBadStatus:
			st.stats.SkippedStatus++
			continue
		case outcomeSkippedExtension:
			st.stats.SkippedExtension++
			continue
		case outcomeFailed:
			st.stats.FetchFailures++
			s.logger.Debug("skipping url", "url", current, "error", res.err)
			continue
		}

		st.found.Add(current)
		st.stats.Found++

		for _, link := range res.links {
			if st.visited.Has(link) || st.frontier.Has(link) {
				continue
			}
			if len(st.visited)+st.frontier.Len() >= discoveryCap {
				st.stats.DiscoveryCapped++
				continue
			}
			st.frontier.Add(link)
		}

		if err := s.sleep(ctx); err != nil {
			return st.result(), err
		}
	}

	s.logger.Info("crawl finished",
		"base", base,
		"visited", st.stats.Visited,
		"found", st.stats.Found,
	)
	return st.result(), nil
}

// visit probes, filters and fetches one URL.
func (s *Spider) visit(ctx context.Context, current model.CanonicalURL, originHost string) fetchResult {
	head, err := s.fetcher.Head(ctx, current.String())
	if err != nil {
		return fetchResult{outcome: outcomeFailed, err: err}
	}
	if !head.OK() {
		s.logger.Debug("head returned non-200 status", "url", current, "status", head.StatusCode)
		return fetchResult{outcome: outcomeBadStatus}
	}

	if hasSkippedExtension(current) {
		s.logger.Debug("skipping file", "url", current)
		return fetchResult{outcome: outcomeSkippedExtension}
	}

	page, err := s.fetcher.Get(ctx, current.String())
	if err != nil {
		return fetchResult{outcome: outcomeFailed, err: err}
	}
	if !page.OK() {
		s.logger.Debug("get returned non-200 status", "url", current, "status", page.StatusCode)
		return fetchResult{outcome: outcomeBadStatus}
	}

	links, err := ExtractLinks(current, page.Body, page.ContentType, originHost)
	if err != nil {
		// The page itself was fetched; only its links are lost.
		s.logger.Warn("failed to extract links", "url", current, "error", err)
		links = nil
	}
	return fetchResult{outcome: outcomePage, links: links}
}

func (s *Spider) sleep(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Spider) report(current model.CanonicalURL, st *crawlState) {
	s.logger.Debug("exploring", "url", current, "visited", len(st.visited))
	if s.progress != nil {
		s.progress(Progress{
			URL:     current,
			Visited: len(st.visited),
			Found:   len(st.found),
			Queued:  st.frontier.Len(),
		})
	}
}

func (s *Spider) newRand() *rand.Rand {
	if s.seed == nil {
		return nil
	}
	return rand.New(rand.NewPCG(*s.seed, 0))
}

func (st *crawlState) result() *Result {
	return &Result{
		Found:   st.found.Sorted(),
		Visited: append([]model.CanonicalURL(nil), st.order...),
		Stats:   st.stats,
	}
}

// hasSkippedExtension reports whether u names a non-HTML resource.
func hasSkippedExtension(u model.CanonicalURL) bool {
	lower := strings.ToLower(u.String())
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
