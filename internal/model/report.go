package model

import (
	"time"
)

// CrawlStats aggregates counters collected during one traversal.
type CrawlStats struct {
	// Visited is the number of URLs popped from the frontier and attempted.
	Visited int `json:"visited"`

	// Found is the number of URLs fetched successfully as pages.
	Found int `json:"found"`

	// SkippedStatus counts URLs whose probe or fetch returned a non-200 status.
	SkippedStatus int `json:"skipped_status"`

	// SkippedExtension counts URLs skipped because they name a binary resource.
	SkippedExtension int `json:"skipped_extension"`

	// FetchFailures counts URLs that failed at the transport level.
	FetchFailures int `json:"fetch_failures"`

	// DiscoveryCapped counts links dropped because the frontier cap was reached.
	DiscoveryCapped int `json:"discovery_capped"`
}

// CrawlReport is the result of one resolve, crawl and classify run.
type CrawlReport struct {
	// Seed is the user-supplied hostname or URL.
	Seed string `json:"seed"`

	// Depth is the requested crawl depth (1..5).
	Depth int `json:"depth"`

	// BaseURL is the canonical origin chosen by the resolver.
	BaseURL CanonicalURL `json:"base_url,omitempty"`

	// Domain is the host of BaseURL without "www.".
	Domain string `json:"domain,omitempty"`

	// Found lists every page fetched successfully, sorted.
	Found []CanonicalURL `json:"found"`

	// AdministrativeSite is true when the origin heuristic selected the
	// administrative classifier for this crawl.
	AdministrativeSite bool `json:"administrative_site"`

	// Administrative lists the found URLs that passed the membership test, sorted.
	Administrative []CanonicalURL `json:"administrative,omitempty"`

	// Classification holds the tiers of Administrative.
	// It is nil for sites that are not administrative.
	Classification *ClassificationResult `json:"classification,omitempty"`

	// Stats are the traversal counters.
	Stats CrawlStats `json:"stats"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended.
	FinishedAt time.Time `json:"finished_at"`

	// Cancelled is true if the run was interrupted and results are partial.
	Cancelled bool `json:"cancelled"`

	// Error is the error that stopped the run, if any.
	// It is not serialized; use ErrorMessage instead.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error.
	ErrorMessage string `json:"error,omitempty"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// NewCrawlReport creates an empty report for the given seed and depth.
func NewCrawlReport(seed string, depth int) *CrawlReport {
	return &CrawlReport{
		Seed:      seed,
		Depth:     depth,
		Found:     make([]CanonicalURL, 0),
		StartedAt: time.Now(),
	}
}

// FoundCount returns the number of pages found.
func (r *CrawlReport) FoundCount() int {
	return len(r.Found)
}

// AdministrativeCount returns the number of administrative pages found.
func (r *CrawlReport) AdministrativeCount() int {
	return len(r.Administrative)
}

// Duration returns the elapsed time of the run.
// It returns zero if the run has not finished.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed reports whether the run ended with an error.
func (r *CrawlReport) Failed() bool {
	return r.ErrorMessage != ""
}
