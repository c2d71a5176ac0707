package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Config.ValidateServer()
// and can be checked with errors.Is().
var (
	// ErrNoTarget is returned when the crawl command has no seed to crawl.
	ErrNoTarget = errors.New("no target specified: provide a site URL")

	// ErrInvalidDepth is returned when the crawl depth is outside 1..5.
	ErrInvalidDepth = errors.New("invalid depth: must be between 1 and 5")

	// ErrInvalidTimeout is returned when a request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBatchSize is returned when the number of concurrent crawls is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxJobs is returned when the server job limit is not positive.
	ErrInvalidMaxJobs = errors.New("invalid max jobs: must be positive")

	// ErrNoListenAddress is returned when the server has no address to listen on.
	ErrNoListenAddress = errors.New("no listen address specified")

	// ErrUnknownFormat is returned when the output format is not one of the
	// supported report formats.
	ErrUnknownFormat = errors.New("unknown output format: must be one of text, markdown, json, csv, xlsx")
)
