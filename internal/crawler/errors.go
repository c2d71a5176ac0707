package crawler

import "errors"

// Crawl errors.
var (
	// ErrUnreachable is returned by Resolver.Resolve when no seed variant
	// answered a HEAD probe with 200.
	ErrUnreachable = errors.New("could not reach any variant of the seed")

	// ErrEmptySeed is returned when the seed is empty after trimming.
	ErrEmptySeed = errors.New("empty seed")

	// ErrInvalidDepth is returned when the crawl depth is outside 1..5.
	ErrInvalidDepth = errors.New("invalid depth: must be between 1 and 5")

	// ErrInvalidURL is returned when a URL cannot be parsed or is not absolute.
	ErrInvalidURL = errors.New("invalid URL")
)
