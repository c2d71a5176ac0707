package model

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalURL is a normalized absolute URL of the form scheme://host/path.
// It carries no fragment and no query. Two CanonicalURLs identify the same
// page only if their strings are equal; case and percent-encoding are not
// folded.
type CanonicalURL string

// String returns the URL as a plain string.
func (u CanonicalURL) String() string {
	return string(u)
}

// Host returns the host component (including port, if any).
// It returns an empty string if the URL cannot be parsed.
func (u CanonicalURL) Host() string {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return ""
	}
	return parsed.Host
}

// Domain returns the host with every "www." occurrence removed.
// This is the name used for result files and report headers.
func (u CanonicalURL) Domain() string {
	return strings.ReplaceAll(u.Host(), "www.", "")
}

// SortURLs returns a lexicographically sorted copy of urls.
func SortURLs(urls []CanonicalURL) []CanonicalURL {
	sorted := make([]CanonicalURL, len(urls))
	copy(sorted, urls)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// URLSet is an unordered set of CanonicalURLs.
type URLSet map[CanonicalURL]struct{}

// NewURLSet builds a set from the given URLs.
func NewURLSet(urls ...CanonicalURL) URLSet {
	set := make(URLSet, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set
}

// Add inserts u into the set.
func (s URLSet) Add(u CanonicalURL) {
	s[u] = struct{}{}
}

// Has reports whether u is in the set.
func (s URLSet) Has(u CanonicalURL) bool {
	_, ok := s[u]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s URLSet) Sorted() []CanonicalURL {
	out := make([]CanonicalURL, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
