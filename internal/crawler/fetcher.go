package crawler

import (
	"context"

	"github.com/nao1215/urlextract/internal/fetch"
)

// Fetcher is the HTTP capability used by the resolver and the spider.
// *fetch.Client implements it.
type Fetcher interface {
	// Head probes rawURL, following redirects.
	Head(ctx context.Context, rawURL string) (*fetch.Response, error)

	// Get fetches rawURL and returns its decoded body.
	Get(ctx context.Context, rawURL string) (*fetch.Response, error)
}

var _ Fetcher = (*fetch.Client)(nil)
