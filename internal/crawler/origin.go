package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/urlextract/internal/fetch"
	"github.com/nao1215/urlextract/internal/model"
)

// Resolver determines the canonical base URL of a site.
type Resolver struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger for probe tracing.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver that probes through f.
func NewResolver(f Fetcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fetcher: f,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the canonical base URL for seed.
//
// The seed is prefixed with https:// when it has no scheme. The seed itself
// is probed first, then the same URL with "www." inserted after the scheme
// when the seed does not already contain "www.". A TLS failure on a
// candidate is retried once over http://. The first candidate answering 200
// wins; its final URL after redirects is returned with exactly one trailing
// slash.
func (r *Resolver) Resolve(ctx context.Context, seed string) (model.CanonicalURL, error) {
	candidates, err := Candidates(seed)
	if err != nil {
		return "", err
	}

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		base, ok := r.probe(ctx, candidate)
		if ok {
			r.logger.Info("resolved origin", "seed", seed, "base", base)
			return base, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnreachable, seed)
}

// probe checks one candidate, downgrading to http:// on a TLS failure.
func (r *Resolver) probe(ctx context.Context, candidate string) (model.CanonicalURL, bool) {
	r.logger.Debug("probing", "url", candidate)

	resp, err := r.fetcher.Head(ctx, candidate)
	if err != nil {
		if !errors.Is(err, fetch.ErrTLS) {
			r.logger.Warn("probe failed", "url", candidate, "error", err)
			return "", false
		}

		downgraded := strings.Replace(candidate, "https://", "http://", 1)
		r.logger.Warn("TLS error, retrying over http", "url", downgraded)
		resp, err = r.fetcher.Head(ctx, downgraded)
		if err != nil {
			r.logger.Warn("probe failed", "url", downgraded, "error", err)
			return "", false
		}
	}

	if !resp.OK() {
		r.logger.Warn("probe returned non-200 status", "url", candidate, "status", resp.StatusCode)
		return "", false
	}
	return originRoot(resp.FinalURL), true
}

// Candidates returns the URLs probed for seed, in order.
func Candidates(seed string) ([]string, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, ErrEmptySeed
	}

	if !strings.HasPrefix(seed, "http://") && !strings.HasPrefix(seed, "https://") {
		seed = "https://" + seed
	}

	candidates := []string{seed}
	if !strings.Contains(seed, "www.") {
		candidates = append(candidates, strings.Replace(seed, "://", "://www.", 1))
	}
	return candidates, nil
}

// originRoot strips trailing slashes from u and appends exactly one.
func originRoot(u string) model.CanonicalURL {
	return model.CanonicalURL(strings.TrimRight(u, "/") + "/")
}
