// Package fetch provides the HTTP capability used by the resolver and the
// spider.
//
// A Client issues HEAD and GET requests with a browser User-Agent, optional
// extra headers, per-request timeouts and redirect following. Transport
// failures are typed: TLS handshake and certificate problems wrap ErrTLS so
// that the origin resolver can retry over plain HTTP, every other transport
// failure wraps ErrFetchFailed.
//
// # Politeness
//
// HostLimiter keeps one token bucket per host. When several crawls share a
// limiter (batch mode, the job manager) requests to the same host are spaced
// out even though the crawls run concurrently.
//
// # Body decoding
//
// Responses compressed with gzip, deflate or brotli are decoded before the
// body is handed to callers. Bodies are capped at a configurable size.
//
// # Usage
//
//	client, err := fetch.NewClient(fetch.WithHeaders(map[string]string{"Accept-Language": "es"}))
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Head(ctx, "https://enperu.org")
package fetch
