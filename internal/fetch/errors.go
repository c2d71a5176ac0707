package fetch

import "errors"

// Fetch errors.
// Callers distinguish them with errors.Is; the underlying transport error
// stays in the chain.
var (
	// ErrTLS is returned when the TLS handshake or certificate verification
	// fails. The origin resolver downgrades to http:// when it sees this error.
	ErrTLS = errors.New("tls error")

	// ErrFetchFailed is returned for every other transport-level failure:
	// DNS errors, refused connections, timeouts and unreadable bodies.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address is not
	// in "host:port" form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrBodyTooLarge is returned when a response body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("response body too large")
)
