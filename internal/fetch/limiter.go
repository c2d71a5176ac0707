package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter spaces out requests per host with one token bucket per host.
// A nil *HostLimiter never blocks.
type HostLimiter struct {
	interval time.Duration
	burst    int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter allows burst requests and then one request per interval to
// each host. An interval of zero or less disables limiting.
func NewHostLimiter(interval time.Duration, burst int) *HostLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &HostLimiter{
		interval: interval,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to host is allowed or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	if h == nil || h.interval <= 0 || host == "" {
		return nil
	}
	return h.limiter(host).Wait(ctx)
}

// Hosts returns the number of hosts currently tracked.
func (h *HostLimiter) Hosts() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.limiters)
}

func (h *HostLimiter) limiter(host string) *rate.Limiter {
	host = strings.ToLower(host)

	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(h.interval), h.burst)
		h.limiters[host] = l
	}
	return l
}
