package backend

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter paces outgoing requests with one token bucket per host, so a
// burst of role switches across many views cannot flood the backend.
type HostLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

// NewHostLimiter returns nil when reqPerSec <= 0; a nil limiter never waits.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if reqPerSec <= 0 {
		return nil
	}
	return &HostLimiter{
		buckets: make(map[string]*rate.Limiter),
		every:   rate.Limit(reqPerSec),
		burst:   max(burst, 1),
	}
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	b, ok := hl.buckets[host]
	if !ok {
		b = rate.NewLimiter(hl.every, hl.burst)
		hl.buckets[host] = b
	}
	return b
}

// Wait blocks until req may be sent or its context ends. It returns how long
// it waited.
func (hl *HostLimiter) Wait(req *http.Request) (time.Duration, error) {
	if hl == nil {
		return 0, nil
	}
	start := time.Now()
	err := hl.bucket(req.URL.Host).Wait(req.Context())
	return time.Since(start), err
}
