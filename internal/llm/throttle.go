package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute matches the most restrictive free-tier quota
// among the supported providers.
const DefaultRequestsPerMinute = 30

// Throttle paces provider requests so a burst of per-file category calls
// cannot exhaust the account quota. Process-local.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle builds a throttle of rpm requests per minute. Zero or
// negative rpm falls back to the default.
func NewThrottle(rpm int) *Throttle {
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	// Allow a small burst so grouped calls at analysis start don't stall.
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 4)}
}

// Wait blocks until a request slot is available or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}
