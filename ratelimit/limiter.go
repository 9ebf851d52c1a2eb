// Package ratelimit bounds the rate of outgoing RPC calls a client
// issues against a NameNode. It is kept separate from the interceptor
// chain so the limiter can be shared across interceptors, retries, and
// discovery-driven reconnects, which a chained interceptor cannot see
// on its own.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// ErrLimited is the error interceptor.RateLimit returns when Allow
// reports that no token is available.
var ErrLimited = fmt.Errorf("ratelimit: call rejected, no tokens available")

// Limiter wraps a token-bucket rate.Limiter: tokens are added at rate
// r per second, up to burst, and each call consumes one token. A
// token bucket (rather than a constant-drain leaky bucket) tolerates
// the bursty call patterns typical of NameNode listing/stat storms.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter builds a Limiter with refill rate r (calls/sec) and
// burst capacity burst.
func NewLimiter(r float64, burst int) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(r), burst)}
}

// Allow reports whether a call may proceed immediately, consuming a
// token if so.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
