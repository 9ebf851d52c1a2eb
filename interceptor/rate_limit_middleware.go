package interceptor

import (
	"context"

	"nnrpc/codec"
	"nnrpc/ratelimit"
)

// RateLimit short-circuits a call when l has no token available,
// returning ratelimit.ErrLimited instead of invoking next. l is
// shared across every call that passes through the returned
// interceptor — it must live in the outer closure, not be rebuilt per
// call, or every call would see a fresh full bucket.
func RateLimit(l *ratelimit.Limiter) Interceptor {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, name string, args []any) (*codec.Object, error) {
			if !l.Allow() {
				return nil, ratelimit.ErrLimited
			}
			return next(ctx, name, args)
		}
	}
}
