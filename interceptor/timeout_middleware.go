package interceptor

import (
	"context"
	"time"

	"nnrpc/codec"
)

// Timeout bounds how long the caller waits for a call to complete.
// Session.Invoke/Await have no native cancellation (the core protocol
// does not support it — Await blocks until the reply frame arrives or
// the session dies), so this is exactly the timeout variant the
// protocol leaves to implementers: race the blocking call in a
// goroutine against ctx's deadline.
//
// The call goroutine is NOT cancelled when the timeout fires — it
// keeps running (and keeps the session's reference held) until the
// real reply or session death eventually completes it. The timeout
// only controls when the caller gives up waiting.
func Timeout(timeout time.Duration) Interceptor {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, name string, args []any) (*codec.Object, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type result struct {
				obj *codec.Object
				err error
			}
			done := make(chan result, 1)
			go func() {
				obj, err := next(ctx, name, args)
				done <- result{obj, err}
			}()

			select {
			case r := <-done:
				return r.obj, r.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
}
