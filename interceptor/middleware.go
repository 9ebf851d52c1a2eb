// Package interceptor implements the client-side onion-model chain
// wrapping one full RPC call (invoke + await) with cross-cutting
// concerns — logging, timeout — without modifying package session.
//
// There is no server-side handler to wrap here, only the client's own
// call path, so CallFunc wraps a name+args call instead of an inbound
// request/response pair.
package interceptor

import (
	"context"

	"nnrpc/codec"
)

// CallFunc performs one RPC call: invoke the named method with args
// and await its response object. package client supplies the base
// CallFunc (session.Invoke + session.Await, adapted to take a
// context); interceptors wrap it.
type CallFunc func(ctx context.Context, name string, args []any) (*codec.Object, error)

// Interceptor takes a CallFunc and returns a new CallFunc that wraps
// it — the standard decorator shape.
type Interceptor func(next CallFunc) CallFunc

// Chain composes multiple interceptors into a single one, built from
// right to left so the first interceptor in the list is the
// outermost layer (runs first on the way in, last on the way out):
//
//	chain := Chain(Logging(), Timeout(d))
//	call := chain(baseCall)
//	// Execution: Logging.before → Timeout.before → baseCall → Timeout.after → Logging.after
func Chain(interceptors ...Interceptor) Interceptor {
	return func(next CallFunc) CallFunc {
		for i := len(interceptors) - 1; i >= 0; i-- {
			next = interceptors[i](next)
		}
		return next
	}
}
