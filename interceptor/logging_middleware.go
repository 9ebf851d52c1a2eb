package interceptor

import (
	"context"
	"log"
	"time"

	"nnrpc/codec"
)

// Logging records the method name, duration, and any protocol
// exception for each call.
//
// Example output:
//
//	nnrpc call: getListing, duration: 1.2ms
func Logging() Interceptor {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, name string, args []any) (*codec.Object, error) {
			start := time.Now()
			obj, err := next(ctx, name, args)
			duration := time.Since(start)
			if err != nil {
				log.Printf("nnrpc call: %s, duration: %s, err: %v", name, duration, err)
			} else if obj != nil && obj.Tag == codec.TagProtocolException {
				log.Printf("nnrpc call: %s, duration: %s, exception: %v", name, duration, obj.Value)
			} else {
				log.Printf("nnrpc call: %s, duration: %s", name, duration)
			}
			return obj, err
		}
	}
}
