// Package client assembles a session, the namenode façade, and the
// optional collaborators (HA discovery, address selection, rate
// limiting, logging/timeout interceptors) into one constructible
// object, wiring the transport together with its
// discovery/balancer/interceptor collaborators behind a Config.
package client

import (
	"context"
	"fmt"

	"nnrpc/codec"
	"nnrpc/discovery"
	"nnrpc/future"
	"nnrpc/interceptor"
	"nnrpc/loadbalance"
	"nnrpc/namenode"
	"nnrpc/protocol"
	"nnrpc/ratelimit"
	"nnrpc/session"
)

// Client owns one Session to one NameNode, the typed façade over it,
// and an interceptor-wrapped raw call path for callers that want
// cross-cutting concerns (logging, timeout, rate limiting) applied
// uniformly instead of per typed call.
type Client struct {
	sess *session.Session
	nn   *namenode.Client
	call interceptor.CallFunc
}

// Config selects how a Client resolves its NameNode address and which
// collaborators wrap its raw call path. The zero value dials Addr
// directly with no interceptors.
type Config struct {
	// Nameservice/Discovery resolve the address via etcd HA discovery
	// when both are set, taking priority over Addr/Candidates.
	Nameservice string
	Discovery   *discovery.EtcdDiscovery

	// Candidates/Balancer pick among several configured addresses when
	// Discovery is not used and at least one Candidate is given.
	Candidates []loadbalance.Candidate
	Balancer   loadbalance.Balancer

	// Addr is used directly when neither Discovery nor Candidates apply.
	Addr string

	Username string
	Dialect  protocol.Dialect
	Codec    codec.Codec

	// RateLimit, if set, throttles Call admission with a token bucket,
	// applied as the outermost interceptor — ahead of Interceptors — so
	// a rejected call never reaches logging/timeout.
	RateLimit *ratelimit.Limiter

	Interceptors []interceptor.Interceptor
}

// New resolves an address per cfg, connects and authenticates a
// session, and wraps it in a Client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	addr, err := resolveAddr(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("nnrpc/client: %w", err)
	}

	host, port, err := splitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("nnrpc/client: %w", err)
	}

	c := cfg.Codec
	if c == nil {
		c = &codec.BinaryCodec{}
	}
	sess := session.New(c, cfg.Dialect)
	if err := sess.Connect(host, port); err != nil {
		return nil, fmt.Errorf("nnrpc/client: %w", err)
	}
	if err := sess.Authenticate(cfg.Username); err != nil {
		return nil, fmt.Errorf("nnrpc/client: %w", err)
	}

	base := interceptor.CallFunc(func(_ context.Context, name string, args []any) (*codec.Object, error) {
		slot := future.NewSlot()
		if err := sess.Invoke(name, args, slot); err != nil {
			return nil, err
		}
		return sess.Await(slot), nil
	})

	chain := cfg.Interceptors
	if cfg.RateLimit != nil {
		chain = append([]interceptor.Interceptor{interceptor.RateLimit(cfg.RateLimit)}, chain...)
	}

	return &Client{
		sess: sess,
		nn:   namenode.New(sess),
		call: interceptor.Chain(chain...)(base),
	}, nil
}

// resolveAddr picks the "host:port" to connect to: discovery takes
// priority, then a Balancer over Candidates, then the bare Addr.
func resolveAddr(ctx context.Context, cfg Config) (string, error) {
	if cfg.Discovery != nil && cfg.Nameservice != "" {
		a, err := cfg.Discovery.Resolve(ctx, cfg.Nameservice)
		if err != nil {
			return "", err
		}
		return a.String(), nil
	}
	if len(cfg.Candidates) > 0 {
		b := cfg.Balancer
		if b == nil {
			b = &loadbalance.RoundRobinBalancer{}
		}
		picked, err := b.Pick(cfg.Candidates)
		if err != nil {
			return "", err
		}
		return picked.Addr, nil
	}
	if cfg.Addr == "" {
		return "", fmt.Errorf("no address configured: set Discovery+Nameservice, Candidates, or Addr")
	}
	return cfg.Addr, nil
}

// NN returns the typed RPC façade. Calls through it bypass the
// interceptor chain Call uses — it talks to the session directly.
func (c *Client) NN() *namenode.Client { return c.nn }

// Call issues one RPC by name through the interceptor chain — logging,
// rate limiting, timeout — configured at construction time. Typed
// callers should prefer NN(); Call is for generic/dynamic invocation
// and for exercising the interceptor stack uniformly.
func (c *Client) Call(ctx context.Context, name string, args []any) (*codec.Object, error) {
	return c.call(ctx, name, args)
}

// Close destroys the underlying session, releasing the caller's
// reference; onFree, if non-nil, runs once the last reference drops.
func (c *Client) Close(onFree func()) {
	c.sess.Destroy(onFree)
}
