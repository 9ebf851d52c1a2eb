// Package discovery resolves which NameNode address is currently
// active for an HA nameservice, using etcd as the coordination store.
// It is deliberately narrower than a general service registry: a
// nameservice has exactly one active NameNode at a time, never a set
// of interchangeable instances, so this package resolves and watches
// a single key rather than a prefix of equally-valid candidates.
//
// This does not give a Session automatic reconnect — the engine's
// Non-goal stands. Discovery only tells a caller which address to
// pass to the next Connect; splicing a new address into a live
// session is explicitly out of scope.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Addr is a resolved NameNode endpoint.
type Addr struct {
	Host string
	Port string
}

func (a Addr) String() string { return fmt.Sprintf("%s:%s", a.Host, a.Port) }

const keyPrefix = "/nnrpc/active/"

func activeKey(nameservice string) string {
	return keyPrefix + nameservice
}

// EtcdDiscovery resolves the active NameNode address for a
// nameservice, backed by a single etcd key per nameservice
// (/nnrpc/active/{nameservice}) rather than a multi-instance prefix
// scan.
type EtcdDiscovery struct {
	client *clientv3.Client
}

// NewEtcdDiscovery connects to the given etcd endpoints.
func NewEtcdDiscovery(endpoints []string) (*EtcdDiscovery, error) {
	c, err := clientv3.New(clientv3.Config{Endpoints: endpoints})
	if err != nil {
		return nil, err
	}
	return &EtcdDiscovery{client: c}, nil
}

// Announce marks addr as the active NameNode for nameservice, under a
// TTL lease kept alive in the background — the failover controller's
// side of this package, used by whatever process promotes a NameNode
// to active, not by the RPC client itself.
func (d *EtcdDiscovery) Announce(ctx context.Context, nameservice string, addr Addr, ttlSeconds int64) error {
	lease, err := d.client.Grant(ctx, ttlSeconds)
	if err != nil {
		return err
	}
	val, err := json.Marshal(addr)
	if err != nil {
		return err
	}
	if _, err := d.client.Put(ctx, activeKey(nameservice), string(val), clientv3.WithLease(lease.ID)); err != nil {
		return err
	}
	ch, err := d.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Resolve fetches the currently active address for nameservice. This
// is what a client calls once, before Connect — it does not keep
// watching on the client's behalf.
func (d *EtcdDiscovery) Resolve(ctx context.Context, nameservice string) (Addr, error) {
	resp, err := d.client.Get(ctx, activeKey(nameservice))
	if err != nil {
		return Addr{}, err
	}
	if len(resp.Kvs) == 0 {
		return Addr{}, fmt.Errorf("discovery: no active namenode registered for %q", nameservice)
	}
	var addr Addr
	if err := json.Unmarshal(resp.Kvs[0].Value, &addr); err != nil {
		return Addr{}, fmt.Errorf("discovery: malformed active-namenode record: %w", err)
	}
	return addr, nil
}

// Watch emits the active address for nameservice every time it
// changes (an HA failover promoting a different NameNode). A caller
// that wants to survive failover reconnects by constructing a fresh
// session with the newly emitted address; this package never mutates
// an existing session.
func (d *EtcdDiscovery) Watch(ctx context.Context, nameservice string) <-chan Addr {
	out := make(chan Addr, 1)
	go func() {
		defer close(out)
		watchCh := d.client.Watch(ctx, activeKey(nameservice))
		for range watchCh {
			addr, err := d.Resolve(ctx, nameservice)
			if err != nil {
				continue
			}
			out <- addr
		}
	}()
	return out
}
