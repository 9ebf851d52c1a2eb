package loadbalance

import "sync/atomic"

// RoundRobinBalancer cycles through configured NameNode addresses in
// order. Uses an atomic counter for lock-free, goroutine-safe
// operation.
type RoundRobinBalancer struct {
	counter int64
}

func (b *RoundRobinBalancer) Pick(candidates []Candidate) (*Candidate, error) {
	if len(candidates) == 0 {
		return nil, errNoCandidates
	}
	index := atomic.AddInt64(&b.counter, 1) % int64(len(candidates))
	return &candidates[index], nil
}

func (b *RoundRobinBalancer) Name() string {
	return "RoundRobin"
}
