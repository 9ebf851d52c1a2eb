package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"
)

// ConsistentHashBalancer maps a caller-supplied key (e.g. a client id)
// to a NameNode address using a hash ring, so the same caller keeps
// trying the same address across repeated lookups; adding a candidate
// moves only the keys that now fall on its virtual nodes.
//
// Virtual nodes: each candidate is mapped to N virtual nodes on the
// ring. Without virtual nodes a small candidate set can cluster
// unevenly; 100 virtual nodes per candidate keeps the split close to
// proportional.
type ConsistentHashBalancer struct {
	replicas int
	ring     []uint32
	nodes    map[uint32]*Candidate
}

// NewConsistentHashBalancer creates a hash ring with 100 virtual nodes
// per candidate.
func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		replicas: 100,
		nodes:    make(map[uint32]*Candidate),
	}
}

// Add places a candidate onto the hash ring with its virtual nodes.
func (b *ConsistentHashBalancer) Add(c *Candidate) {
	for i := 0; i < b.replicas; i++ {
		key := fmt.Sprintf("%s#%d", c.Addr, i)
		hash := crc32.ChecksumIEEE([]byte(key))
		b.ring = append(b.ring, hash)
		b.nodes[hash] = c
	}
	sort.Slice(b.ring, func(i, j int) bool {
		return b.ring[i] < b.ring[j]
	})
}

// Pick finds the candidate responsible for key: hash the key, then
// binary-search for the first ring node at or past that hash,
// wrapping around to the first node if the hash is past every one.
//
// Pick takes a string key rather than a candidate list, so it does
// not implement Balancer directly — the ring must be built with Add
// first.
func (b *ConsistentHashBalancer) Pick(key string) (*Candidate, error) {
	if len(b.ring) == 0 {
		return nil, errNoCandidates
	}
	hash := crc32.ChecksumIEEE([]byte(key))
	idx := sort.Search(len(b.ring), func(i int) bool {
		return b.ring[i] >= hash
	})
	if idx == len(b.ring) {
		idx = 0
	}
	return b.nodes[b.ring[idx]], nil
}

func (b *ConsistentHashBalancer) Name() string {
	return "ConsistentHash"
}
