// Package loadbalance picks which configured NameNode address a
// session should try first when more than one is configured and no HA
// discovery source (package discovery) has resolved a single active
// one. This is address selection before connect, not load balancing
// across live connections — the engine never holds more than one
// socket per session and these strategies never see an open Session.
//
// Three selection strategies:
//   - RoundRobin:     equally-weighted NameNode addresses
//   - WeightedRandom: addresses with an operator-assigned preference weight
//   - ConsistentHash: pick by a caller-supplied key (e.g. client id),
//     so the same caller keeps trying the same address across retries
package loadbalance

import "fmt"

// Candidate is one configured NameNode address.
type Candidate struct {
	Addr    string // "host:port"
	Weight  int    // used by WeightedRandomBalancer; ignored elsewhere
	Version string // informational instance metadata, unused by any strategy
}

// Balancer picks one candidate from a list. Pick is called once before
// Connect, never mid-session.
type Balancer interface {
	Pick(candidates []Candidate) (*Candidate, error)

	Name() string
}

var errNoCandidates = fmt.Errorf("loadbalance: no candidates available")
