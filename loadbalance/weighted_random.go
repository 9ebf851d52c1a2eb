package loadbalance

import (
	"fmt"
	"math/rand"
)

// WeightedRandomBalancer selects an address probabilistically in
// proportion to its configured weight: a NameNode address with weight
// 10 gets roughly 2x the pick rate of one with weight 5.
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(candidates []Candidate) (*Candidate, error) {
	if len(candidates) == 0 {
		return nil, errNoCandidates
	}

	totalWeight := 0
	for _, c := range candidates {
		totalWeight += c.Weight
	}
	if totalWeight <= 0 {
		return &candidates[rand.Intn(len(candidates))], nil
	}

	r := rand.Intn(totalWeight)
	for i := range candidates {
		r -= candidates[i].Weight
		if r < 0 {
			return &candidates[i], nil
		}
	}

	return nil, fmt.Errorf("loadbalance: unexpected error in weighted random selection")
}

func (b *WeightedRandomBalancer) Name() string {
	return "WeightedRandom"
}
