package core

import (
	"math/rand/v2"

	"github.com/encodeous/ripsim/state"
)

// AddMetric adds two metrics, saturating at state.INF.
func AddMetric(a, b uint32) uint32 {
	if a == state.INF || b == state.INF {
		return state.INF
	} else {
		return uint32(min(uint64(state.INF), uint64(a)+uint64(b)))
	}
}

// ShouldFail decides whether a router fails this tick. It draws from rng only when p > 0.
func ShouldFail(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	return rng.Float64() < p
}
