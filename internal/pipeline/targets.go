package pipeline

import (
	"math/rand/v2"
	"slices"

	"github.com/couchcryptid/quake-sample-builder/internal/domain"
)

// SelectTargets returns the IDs of events with magnitude >= minMagnitude, in
// catalog order. When sampleSize is positive and smaller than the candidate
// pool, a seeded random subset of that size is returned instead, still in
// catalog order. The same seed always picks the same subset.
func SelectTargets(c *domain.Catalog, minMagnitude float64, sampleSize int, seed uint64) []string {
	pool := c.MinMagnitude(minMagnitude).Columns().IDs
	if sampleSize <= 0 || sampleSize >= len(pool) {
		return slices.Clone(pool)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	picked := rng.Perm(len(pool))[:sampleSize]
	slices.Sort(picked)

	out := make([]string, len(picked))
	for i, row := range picked {
		out[i] = pool[row]
	}
	return out
}
