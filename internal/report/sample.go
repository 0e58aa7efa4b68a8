package report

import (
	"math/rand"
	"strings"
)

// DefaultSeed keeps sampled prompt content stable between runs.
const DefaultSeed int64 = 42

// Sample shuffles a copy of pool with a fixed seed and returns up to limit
// non-blank entries. The same pool and seed always give the same result.
func Sample(pool []string, limit int, seed int64) []string {
	if limit <= 0 || len(pool) == 0 {
		return nil
	}
	items := make([]string, 0, len(pool))
	for _, item := range pool {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
