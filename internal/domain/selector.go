package domain

import "math/rand/v2"

// RandomSource returns a pseudo-random float in [0, 1).
type RandomSource func() float64

// DefaultRandom is the non-deterministic source used outside tests.
func DefaultRandom() float64 {
	return rand.Float64() //nolint:gosec // Display selection, not security
}

// Selection is the outcome of picking from a pool.
// The zero value means the pool was empty.
type Selection struct {
	Quote Quote
	Index int
	found bool
}

// Empty reports whether nothing could be selected.
func (s Selection) Empty() bool {
	return !s.found
}

// SelectionAt builds a non-empty selection.
func SelectionAt(q Quote, index int) Selection {
	return Selection{Quote: q, Index: index, found: true}
}

// PickRandom returns the element at floor(rnd() * len(pool)).
// An empty pool yields an empty Selection; rnd is not called in that case.
func PickRandom(pool []Quote, rnd RandomSource) Selection {
	if len(pool) == 0 {
		return Selection{}
	}

	if rnd == nil {
		rnd = DefaultRandom
	}

	idx := int(rnd() * float64(len(pool)))

	// Misbehaving sources outside [0, 1) are clamped.
	if idx < 0 {
		idx = 0
	}

	if idx >= len(pool) {
		idx = len(pool) - 1
	}

	return SelectionAt(pool[idx], idx)
}

// FilteredPool returns quotes unchanged for FilterAll, otherwise the
// subsequence whose category equals filter. The input is never modified.
func FilteredPool(quotes []Quote, filter string) []Quote {
	if filter == FilterAll {
		return quotes
	}

	pool := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		if q.Category == filter {
			pool = append(pool, q)
		}
	}

	return pool
}
