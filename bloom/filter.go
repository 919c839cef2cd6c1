// Package bloom implements a probabilistic set membership filter used by
// storage nodes to short-circuit searches for terms that were never indexed.
//
// False negatives are impossible: once add(x) has been called, might_contain(x)
// always returns true. False positives are possible and expected; that is the
// trade made for the filter's constant-size footprint.
package bloom

import (
	"hash/fnv"
	"math"
	"sync"
)

// Filter is a bit-array Bloom filter sized for an expected element count and
// a target false-positive rate.
type Filter struct {
	mu   sync.RWMutex
	bits []uint64
	m    uint64 // number of bits
	k    uint64 // number of hash functions
}

// New returns a Filter sized via the standard optimal-parameter formulas:
//
//	m = ceil(-n*ln(p) / (ln 2)^2)
//	k = ceil((m/n) * ln 2)
func New(expectedElements int, falsePositiveRate float64) *Filter {
	if expectedElements < 1 {
		expectedElements = 1
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}

	n := float64(expectedElements)
	m := math.Ceil(-n * math.Log(falsePositiveRate) / (math.Ln2 * math.Ln2))
	k := math.Ceil((m / n) * math.Ln2)

	return &Filter{
		bits: make([]uint64, (uint64(m)+63)/64),
		m:    uint64(m),
		k:    uint64(k),
	}
}

// hash64 is the term's platform-stable hash (h1 in the spec's hash_i formula).
func hash64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// indices returns the k bit positions for x using double hashing:
// hash_i(x) = |(h1(x) + i*h2(x)) mod m|, h2 = h1 >> 16.
func (f *Filter) indices(x string) []uint64 {
	h1 := hash64(x)
	h2 := h1 >> 16

	idx := make([]uint64, f.k)
	for i := uint64(0); i < f.k; i++ {
		idx[i] = (h1 + i*h2) % f.m
	}
	return idx
}

// Add sets the k bits corresponding to x.
func (f *Filter) Add(x string) {
	idx := f.indices(x)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range idx {
		f.bits[i/64] |= 1 << (i % 64)
	}
}

// MightContain reports whether x may be present. A false result guarantees x
// was never added; a true result does not guarantee it was.
func (f *Filter) MightContain(x string) bool {
	idx := f.indices(x)

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, i := range idx {
		if f.bits[i/64]&(1<<(i%64)) == 0 {
			return false
		}
	}
	return true
}

// Cardinality returns the number of bits currently set.
func (f *Filter) Cardinality() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	count := 0
	for _, word := range f.bits {
		count += popcount(word)
	}
	return count
}

// OccupancyRate returns the fraction of bits currently set, in [0, 1].
func (f *Filter) OccupancyRate() float64 {
	return float64(f.Cardinality()) / float64(f.m)
}

// Size returns the bit-array size m.
func (f *Filter) Size() uint64 { return f.m }

// NumHashFunctions returns k.
func (f *Filter) NumHashFunctions() uint64 { return f.k }

func popcount(v uint64) int {
	count := 0
	for v != 0 {
		v &= v - 1
		count++
	}
	return count
}
