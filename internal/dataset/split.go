// Package dataset partitions instances into train and test subsets with a
// seeded shuffle so every run and every test sees the same permutation.
package dataset

import (
	"fmt"
	"math/rand"
)

// Split permutes [0,n) with math/rand's v1 generator seeded by seed and
// slices the first (1−testFraction)·n indices as train, the rest as test.
// The generator choice is part of the contract: fixtures depend on the
// exact permutation.
func Split(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("cannot split %d instances", n)
	}
	if testFraction < 0 || testFraction > 1 {
		return nil, nil, fmt.Errorf("test fraction %v out of [0,1]", testFraction)
	}
	testCount := int(float64(n) * testFraction)
	return SplitN(n, testCount, seed)
}

// SplitN is Split with a fixed absolute held-out count.
func SplitN(n, testCount int, seed int64) (train, test []int, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("cannot split %d instances", n)
	}
	if testCount < 0 || testCount > n {
		return nil, nil, fmt.Errorf("held-out count %d out of range for %d instances", testCount, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	cut := n - testCount
	return perm[:cut], perm[cut:], nil
}

// Take gathers the rows of vs at the given indices, preserving index order.
func Take[T any](vs []T, indices []int) []T {
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = vs[idx]
	}
	return out
}
