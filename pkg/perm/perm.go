// Package perm provides index-sequence helpers for exhaustive search:
// sequences, binomial counts, and lexicographic k-combinations.
//
// The brute-force p-median solver walks every p-subset of the vertex set in
// lexicographic order; [Combinations] produces that walk without allocating
// one slice per subset.
package perm

import (
	"iter"
	"math"
	"slices"
)

// Seq returns a slice containing the sequence [0, 1, 2, ..., n-1].
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	if n <= 0 {
		return []int{}
	}
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

// Binomial returns n choose k. It returns 0 when k < 0 or k > n and
// saturates at math.MaxInt on overflow.
//
// Binomial counts grow quickly: 40 choose 20 already exceeds 10^11, far
// beyond what exhaustive enumeration can visit.
func Binomial(n, k int) int {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	k = min(k, n-k)
	result := 1
	for i := 1; i <= k; i++ {
		// result * (n-k+i) / i stays integral at every step.
		next := n - k + i
		if result > math.MaxInt/next {
			return math.MaxInt
		}
		result = result * next / i
	}
	return result
}

// Combinations yields every k-subset of [0, n) in lexicographic order,
// each as an ascending slice.
//
// The yielded slice is reused between iterations; callers that keep a
// subset must clone it. For k == 0 a single empty subset is yielded; for
// k < 0 or k > n nothing is yielded.
func Combinations(n, k int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if k < 0 || k > n {
			return
		}
		idx := Seq(k)
		for {
			if !yield(idx) {
				return
			}
			// Find the rightmost index that can still move right.
			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

// Collect returns all k-subsets of [0, n) as independent slices.
// Intended for small n; see Binomial for the result size.
func Collect(n, k int) [][]int {
	var out [][]int
	for c := range Combinations(n, k) {
		out = append(out, slices.Clone(c))
	}
	return out
}
