package graph

import (
	"math"

	"github.com/matzehuels/medianshift/pkg/errors"
)

// AllPairs computes the all-pairs shortest-path matrix for n vertices and the
// given undirected edges.
//
// The matrix starts with a zero diagonal and +Inf elsewhere; every edge then
// sets both symmetric entries. When the same pair appears more than once the
// last edge wins, mirroring a plain adjacency overwrite. Relaxation runs the
// classic Floyd–Warshall loop in fixed k → i → j order with a strict
// improvement rule, so the result is deterministic. Pairs in different
// components keep +Inf.
//
// An edge endpoint outside [0, n) yields an INVALID_GRAPH error.
// Complexity: O(n³) time, O(n²) memory.
func AllPairs(n int, edges []Edge) (*Matrix, error) {
	if n < 0 {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "negative vertex count %d", n)
	}
	m := newMatrix(n)
	for i, e := range edges {
		if e.V1 < 0 || e.V1 >= n || e.V2 < 0 || e.V2 >= n {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "edge %d %s: endpoint out of range [0,%d)", i, e, n)
		}
		if e.V1 == e.V2 {
			continue
		}
		m.data[e.V1*n+e.V2] = e.Cost
		m.data[e.V2*n+e.V1] = e.Cost
	}
	floydWarshall(m)
	return m, nil
}

// floydWarshall relaxes m in place.
func floydWarshall(m *Matrix) {
	n := m.n
	data := m.data
	for k := 0; k < n; k++ {
		baseK := k * n
		for i := 0; i < n; i++ {
			ik := data[i*n+k]
			if math.IsInf(ik, 1) {
				continue
			}
			baseI := i * n
			for j := 0; j < n; j++ {
				kj := data[baseK+j]
				if math.IsInf(kj, 1) {
					continue
				}
				if cand := ik + kj; cand < data[baseI+j] {
					data[baseI+j] = cand
				}
			}
		}
	}
}
