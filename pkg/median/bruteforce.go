package median

import (
	"context"
	"math"
	"slices"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
	"github.com/matzehuels/medianshift/pkg/perm"
)

// BruteForce enumerates every p-combination of vertices.
// Cost is O(C(n,p)·n·p); use it on small graphs or as an oracle for Exact.
type BruteForce struct {
	// MaxCombinations caps the search space; 0 means unlimited. Requests
	// above the cap fail with a SOLVER error instead of running for hours.
	MaxCombinations int

	// Problem is the objective to minimize; empty means ProblemMedian.
	Problem Problem
}

// Kind implements Solver.
func (b *BruteForce) Kind() Kind { return KindBruteForce }

// Solve implements Solver. The first combination in lexicographic order
// wins ties.
func (b *BruteForce) Solve(ctx context.Context, dist *graph.Matrix, weights []float64, p int) (Solution, error) {
	if err := CheckFeasible(dist, weights, p); err != nil {
		return Solution{}, err
	}
	n := dist.Size()
	if b.MaxCombinations > 0 {
		if total := perm.Binomial(n, p); total > b.MaxCombinations {
			return Solution{}, errors.New(errors.ErrCodeSolver,
				"brute force over %d choose %d = %d combinations exceeds limit %d", n, p, total, b.MaxCombinations)
		}
	}

	bestCost := math.Inf(1)
	var best []int
	steps := 0
	for cand := range perm.Combinations(n, p) {
		steps++
		if steps&4095 == 0 && ctx.Err() != nil {
			return Solution{}, errors.Wrap(errors.ErrCodeSolver, ctx.Err(), "brute force interrupted")
		}
		cost := Evaluate(b.Problem, dist, weights, cand)
		if best == nil || Better(cost, bestCost) {
			bestCost = cost
			best = slices.Clone(cand)
		}
	}

	return Solution{Medians: best, Objective: bestCost}, nil
}
