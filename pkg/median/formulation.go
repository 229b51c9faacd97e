package median

import (
	"math"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
)

// Formulation is the binary assignment model of the p-median problem:
//
//	minimize   Σ_i Σ_j Cost[i][j]·x[i][j]
//	subject to Σ_j x[i][j] = 1        for every demand point i
//	           x[i][j] ≤ y[j]          for every i, j
//	           Σ_j y[j] = P
//	           x[i][j], y[j] ∈ {0, 1}
//
// Cost[i][j] is weight(i)·dist(i,j), with zero-weight rows costing 0 even at
// infinite distance. Rows are demand points and columns candidate sites;
// for the p-median problem on a graph both range over all vertices.
//
// With Problem set to ProblemCenter the same constraints minimize a
// continuous z instead, subject to Σ_j Cost[i][j]·x[i][j] ≤ z for every i.
// Cost[i][j] is then the plain distance and zero-weight rows stay 0.
type Formulation struct {
	N       int         // Demand points (rows)
	M       int         // Candidate facility sites (columns)
	P       int         // Facilities to open
	Cost    [][]float64 // N×M objective coefficients of x[i][j]
	Problem Problem     // Empty means ProblemMedian
}

// Formulate builds the p-median assignment model for a distance matrix.
func Formulate(dist *graph.Matrix, weights []float64, p int) *Formulation {
	return NewFormulation(ProblemMedian, dist, weights, p)
}

// NewFormulation builds the assignment model of problem for a distance
// matrix.
func NewFormulation(problem Problem, dist *graph.Matrix, weights []float64, p int) *Formulation {
	cost := weightedCost
	if problem.minimax() {
		cost = centerCost
	}
	n := dist.Size()
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, n)
		for j := range row {
			row[j] = cost(weights[i], dist.At(i, j))
		}
		rows[i] = row
	}
	return &Formulation{N: n, M: n, P: p, Cost: rows, Problem: problem}
}

// Minimax reports whether the objective is the largest assignment cost
// rather than the sum.
func (f *Formulation) Minimax() bool { return f.Problem.minimax() }

// Validate checks dimensions and coefficients.
// Coefficients must be non-negative; +Inf marks a forbidden assignment.
func (f *Formulation) Validate() error {
	if f.Problem != "" {
		if _, err := ParseProblem(string(f.Problem)); err != nil {
			return err
		}
	}
	if f.N < 0 || f.M < 0 || len(f.Cost) != f.N {
		return errors.New(errors.ErrCodeInvalidInput, "formulation has %d cost rows for N=%d", len(f.Cost), f.N)
	}
	for i, row := range f.Cost {
		if len(row) != f.M {
			return errors.New(errors.ErrCodeInvalidInput, "cost row %d has %d columns, want %d", i, len(row), f.M)
		}
		for j, c := range row {
			if math.IsNaN(c) || c < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "cost[%d][%d] = %v is not a valid coefficient", i, j, c)
			}
		}
	}
	return nil
}

// Assign returns, for a fixed selection y, the optimal assignment x (each
// demand point goes to its cheapest open site, lowest index on ties) and the
// resulting objective: the sum of the chosen costs, or their maximum when
// Minimax. Points with no finite open site are assigned -1 and make the
// objective +Inf.
func (f *Formulation) Assign(open []bool) ([]int, float64) {
	assign := make([]int, f.N)
	minimax := f.Minimax()
	var total float64
	for i, row := range f.Cost {
		best, at := math.Inf(1), -1
		for j, c := range row {
			if open[j] && (at < 0 || c < best) {
				best, at = c, j
			}
		}
		if math.IsInf(best, 1) {
			at = -1
		}
		assign[i] = at
		if minimax {
			total = max(total, best)
		} else {
			total += best
		}
	}
	return assign, total
}
