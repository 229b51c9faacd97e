package median

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
)

// Kind selects a solving strategy.
type Kind string

const (
	KindExact      Kind = "exact"
	KindBruteForce Kind = "bruteforce"
)

// ValidKinds is the set of supported strategies.
var ValidKinds = map[Kind]bool{
	KindExact:      true,
	KindBruteForce: true,
}

// ParseKind validates a strategy name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !ValidKinds[k] {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid strategy: %q (must be one of: exact, bruteforce)", s)
	}
	return k, nil
}

// Problem selects the objective a solver minimizes.
type Problem string

const (
	// ProblemMedian minimizes total weighted distance (see [Objective]).
	ProblemMedian Problem = "median"
	// ProblemCenter minimizes the largest distance from a demand point to
	// its nearest facility (see [Radius]).
	ProblemCenter Problem = "center"
)

// ParseProblem validates an objective name. "p-median" and "p-center" are
// accepted as aliases.
func ParseProblem(s string) (Problem, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "p-")
	switch Problem(v) {
	case ProblemMedian, ProblemCenter:
		return Problem(v), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid objective: %q (must be one of: median, center)", s)
}

// String returns the conventional problem name, "p-median" or "p-center".
func (p Problem) String() string {
	if p == "" {
		return "p-" + string(ProblemMedian)
	}
	return "p-" + string(p)
}

func (p Problem) minimax() bool { return p == ProblemCenter }

// Solver answers "which p vertices minimize the objective?". The zero
// Problem of a solver is ProblemMedian.
// Implementations must be deterministic for identical input.
type Solver interface {
	Solve(ctx context.Context, dist *graph.Matrix, weights []float64, p int) (Solution, error)
	Kind() Kind
}

// New returns the solver for kind. backend is required for KindExact and
// ignored otherwise.
func New(kind Kind, backend Backend) (Solver, error) {
	switch kind {
	case KindExact:
		if backend == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "exact strategy requires an optimization backend")
		}
		return &Exact{Backend: backend}, nil
	case KindBruteForce:
		return &BruteForce{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown strategy %q", kind)
	}
}

// Solution is a facility set with its objective value.
type Solution struct {
	Medians   []int   // Selected vertices, ascending
	Objective float64 // Value of the solver's objective for Medians
}

// Equal reports whether both solutions select the same facility set.
// Objectives are not compared.
func (s Solution) Equal(o Solution) bool {
	return slices.Equal(s.Medians, o.Medians)
}

// Clone returns a deep copy of s.
func (s Solution) Clone() Solution {
	return Solution{Medians: slices.Clone(s.Medians), Objective: s.Objective}
}

// String returns "[m1 m2 ...] objective".
func (s Solution) String() string {
	parts := make([]string, len(s.Medians))
	for i, m := range s.Medians {
		parts[i] = strconv.Itoa(m)
	}
	return fmt.Sprintf("[%s] %s", strings.Join(parts, " "), strconv.FormatFloat(s.Objective, 'f', 4, 64))
}

// CheckFeasible validates a solve request before any search starts.
//
// It returns INVALID_INPUT when the weights do not match the matrix, and
// INFEASIBLE_GRAPH when p is outside [1, n] or when more than p connected
// components carry demand.
func CheckFeasible(dist *graph.Matrix, weights []float64, p int) error {
	n := dist.Size()
	if len(weights) != n {
		return errors.New(errors.ErrCodeInvalidInput, "%d weights for %d vertices", len(weights), n)
	}
	if p < 1 || p > n {
		return errors.New(errors.ErrCodeInfeasibleGraph, "p=%d outside [1, %d]", p, n)
	}
	demand := 0
	for _, comp := range dist.Components() {
		for _, v := range comp {
			if weights[v] > 0 {
				demand++
				break
			}
		}
	}
	if demand > p {
		return errors.New(errors.ErrCodeInfeasibleGraph,
			"%d disconnected components carry demand but only p=%d facilities", demand, p)
	}
	return nil
}

// Objective evaluates a facility set: Σ_u w(u)·min_{v∈medians} d(u,v).
func Objective(dist *graph.Matrix, weights []float64, medians []int) float64 {
	var total float64
	for u := range weights {
		best := math.Inf(1)
		for _, v := range medians {
			best = min(best, weightedCost(weights[u], dist.At(u, v)))
		}
		total += best
	}
	return total
}

// Radius evaluates a facility set under the p-center objective:
// max over demand points u (w(u) > 0) of min_{v∈medians} d(u,v).
// Weights only decide which vertices are demand points.
func Radius(dist *graph.Matrix, weights []float64, medians []int) float64 {
	var worst float64
	for u := range weights {
		best := math.Inf(1)
		for _, v := range medians {
			best = min(best, centerCost(weights[u], dist.At(u, v)))
		}
		worst = max(worst, best)
	}
	return worst
}

// Evaluate dispatches to [Objective] or [Radius].
func Evaluate(problem Problem, dist *graph.Matrix, weights []float64, medians []int) float64 {
	if problem.minimax() {
		return Radius(dist, weights, medians)
	}
	return Objective(dist, weights, medians)
}

// centerCost returns d for demand points and 0 for zero-weight vertices.
func centerCost(w, d float64) float64 {
	if w == 0 {
		return 0
	}
	return d
}

// weightedCost returns w·d, treating zero demand as free even at +Inf.
func weightedCost(w, d float64) float64 {
	if w == 0 {
		return 0
	}
	return w * d
}

// tieTolerance is the relative tolerance below which two objectives tie.
const tieTolerance = 1e-9

// Better reports whether cand improves on best by more than the tie
// tolerance. Any finite value is better than +Inf.
func Better(cand, best float64) bool {
	if math.IsInf(best, 1) {
		return !math.IsInf(cand, 1)
	}
	return cand < best-tieTolerance*max(1, math.Abs(best))
}
