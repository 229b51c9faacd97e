package median

import (
	"context"
	"fmt"
	"sync"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
)

// Status is the termination status reported by a Backend.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusLimit // search budget exhausted before optimality was proven
	StatusError
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusLimit:
		return "limit"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is a backend's answer to a Formulation.
type Result struct {
	Status    Status
	Open      []bool  // y[j]
	Assign    []int   // x as the site index chosen for each demand point
	Objective float64 // Σ Cost[i][Assign[i]], or the maximum for p-center
	Nodes     int     // Search nodes explored, for diagnostics
}

// Backend solves a Formulation to optimality.
//
// Backends must return the lexicographically smallest optimal selection so
// that repeated solves are comparable. A Backend need not be safe for
// concurrent use; wrap it with Serialized when it is shared.
type Backend interface {
	Solve(ctx context.Context, f *Formulation) (Result, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, f *Formulation) (Result, error)

// Solve calls fn(ctx, f).
func (fn BackendFunc) Solve(ctx context.Context, f *Formulation) (Result, error) { return fn(ctx, f) }

// serialized guards a non-reentrant backend with a mutex.
type serialized struct {
	mu    sync.Mutex
	inner Backend
}

// Serialized returns a Backend that forwards to b one call at a time.
func Serialized(b Backend) Backend {
	return &serialized{inner: b}
}

func (s *serialized) Solve(ctx context.Context, f *Formulation) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Solve(ctx, f)
}

// Exact solves the p-median or p-center problem by delegating the
// assignment formulation to an optimization backend.
type Exact struct {
	Backend Backend

	// Problem is the objective to minimize; empty means ProblemMedian.
	Problem Problem
}

// Kind implements Solver.
func (e *Exact) Kind() Kind { return KindExact }

// Solve implements Solver. Backend failures and any non-optimal status are
// reported as SOLVER errors.
func (e *Exact) Solve(ctx context.Context, dist *graph.Matrix, weights []float64, p int) (Solution, error) {
	if err := CheckFeasible(dist, weights, p); err != nil {
		return Solution{}, err
	}
	f := NewFormulation(e.Problem, dist, weights, p)

	res, err := e.Backend.Solve(ctx, f)
	if err != nil {
		return Solution{}, errors.Wrap(errors.ErrCodeSolver, err, "backend failed (status %s)", res.Status)
	}
	if res.Status != StatusOptimal {
		return Solution{}, errors.New(errors.ErrCodeSolver, "backend finished with status %s", res.Status)
	}
	if len(res.Open) != f.M {
		return Solution{}, errors.New(errors.ErrCodeSolver, "backend returned %d selection values for %d sites", len(res.Open), f.M)
	}

	var medians []int
	for j, open := range res.Open {
		if open {
			medians = append(medians, j)
		}
	}
	if len(medians) != p {
		return Solution{}, errors.New(errors.ErrCodeSolver, "backend opened %d facilities, want %d", len(medians), p)
	}

	// Recompute with the shared evaluation order so that both strategies
	// report bit-identical objectives for the same set.
	return Solution{Medians: medians, Objective: Evaluate(e.Problem, dist, weights, medians)}, nil
}
