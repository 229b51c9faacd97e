package threshold

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/medianshift/pkg/elongation"
	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
	"github.com/matzehuels/medianshift/pkg/median"
	"github.com/matzehuels/medianshift/pkg/observability"
)

// Search procedure names, used in logs and hook events.
const (
	ModeFirst = "first"
	ModeAll   = "all"
)

// Searcher runs threshold searches over one graph.
//
// All fields are read-only during a search; every probe works on its own
// elongated edges and distance matrix. A Searcher is safe for concurrent use
// if its Solver is.
type Searcher struct {
	Graph  *graph.Graph
	Model  *elongation.Model
	Solver median.Solver
	P      int
	Config Config
	Logger *log.Logger // nil discards
}

// NewSearcher validates its inputs and builds the elongation model of g.
func NewSearcher(g *graph.Graph, solver median.Solver, p int, cfg Config, logger *log.Logger) (*Searcher, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if solver == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no solver configured")
	}
	if err := errors.ValidateMedianCount(p, g.N()); err != nil {
		return nil, err
	}
	model, err := elongation.NewModel(g)
	if err != nil {
		return nil, err
	}
	return &Searcher{Graph: g, Model: model, Solver: solver, P: p, Config: cfg, Logger: logger}, nil
}

// FirstResult is the outcome of FindFirstChange.
type FirstResult struct {
	K          float64         // Largest probed scale still yielding the baseline
	UpperLimit float64         // Singular scale of the model
	Edges      []graph.Edge    // Edges elongated at K
	Solution   median.Solution // Solution at K, equal to the baseline set
	Ratios     []float64       // original/elongated cost per edge at K
	Steps      int             // Probes evaluated

	// Changed reports whether any probe produced a different set.
	// ChangeK and ChangeSolution describe the smallest such probe.
	Changed        bool
	ChangeK        float64
	ChangeSolution median.Solution
}

// Event is emitted by FindAllChanges whenever the optimal set changes.
type Event struct {
	K          float64
	UpperLimit float64
	Solution   median.Solution
	Edges      []graph.Edge // Edges elongated at K
	Ratios     []float64    // Previous probe's cost / cost at K, per edge
}

// FindFirstChange searches for the scale at which the baseline solution
// first changes.
//
// Starting from k = 0 with step = U/2 it probes k+step. An unchanged
// solution accepts the probe; a changed one (or a failed solve) halves the
// step. Probes at or beyond the upper limit U halve the step without being
// evaluated. The search ends when the step drops below Config.Precision.
func (s *Searcher) FindFirstChange(ctx context.Context) (*FirstResult, error) {
	logger := s.logger().With("mode", ModeFirst)
	start := time.Now()
	upper := s.Model.UpperLimit()

	baseline, err := s.solve(ctx, s.Graph.Distances())
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	logger.Info("baseline solution", "medians", baseline.Medians, "objective", baseline.Objective, "upper_limit", upper)

	res := &FirstResult{
		UpperLimit: upper,
		Edges:      s.Model.Edges(),
		Solution:   baseline,
	}
	k, step := 0.0, upper/2
	for step >= s.Config.Precision {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := k + step
		if next >= upper {
			step /= 2
			continue
		}

		edges, sol, err := s.probe(ctx, next)
		res.Steps++
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("probe failed; treating as change", "k", next, "err", err)
			observability.Search().OnStep(ctx, ModeFirst, next, true)
			step /= 2
			continue
		}

		changed := !sol.Equal(baseline)
		observability.Search().OnStep(ctx, ModeFirst, next, changed)
		logger.Debug("probe", "k", next, "step", step, "medians", sol.Medians, "changed", changed)
		if changed {
			if !res.Changed || next < res.ChangeK {
				res.Changed = true
				res.ChangeK = next
				res.ChangeSolution = sol
			}
			step /= 2
			continue
		}
		k = next
		res.Edges, res.Solution = edges, sol
	}

	res.K = k
	res.Ratios = elongation.CostRatios(s.Model.Edges(), res.Edges)
	changes := 0
	if res.Changed {
		changes = 1
	}
	observability.Search().OnComplete(ctx, ModeFirst, res.Steps, changes, time.Since(start))
	logger.Info("first change search finished", "k", res.K, "changed", res.Changed, "steps", res.Steps, "duration", time.Since(start))
	return res, nil
}

// FindAllChanges walks k = 0, U/2, 3U/4, ... until k is within
// Config.Tolerance of the upper limit U (relative), emitting an Event each
// time the solution differs from the last emitted one. The first probe
// (k = 0) is always emitted.
//
// A failed solve is logged and the probe skipped. An error returned by emit
// stops the search. emit may be nil.
func (s *Searcher) FindAllChanges(ctx context.Context, emit func(Event) error) ([]Event, error) {
	logger := s.logger().With("mode", ModeAll)
	start := time.Now()
	upper := s.Model.UpperLimit()

	var (
		events []Event
		last   *median.Solution
		steps  int
		prev   = s.Model.Edges()
	)
	report := func(k float64, edges []graph.Edge, sol median.Solution) error {
		ev := Event{
			K:          k,
			UpperLimit: upper,
			Solution:   sol,
			Edges:      edges,
			Ratios:     elongation.CostRatios(prev, edges),
		}
		events = append(events, ev)
		logger.Info("solution changed", "k", k, "medians", sol.Medians, "objective", sol.Objective)
		if emit != nil {
			return emit(ev)
		}
		return nil
	}

	k, step := 0.0, upper
	for !closeTo(k, upper, s.Config.Tolerance) && k < upper {
		if err := ctx.Err(); err != nil {
			return events, err
		}

		edges, sol, err := s.probe(ctx, k)
		steps++
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return events, ctx.Err()
			}
			logger.Warn("probe failed; skipping", "k", k, "err", err)
		case last == nil || !sol.Equal(*last):
			observability.Search().OnStep(ctx, ModeAll, k, true)
			if err := report(k, edges, sol); err != nil {
				return events, err
			}
			last = &sol
			prev = edges
		default:
			observability.Search().OnStep(ctx, ModeAll, k, false)
			logger.Debug("probe", "k", k, "medians", sol.Medians)
			prev = edges
		}

		step /= 2
		k += step
	}

	observability.Search().OnComplete(ctx, ModeAll, steps, len(events), time.Since(start))
	logger.Info("all changes search finished", "events", len(events), "steps", steps, "duration", time.Since(start))
	return events, nil
}

// RunConcurrent runs FindFirstChange and FindAllChanges as two tasks and
// waits for both. The first error cancels the other task.
func (s *Searcher) RunConcurrent(ctx context.Context, emit func(Event) error) (*FirstResult, []Event, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		first  *FirstResult
		events []Event
	)
	g.Go(func() error {
		var err error
		first, err = s.FindFirstChange(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.FindAllChanges(ctx, emit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return first, events, nil
}

// probe elongates the base edges at k and solves on the resulting distances.
func (s *Searcher) probe(ctx context.Context, k float64) ([]graph.Edge, median.Solution, error) {
	edges, err := s.Model.Elongate(k)
	if err != nil {
		return nil, median.Solution{}, err
	}
	dist, err := graph.AllPairs(s.Graph.N(), edges)
	if err != nil {
		return nil, median.Solution{}, err
	}
	sol, err := s.solve(ctx, dist)
	if err != nil {
		return nil, median.Solution{}, err
	}
	return edges, sol, nil
}

func (s *Searcher) solve(ctx context.Context, dist *graph.Matrix) (median.Solution, error) {
	start := time.Now()
	sol, err := s.Solver.Solve(ctx, dist, s.Graph.Weights(), s.P)
	observability.Solver().OnSolve(ctx, string(s.Solver.Kind()), dist.Size(), s.P, time.Since(start), err)
	return sol, err
}

func (s *Searcher) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard)
	}
	return s.Logger
}

// closeTo reports |a-b| <= tol·max(|a|, |b|).
func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*max(math.Abs(a), math.Abs(b))
}
