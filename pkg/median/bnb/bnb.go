// Package bnb is a depth-first branch-and-bound backend for the p-median
// and p-center assignment formulations.
//
// Search:
//   - Sites are decided in index order, "open" before "closed", so complete
//     selections are visited in lexicographic order.
//   - For a partial selection the bound is Σ_i min cost[i][j] over sites that
//     are open or still undecided (max_i for p-center). It never exceeds the
//     cost of any completion, so pruning never discards a strictly better
//     selection.
//   - A subtree is pruned when its bound does not beat the incumbent by more
//     than the shared tie tolerance ([median.Better]). Together with the
//     visiting order this yields the lexicographically smallest optimum, the
//     same set brute-force enumeration returns.
//
// Cancellation is polled every 1024 nodes.
package bnb

import (
	"context"
	"math"
	"slices"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/median"
)

// DefaultNodeLimit bounds the search tree. Large enough for regional road
// networks with a handful of medians.
const DefaultNodeLimit = 50_000_000

// Solver is a median.Backend. The zero value has no node limit.
type Solver struct {
	// NodeLimit stops the search with median.StatusLimit after this many
	// nodes; 0 means unlimited.
	NodeLimit int
}

// New returns a Solver with DefaultNodeLimit.
func New() *Solver {
	return &Solver{NodeLimit: DefaultNodeLimit}
}

var _ median.Backend = (*Solver)(nil)

// engine holds the search state of one Solve call.
type engine struct {
	ctx     context.Context
	n, m    int
	p       int
	limit   int
	minimax bool

	cost    []float64   // cost[i*m+j]
	suffix  []float64   // suffix[i*(m+1)+j] = min_{j' >= j} cost[i][j']
	mins    [][]float64 // mins[d][i]: cheapest open site for i after d openings
	open    []bool
	opened  int
	nodes   int
	stopped error
	limited bool

	found    bool
	best     []bool
	bestCost float64
}

// Solve implements median.Backend.
func (s *Solver) Solve(ctx context.Context, f *median.Formulation) (median.Result, error) {
	if err := f.Validate(); err != nil {
		return median.Result{Status: median.StatusError}, err
	}
	if f.P < 0 || f.P > f.M {
		return median.Result{Status: median.StatusInfeasible}, nil
	}

	e := newEngine(ctx, f, s.NodeLimit)
	e.search(0)

	res := median.Result{Nodes: e.nodes}
	if e.stopped != nil && !e.limited {
		res.Status = median.StatusError
		return res, e.stopped
	}
	if e.found {
		res.Open = e.best
		res.Assign, res.Objective = f.Assign(e.best)
	}

	switch {
	case e.limited:
		res.Status = median.StatusLimit
	case !e.found || math.IsInf(e.bestCost, 1):
		res.Status = median.StatusInfeasible
	default:
		res.Status = median.StatusOptimal
	}
	return res, nil
}

func newEngine(ctx context.Context, f *median.Formulation, limit int) *engine {
	n, m := f.N, f.M
	e := &engine{
		ctx:      ctx,
		n:        n,
		m:        m,
		p:        f.P,
		limit:    limit,
		minimax:  f.Minimax(),
		cost:     make([]float64, n*m),
		suffix:   make([]float64, n*(m+1)),
		mins:     make([][]float64, f.P+1),
		open:     make([]bool, m),
		bestCost: math.Inf(1),
	}
	inf := math.Inf(1)
	for i, row := range f.Cost {
		copy(e.cost[i*m:(i+1)*m], row)
		e.suffix[i*(m+1)+m] = inf
		for j := m - 1; j >= 0; j-- {
			e.suffix[i*(m+1)+j] = min(row[j], e.suffix[i*(m+1)+j+1])
		}
	}
	for d := range e.mins {
		e.mins[d] = make([]float64, n)
	}
	for i := range e.mins[0] {
		e.mins[0][i] = inf
	}
	return e
}

// tick counts a node and polls for cancellation.
func (e *engine) tick() bool {
	e.nodes++
	if e.limit > 0 && e.nodes > e.limit {
		e.stopped = errors.New(errors.ErrCodeSolver, "node limit %d reached", e.limit)
		e.limited = true
		return false
	}
	if e.nodes&1023 == 0 {
		if err := e.ctx.Err(); err != nil {
			e.stopped = err
			return false
		}
	}
	return true
}

// bound is the admissible lower bound with sites [j, m) undecided.
func (e *engine) bound(j int) float64 {
	cur := e.mins[e.opened]
	var lb float64
	for i := 0; i < e.n; i++ {
		lb = e.combine(lb, min(cur[i], e.suffix[i*(e.m+1)+j]))
	}
	return lb
}

// combine folds one row cost into the objective.
func (e *engine) combine(acc, c float64) float64 {
	if e.minimax {
		return max(acc, c)
	}
	return acc + c
}

func (e *engine) search(j int) {
	if e.stopped != nil || !e.tick() {
		return
	}
	if e.opened == e.p {
		e.leaf()
		return
	}
	if e.m-j < e.p-e.opened {
		return
	}
	if e.found && !median.Better(e.bound(j), e.bestCost) {
		return
	}

	// Open j.
	prev, next := e.mins[e.opened], e.mins[e.opened+1]
	for i := 0; i < e.n; i++ {
		next[i] = min(prev[i], e.cost[i*e.m+j])
	}
	e.open[j] = true
	e.opened++
	e.search(j + 1)
	e.opened--
	e.open[j] = false

	// Close j.
	e.search(j + 1)
}

func (e *engine) leaf() {
	var total float64
	for _, c := range e.mins[e.opened] {
		total = e.combine(total, c)
	}
	if !e.found || median.Better(total, e.bestCost) {
		e.found = true
		e.bestCost = total
		e.best = slices.Clone(e.open)
	}
}
