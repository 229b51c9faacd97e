package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/medianshift/pkg/cache"
	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
	"github.com/matzehuels/medianshift/pkg/loader"
	"github.com/matzehuels/medianshift/pkg/median"
	"github.com/matzehuels/medianshift/pkg/median/bnb"
	"github.com/matzehuels/medianshift/pkg/observability"
	"github.com/matzehuels/medianshift/pkg/report"
	"github.com/matzehuels/medianshift/pkg/threshold"
)

// distancesKeyType labels distance matrix entries in cache hooks.
const distancesKeyType = "distances"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Execute runs the complete load → distances → search → report pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	if opts.Problem != median.ProblemMedian {
		return nil, errors.New(errors.ErrCodeInvalidInput, "threshold searches support the p-median objective only, got %s", opts.Problem)
	}

	result := &Result{}

	// Stage 1+2: Load with cached distances
	g, stats, hit, err := r.loadGraph(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats = stats
	result.CacheInfo.DistancesHit = hit

	// Stage 3: Search
	solver, err := opts.NewSolver(opts.Strategy)
	if err != nil {
		return nil, err
	}
	searcher, err := threshold.NewSearcher(g, solver, opts.P, opts.SearchConfig(), logger)
	if err != nil {
		return nil, err
	}
	result.UpperLimit = searcher.Model.UpperLimit()

	writer, err := report.NewWriter(opts.ResultsDir, opts.ReportConfig())
	if err != nil {
		return nil, err
	}
	result.RunID = writer.RunID

	logger.Info("starting search",
		"region", opts.Region,
		"p", opts.P,
		"mode", opts.Mode,
		"strategy", opts.Strategy,
		"upper_limit", result.UpperLimit,
		"run", writer.RunID)

	base := searcher.Model.Edges()
	emit := func(ev threshold.Event) error {
		// Stage 4: Report, streamed as changes are found
		return writer.Write(report.PrefixAllChanges, report.Entry{
			Region:     opts.Region,
			P:          opts.P,
			K:          ev.K,
			UpperLimit: ev.UpperLimit,
			Medians:    ev.Solution.Medians,
			Objective:  ev.Solution.Objective,
			Ratios:     ev.Ratios,
			Base:       base,
			Elongated:  ev.Edges,
		})
	}

	searchStart := time.Now()
	switch opts.Mode {
	case ModeFirst:
		result.First, err = searcher.FindFirstChange(ctx)
	case ModeAll:
		result.Events, err = searcher.FindAllChanges(ctx, emit)
	default:
		result.First, result.Events, err = searcher.RunConcurrent(ctx, emit)
	}
	result.Stats.SearchTime = time.Since(searchStart)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if len(result.Events) > 0 {
		result.Files = append(result.Files, writer.Path(report.PrefixAllChanges))
	}
	if f := result.First; f != nil {
		err := writer.Write(report.PrefixFirstChange, report.Entry{
			Region:     opts.Region,
			P:          opts.P,
			K:          f.K,
			UpperLimit: f.UpperLimit,
			Medians:    f.Solution.Medians,
			Objective:  f.Solution.Objective,
			Ratios:     f.Ratios,
			Base:       base,
			Elongated:  f.Edges,
		})
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, writer.Path(report.PrefixFirstChange))
	}

	logger.Info("search finished",
		"changes", len(result.Events),
		"duration", result.Stats.SearchTime)

	return result, nil
}

// LoadGraph reads the region and attaches its base distance matrix,
// using the cache when possible. It reports whether the matrix was cached.
func (r *Runner) LoadGraph(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	g, _, hit, err := r.loadGraph(ctx, opts)
	return g, hit, err
}

func (r *Runner) loadGraph(ctx context.Context, opts Options) (*graph.Graph, Stats, bool, error) {
	var stats Stats
	hooks := observability.Pipeline()

	hooks.OnLoadStart(ctx, opts.Region)
	loadStart := time.Now()
	region, err := loader.ReadRegion(opts.DataDir, opts.Region)
	stats.LoadTime = time.Since(loadStart)
	if err != nil {
		hooks.OnLoadComplete(ctx, opts.Region, 0, 0, stats.LoadTime, err)
		return nil, stats, false, fmt.Errorf("load: %w", err)
	}
	stats.Vertices, stats.Edges = len(region.Vertices), len(region.Edges)
	hooks.OnLoadComplete(ctx, opts.Region, stats.Vertices, stats.Edges, stats.LoadTime, nil)
	opts.Logger.Info("loaded region",
		"region", opts.Region,
		"vertices", stats.Vertices,
		"edges", stats.Edges,
		"duration", stats.LoadTime)

	distStart := time.Now()
	key := r.Keyer.DistanceKey(opts.Region, cache.GraphHash(stats.Vertices, region.Edges))
	var cached *graph.Matrix
	if !opts.Refresh {
		cached = r.cachedMatrix(ctx, opts.Logger, key, stats.Vertices)
	}

	g, err := region.Graph(cached)
	if err != nil {
		return nil, stats, false, fmt.Errorf("load: %w", err)
	}
	hit := cached != nil
	if !hit {
		r.storeMatrix(ctx, opts.Logger, key, g.Distances())
	}
	stats.DistanceTime = time.Since(distStart)
	hooks.OnDistances(ctx, g.N(), hit, stats.DistanceTime)
	opts.Logger.Info("base distances ready",
		"cached", hit,
		"duration", stats.DistanceTime)

	return g, stats, hit, nil
}

// cachedMatrix returns the cached matrix of order n, or nil. Cache
// failures only cost a recomputation and are logged.
func (r *Runner) cachedMatrix(ctx context.Context, logger *log.Logger, key string, n int) *graph.Matrix {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
		return nil
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, distancesKeyType)
		return nil
	}
	m := new(graph.Matrix)
	if err := m.UnmarshalBinary(data); err != nil || m.Size() != n {
		logger.Warn("discarding corrupt cached matrix", "err", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, distancesKeyType)
		return nil
	}
	observability.Cache().OnCacheHit(ctx, distancesKeyType)
	return m
}

func (r *Runner) storeMatrix(ctx context.Context, logger *log.Logger, key string, m *graph.Matrix) {
	data, err := m.MarshalBinary()
	if err != nil {
		logger.Warn("encoding distance matrix failed", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, distancesKeyType, len(data))
}

// Solved is the base-graph answer of one strategy.
type Solved struct {
	Kind     median.Kind
	Solution median.Solution
	Duration time.Duration
}

// Solve computes the p-median (or p-center, see Options.Problem) of the
// unelongated graph with every listed strategy, in order.
func (r *Runner) Solve(ctx context.Context, g *graph.Graph, opts Options, kinds ...median.Kind) ([]Solved, error) {
	if err := errors.ValidateMedianCount(opts.P, g.N()); err != nil {
		return nil, err
	}
	if err := opts.setProblem(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if opts.NodeLimit == 0 {
		opts.NodeLimit = bnb.DefaultNodeLimit
	}
	if opts.MaxCombinations == 0 {
		opts.MaxCombinations = DefaultMaxCombinations
	}
	out := make([]Solved, 0, len(kinds))
	for _, kind := range kinds {
		solver, err := opts.NewSolver(kind)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		sol, err := solver.Solve(ctx, g.Distances(), g.Weights(), opts.P)
		d := time.Since(start)
		observability.Solver().OnSolve(ctx, string(kind), g.N(), opts.P, d, err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		opts.Logger.Info("solved", "strategy", kind, "problem", opts.Problem, "medians", sol.Medians, "objective", sol.Objective, "duration", d)
		out = append(out, Solved{Kind: kind, Solution: sol, Duration: d})
	}
	return out, nil
}

// WriteLP exports the assignment formulation of problem on g to path in
// CPLEX LP format.
func (r *Runner) WriteLP(g *graph.Graph, problem median.Problem, p int, path string) error {
	if err := median.CheckFeasible(g.Distances(), g.Weights(), p); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := median.NewFormulation(problem, g.Distances(), g.Weights(), p).WriteLP(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
