// Package pipeline runs complete medianshift experiments.
//
// This package implements the load → distances → search → report pipeline
// used by the command surface. Centralizing it keeps the CLI a thin layer of
// flag parsing and output formatting.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: read the region's vertex and edge files
//  2. Distances: obtain the base all-pairs matrix, from the cache when the
//     region content is unchanged
//  3. Search: run FindFirstChange, FindAllChanges, or both concurrently
//  4. Report: append every result block to the results directory
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Region: "HK",
//	    P:      3,
//	    Mode:   pipeline.ModeBoth,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.First.K, len(result.Events))
//
// Run individual stages:
//
//	g, hit, err := runner.LoadGraph(ctx, opts)
//	solved, err := runner.Solve(ctx, g, opts, median.KindExact, median.KindBruteForce)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
	"github.com/matzehuels/medianshift/pkg/median"
	"github.com/matzehuels/medianshift/pkg/median/bnb"
	"github.com/matzehuels/medianshift/pkg/report"
	"github.com/matzehuels/medianshift/pkg/threshold"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDataDir is where region files are looked up.
	DefaultDataDir = "res/Kraje_input_data"

	// DefaultResultsDir receives the report files.
	DefaultResultsDir = "results"

	// DefaultStrategy is the solving strategy used by searches.
	DefaultStrategy = median.KindExact

	// DefaultMode runs both search procedures.
	DefaultMode = ModeBoth

	// DefaultMaxCombinations caps brute force enumeration.
	DefaultMaxCombinations = 50_000_000
)

// Search modes.
const (
	ModeFirst = threshold.ModeFirst
	ModeAll   = threshold.ModeAll
	ModeBoth  = "both"
)

// ValidModes is the set of supported search modes.
var ValidModes = map[string]bool{
	ModeFirst: true,
	ModeAll:   true,
	ModeBoth:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one experiment.
type Options struct {
	// Input
	Region  string `json:"region"`
	DataDir string `json:"data_dir,omitempty"`
	P       int    `json:"p"`
	Refresh bool   `json:"refresh,omitempty"` // Recompute the base matrix even if cached

	// Solving
	Strategy        median.Kind    `json:"strategy,omitempty"`
	Problem         median.Problem `json:"problem,omitempty"` // Searches support ProblemMedian only
	NodeLimit       int            `json:"node_limit,omitempty"`
	MaxCombinations int            `json:"max_combinations,omitempty"`

	// Search
	Mode      string  `json:"mode,omitempty"`
	Precision float64 `json:"precision,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`

	// Report
	ResultsDir string  `json:"results_dir,omitempty"`
	AvgSpeed   float64 `json:"avg_speed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of an experiment.
type Result struct {
	// RunID stamps every report block written by this run.
	RunID uuid.UUID

	// Graph is the loaded region with its base distances.
	Graph *graph.Graph

	// UpperLimit is the singular elongation scale of the region.
	UpperLimit float64

	// First is set for ModeFirst and ModeBoth.
	First *threshold.FirstResult

	// Events is set for ModeAll and ModeBoth.
	Events []threshold.Event

	// Files lists the report files written to.
	Files []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Vertices     int
	Edges        int
	LoadTime     time.Duration
	DistanceTime time.Duration
	SearchTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DistancesHit bool // Whether the base matrix came from the cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateMode checks that a search mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid mode: %q (must be one of: first, all, both)", mode)
	}
	return nil
}

// ParseStrategies parses "exact", "bruteforce" or "both".
func ParseStrategies(s string) ([]median.Kind, error) {
	if strings.EqualFold(strings.TrimSpace(s), "both") {
		return []median.Kind{median.KindExact, median.KindBruteForce}, nil
	}
	k, err := median.ParseKind(s)
	if err != nil {
		return nil, err
	}
	return []median.Kind{k}, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := errors.ValidateMedianCount(o.P, 0); err != nil {
		return err
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if _, err := median.ParseKind(string(o.Strategy)); err != nil {
		return err
	}
	if err := o.setProblem(); err != nil {
		return err
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.NodeLimit == 0 {
		o.NodeLimit = bnb.DefaultNodeLimit
	}
	if o.MaxCombinations == 0 {
		o.MaxCombinations = DefaultMaxCombinations
	}
	cfg := o.SearchConfig()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Precision, o.Tolerance = cfg.Precision, cfg.Tolerance

	rc := o.ReportConfig()
	if err := rc.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.AvgSpeed = rc.AvgSpeed
	if o.ResultsDir == "" {
		o.ResultsDir = DefaultResultsDir
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the fields needed to load a region.
func (o *Options) ValidateForLoad() error {
	if err := errors.ValidateRegion(o.Region); err != nil {
		return err
	}
	if o.DataDir == "" {
		o.DataDir = DefaultDataDir
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// setProblem defaults and validates the objective.
func (o *Options) setProblem() error {
	if o.Problem == "" {
		o.Problem = median.ProblemMedian
		return nil
	}
	p, err := median.ParseProblem(string(o.Problem))
	if err != nil {
		return err
	}
	o.Problem = p
	return nil
}

// SearchConfig returns the threshold search tolerances.
func (o *Options) SearchConfig() threshold.Config {
	return threshold.Config{Precision: o.Precision, Tolerance: o.Tolerance}
}

// ReportConfig returns the report parameters.
func (o *Options) ReportConfig() report.Config {
	return report.Config{AvgSpeed: o.AvgSpeed}
}

// NewSolver builds the solver for kind minimizing o.Problem. The exact
// strategy gets its own serialized branch-and-bound backend, so the returned
// solver may be shared by concurrent searches.
func (o *Options) NewSolver(kind median.Kind) (median.Solver, error) {
	switch kind {
	case median.KindBruteForce:
		return &median.BruteForce{MaxCombinations: o.MaxCombinations, Problem: o.Problem}, nil
	case median.KindExact:
		return &median.Exact{
			Backend: median.Serialized(&bnb.Solver{NodeLimit: o.NodeLimit}),
			Problem: o.Problem,
		}, nil
	default:
		return median.New(kind, nil)
	}
}
