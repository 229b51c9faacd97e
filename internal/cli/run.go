package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/medianshift/pkg/graph"
	"github.com/matzehuels/medianshift/pkg/median"
	"github.com/matzehuels/medianshift/pkg/pipeline"
	"github.com/matzehuels/medianshift/pkg/report"
	"github.com/matzehuels/medianshift/pkg/threshold"
)

// searchFlags holds the flags shared by run and solve. Zero values leave
// the config file value in place.
type searchFlags struct {
	p          int
	dataDir    string
	resultsDir string
	strategy   string
	mode       string
	precision  float64
	tolerance  float64
	avgSpeed   float64
	nodeLimit  int
	refresh    bool
	noCache    bool
}

// apply overrides opts with every flag that was set.
func (f *searchFlags) apply(opts *pipeline.Options) {
	opts.P = f.p
	opts.Refresh = f.refresh
	if f.dataDir != "" {
		opts.DataDir = f.dataDir
	}
	if f.resultsDir != "" {
		opts.ResultsDir = f.resultsDir
	}
	if f.strategy != "" {
		opts.Strategy = median.Kind(strings.ToLower(f.strategy))
	}
	if f.mode != "" {
		opts.Mode = f.mode
	}
	if f.precision != 0 {
		opts.Precision = f.precision
	}
	if f.tolerance != 0 {
		opts.Tolerance = f.tolerance
	}
	if f.avgSpeed != 0 {
		opts.AvgSpeed = f.avgSpeed
	}
	if f.nodeLimit != 0 {
		opts.NodeLimit = f.nodeLimit
	}
}

// registerCommon adds the flags used by every command that loads a region.
func (f *searchFlags) registerCommon(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.p, "medians", "p", 0, "number of facilities to place (required)")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "directory with region files (default: "+pipeline.DefaultDataDir+")")
	cmd.Flags().IntVar(&f.nodeLimit, "node-limit", 0, "branch-and-bound node budget per solve")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute base distances even if cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("medians")
}

// runCommand creates the run command for threshold searches.
func (c *CLI) runCommand() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "run [region]",
		Short: "Search the elongation scale at which the p-median changes",
		Long: `Search the elongation scale at which the p-median changes.

The run command loads a region, elongates every road gravitationally by a
factor k and solves the p-median problem while moving k towards the
singular upper limit of the region.

Modes:
  first   bisect for the smallest k at which the medians change
  all     report every change on a doubling schedule towards the limit
  both    run both searches concurrently (default)

Results are appended to calculate-first-k-result.txt and
calculate-all-ks-result.txt in the results directory. Without a region
argument an interactive picker lists the regions in the data directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			flags.apply(&opts)
			if len(args) == 1 {
				opts.Region = args[0]
			} else {
				region, err := c.pickRegion(opts.DataDir)
				if err != nil || region == "" {
					return err
				}
				opts.Region = region
			}
			return c.runSearch(cmd.Context(), opts, flags.noCache)
		},
	}

	flags.registerCommon(cmd)
	cmd.Flags().StringVar(&flags.mode, "mode", "", "search mode: both (default), first, all")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "solver: exact (default), bruteforce")
	cmd.Flags().StringVar(&flags.resultsDir, "results-dir", "", "directory for result files (default: "+pipeline.DefaultResultsDir+")")
	cmd.Flags().Float64Var(&flags.precision, "precision", 0, "smallest bisection step (default 0.01)")
	cmd.Flags().Float64Var(&flags.tolerance, "tolerance", 0, "relative distance to the upper limit at which the all-changes search stops (default 0.001)")
	cmd.Flags().Float64Var(&flags.avgSpeed, "avg-speed", 0, "reference speed for reported declines (default 110)")

	return cmd
}

// runSearch executes the pipeline and prints the outcome.
func (c *CLI) runSearch(ctx context.Context, opts pipeline.Options, noCache bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching %s (p=%d, %s)...", opts.Region, opts.P, opts.Mode))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Search failed")
		return err
	}
	spinner.Stop()
	prog.done("Searched region " + opts.Region)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	g := result.Graph
	printSuccess("Search complete")
	printStats(result.Stats.Vertices, result.Stats.Edges, result.CacheInfo.DistancesHit)
	printKeyValue("Run", result.RunID.String())
	printKeyValue("Upper limit", formatFloat(result.UpperLimit))

	if f := result.First; f != nil {
		printNewline()
		printInfo("First change")
		if f.Changed {
			printKeyValue("k", formatFloat(f.K))
			printKeyValue("Medians", formatMedians(g, f.Solution.Medians))
			printKeyValue("Changes to", formatMedians(g, f.ChangeSolution.Medians))
			printKeyValue("At k", formatFloat(f.ChangeK))
		} else {
			printWarning("Medians stable up to k = %s", formatFloat(f.K))
			printKeyValue("Medians", formatMedians(g, f.Solution.Medians))
		}
	}

	if len(result.Events) > 0 {
		printNewline()
		printInfo("Changes (%d)", len(result.Events))
		printTable(eventTable(g, result.Events, opts.AvgSpeed))
	}

	printNewline()
	for _, f := range result.Files {
		printFile(f)
	}
	return nil
}

// eventTable lays out one row per reported change.
func eventTable(g *graph.Graph, events []threshold.Event, avgSpeed float64) ([]string, [][]string) {
	headers := []string{"k", "Medians", "Objective", "Mean decline"}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		decline := "-"
		if s, err := report.Summarize(ev.Ratios, avgSpeed); err == nil {
			decline = formatFloat(s.Mean)
		}
		rows = append(rows, []string{
			formatFloat(ev.K),
			formatMedians(g, ev.Solution.Medians),
			formatFloat(ev.Solution.Objective),
			decline,
		})
	}
	return headers, rows
}

// formatMedians lists medians by vertex name, falling back to the index.
func formatMedians(g *graph.Graph, medians []int) string {
	names := make([]string, len(medians))
	for i, m := range medians {
		v := g.Vertex(m)
		if v.Name != "" {
			names[i] = fmt.Sprintf("%s (%d)", v.Name, m)
		} else {
			names[i] = fmt.Sprintf("%d", m)
		}
	}
	return strings.Join(names, ", ")
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
