package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/medianshift/pkg/median"
	"github.com/matzehuels/medianshift/pkg/pipeline"
)

// solveCommand creates the solve command for the unelongated network.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags     searchFlags
		lpOut     string
		kinds     string
		objective string
	)

	cmd := &cobra.Command{
		Use:   "solve <region>",
		Short: "Solve the p-median or p-center of a region's base network",
		Long: `Solve the p-median or p-center of a region's base network.

Objectives:
  median  minimize the total weighted distance to the nearest facility (default)
  center  minimize the largest distance from a demand point to its facility

With --strategy both the exact and the brute force solver run one after the
other and their answers are compared. --lp-out additionally writes the
assignment formulation in CPLEX LP format for an external MILP solver.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			flags.apply(&opts)
			opts.Region = args[0]
			if objective != "" {
				problem, err := median.ParseProblem(objective)
				if err != nil {
					return err
				}
				opts.Problem = problem
			}
			return c.runSolve(cmd.Context(), opts, kinds, lpOut, flags.noCache)
		},
	}

	flags.registerCommon(cmd)
	cmd.Flags().StringVar(&kinds, "strategy", "", "solver: exact (default), bruteforce, both")
	cmd.Flags().StringVar(&objective, "objective", "", "objective: median (default), center")
	cmd.Flags().StringVar(&lpOut, "lp-out", "", "write the LP formulation to this file")

	return cmd
}

// runSolve loads the region and solves it with every requested strategy.
func (c *CLI) runSolve(ctx context.Context, opts pipeline.Options, kindsFlag, lpOut string, noCache bool) error {
	if kindsFlag == "" {
		kindsFlag = string(opts.Strategy)
	}
	if kindsFlag == "" {
		kindsFlag = string(pipeline.DefaultStrategy)
	}
	kinds, err := pipeline.ParseStrategies(kindsFlag)
	if err != nil {
		return err
	}
	opts.Strategy = kinds[0]
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, hit, err := runner.LoadGraph(ctx, opts)
	if err != nil {
		return err
	}

	if lpOut != "" {
		if err := runner.WriteLP(g, opts.Problem, opts.P, lpOut); err != nil {
			return fmt.Errorf("write LP: %w", err)
		}
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Solving %s (p=%d)...", opts.Region, opts.P))
	spinner.Start()
	solved, err := runner.Solve(ctx, g, opts, kinds...)
	if err != nil {
		spinner.StopWithError("Solve failed")
		return err
	}
	spinner.Stop()

	printSuccess("Solved %s %s", opts.Problem, opts.Region)
	printStats(g.N(), g.EdgeCount(), hit)
	printNewline()

	rows := make([][]string, 0, len(solved))
	for _, s := range solved {
		rows = append(rows, []string{
			string(s.Kind),
			formatMedians(g, s.Solution.Medians),
			formatFloat(s.Solution.Objective),
			s.Duration.Round(time.Microsecond).String(),
		})
	}
	printTable([]string{"Strategy", "Medians", "Objective", "Time"}, rows)

	for _, s := range solved[1:] {
		if !s.Solution.Equal(solved[0].Solution) {
			printWarning("%s and %s disagree", solved[0].Kind, s.Kind)
		}
	}
	if lpOut != "" {
		printNewline()
		printFile(lpOut)
	}
	return nil
}
