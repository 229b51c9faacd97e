package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/medianshift/pkg/buildinfo"
	"github.com/matzehuels/medianshift/pkg/metrics"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run loads the config file, applies --verbose and, when
// a metrics file is configured, installs Prometheus collectors as
// observability hooks. The collected metrics are written by [CLI.Execute].
func (c *CLI) RootCommand() *cobra.Command {
	var (
		cfgFile     string
		verbose     bool
		metricsFile string
	)

	root := &cobra.Command{
		Use:   appName,
		Short: "medianshift finds how much congestion moves optimal facility sites",
		Long: `medianshift places p facilities on a regional road network (the p-median
problem) and searches for the smallest gravitational elongation of the roads
at which the optimal placement changes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			c.Logger.Debug(appName, "build", buildinfo.Short())
			if err := c.loadConfig(cfgFile); err != nil {
				return err
			}
			if metricsFile != "" {
				c.Config.MetricsFile = metricsFile
			}
			if c.Config.MetricsFile != "" {
				c.Metrics = metrics.NewRegistry()
				c.Metrics.Install()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.Metrics == nil {
				return nil
			}
			if err := c.Metrics.WriteToTextfile(c.Config.MetricsFile); err != nil {
				return err
			}
			c.Logger.Debug("wrote metrics", "file", c.Config.MetricsFile)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/medianshift/config.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.regionsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Execute runs the root command and then writes the metrics file, also when
// the command failed. Cobra skips post-run hooks after a RunE error.
func (c *CLI) Execute(ctx context.Context) error {
	return c.execute(ctx, c.RootCommand())
}

func (c *CLI) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if werr := c.writeMetrics(); werr != nil {
		if err != nil {
			c.Logger.Warn("failed to write metrics", "file", c.Config.MetricsFile, "error", werr)
			return err
		}
		return werr
	}
	return err
}

// writeMetrics writes the collected metrics if a metrics file is configured.
func (c *CLI) writeMetrics() error {
	if c.Metrics == nil {
		return nil
	}
	if err := c.Metrics.WriteToTextfile(c.Config.MetricsFile); err != nil {
		return err
	}
	c.Logger.Debug("wrote metrics", "file", c.Config.MetricsFile)
	return nil
}

// loadConfig reads the explicit config file, or the default one if present.
func (c *CLI) loadConfig(path string) error {
	required := path != ""
	if !required {
		p, err := configPath()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return err
	}
	c.Config = cfg
	if required {
		c.Logger.Debug("loaded config", "file", path)
	}
	return nil
}
