package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/medianshift/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the distance matrix cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached distance matrices",
		Long: `Remove all cached distance matrices.

Clears the backend selected by the "cache" key of the config file: the cache
directory, or the medianshift:* keys of the configured Redis instance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := c.newCache(ctx, c.Config.Cache)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Caching is disabled")
				return nil
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared cache")
			printDetail("Backend: %s", cacheLocation(store))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache == CacheRedis {
				fmt.Println("redis://" + c.Config.RedisAddr + "/" + redisKeyPrefix + "*")
				return nil
			}
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cacheLocation describes where store keeps its entries.
func cacheLocation(store cache.Cache) string {
	switch s := store.(type) {
	case *cache.FileCache:
		return s.Dir()
	case *cache.RedisCache:
		return "redis (" + redisKeyPrefix + "*)"
	default:
		return "none"
	}
}
