// Package cli implements the medianshift command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/medianshift/pkg/cache"
	"github.com/matzehuels/medianshift/pkg/metrics"
	"github.com/matzehuels/medianshift/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "medianshift"

	// redisKeyPrefix scopes cache keys on a shared Redis instance.
	redisKeyPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	// Metrics is set when a metrics file is configured.
	Metrics *metrics.Registry
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller must Close it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend := c.Config.Cache
	if noCache {
		backend = CacheNone
	}
	store, keyer, err := c.newCache(ctx, backend)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache opens the configured cache backend. An unavailable file cache
// degrades to no caching; an unreachable Redis is an error since the user
// asked for it explicitly.
func (c *CLI) newCache(ctx context.Context, backend string) (cache.Cache, cache.Keyer, error) {
	switch backend {
	case CacheNone:
		return cache.NewNullCache(), nil, nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Config.RedisAddr,
			Password: c.Config.RedisPassword,
			DB:       c.Config.RedisDB,
			Prefix:   redisKeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, redisKeyPrefix), nil
	default:
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory; caching disabled", "err", err)
			return cache.NewNullCache(), nil, nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("cache unavailable; caching disabled", "err", err)
			return cache.NewNullCache(), nil, nil
		}
		return fc, nil, nil
	}
}

// baseOptions returns pipeline options prefilled from the config file.
func (c *CLI) baseOptions() pipeline.Options {
	cfg := c.Config
	return pipeline.Options{
		DataDir:    cfg.DataDir,
		ResultsDir: cfg.ResultsDir,
		Strategy:   cfg.Strategy,
		Mode:       cfg.Mode,
		NodeLimit:  cfg.NodeLimit,
		Precision:  cfg.Precision,
		Tolerance:  cfg.Tolerance,
		AvgSpeed:   cfg.AvgSpeed,
		Logger:     c.Logger,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/medianshift/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the default config file (~/.config/medianshift/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
