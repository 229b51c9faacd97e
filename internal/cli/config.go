package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/median"
	"github.com/matzehuels/medianshift/pkg/pipeline"
)

// Cache backends selectable with the "cache" key.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the content of the TOML config file. Zero values fall back to
// pipeline defaults; command-line flags override every key.
//
//	data_dir     = "res/Kraje_input_data"
//	results_dir  = "results"
//	strategy     = "exact"
//	mode         = "both"
//	precision    = 0.01
//	tolerance    = 0.001
//	avg_speed    = 110
//	cache        = "redis"
//	redis_addr   = "localhost:6379"
//	metrics_file = "/var/lib/node_exporter/medianshift.prom"
type Config struct {
	DataDir    string      `toml:"data_dir"`
	ResultsDir string      `toml:"results_dir"`
	Strategy   median.Kind `toml:"strategy"`
	Mode       string      `toml:"mode"`
	NodeLimit  int         `toml:"node_limit"`
	Precision  float64     `toml:"precision"`
	Tolerance  float64     `toml:"tolerance"`
	AvgSpeed   float64     `toml:"avg_speed"`

	Cache         string `toml:"cache"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MetricsFile string `toml:"metrics_file"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		DataDir:    pipeline.DefaultDataDir,
		ResultsDir: pipeline.DefaultResultsDir,
		Cache:      CacheFile,
		RedisAddr:  "localhost:6379",
	}
}

// LoadConfig reads path over the defaults. A missing file is only an error
// when required is set, which is the case for an explicit --config.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks the keys that are not validated by the pipeline.
func (c *Config) Validate() error {
	switch c.Cache {
	case "":
		c.Cache = CacheFile
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache = %q requires redis_addr", CacheRedis)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache: %q (must be one of: file, redis, none)", c.Cache)
	}
	if c.Strategy != "" {
		if _, err := median.ParseKind(string(c.Strategy)); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if c.Mode != "" {
		if err := pipeline.ValidateMode(c.Mode); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}
