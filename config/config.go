// Package config loads the engine settings from an optional YAML file and
// INFOVIS_* environment variables.
//
//	pool:
//	  size: 64m       # INFOVIS_POOLSIZE
//	  dir: /var/tmp
//	  prefix: InfoVis
//	  codec: zstd     # none, snappy, zstd, gzip or lz4
//	  level: 0
//	intmap:
//	  evaluate_every: 64
//	  min_load_factor: 0.2
//	log:
//	  level: info
//	  encoding: console
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"infovis/intmap"
	"infovis/logging"
	"infovis/pagepool"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "INFOVIS"

// Config is the full engine configuration.
type Config struct {
	Pool   PoolConfig   `mapstructure:"pool"`
	IntMap IntMapConfig `mapstructure:"intmap"`
	Log    LogConfig    `mapstructure:"log"`
}

// PoolConfig configures the page pool.
type PoolConfig struct {
	// Size is the resident page budget, with an optional k, m or g suffix.
	Size   string `mapstructure:"size"`
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
	Codec  string `mapstructure:"codec"`
	Level  int    `mapstructure:"level"`
}

// IntMapConfig tunes the representation switches of sparse columns.
type IntMapConfig struct {
	EvaluateEvery int     `mapstructure:"evaluate_every"`
	MinLoadFactor float64 `mapstructure:"min_load_factor"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	Encoding    string `mapstructure:"encoding"`
}

func setDefaults(v *viper.Viper) {
	def := intmap.DefaultHeuristic()
	v.SetDefault("pool.size", pagepool.DefaultPoolSize)
	v.SetDefault("pool.dir", os.TempDir())
	v.SetDefault("pool.prefix", "InfoVis")
	v.SetDefault("pool.codec", "none")
	v.SetDefault("pool.level", int(pagepool.CompressionLevelDefault))
	v.SetDefault("intmap.evaluate_every", def.EvaluateEvery)
	v.SetDefault("intmap.min_load_factor", def.MinLoadFactor)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.encoding", "console")
}

// Load reads the configuration. An empty path uses defaults and the
// environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("pool.size", EnvPrefix+"_POOLSIZE", EnvPrefix+"_POOL_SIZE"); err != nil {
		return nil, fmt.Errorf("bind pool size: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	if _, err := pagepool.ParseSize(c.Pool.Size); err != nil {
		return fmt.Errorf("pool.size: %w", err)
	}
	if _, err := pagepool.ParseCompression(c.Pool.Codec); err != nil {
		return fmt.Errorf("pool.codec: %w", err)
	}
	if c.IntMap.EvaluateEvery < 0 {
		return fmt.Errorf("intmap.evaluate_every: must not be negative, got %d", c.IntMap.EvaluateEvery)
	}
	if c.IntMap.MinLoadFactor < 0 || c.IntMap.MinLoadFactor >= 1 {
		return fmt.Errorf("intmap.min_load_factor: must be in [0, 1), got %g", c.IntMap.MinLoadFactor)
	}
	return nil
}

// MaxMemory returns the parsed pool size.
func (c *Config) MaxMemory() (int64, error) {
	return pagepool.ParseSize(c.Pool.Size)
}

// PoolOptions returns the pool options described by the configuration.
func (c *Config) PoolOptions(log *zap.Logger) ([]pagepool.Option, error) {
	typ, err := pagepool.ParseCompression(c.Pool.Codec)
	if err != nil {
		return nil, fmt.Errorf("pool.codec: %w", err)
	}
	codec, err := pagepool.CreateCompressor(typ, pagepool.CompressionLevel(c.Pool.Level))
	if err != nil {
		return nil, fmt.Errorf("pool.codec: %w", err)
	}
	opts := []pagepool.Option{
		pagepool.WithDir(c.Pool.Dir),
		pagepool.WithPrefix(c.Pool.Prefix),
		pagepool.WithLogger(log),
	}
	if codec != nil {
		opts = append(opts, pagepool.WithCompressor(codec))
	}
	return opts, nil
}

// NewPool creates a page pool from the configuration.
func (c *Config) NewPool(log *zap.Logger) (*pagepool.Pool, error) {
	size, err := c.MaxMemory()
	if err != nil {
		return nil, fmt.Errorf("pool.size: %w", err)
	}
	opts, err := c.PoolOptions(log)
	if err != nil {
		return nil, err
	}
	return pagepool.New(size, opts...), nil
}

// Heuristic returns the sparse map heuristic.
func (c *Config) Heuristic() intmap.Heuristic {
	return intmap.Heuristic{
		EvaluateEvery: c.IntMap.EvaluateEvery,
		MinLoadFactor: c.IntMap.MinLoadFactor,
	}
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:       c.Log.Level,
		Development: c.Log.Development,
		Encoding:    c.Log.Encoding,
	}
}
