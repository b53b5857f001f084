// Package config loads taskflow.toml.
//
// Keys absent from the file keep their [Default] values, so an empty or
// missing file is a valid configuration. Unknown keys are rejected to catch
// typos early.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/taskflow/pkg/errors"
	"github.com/matzehuels/taskflow/pkg/layout"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "taskflow.toml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

var backends = []string{BackendMemory, BackendFile, BackendRedis, BackendMongo}

// Config is the decoded taskflow.toml.
type Config struct {
	Layout Layout `toml:"layout"`
	Server Server `toml:"server"`
	Store  Store  `toml:"store"`
	Cache  Cache  `toml:"cache"`
}

// Layout selects the layout strategy and node geometry.
type Layout struct {
	Strategy    string  `toml:"strategy"`
	Direction   string  `toml:"direction"`
	NodeWidth   float64 `toml:"node_width"`
	NodeHeight  float64 `toml:"node_height"`
	RankSpacing float64 `toml:"rank_spacing"`
	NodeSpacing float64 `toml:"node_spacing"`
	// Auto recomputes the layout after every edge mutation.
	Auto bool `toml:"auto"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Store selects where sessions are persisted.
type Store struct {
	Backend       string        `toml:"backend"`
	Path          string        `toml:"path"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	TTL           time.Duration `toml:"ttl"`
}

// Cache configures the layout cache.
type Cache struct {
	// Dir enables a file cache. Empty disables caching unless RedisAddr is set.
	Dir string `toml:"dir"`
	// RedisAddr enables a Redis cache shared by server instances.
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	opts := layout.DefaultOptions()
	return &Config{
		Layout: Layout{
			Strategy:    layout.StrategyLeveled,
			Direction:   string(opts.Direction),
			NodeWidth:   opts.NodeWidth,
			NodeHeight:  opts.NodeHeight,
			RankSpacing: opts.RankSpacing,
			NodeSpacing: opts.NodeSpacing,
			Auto:        true,
		},
		Server: Server{Addr: ":8080"},
		Store: Store{
			Backend:       BackendMemory,
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "taskflow",
			TTL:           24 * time.Hour,
		},
		Cache: Cache{TTL: 7 * 24 * time.Hour},
	}
}

// Load reads the configuration at path. An empty path looks for [FileName]
// in the working directory and falls back to defaults if it is absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML over [Default] and validates the result.
func Parse(data string) (*Config, error) {
	cfg := Default()
	meta, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks strategy, direction, geometry and store backend.
func (c *Config) Validate() error {
	if _, err := layout.ByName(c.Layout.Strategy); err != nil {
		return err
	}
	if _, err := c.LayoutOptions(); err != nil {
		return err
	}
	if !slices.Contains(backends, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (want one of %s)",
			c.Store.Backend, strings.Join(backends, ", "))
	}
	if c.Store.TTL < 0 || c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server addr must not be empty")
	}
	return nil
}

// LayoutOptions converts the [layout] table to layout options.
func (c *Config) LayoutOptions() (layout.Options, error) {
	dir, err := layout.ParseDirection(c.Layout.Direction)
	if err != nil {
		return layout.Options{}, err
	}
	opts := layout.Options{
		NodeWidth:   c.Layout.NodeWidth,
		NodeHeight:  c.Layout.NodeHeight,
		RankSpacing: c.Layout.RankSpacing,
		NodeSpacing: c.Layout.NodeSpacing,
		Direction:   dir,
	}
	return opts, opts.Validate()
}
