// Package config loads stormgraph settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/stormgraph/config.toml by default:
//
//	[source]
//	kind = "sqlite"
//
//	[source.sqlite]
//	path = "storms.db"
//
//	[cache]
//	kind = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	mode = "select"
//
// A missing file yields [Default]. Command-line flags override file values.
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stormgraph/pkg/bridge"
	"github.com/matzehuels/stormgraph/pkg/cache"
	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/force"
	"github.com/matzehuels/stormgraph/pkg/layout"
	"github.com/matzehuels/stormgraph/pkg/render"
	"github.com/matzehuels/stormgraph/pkg/source"
)

const appName = "stormgraph"

// Source kinds.
const (
	SourceKusto  = "kusto"
	SourceSQLite = "sqlite"
	SourceMongo  = "mongo"
	SourceFile   = "file"
)

// Cache kinds.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds stormgraph configuration.
type Config struct {
	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`
	Layout LayoutConfig `toml:"layout"`
	Force  force.Params `toml:"force"`
	View   ViewConfig   `toml:"view"`
	Server ServerConfig `toml:"server"`
}

// SourceConfig selects and configures the storm data source.
type SourceConfig struct {
	Kind   string               `toml:"kind"` // "kusto", "sqlite", "mongo", "file"
	Path   string               `toml:"path"` // Graph file for kind "file"
	Kusto  source.KustoOptions  `toml:"kusto"`
	SQLite source.SQLiteOptions `toml:"sqlite"`
	Mongo  source.MongoOptions  `toml:"mongo"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Kind      string             `toml:"kind"`      // "file", "redis", "none"
	Dir       string             `toml:"dir"`       // Empty means the XDG cache directory
	Namespace string             `toml:"namespace"` // Key prefix shared by all backends
	Redis     cache.RedisOptions `toml:"redis"`
}

// LayoutConfig controls level and subtree assignment.
type LayoutConfig struct {
	RootID string `toml:"root_id"`
}

// ViewConfig controls the render surface.
type ViewConfig struct {
	Width          float64       `toml:"width"`
	Height         float64       `toml:"height"`
	NodeRadius     float64       `toml:"node_radius"`
	DefaultColor   string        `toml:"default_color"`
	HighlightColor string        `toml:"highlight_color"`
	TickInterval   time.Duration `toml:"tick_interval"`
	MaxSteps       int           `toml:"max_steps"`
	Seed           uint64        `toml:"seed"`
}

// ServerConfig controls the HTTP host.
type ServerConfig struct {
	Addr string `toml:"addr"`
	Mode string `toml:"mode"` // Click mode: "toggle" or "select"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Source: SourceConfig{Kind: SourceKusto},
		Cache:  CacheConfig{Kind: CacheFile},
		Layout: LayoutConfig{RootID: layout.DefaultRootID},
		Force:  force.DefaultParams(),
		View: ViewConfig{
			Width:          render.DefaultWidth,
			Height:         render.DefaultHeight,
			NodeRadius:     render.DefaultNodeRadius,
			DefaultColor:   render.DefaultColor,
			HighlightColor: render.DefaultHighlightColor,
			TickInterval:   force.DefaultTickInterval,
			MaxSteps:       force.DefaultMaxSteps,
			Seed:           force.DefaultSeed,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080", Mode: bridge.ModeToggle.String()},
	}
}

// Dir returns the stormgraph config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the default cache directory (~/.cache/stormgraph/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the config file at path, or at [Path] when path is empty.
// Fields missing from the file keep their defaults; a missing file at the
// default location yields [Default].
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, or to [Path] when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceKusto, SourceSQLite, SourceMongo, SourceFile:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown source kind %q (must be one of: kusto, sqlite, mongo, file)", c.Source.Kind)
	}
	switch c.Cache.Kind {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache kind %q (must be one of: file, redis, none)", c.Cache.Kind)
	}
	if _, ok := bridge.ParseMode(c.Server.Mode); !ok {
		return errs.New(errs.ErrCodeInvalidConfig, "unknown click mode %q (must be toggle or select)", c.Server.Mode)
	}
	if c.View.Width < 0 || c.View.Height < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "view size must be positive")
	}
	return nil
}

// NewSource builds the configured data source.
func (c *Config) NewSource() (source.Source, error) {
	switch c.Source.Kind {
	case SourceKusto:
		return source.NewKusto(c.Source.Kusto)
	case SourceSQLite:
		return source.NewSQLite(c.Source.SQLite)
	case SourceMongo:
		return source.NewMongo(c.Source.Mongo)
	case SourceFile:
		return source.NewFile(c.Source.Path)
	}
	return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown source kind %q", c.Source.Kind)
}

// NewCache opens the configured cache backend, wrapped with hook
// reporting.
func (c *Config) NewCache(ctx context.Context) (cache.Cache, error) {
	var (
		backend cache.Cache
		err     error
	)
	switch c.Cache.Kind {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		backend, err = cache.NewRedisCache(ctx, c.Cache.Redis)
	default:
		dir := c.Cache.Dir
		if dir == "" {
			if dir, err = CacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		backend, err = cache.NewFileCache(dir)
	}
	if err != nil {
		return nil, err
	}
	return cache.WithHooks(backend), nil
}

// Keyer returns the cache keyer for the configured namespace.
func (c *Config) Keyer() cache.Keyer {
	return cache.NewKeyer(c.Cache.Namespace)
}

// ClickMode returns the configured click mode.
func (c *Config) ClickMode() bridge.Mode {
	m, _ := bridge.ParseMode(c.Server.Mode)
	return m
}

// RenderOptions returns render options for the configured view, layout and
// forces.
func (c *Config) RenderOptions() render.Options {
	opts := render.Options{
		Width:          c.View.Width,
		Height:         c.View.Height,
		NodeRadius:     c.View.NodeRadius,
		DefaultColor:   c.View.DefaultColor,
		HighlightColor: c.View.HighlightColor,
		TickInterval:   c.View.TickInterval,
		Layout:         layout.Options{RootID: c.Layout.RootID},
		Force:          c.Force,
	}
	opts.Simulation.MaxSteps = c.View.MaxSteps
	opts.Simulation.Seed = c.View.Seed
	opts.SetDefaults()
	return opts
}
