package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stormgraph/pkg/cache"
	"github.com/matzehuels/stormgraph/pkg/config"
	errs "github.com/matzehuels/stormgraph/pkg/errors"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local graph and artifact cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached graph and render",
			RunE: func(cmd *cobra.Command, args []string) error {
				fc, err := c.openFileCache()
				if err != nil {
					return err
				}
				if err := fc.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				printSuccess("Cache cleared")
				printDetail("Directory: %s", fc.Dir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Remove expired and unreadable cache entries",
			RunE: func(cmd *cobra.Command, args []string) error {
				fc, err := c.openFileCache()
				if err != nil {
					return err
				}
				n, err := fc.Prune(cmd.Context())
				if err != nil {
					return fmt.Errorf("prune cache: %w", err)
				}
				printSuccess("Pruned %d %s", n, plural(n, "entry", "entries"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := c.fileCacheDir()
				if err != nil {
					return err
				}
				writeLine(dir)
				return nil
			},
		},
	)
	return cmd
}

func (c *CLI) openFileCache() (*cache.FileCache, error) {
	dir, err := c.fileCacheDir()
	if err != nil {
		return nil, err
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return fc, nil
}

// fileCacheDir returns the file cache directory. Redis and disabled caches
// have nothing local to manage.
func (c *CLI) fileCacheDir() (string, error) {
	cfg := c.config()
	switch cfg.Cache.Kind {
	case config.CacheRedis, config.CacheNone:
		return "", errs.New(errs.ErrCodeUnsupported, "cache kind %q has no local directory", cfg.Cache.Kind)
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := config.CacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
