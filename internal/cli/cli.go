// Package cli implements the groupfit command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/groupfit/pkg/buildinfo"
	"github.com/matzehuels/groupfit/pkg/cache"
	"github.com/matzehuels/groupfit/pkg/config"
	"github.com/matzehuels/groupfit/pkg/observability"
	"github.com/matzehuels/groupfit/pkg/pipeline"
	"github.com/matzehuels/groupfit/pkg/render"
	"github.com/matzehuels/groupfit/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "groupfit"

	// cachePrefix namespaces cache keys in a shared redis.
	cachePrefix = appName + ":cache:"
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

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level every pipeline,
// cache and store event is logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetStoreHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Groupfit resizes diagram groups to fit their children",
		Long:         `Groupfit resizes group nodes of a node-based diagram so they tightly enclose their children, renders the result and keeps versioned snapshots of saved diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")

	// Register all subcommands
	root.AddCommand(c.fitCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration once and reports unknown keys.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, warnings, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		c.Logger.Warn(w)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cache.Instrument(c.newCache(ctx, cfg, noCache)), versionKeyer(), c.Logger)
	if cfg.Cache.TTL.Duration > 0 {
		r.TTL = cfg.Cache.TTL.Duration
	}
	return r, nil
}

// versionKeyer scopes cache keys by build version.
func versionKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
}

// newCache picks the configured cache backend. An unreachable redis degrades
// to the file cache.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache || !cfg.Cache.Enabled {
		return cache.NewNullCache()
	}
	if cfg.Cache.Backend == config.BackendRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cachePrefix,
		})
		if err == nil {
			return rc
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}
	fc, err := cache.NewFileCache(cacheDir(cfg))
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newStore opens the configured snapshot store.
func (c *CLI) newStore(ctx context.Context) (snapshot.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return snapshot.Open(ctx, cfg)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the per-user default.
func cacheDir(cfg *config.Config) string {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string. Empty means the
// configured defaults.
func parseFormats(s string, defaults []string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		if len(defaults) == 0 {
			return []string{render.FormatSVG}, nil
		}
		return render.ParseFormats(strings.Join(defaults, ","))
	}
	return render.ParseFormats(s)
}
