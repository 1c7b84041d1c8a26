// Package cli implements the genealogy command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genealogy/pkg/buildinfo"
	"github.com/matzehuels/genealogy/pkg/cache"
	"github.com/matzehuels/genealogy/pkg/config"
	"github.com/matzehuels/genealogy/pkg/observability"
	"github.com/matzehuels/genealogy/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "genealogy"

	// configFile is looked up in the user config directory when --config
	// is not given.
	configFile = "config.toml"
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level pipeline, cache
// and HTTP events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Genealogy draws the lineage of an evolving population",
		Long: `Genealogy lays out birth records epoch by epoch and draws the lineage
linking every child to its parent, as PNG, SVG, JSON or Graphviz output.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+filepath.Join("$XDG_CONFIG_HOME", appName, configFile)+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.pushCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig reads the file named by --config, or the default config file
// if it exists. Without either the built-in defaults apply.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	path, err := defaultConfigPath()
	if err != nil {
		return config.Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return config.Default(), nil
	}
	c.Logger.Debug("using config file", "path", path)
	return config.Load(path)
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags are shared by every command that runs the pipeline.
type cacheFlags struct {
	noCache bool
	redis   string
	refresh bool
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redis, "redis", "", "cache in Redis at this address or redis:// URL instead of on disk")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "reload remote histories even if cached")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, flags cacheFlags) (*pipeline.Runner, error) {
	ch, keyer, err := c.newCache(ctx, cfg, flags)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

// newCache picks Redis when an address is configured, the file cache
// otherwise. Redis keys are scoped by application name since the instance
// may be shared.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, flags cacheFlags) (cache.Cache, cache.Keyer, error) {
	if flags.noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil, nil
	}

	addr := flags.redis
	if addr == "" {
		addr = cfg.Cache.Redis
	}
	if addr != "" {
		rc, err := cache.NewRedisCache(ctx, addr)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("using redis cache", "addr", addr)
		return rc, cache.NewScopedKeyer(nil, appName+":"), nil
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil, nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/genealogy/).
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

// defaultConfigPath returns ~/.config/genealogy/config.toml, honoring
// XDG_CONFIG_HOME.
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFile), nil
}
