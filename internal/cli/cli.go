package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobooth/pkg/buildinfo"
	"github.com/matzehuels/photobooth/pkg/cache"
	"github.com/matzehuels/photobooth/pkg/compose"
	"github.com/matzehuels/photobooth/pkg/config"
	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// compositeCacheEntries bounds the in-memory composite cache of a session.
	compositeCacheEntries = 16
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

	// ConfigPath overrides the default config file location.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Config
// =============================================================================

// configPath returns the config file in use.
func (c *CLI) configPath() (string, error) {
	if c.ConfigPath != "" {
		return c.ConfigPath, nil
	}
	return config.Path()
}

// loadConfig reads the config and logs every value that fell back to its
// default.
func (c *CLI) loadConfig() (config.Config, error) {
	path, err := c.configPath()
	if err != nil {
		return config.Default(), nil
	}
	cfg, notes, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	for _, n := range notes {
		c.Logger.Warn("config", "note", n, "file", path)
	}
	return cfg, nil
}

// saveConfig persists cfg.
func (c *CLI) saveConfig(cfg config.Config) error {
	path, err := c.configPath()
	if err != nil {
		return err
	}
	return config.Save(path, cfg)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Rasterized SVG assets go
// to the file cache; composites live in memory for the session.
func (c *CLI) newRunner(cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	assets, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version+":")
	loader := decor.DefaultLoader(cfg.AssetDir, assets, keyer)

	var composites cache.Cache = cache.NewMemoryCache(compositeCacheEntries)
	if noCache {
		composites = cache.NewNullCache()
	}
	comp := compose.New(compose.WithLoader(loader))
	return pipeline.NewRunner(composites, keyer, comp, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/photobooth/).
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
