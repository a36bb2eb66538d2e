// Package config loads and saves the booth's persisted settings.
//
// Settings live in a TOML file under the XDG config directory
// (~/.config/photobooth/config.toml unless XDG_CONFIG_HOME is set). A
// missing file yields [Default]. Values that are out of range or no longer
// known (a removed layout, a misspelled theme) are replaced by their
// defaults and reported by [Config.Normalize] instead of failing startup.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
	"github.com/matzehuels/photobooth/pkg/sequencer"
	"github.com/matzehuels/photobooth/pkg/theme"
)

const (
	// AppName names the config, cache and output directories.
	AppName = "photobooth"

	// FileName is the config file name inside the config directory.
	FileName = "config.toml"
)

// Config is the persisted booth state.
type Config struct {
	Theme     string `toml:"theme"`
	Countdown int    `toml:"countdown"`
	Mirror    bool   `toml:"mirror"`
	Mode      string `toml:"mode"`
	Layout    string `toml:"layout"`

	Filter     string            `toml:"filter"`
	FrameColor string            `toml:"frame_color"`
	Overlay    string            `toml:"overlay"`
	Stickers   []decor.Placement `toml:"stickers"`

	// OutputDir receives exported composites.
	OutputDir string `toml:"output_dir"`
	// AssetDir holds overlay and sticker files.
	AssetDir string `toml:"asset_dir"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		Theme:      theme.DefaultID,
		Countdown:  sequencer.DefaultCountdown,
		Mirror:     true,
		Mode:       string(layout.ModeStrip),
		Layout:     layout.DefaultID,
		FrameColor: decor.DefaultFrameColor,
		OutputDir:  DefaultOutputDir(),
		AssetDir:   DefaultAssetDir(),
	}
}

// Dir returns the config directory using XDG standard (~/.config/photobooth/).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// DefaultOutputDir returns ~/Pictures/photobooth, or the working directory
// when the home directory is unknown.
func DefaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Pictures", AppName)
}

// DefaultAssetDir returns the assets directory next to the config file.
func DefaultAssetDir() string {
	dir, err := Dir()
	if err != nil {
		return "assets"
	}
	return filepath.Join(dir, "assets")
}

// Load reads the config at path. A missing file returns Default. Unknown or
// out-of-range values are replaced; the replacements are returned as notes.
// Only unreadable or malformed files are errors.
func Load(path string) (Config, []string, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil, nil
	}
	if err != nil {
		return cfg, nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Default(), nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	notes := cfg.Normalize()
	return cfg, notes, nil
}

// Normalize replaces invalid values with their defaults and returns one
// note per replacement.
func (c *Config) Normalize() []string {
	def := Default()
	var notes []string
	fix := func(field string, got any, want any) {
		notes = append(notes, fmt.Sprintf("%s %v is not valid, using %v", field, got, want))
	}

	if _, ok := theme.Get(c.Theme); !ok {
		fix("theme", quote(c.Theme), quote(def.Theme))
		c.Theme = def.Theme
	}
	if err := errors.ValidateCountdown(c.Countdown); err != nil {
		fix("countdown", c.Countdown, def.Countdown)
		c.Countdown = def.Countdown
	}
	if m, ok := layout.ParseMode(c.Mode); !ok {
		fix("mode", quote(c.Mode), quote(string(m)))
		c.Mode = string(m)
	}
	if _, ok := layout.Default.Lookup(c.Layout); !ok {
		fix("layout", quote(c.Layout), quote(def.Layout))
		c.Layout = def.Layout
	}
	if _, err := decor.ParseFilter(c.Filter); err != nil {
		fix("filter", quote(c.Filter), quote("none"))
		c.Filter = ""
	}
	if _, err := decor.ResolveFill(c.FrameColor); err != nil {
		fix("frame_color", quote(c.FrameColor), quote(def.FrameColor))
		c.FrameColor = def.FrameColor
	}
	if c.Overlay != "" {
		if _, err := (decor.Set{Overlay: c.Overlay}).Resolve(); err != nil {
			fix("overlay", quote(c.Overlay), quote("none"))
			c.Overlay = ""
		}
	}
	if len(c.Stickers) > 0 {
		if _, err := (decor.Set{Stickers: c.Stickers}).Resolve(); err != nil {
			fix("stickers", len(c.Stickers), "none")
			c.Stickers = nil
		}
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.AssetDir == "" {
		c.AssetDir = def.AssetDir
	}
	return notes
}

// Save writes cfg to path atomically, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "rename %s", path)
	}
	return nil
}

// Decor returns the decoration set selected in the config.
func (c Config) Decor() decor.Set {
	return decor.Set{
		Filter:     c.Filter,
		FrameColor: c.FrameColor,
		Overlay:    c.Overlay,
		Stickers:   append([]decor.Placement(nil), c.Stickers...),
	}
}

// SetDecor stores a decoration set.
func (c *Config) SetDecor(s decor.Set) {
	c.Filter = s.Filter
	c.FrameColor = s.FrameColor
	c.Overlay = s.Overlay
	c.Stickers = append([]decor.Placement(nil), s.Stickers...)
}

// LayoutMode returns the parsed mode.
func (c Config) LayoutMode() layout.Mode {
	m, _ := layout.ParseMode(c.Mode)
	return m
}

// Descriptor returns the selected layout.
func (c Config) Descriptor() layout.Descriptor {
	return layout.Default.Resolve(c.Layout)
}

func quote(s string) string { return fmt.Sprintf("%q", s) }
