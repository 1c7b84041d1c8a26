// Package config loads the optional genealogy.toml configuration file.
//
// Every field has a default; a file only needs the keys it overrides:
//
//	[canvas]
//	width = 1600
//	height = 900
//	inset = 0.05
//
//	[style]
//	background = "#101010"
//	lineage = "#f0f0f0"
//	lineage_width = 1.5
//
//	[cache]
//	redis = "localhost:6379"
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults. Command-line flags take precedence over the file.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/lineage"
	"github.com/matzehuels/genealogy/pkg/render/sink"
)

// DefaultSize is the edge of the default square canvas.
const DefaultSize = 800.0

// Config is the decoded configuration file.
type Config struct {
	Canvas Canvas `toml:"canvas"`
	Style  Style  `toml:"style"`
	Cache  Cache  `toml:"cache"`
	Mongo  Mongo  `toml:"mongo"`
	Server Server `toml:"server"`
}

type Canvas struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Inset  float64 `toml:"inset"`
}

type Style struct {
	Background     string    `toml:"background"`
	Separator      string    `toml:"separator"`
	Lineage        string    `toml:"lineage"`
	Asexual        string    `toml:"asexual"`
	Node           string    `toml:"node"`
	SeparatorWidth float64   `toml:"separator_width"`
	LineageWidth   float64   `toml:"lineage_width"`
	SeparatorDash  []float64 `toml:"separator_dash"`
	NodeRadius     float64   `toml:"node_radius"`
	ShowNodes      bool      `toml:"show_nodes"`
}

type Cache struct {
	Disabled bool     `toml:"disabled"`
	Dir      string   `toml:"dir"`
	Redis    string   `toml:"redis"`
	TTL      Duration `toml:"ttl"`
}

type Mongo struct {
	URI        string   `toml:"uri"`
	Database   string   `toml:"database"`
	Collection string   `toml:"collection"`
	Timeout    Duration `toml:"timeout"`
}

type Server struct {
	Addr string `toml:"addr"`
}

// Duration decodes TOML strings such as "90s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	th := sink.DefaultTheme()
	return Config{
		Canvas: Canvas{Width: DefaultSize, Height: DefaultSize, Inset: lineage.DefaultInset},
		Style: Style{
			Background:     th.Background,
			Separator:      th.Separator,
			Lineage:        th.Lineage,
			Asexual:        th.Asexual,
			Node:           th.Node,
			SeparatorWidth: th.SeparatorWidth,
			LineageWidth:   th.LineageWidth,
			SeparatorDash:  th.SeparatorDash,
			NodeRadius:     th.NodeRadius,
		},
		Mongo: Mongo{
			Database:   "genealogy",
			Collection: "births",
			Timeout:    Duration{10 * time.Second},
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads path on top of the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return Config{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r on top of the defaults and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := errors.ValidateCanvas(c.Canvas.Width, c.Canvas.Height); err != nil {
		return err
	}
	if c.Canvas.Inset < 0 || c.Canvas.Inset >= 0.5 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas.inset must be in [0, 0.5), got %g", c.Canvas.Inset)
	}
	if err := c.Theme().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "style")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// CanvasSize returns the configured canvas.
func (c Config) CanvasSize() lineage.Canvas {
	return lineage.Canvas{Width: c.Canvas.Width, Height: c.Canvas.Height}
}

// Theme converts the style section into a sink theme.
func (c Config) Theme() sink.Theme {
	s := c.Style
	return sink.Theme{
		Background:     s.Background,
		Separator:      s.Separator,
		Lineage:        s.Lineage,
		Asexual:        s.Asexual,
		Node:           s.Node,
		SeparatorWidth: s.SeparatorWidth,
		LineageWidth:   s.LineageWidth,
		SeparatorDash:  s.SeparatorDash,
		NodeRadius:     s.NodeRadius,
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
