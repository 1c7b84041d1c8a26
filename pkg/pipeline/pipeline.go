// Package pipeline runs the load → layout → render pipeline shared by the
// CLI and the HTTP API.
//
// # Stages
//
//  1. Load: read birth records from a file, inline text or MongoDB
//  2. Draw: order, place and build curves ([lineage.Draw])
//  3. Render: turn the drawing into PNG, SVG, JSON or Graphviz outputs
//
// Each stage is cached through a [cache.Cache]; keys are derived from the
// content hash of the history, so edits always invalidate.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "births.txt",
//	    Formats: []string{pipeline.FormatPNG},
//	})
//	png := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/genealogy/pkg/cache"
	"github.com/matzehuels/genealogy/pkg/config"
	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/history/mongostore"
	"github.com/matzehuels/genealogy/pkg/lineage"
	"github.com/matzehuels/genealogy/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	DefaultWidth  = config.DefaultSize
	DefaultHeight = config.DefaultSize
	DefaultScale  = 1.0
)

// Output formats.
const (
	FormatPNG      = "png"
	FormatSVG      = "svg"
	FormatJSON     = "json"
	FormatDOT      = "dot"      // Graphviz source of the parent graph
	FormatNodelink = "nodelink" // Graphviz-rendered SVG of the parent graph
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:      true,
	FormatSVG:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatNodelink: true,
}

// Extension returns the file extension for format.
func Extension(format string) string {
	if format == FormatNodelink {
		return "nodelink.svg"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It doubles as the API request body.
type Options struct {
	// Load options. Exactly one of Source, History or Mongo is used, in the
	// order Mongo, History, Source.
	Source        string             `json:"-"`
	History       string             `json:"history,omitempty"`
	HistoryFormat string             `json:"history_format,omitempty"`
	Mongo         *mongostore.Config `json:"-"`
	Refresh       bool               `json:"refresh,omitempty"`

	// Layout options
	Width          float64 `json:"width,omitempty"`
	Height         float64 `json:"height,omitempty"`
	Inset          float64 `json:"inset,omitempty"`
	SkipSeparators bool    `json:"skip_separators,omitempty"`
	SkipLineage    bool    `json:"skip_lineage,omitempty"`

	// Render options
	Formats   []string    `json:"formats,omitempty"`
	Theme     *sink.Theme `json:"theme,omitempty"`
	ShowNodes bool        `json:"show_nodes,omitempty"`
	Scale     float64     `json:"scale,omitempty"`

	Logger *log.Logger `json:"-"`
}

// FromConfig returns options seeded from a configuration file. Callers
// overlay flags or request fields afterwards.
func FromConfig(cfg config.Config) Options {
	theme := cfg.Theme()
	return Options{
		Width:     cfg.Canvas.Width,
		Height:    cfg.Canvas.Height,
		Inset:     cfg.Canvas.Inset,
		Theme:     &theme,
		ShowNodes: cfg.Style.ShowNodes,
	}
}

// Result holds the outputs of a pipeline run.
type Result struct {
	Store       *history.Store
	HistoryHash string
	Drawing     lineage.Drawing
	Artifacts   map[string][]byte
	Stats       Stats
	CacheInfo   CacheInfo
}

// Stats contains sizes and timings of a run.
type Stats struct {
	Records    int
	Epochs     int
	Nodes      int
	Curves     int
	Lineages   int // curves linking a child to its parent
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	HistoryHit bool
	DrawingHit bool
	RenderHit  bool
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ParseFormats splits a comma-separated list, trimming blanks and dropping
// duplicates. An empty string yields nil.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForLoad checks that a history source is set.
func (o *Options) ValidateForLoad() error {
	switch {
	case o.Mongo != nil:
		if err := o.Mongo.Validate(); err != nil {
			return err
		}
	case o.History != "":
	case o.Source != "":
		if err := errors.ValidatePath(o.Source); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "no history given: need a file, inline history or mongo collection")
	}
	if o.HistoryFormat != "" && !history.ValidFormats[o.HistoryFormat] {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown history format %q", o.HistoryFormat)
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults fills unset layout fields.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Inset == 0 {
		o.Inset = lineage.DefaultInset
	}
	o.setLogger()
}

// ValidateForLayout applies layout defaults and checks the canvas.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateCanvas(o.Width, o.Height); err != nil {
		return err
	}
	if o.Inset < 0 || o.Inset >= 0.5 {
		return errors.New(errors.ErrCodeInvalidInput, "inset must be in [0, 0.5), got %g", o.Inset)
	}
	return nil
}

// SetRenderDefaults fills unset render fields.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Theme == nil {
		th := sink.DefaultTheme()
		o.Theme = &th
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender applies render defaults and checks formats and theme.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if err := o.Theme.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "theme")
	}
	return nil
}

// Validate checks the options of a full run.
func (o *Options) Validate() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Canvas returns the layout canvas.
func (o *Options) Canvas() lineage.Canvas {
	return lineage.Canvas{Width: o.Width, Height: o.Height}
}

// CurveOptions returns the curve builder options.
func (o *Options) CurveOptions() lineage.CurveOptions {
	return lineage.CurveOptions{
		Inset:          o.Inset,
		SkipSeparators: o.SkipSeparators,
		SkipLineage:    o.SkipLineage,
	}
}

// SourceName describes where the history comes from, for logs and hooks.
func (o *Options) SourceName() string {
	switch {
	case o.Mongo != nil:
		return fmt.Sprintf("mongo:%s.%s", o.Mongo.Database, o.Mongo.Collection)
	case o.History != "":
		return "inline"
	default:
		return o.Source
	}
}

// DrawingKeyOpts returns cache key options for the drawing stage.
func (o *Options) DrawingKeyOpts() cache.DrawingKeyOpts {
	return cache.DrawingKeyOpts{
		Width:          o.Width,
		Height:         o.Height,
		Inset:          o.Inset,
		SkipSeparators: o.SkipSeparators,
		SkipLineage:    o.SkipLineage,
	}
}

// ArtifactKeyOpts returns cache key options for one output format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	themeHash, _ := cache.HashJSON(o.Theme)
	return cache.ArtifactKeyOpts{
		Format:    format,
		ThemeHash: themeHash,
		ShowNodes: o.ShowNodes,
		Scale:     o.Scale,
	}
}

// renderOptions returns the sink options for these settings.
func (o *Options) renderOptions() []sink.Option {
	opts := []sink.Option{sink.WithTheme(*o.Theme), sink.WithScale(o.Scale)}
	if o.ShowNodes {
		opts = append(opts, sink.WithNodes())
	}
	return opts
}
