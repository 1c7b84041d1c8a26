package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genealogy/pkg/config"
	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/pipeline"
)

// renderFlags holds the layout and output flags of the render command.
type renderFlags struct {
	output         string
	formats        string
	size           float64
	width          float64
	height         float64
	inset          float64
	scale          float64
	nodes          bool
	skipSeparators bool
	skipLineage    bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   renderFlags
		source  sourceFlags
		caching cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "render [history]",
		Short: "Render a lineage drawing",
		Long: `Render a lineage drawing from birth records.

The history is a text, JSON or YAML file, or a MongoDB collection selected
with --mongo-uri. Every epoch becomes a column, children are linked to their
first parent, and the drawing is written in each requested format.

Results are cached locally for faster subsequent runs.`,
		Example: `  genealogy render births.txt
  genealogy render births.json -f png,svg --size 1200
  genealogy render --mongo-uri mongodb://localhost:27017 --mongo-collection run42 -o run42.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.FromConfig(cfg)
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			if err := source.apply(&opts, cfg, args); err != nil {
				return err
			}
			opts.Refresh = caching.refresh
			return c.runRender(cmd.Context(), cfg, caching, opts, outputBase(flags.output, source.name(opts)), flags.output)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): png (default), svg, json, dot, nodelink (comma-separated)")
	cmd.Flags().Float64Var(&flags.size, "size", config.DefaultSize, "edge of a square canvas")
	cmd.Flags().Float64Var(&flags.width, "width", 0, "canvas width (overrides --size)")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "canvas height (overrides --size)")
	cmd.Flags().Float64Var(&flags.inset, "inset", 0, "separator inset as a fraction of the height")
	cmd.Flags().Float64Var(&flags.scale, "scale", pipeline.DefaultScale, "size multiplier for PNG and SVG output")
	cmd.Flags().BoolVar(&flags.nodes, "nodes", false, "mark node positions")
	cmd.Flags().BoolVar(&flags.skipSeparators, "no-separators", false, "omit epoch separators")
	cmd.Flags().BoolVar(&flags.skipLineage, "no-lineage", false, "omit lineage curves")
	source.register(cmd)
	caching.register(cmd)

	return cmd
}

// apply overlays the flags the user set on options seeded from the config
// file.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	changed := cmd.Flags().Changed
	if changed("size") {
		opts.Width, opts.Height = f.size, f.size
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("inset") {
		opts.Inset = f.inset
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	if changed("nodes") {
		opts.ShowNodes = f.nodes
	}
	opts.SkipSeparators = f.skipSeparators
	opts.SkipLineage = f.skipLineage

	opts.Formats = pipeline.ParseFormats(f.formats)
	if len(opts.Formats) == 0 {
		opts.Formats = formatFromOutput(f.output)
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	if f.output != "" && len(opts.Formats) > 1 && hasFormatExt(f.output) {
		return errors.New(errors.ErrCodeInvalidInput, "-o %s names a single file but %d formats were requested", f.output, len(opts.Formats))
	}
	return nil
}

// formatFromOutput infers the format from the -o extension, defaulting to
// PNG.
func formatFromOutput(output string) []string {
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidFormats[ext] {
		return []string{ext}
	}
	return []string{pipeline.FormatPNG}
}

func hasFormatExt(path string) bool {
	return pipeline.ValidFormats[strings.TrimPrefix(filepath.Ext(path), ".")]
}

// outputBase derives the base path for output files. An -o with a known
// format extension loses the extension.
func outputBase(output, input string) string {
	if output == "" {
		return input
	}
	if ext := filepath.Ext(output); hasFormatExt(output) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to the file it is written to. A single
// format with an explicit -o is written exactly there.
func outputPaths(base, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && hasFormatExt(output) {
		paths[formats[0]] = output
		return paths
	}
	for _, f := range formats {
		paths[f] = base + "." + pipeline.Extension(f)
	}
	return paths
}

func (c *CLI) runRender(ctx context.Context, cfg config.Config, caching cacheFlags, opts pipeline.Options, base, output string) error {
	runner, err := c.newRunner(ctx, cfg, caching)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, "Drawing lineage...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths := outputPaths(base, output, opts.Formats)
	written := make([]string, 0, len(paths))
	for _, format := range opts.Formats {
		path := paths[format]
		if err := writeOutput(path, result.Artifacts[format]); err != nil {
			return err
		}
		written = append(written, path)
	}
	slices.Sort(written)

	prog.done(fmt.Sprintf("Rendered %s", opts.SourceName()))
	printSuccess("Render complete")
	for _, p := range written {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)
	return nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
