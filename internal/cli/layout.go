package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genealogy/pkg/config"
	"github.com/matzehuels/genealogy/pkg/lineage"
	"github.com/matzehuels/genealogy/pkg/pipeline"
)

// column is one epoch of a layout in rank order.
type column struct {
	Epoch int                  `json:"epoch"`
	X     float64              `json:"x"`
	Nodes []lineage.PlacedNode `json:"nodes"`
}

// layoutDoc is the output of the layout command.
type layoutDoc struct {
	Canvas  lineage.Canvas `json:"canvas"`
	StepX   float64        `json:"step_x"`
	Columns []column       `json:"epochs"`
}

// columns groups the nodes of d by epoch. Nodes of a drawing are already
// in epoch and rank order.
func columns(d lineage.Drawing) []column {
	cols := make([]column, d.EpochCount)
	for e := range cols {
		cols[e] = column{Epoch: e, X: d.StepX * (float64(e) + 0.5), Nodes: []lineage.PlacedNode{}}
	}
	for _, n := range d.Nodes {
		if n.Epoch >= 0 && n.Epoch < len(cols) {
			cols[n.Epoch].Nodes = append(cols[n.Epoch].Nodes, n)
		}
	}
	return cols
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		size    float64
		source  sourceFlags
		caching cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [history]",
		Short: "Print the per-epoch ordering and node positions as JSON",
		Long: `Print the per-epoch ordering and node positions as JSON.

Within an epoch nodes are ordered by first parent, then by id, and spread
evenly over the canvas height. The output lists every epoch with its column
x coordinate and its nodes in rank order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.FromConfig(cfg)
			if cmd.Flags().Changed("size") {
				opts.Width, opts.Height = size, size
			}
			if err := source.apply(&opts, cfg, args); err != nil {
				return err
			}
			opts.Refresh = caching.refresh
			return c.runLayout(cmd.Context(), cfg, caching, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Float64Var(&size, "size", config.DefaultSize, "edge of a square canvas")
	source.register(cmd)
	caching.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, cfg config.Config, caching cacheFlags, opts pipeline.Options, output string) error {
	d, _, err := c.drawing(ctx, cfg, caching, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(layoutDoc{Canvas: d.Canvas, StepX: d.StepX, Columns: columns(d)}, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	printSuccess("Layout complete")
	printFile(output)
	return nil
}

// drawing loads the history and computes its drawing through the cache.
func (c *CLI) drawing(ctx context.Context, cfg config.Config, caching cacheFlags, opts pipeline.Options) (lineage.Drawing, bool, error) {
	runner, err := c.newRunner(ctx, cfg, caching)
	if err != nil {
		return lineage.Drawing{}, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	s, err := runner.Load(ctx, opts)
	if err != nil {
		return lineage.Drawing{}, false, err
	}
	if err := s.Index().RequireEpochs(); err != nil {
		return lineage.Drawing{}, false, err
	}
	return runner.DrawWithCacheInfo(ctx, s, opts)
}
