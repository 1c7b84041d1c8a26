package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genealogy/pkg/config"
	"github.com/matzehuels/genealogy/pkg/pipeline"
)

// inspectCommand creates the interactive epoch browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		source  sourceFlags
		caching cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect [history]",
		Short: "Browse the layout epoch by epoch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.FromConfig(cfg)
			if err := source.apply(&opts, cfg, args); err != nil {
				return err
			}
			opts.Refresh = caching.refresh
			return c.runInspect(cmd.Context(), cfg, caching, opts)
		},
	}

	source.register(cmd)
	caching.register(cmd)
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, cfg config.Config, caching cacheFlags, opts pipeline.Options) error {
	d, _, err := c.drawing(ctx, cfg, caching, opts)
	if err != nil {
		return err
	}

	model := NewInspectModel(opts.SourceName(), d)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("inspector: %w", err)
	}
	return nil
}
