package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/genealogy/pkg/api"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		caching cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve the render API over HTTP.

  POST /v1/render   render inline birth records
  POST /v1/layout   compute node positions and curves
  GET  /v1/version  build information
  GET  /healthz     liveness probe

Stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") || cfg.Server.Addr == "" {
				cfg.Server.Addr = addr
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg, caching)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Listening on %s", cfg.Server.Addr)
			return api.New(runner, c.Logger).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	caching.register(cmd)
	return cmd
}
