package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// newServeCommand starts the Document Store, Event Bus, Worktree Manager,
// Agent Runner, RPC Dispatcher and HTTP Gateway, blocking until
// SIGINT/SIGTERM.
func newServeCommand(resolveDataDir func() (string, error), debug *bool) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Agent Board HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(resolveDataDir, *debug)
			if err != nil {
				return err
			}

			if port == 0 {
				port = c.Config.Port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c.Logger.Info("agentboard", "starting", "data_dir", c.DataDir, "port", port)
			return c.Gateway.ListenAndServe(ctx, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "preferred HTTP listen port (default: configured or 17872)")
	return cmd
}
