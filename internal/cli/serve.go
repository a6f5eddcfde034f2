package cli

import (
	"os"
	"os/signal"
	"syscall"

	"promptly/internal/app"
	"promptly/internal/config"
	"promptly/internal/logging"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, os.Stdout)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server, err := app.NewServer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := server.Close(); err != nil {
					logger.Error("failed to release resources", "error", err)
				}
			}()

			return server.Run(ctx)
		},
	}
}
