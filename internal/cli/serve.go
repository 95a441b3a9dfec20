package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/evalguard/internal/infrastructure/logging"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port string
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if dev {
				cfg.Logging.Development = true
				cfg.Logging.Level = "debug"
			}

			// The server always logs, --verbose or not
			logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)

			srv, err := server.NewServer(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := srv.Close(); err != nil {
					logger.Error("Error during shutdown", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Server port (overrides PORT)")
	cmd.Flags().StringVar(&host, "host", "", "Bind address (overrides HOST)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development logging (debug level, console encoding)")
	return cmd
}
