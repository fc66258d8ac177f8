package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tubetext/tubetext/internal/config"
	"github.com/tubetext/tubetext/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transcript extraction HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			res, err := buildResolver(cfg)
			if err != nil {
				return err
			}

			srv := server.New(res)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() {
				errs <- srv.Listen(cfg.ListenAddr)
			}()

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
				slog.Info("shutting down")
				return srv.Shutdown()
			}
		},
	}
}
