package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/luciancaetano/yapnet/internal/config"
	"github.com/luciancaetano/yapnet/ws"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an in-memory chat server for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.ListenAddr
			}

			var checkOrigin ws.CheckOriginFn
			if cfg.AllowAllOrigin {
				checkOrigin = ws.AllOrigins()
			}

			logger := newLogger(*cfg)
			server := ws.NewServer(ws.NewServerConfig(addr, cfg.RateLimit(), checkOrigin, logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Start(ctx); err != nil && err != http.ErrServerClosed {
				return err
			}

			<-ctx.Done()
			logger.Info().Int("peers", server.PeerCount()).Msg("shutting down")

			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Stop(stopCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to YAPNET_LISTEN_ADDR)")
	return cmd
}
