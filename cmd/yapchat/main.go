// Command yapchat is a terminal chat client for yapnet servers. It also ships an
// in-memory server for local testing.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/luciancaetano/yapnet/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg      config.Config
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:          "yapchat",
		Short:        "Chat over a yapnet WebSocket server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newChatCmd(&cfg), newServeCmd(&cfg))
	return rootCmd
}

// newLogger writes human-readable logs to stderr so they do not mix with chat lines.
func newLogger(cfg config.Config) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(cfg.Level()).
		With().Timestamp().Logger()
}
