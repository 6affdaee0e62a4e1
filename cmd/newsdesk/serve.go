package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harunnryd/newsdesk/cmd/newsdesk/runtime"
	"github.com/harunnryd/newsdesk/internal/config"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Long:  `Starts the HTTP API and, when digest.schedule is set, the digest scheduler. Stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithRuntime(cmd, func(r *runtime.RuntimeComponents) error {
			timeouts, err := r.Config.Server.Timeouts()
			if err != nil {
				return err
			}

			signals := NewSignalHandler(r.Ctx)
			signals.Start()
			defer signals.Stop()

			if err := r.Start(); err != nil {
				return fmt.Errorf("failed to start runtime components: %w", err)
			}
			slog.Info("Newsdesk serving", "addr", r.HTTP.Addr(), "next_digest", r.Digest.Next())

			<-signals.Context().Done()

			ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			defer cancel()
			r.Shutdown(ctx)

			slog.Info("Newsdesk stopped gracefully")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("server.port", config.DefaultServerPort, "server port")
}
