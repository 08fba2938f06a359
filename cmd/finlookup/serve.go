package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finlookup/api"
	"github.com/seenimoa/finlookup/internal/lookup"
)

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if cfg.Cache.WarmSchedule != "" {
			w, err := lookup.NewWarmer(a.svc, cfg.Cache.WarmSchedule, cfg.Cache.WarmConcurrency, logger)
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				w.Stop(stopCtx)
			}()
			logger.Info().Str("schedule", cfg.Cache.WarmSchedule).Msg("cache warmer scheduled")
		}

		srv := api.NewServer(cfg, a.svc,
			api.WithLogger(logger),
			api.WithGatherer(a.promReg),
			api.WithVersion(version),
		)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}
