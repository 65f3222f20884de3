package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsite/internal/logging"
	"github.com/goliatone/go-formsite/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the survey website",
		Long:  `Starts the HTTP server with the survey, its static assets, /healthz and /metrics. Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}
			grace, _ := cmd.Flags().GetDuration("grace")

			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			stack, err := server.Wire(cfg, logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() {
				if err := stack.Close(); err != nil {
					logger.Error("close backing services", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info("starting formsite", "env", cfg.Env, "debug", cfg.Debug, "store", cfg.StoreBackend, "mail", cfg.EmailBackend)
			return server.Run(ctx, server.New(cfg.Addr, stack.Handler), grace, logger)
		},
	}
	cmd.Flags().String("addr", "", "listen address; overrides the addr setting")
	cmd.Flags().Duration("grace", 5*time.Second, "time allowed for in-flight requests on shutdown")
	return cmd
}
