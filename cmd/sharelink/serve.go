package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xrasdas/sharelink/internal/api"
	"github.com/xrasdas/sharelink/internal/bootstrap"
	"github.com/xrasdas/sharelink/internal/cache"
	"github.com/xrasdas/sharelink/internal/config"
	"github.com/xrasdas/sharelink/internal/support/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the conversion HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log)

	store := cache.New(cfg.Convert.CacheTTL)
	router := api.NewRouter(logger, cfg, store)
	server := bootstrap.NewHTTPServer(cfg.HTTP, router)

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP.Addr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down http server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server exited cleanly")
	return nil
}
