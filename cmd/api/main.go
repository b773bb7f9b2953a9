package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/app"
	"github.com/riskibarqy/fantasy-draft/internal/config"
	"github.com/riskibarqy/fantasy-draft/internal/observability"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile, envErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	switch {
	case envErr != nil:
		logger.Warn("load .env failed", "error", envErr)
	case envFile != "":
		logger.Info("loaded .env", "path", envFile)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped with error", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger.Named("uptrace"))
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger.Named("pyroscope"))
	if err != nil {
		return err
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("pyroscope stop failed", "error", err)
		}
	}()

	pprofServer, err := observability.StartPprofServer(cfg, logger.Named("pprof"))
	if err != nil {
		return err
	}
	defer func() {
		if err := observability.StopPprofServer(pprofServer, logger, shutdownTimeout); err != nil {
			logger.Warn("pprof shutdown failed", "error", err)
		}
	}()

	srv, cleanup, err := app.NewHTTPServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("release resources failed", "error", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("http server stopped")
	return nil
}
