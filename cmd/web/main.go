package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lordwhitefire/new-portfolio/internal/app"
	"github.com/lordwhitefire/new-portfolio/internal/handlers"
	"github.com/lordwhitefire/new-portfolio/internal/observability"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web")
	ctx = observability.WithLogger(ctx, logger)

	a, err := app.Load(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialise site", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("secret resolver close error", zap.Error(err))
		}
	}()
	cfg := a.Config

	router := handlers.NewRouter(handlers.Config{
		Renderer:       a.Renderer,
		Logger:         logger,
		PublicDir:      cfg.Site.PublicDir,
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr), zap.Bool("dev_mode", cfg.Server.DevMode))
	go func() {
		serverLogger.Info("site listening", zap.Int("pages", len(a.Renderer.Manifest().Pages)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
