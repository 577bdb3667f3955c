package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/registry"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/webhook"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting bnpl gateway",
		"port", cfg.Server.Port,
		"environment", cfg.Primary.Env,
		"log_level", cfg.Logger.Level,
	)

	reg := registry.New(cfg.ProviderConfigs(), cfg.Server.ProviderTimeout, logger)

	refundStore := application.NewInMemoryRefundStore()
	service := application.NewBNPLService(reg, refundStore, application.RetryConfig{
		MaxAttempts: cfg.Retry.MaxRetries,
		BaseDelay:   cfg.Retry.BaseDelay,
	}, logger)

	stateStore := webhook.NewInMemoryStateStore()
	processor := webhook.NewProcessor(reg, stateStore, cfg.Primary.Env, logger)

	mux := http.NewServeMux()
	handlers.NewHandler(service, processor, logger).Routes(mux)

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.WriteTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
