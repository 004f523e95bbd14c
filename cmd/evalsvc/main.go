package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ionoscope/storm-eval-service/internal/adapter/httpapi"
	kafkaadapter "github.com/ionoscope/storm-eval-service/internal/adapter/kafka"
	"github.com/ionoscope/storm-eval-service/internal/adapter/swpc"
	"github.com/ionoscope/storm-eval-service/internal/config"
	"github.com/ionoscope/storm-eval-service/internal/domain"
	"github.com/ionoscope/storm-eval-service/internal/observability"
	"github.com/ionoscope/storm-eval-service/internal/pipeline"
	"github.com/ionoscope/storm-eval-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	extCfg := domain.ExtractionConfig{
		KpThreshold:      cfg.KpThreshold,
		MinGapHours:      cfg.MinGapHours,
		MinDurationHours: cfg.MinDurationHours,
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	measurements := store.New(cfg.StoreMaxEntries)

	p := pipeline.New(reader, measurements, writer, extCfg, logger, metrics, cfg.BatchSize)

	srv := httpapi.NewServer(cfg.HTTPAddr, p, measurements, extCfg, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SWPC live feeds supplement the Kafka source (feature-flagged via SWPC_ENABLED).
	if cfg.SWPCEnabled {
		client := swpc.NewClient(cfg.SWPCBaseURL, cfg.SWPCTimeout, cfg.SWPCRequestsPerS, logger)
		cached := swpc.NewCachedClient(client, cfg.SWPCCacheTTL, metrics)
		poller := swpc.NewPoller(cached, measurements, cfg.SWPCPollInterval, logger)
		metrics.SWPCEnabled.Set(1)
		logger.Info("swpc feeds enabled", "base_url", cfg.SWPCBaseURL,
			"poll_interval", cfg.SWPCPollInterval, "cache_ttl", cfg.SWPCCacheTTL)
		go func() {
			if err := poller.Run(ctx); err != nil {
				logger.Error("swpc poller error", "error", err)
			}
		}()
	} else {
		logger.Info("swpc feeds disabled")
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingestion pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
