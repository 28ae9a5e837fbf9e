package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"portfolio_sentinel/internal/config"
	"portfolio_sentinel/internal/logger"
	"portfolio_sentinel/internal/notify"
	"portfolio_sentinel/internal/risk"
	"portfolio_sentinel/internal/server"
	"portfolio_sentinel/internal/store"
	"portfolio_sentinel/internal/watcher"
)

const LogFile = "sentinel.log"
const VersionFile = "version.latest"

func main() {
	cfg := config.Load()
	cfg.Version = readVersion()

	log := logger.Setup(LogFile, cfg.LogLevel, cfg.MaxLogSizeMB, cfg.MaxLogBackups)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shared state, injected everywhere rather than ambient.
	portfolios := store.NewPortfolioStore()
	prices := store.NewPriceTracker()
	queue := notify.NewQueue()

	var riskSender risk.Sender
	if cfg.RiskSignalsEnabled() {
		riskSender = risk.NewClient(cfg.RiskAPIURL, cfg.RiskAPIKey)
	}

	w := watcher.New(cfg, portfolios, prices, queue, riskSender, log)
	srv := server.New(cfg, portfolios, prices, queue, log)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("shutdown signal received")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().
		Str("version", cfg.Version).
		Dur("stop_sweep", cfg.StopSweepInterval).
		Dur("risk_sweep", cfg.RiskSweepInterval).
		Dur("volatility_sweep", cfg.VolatilitySweepInterval).
		Bool("risk_signals", cfg.RiskSignalsEnabled()).
		Msg("portfolio sentinel initialized")

	go w.Run(ctx)

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}

	log.Info().Msg("portfolio sentinel stopped")
}

func readVersion() string {
	version, err := os.ReadFile(VersionFile)
	if err != nil {
		return "v0.0.0-dev"
	}
	return strings.TrimSpace(string(version))
}
