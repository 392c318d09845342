package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/aiiq-trading/aiiq-trader/internal/api"
	"github.com/aiiq-trading/aiiq-trader/internal/app"
	"github.com/aiiq-trading/aiiq-trader/internal/config"
	"github.com/aiiq-trading/aiiq-trader/internal/metrics"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Missing .env is fine; environment overrides are optional.
	_ = godotenv.Load()

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		log.Printf("warning: config file: %v, using defaults", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("aiiq-trader starting",
		zap.String("oracle_mode", cfg.Oracle.Mode),
		zap.Float64("initial_cash", cfg.Paper.InitialCash),
		zap.Bool("risk_policy", cfg.Risk.Enabled),
		zap.Bool("api", cfg.API.Enabled),
	)

	metrics.Register(prometheus.DefaultRegisterer)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("app init", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API.Addr, a, logger.Named("api"))
		if err := apiServer.Start(ctx); err != nil {
			logger.Fatal("api server", zap.Error(err))
		}
	}

	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run error", zap.Error(err))
	}

	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = apiServer.Shutdown(shutdownCtx)
	}
	if err := a.WriteSnapshot(context.Background()); err != nil {
		logger.Warn("final snapshot", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
