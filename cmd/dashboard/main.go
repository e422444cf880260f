package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"CryptoFlow/internal/collector"
	"CryptoFlow/internal/config"
	"CryptoFlow/internal/dashboard"
	"CryptoFlow/internal/logger"
	"CryptoFlow/internal/recorder"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Init("dashboard", "info")
		logger.Fatal("load config: %v", err)
	}
	if err := logger.Init("dashboard", cfg.Log.Level); err != nil {
		logger.Init("dashboard", "info")
		logger.Warn("%v, using info", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation: %v", err)
	}

	fetcher := collector.NewBinanceFetcher(cfg.Exchange.BaseURL, cfg.Proxy, cfg.Exchange.Timeout)

	// Scans always hit the exchange; chart candles go through the TTL cache.
	scanner := collector.NewCollector(fetcher)
	scanner.Timeframe = cfg.ScanTimeframe()
	scanner.CandleLimit = cfg.Scan.CandleLimit
	scanner.SMALength = cfg.Scan.SMALength
	scanner.Pause = cfg.Exchange.RequestPause
	charts := collector.NewCollector(dashboard.NewCache(fetcher, cfg.Dashboard.CacheTTL))

	rec := recorder.Open(cfg.Database.SQLitePath)
	defer rec.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := dashboard.NewServer(scanner, charts, rec, dashboard.NewSessionStore(cfg.Dashboard.DefaultSymbol))
	srv.ChartLimit = cfg.Dashboard.ChartLimit
	srv.SMALength = cfg.Scan.SMALength

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, cfg.Dashboard.Addr); err != nil {
		logger.Error("dashboard: %v", err)
		return
	}
	logger.Info("dashboard stopped")
}
