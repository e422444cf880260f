package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CryptoFlow/internal/collector"
	"CryptoFlow/internal/config"
	"CryptoFlow/internal/history"
	"CryptoFlow/internal/logger"
	"CryptoFlow/internal/notifier"
	"CryptoFlow/internal/recorder"
	"CryptoFlow/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Init("scanner", "info")
		logger.Fatal("load config: %v", err)
	}
	if err := logger.Init("scanner", cfg.Log.Level); err != nil {
		logger.Init("scanner", "info")
		logger.Warn("%v, using info", err)
	}
	defer logger.Sync()
	logger.Info("CryptoFlow scanner starting...")

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation: %v", err)
	}

	// Init fetcher and collector
	fetcher := collector.NewBinanceFetcher(cfg.Exchange.BaseURL, cfg.Proxy, cfg.Exchange.Timeout)
	col := collector.NewCollector(fetcher)
	col.Timeframe = cfg.ScanTimeframe()
	col.CandleLimit = cfg.Scan.CandleLimit
	col.SMALength = cfg.Scan.SMALength
	col.Pause = cfg.Exchange.RequestPause
	logger.Info("data source: %s, %s candles, SMA %d", fetcher.Name(), col.Timeframe, col.SMALength)

	// Alert history
	hs := history.NewStore(cfg.History.File, cfg.History.Window)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	rec := recorder.Open(cfg.Database.SQLitePath)
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, hs, tn, rec)
	sched.SMALength = cfg.Scan.SMALength
	sched.SendPause = cfg.Scan.SendPause
	if err := sched.Register(cfg.Scan.Interval); err != nil {
		logger.Fatal("register scan cycle: %v", err)
	}
	sched.Start()
	defer sched.Stop()
	sched.Announce()

	if cfg.Telegram.Polling {
		go tn.StartPolling(ctx, sched.HandleCommand)
	}

	if cfg.Metrics.Addr != "" {
		go serveMetrics(ctx, cfg.Metrics.Addr)
	}

	if cfg.Scan.RunOnStart {
		logger.Info("RUN_ON_START enabled, executing scan now")
		go sched.RunNow()
	}

	logger.Info("CryptoFlow scanner is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	cancel()
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	logger.Info("metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server: %v", err)
	}
}
