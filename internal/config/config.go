package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"CryptoFlow/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
	Exchange struct {
		BaseURL      string        `yaml:"base_url"`
		Timeout      time.Duration `yaml:"timeout"`
		RequestPause time.Duration `yaml:"request_pause"`
	} `yaml:"exchange"`
	Scan struct {
		Timeframe   string        `yaml:"timeframe"`
		CandleLimit int           `yaml:"candle_limit"`
		SMALength   int           `yaml:"sma_length"`
		Interval    time.Duration `yaml:"interval"`
		SendPause   time.Duration `yaml:"send_pause"`
		RunOnStart  bool          `yaml:"run_on_start"`
	} `yaml:"scan"`
	History struct {
		File   string        `yaml:"file"`
		Window time.Duration `yaml:"window"`
	} `yaml:"history"`
	Dashboard struct {
		Addr          string        `yaml:"addr"`
		CacheTTL      time.Duration `yaml:"cache_ttl"`
		ChartLimit    int           `yaml:"chart_limit"`
		DefaultSymbol string        `yaml:"default_symbol"`
	} `yaml:"dashboard"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env (if any), the YAML file at path (if any), then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Scan.RunOnStart = true
	cfg.Telegram.Polling = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	cfg.Scan.Interval = durationFromEnv("SCAN_INTERVAL", cfg.Scan.Interval)
	cfg.Scan.RunOnStart = boolFromEnv("RUN_ON_START", cfg.Scan.RunOnStart)
	if v := os.Getenv("HISTORY_FILE"); v != "" {
		cfg.History.File = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		cfg.Dashboard.Addr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Exchange.BaseURL == "" {
		cfg.Exchange.BaseURL = "https://fapi.binance.com"
	}
	if cfg.Exchange.Timeout == 0 {
		cfg.Exchange.Timeout = 10 * time.Second
	}
	if cfg.Exchange.RequestPause == 0 {
		cfg.Exchange.RequestPause = 100 * time.Millisecond
	}
	if cfg.Scan.Timeframe == "" {
		cfg.Scan.Timeframe = string(model.TF1d)
	}
	if cfg.Scan.CandleLimit == 0 {
		cfg.Scan.CandleLimit = 80
	}
	if cfg.Scan.SMALength == 0 {
		cfg.Scan.SMALength = 50
	}
	if cfg.Scan.Interval == 0 {
		cfg.Scan.Interval = time.Hour
	}
	if cfg.Scan.SendPause == 0 {
		cfg.Scan.SendPause = time.Second
	}
	if cfg.History.File == "" {
		cfg.History.File = "data/sent_alerts.json"
	}
	if cfg.History.Window == 0 {
		cfg.History.Window = 24 * time.Hour
	}
	if cfg.Dashboard.Addr == "" {
		cfg.Dashboard.Addr = ":8501"
	}
	if cfg.Dashboard.CacheTTL == 0 {
		cfg.Dashboard.CacheTTL = 5 * time.Minute
	}
	if cfg.Dashboard.ChartLimit == 0 {
		cfg.Dashboard.ChartLimit = 500
	}
	if cfg.Dashboard.DefaultSymbol == "" {
		cfg.Dashboard.DefaultSymbol = "BTCUSDT"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/cryptoflow.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that configured values are usable. Missing Telegram
// credentials are not an error: see TelegramEnabled.
func (c *Config) Validate() error {
	if _, ok := model.ParseTimeframe(c.Scan.Timeframe); !ok {
		return errors.Errorf("scan.timeframe %q is not supported", c.Scan.Timeframe)
	}
	if c.Scan.SMALength < 2 {
		return errors.New("scan.sma_length must be at least 2")
	}
	if c.Scan.CandleLimit < c.Scan.SMALength {
		return errors.Errorf("scan.candle_limit (%d) must be >= scan.sma_length (%d)", c.Scan.CandleLimit, c.Scan.SMALength)
	}
	if c.Scan.Interval <= 0 {
		return errors.New("scan.interval must be positive")
	}
	if c.Scan.SendPause < 0 || c.Exchange.RequestPause < 0 {
		return errors.New("pauses must not be negative")
	}
	if c.History.Window <= 0 {
		return errors.New("history.window must be positive")
	}
	if c.Dashboard.CacheTTL <= 0 {
		return errors.New("dashboard.cache_ttl must be positive")
	}
	if c.Dashboard.ChartLimit <= 0 {
		return errors.New("dashboard.chart_limit must be positive")
	}
	return nil
}

// TelegramEnabled reports whether both Telegram secrets are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ScanTimeframe returns the validated scan timeframe.
func (c *Config) ScanTimeframe() model.Timeframe {
	tf, _ := model.ParseTimeframe(c.Scan.Timeframe)
	return tf
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
