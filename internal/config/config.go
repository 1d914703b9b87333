package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Anthropic struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"anthropic"`
	Agents struct {
		Technical struct {
			Enabled      bool    `yaml:"enabled"`
			Weight       float64 `yaml:"weight"`
			DailyCandles int     `yaml:"daily_candles"`
			WeekCandles  int     `yaml:"weekly_candles"`
		} `yaml:"technical"`
		Cycle struct {
			Enabled  bool    `yaml:"enabled"`
			Weight   float64 `yaml:"weight"`
			LiveMVRV bool    `yaml:"live_mvrv"`
		} `yaml:"cycle"`
		Sentiment struct {
			Enabled    bool     `yaml:"enabled"`
			Weight     float64  `yaml:"weight"`
			Subreddits []string `yaml:"subreddits"`
			MaxPosts   int      `yaml:"max_posts"`
		} `yaml:"sentiment"`
		Geopolitical struct {
			Enabled      bool     `yaml:"enabled"`
			Weight       float64  `yaml:"weight"`
			Queries      []string `yaml:"queries"`
			MaxHeadlines int      `yaml:"max_headlines"`
		} `yaml:"geopolitical"`
		RateLimit struct {
			MaxCalls      int `yaml:"max_calls"`
			WindowMinutes int `yaml:"window_minutes"`
		} `yaml:"rate_limit"`
	} `yaml:"agents"`
	Orchestrator struct {
		BaseDCAUSD float64 `yaml:"base_dca_usd"`
	} `yaml:"orchestrator"`
	Trading struct {
		Symbol      string  `yaml:"symbol"`
		DryRun      bool    `yaml:"dry_run"`
		KillSwitch  bool    `yaml:"kill_switch"`
		Leverage    int     `yaml:"leverage"`
		MaxOrderUSD float64 `yaml:"max_order_usd"`
		MaxDailyUSD float64 `yaml:"max_daily_usd"`
		LedgerFile  string  `yaml:"ledger_file"`
		KrakenKey   string  `yaml:"kraken_key"`
		KrakenSec   string  `yaml:"kraken_secret"`
	} `yaml:"trading"`
	Schedule struct {
		StartDate   string `yaml:"start_date"`
		PlannedHour int    `yaml:"planned_hour"`
		Timezone    string `yaml:"timezone"`
		StateFile   string `yaml:"state_file"`
		BuyCron     string `yaml:"buy_cron"`
		SweepCron   string `yaml:"sweep_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Agents default to enabled; YAML may turn them off individually.
	cfg.Agents.Technical.Enabled = true
	cfg.Agents.Cycle.Enabled = true
	cfg.Agents.Sentiment.Enabled = true
	cfg.Agents.Geopolitical.Enabled = true
	cfg.Trading.DryRun = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("KRAKEN_API_KEY"); v != "" {
		cfg.Trading.KrakenKey = v
	}
	if v := os.Getenv("KRAKEN_API_SECRET"); v != "" {
		cfg.Trading.KrakenSec = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		cfg.Trading.DryRun = v == "true"
	}
	if v := os.Getenv("KILL_SWITCH"); v != "" {
		cfg.Trading.KillSwitch = v == "true"
	}
	if v := os.Getenv("BASE_DCA_USD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Orchestrator.BaseDCAUSD = f
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Agents.Technical.DailyCandles == 0 {
		cfg.Agents.Technical.DailyCandles = 400
	}
	if cfg.Agents.Technical.WeekCandles == 0 {
		cfg.Agents.Technical.WeekCandles = 200
	}
	if cfg.Agents.Sentiment.MaxPosts == 0 {
		cfg.Agents.Sentiment.MaxPosts = 50
	}
	if cfg.Agents.Geopolitical.MaxHeadlines == 0 {
		cfg.Agents.Geopolitical.MaxHeadlines = 30
	}
	if cfg.Agents.RateLimit.MaxCalls == 0 {
		cfg.Agents.RateLimit.MaxCalls = 20
	}
	if cfg.Agents.RateLimit.WindowMinutes == 0 {
		cfg.Agents.RateLimit.WindowMinutes = 60
	}
	if cfg.Orchestrator.BaseDCAUSD == 0 {
		cfg.Orchestrator.BaseDCAUSD = 100
	}
	if cfg.Trading.Symbol == "" {
		cfg.Trading.Symbol = "BTC/USD"
	}
	if cfg.Trading.Leverage == 0 {
		cfg.Trading.Leverage = 1
	}
	if cfg.Trading.MaxOrderUSD == 0 {
		cfg.Trading.MaxOrderUSD = 500
	}
	if cfg.Trading.MaxDailyUSD == 0 {
		cfg.Trading.MaxDailyUSD = 1000
	}
	if cfg.Trading.LedgerFile == "" {
		cfg.Trading.LedgerFile = "data/spend_ledger.json"
	}
	if cfg.Schedule.StartDate == "" {
		cfg.Schedule.StartDate = time.Now().Format("2006-01-02")
	}
	if cfg.Schedule.PlannedHour == 0 {
		cfg.Schedule.PlannedHour = 9
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "America/Los_Angeles"
	}
	if cfg.Schedule.StateFile == "" {
		cfg.Schedule.StateFile = "data/schedule.json"
	}
	if cfg.Schedule.BuyCron == "" {
		cfg.Schedule.BuyCron = fmt.Sprintf("0 0 %d * * *", cfg.Schedule.PlannedHour)
	}
	if cfg.Schedule.SweepCron == "" {
		cfg.Schedule.SweepCron = "0 30 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/dcapilot.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Orchestrator.BaseDCAUSD <= 0 {
		return fmt.Errorf("orchestrator.base_dca_usd must be positive")
	}
	if c.Trading.MaxOrderUSD < 0 || c.Trading.MaxDailyUSD < 0 {
		return fmt.Errorf("trading caps must not be negative")
	}
	if c.Trading.Leverage < 1 {
		return fmt.Errorf("trading.leverage must be at least 1")
	}
	if !c.Trading.DryRun && (c.Trading.KrakenKey == "" || c.Trading.KrakenSec == "") {
		return fmt.Errorf("live trading requires kraken credentials")
	}
	if c.Schedule.PlannedHour < 0 || c.Schedule.PlannedHour > 23 {
		return fmt.Errorf("schedule.planned_hour must be in [0, 23]")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if _, err := time.Parse("2006-01-02", c.Schedule.StartDate); err != nil {
		return fmt.Errorf("schedule.start_date: %w", err)
	}
	return nil
}
