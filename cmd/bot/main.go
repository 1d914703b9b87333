package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DCAPilot/internal/agent"
	"DCAPilot/internal/collector"
	"DCAPilot/internal/config"
	"DCAPilot/internal/executor"
	"DCAPilot/internal/judge"
	"DCAPilot/internal/notifier"
	"DCAPilot/internal/orchestrator"
	"DCAPilot/internal/recorder"
	"DCAPilot/internal/schedule"
	"DCAPilot/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] DCAPilot starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	tz, _ := time.LoadLocation(cfg.Schedule.Timezone)

	// Market data + order placement
	kraken := collector.NewKrakenFetcher(cfg.Trading.KrakenKey, cfg.Trading.KrakenSec, cfg.Proxy)
	log.Printf("[INFO] exchange: %s, dry_run=%v", kraken.Name(), cfg.Trading.DryRun)

	// One rate limiter shared by every model call
	limiter := judge.NewRateLimiter(cfg.Agents.RateLimit.MaxCalls,
		time.Duration(cfg.Agents.RateLimit.WindowMinutes)*time.Minute)

	// Agents
	var agents []agent.Agent
	weights := map[string]float64{}
	if cfg.Agents.Technical.Enabled {
		agents = append(agents, agent.NewTechnicalAgent(kraken, cfg.Trading.Symbol,
			cfg.Agents.Technical.DailyCandles, cfg.Agents.Technical.WeekCandles))
		weights["technical"] = cfg.Agents.Technical.Weight
	}
	if cfg.Agents.Cycle.Enabled {
		metrics := collector.NewCoinMetricsProvider(cfg.Agents.Cycle.LiveMVRV, cfg.Proxy)
		agents = append(agents, agent.NewCycleAgent(metrics))
		weights["cycle"] = cfg.Agents.Cycle.Weight
	}
	if cfg.Agents.Sentiment.Enabled {
		posts := judge.NewRedditFetcher(cfg.Agents.Sentiment.Subreddits, cfg.Agents.Sentiment.MaxPosts, cfg.Proxy)
		sentJudge := judge.NewAnthropicJudge(cfg.Anthropic.APIKey, cfg.Anthropic.Model,
			judge.SentimentSystemPrompt, "sentiment",
			"Here are %d recent Reddit posts from Bitcoin-related subreddits:", limiter, cfg.Proxy)
		agents = append(agents, agent.NewSentimentAgent(posts, sentJudge, 25))
		weights["sentiment"] = cfg.Agents.Sentiment.Weight
	}
	if cfg.Agents.Geopolitical.Enabled {
		news := judge.NewGoogleNewsFetcher(cfg.Agents.Geopolitical.Queries, cfg.Agents.Geopolitical.MaxHeadlines, cfg.Proxy)
		geoJudge := judge.NewAnthropicJudge(cfg.Anthropic.APIKey, cfg.Anthropic.Model,
			judge.GeopoliticalSystemPrompt, "score",
			"Here are %d recent news headlines:", limiter, cfg.Proxy)
		agents = append(agents, agent.NewGeopoliticalAgent(news, geoJudge, 15))
		weights["geopolitical"] = cfg.Agents.Geopolitical.Weight
	}

	orch := orchestrator.New(agents, weights, cfg.Orchestrator.BaseDCAUSD)

	// Risk-bounded execution
	ledger := executor.NewLedger(cfg.Trading.LedgerFile)
	exec := executor.New(cfg.Trading.Symbol, cfg.Trading.DryRun, cfg.Trading.KillSwitch,
		cfg.Trading.Leverage, cfg.Trading.MaxOrderUSD, cfg.Trading.MaxDailyUSD,
		kraken, kraken, ledger)

	// Purchase calendar
	store, err := schedule.NewStore(cfg.Schedule.StateFile, tz, cfg.Schedule.PlannedHour, cfg.Schedule.StartDate)
	if err != nil {
		log.Fatalf("[FATAL] init schedule store: %v", err)
	}

	// Telegram notifier (noop when unconfigured)
	var tn scheduler.Notifier = notifier.NoopNotifier{}
	var telegram *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		tn = telegram
	} else {
		log.Println("[WARN] telegram not configured, notifications disabled")
	}

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduler
	sched := scheduler.NewScheduler(ctx, orch, exec, store, tn, rec, tz)
	if err := sched.RegisterAll(cfg.Schedule.BuyCron, cfg.Schedule.SweepCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if telegram != nil {
		go telegram.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing buy pipeline now")
		go sched.RunNow()
	}

	log.Println("[INFO] DCAPilot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] DCAPilot stopped")
}
