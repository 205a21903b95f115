package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"BrentLens/internal/collector"
	"BrentLens/internal/config"
	"BrentLens/internal/impact"
	"BrentLens/internal/notifier"
	"BrentLens/internal/recorder"
	"BrentLens/internal/render"
	"BrentLens/internal/scheduler"
	"BrentLens/internal/server"
	"BrentLens/internal/session"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] BrentLens starting...")

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

	// Init fetcher
	var fetcher collector.Fetcher
	source := cfg.Backend.BaseURL
	if cfg.Backend.Demo {
		fetcher = collector.NewDemoFetcher()
		source = "demo data"
	} else {
		fetcher = collector.NewHTTPFetcher(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.Proxy,
			time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
	}
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), source)

	rankOpts := impact.RankOptions{
		PriceThresholdPct:      decimal.NewFromFloat(cfg.Impact.PriceThresholdPct),
		VolatilityThresholdPct: decimal.NewFromFloat(cfg.Impact.VolatilityThresholdPct),
		Limit:                  cfg.Impact.Limit,
	}
	chartOpts := render.ChartOptions{
		Title:  cfg.Chart.Title,
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
	}

	// Init recorder
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

	// Init session store
	store := session.NewStore(collector.NewLoader(fetcher, source), recorder.LoadHook(rec, source, rankOpts))

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial load; the dashboard serves the error until a refresh succeeds
	if _, err := store.Refresh(ctx); err != nil {
		var le *collector.LoadError
		if errors.As(err, &le) {
			log.Printf("[WARN] initial load failed: %v. %s", le.Err, le.UserMessage())
		} else {
			log.Printf("[WARN] initial load failed: %v", err)
		}
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, store, tn, rec, scheduler.Options{
		Title:          cfg.Chart.Title,
		Rank:           rankOpts,
		Chart:          chartOpts,
		TableRows:      15,
		DigestOnReload: cfg.Schedule.DigestOnReload,
	})
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start HTTP server
	srv := server.New(cfg.Server.ListenAddr, store, server.Options{
		Title:    cfg.Chart.Title,
		Rank:     rankOpts,
		Chart:    chartOpts,
		Recorder: rec,
	})
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("[ERROR] %v", err)
			cancel()
		}
	}()

	// Start Telegram polling
	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.RunCommand)
		log.Println("[INFO] Telegram polling started")
	} else {
		log.Println("[INFO] Telegram not configured, chat commands disabled")
	}

	log.Println("[INFO] BrentLens is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] %v", err)
	}
	cancel()
	log.Println("[INFO] BrentLens stopped")
}
