package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tgurley/smartline/adapters/theoddsapi"
	"github.com/tgurley/smartline/adapters/weather"
	"github.com/tgurley/smartline/internal/api"
	"github.com/tgurley/smartline/internal/config"
	"github.com/tgurley/smartline/internal/ingest"
	"github.com/tgurley/smartline/internal/notify"
	"github.com/tgurley/smartline/internal/registry"
	"github.com/tgurley/smartline/internal/settle"
	"github.com/tgurley/smartline/internal/store"
	"github.com/tgurley/smartline/sports/football_nfl"
)

func main() {
	ctx := context.Background()

	// .env for local development; real deployments set the environment
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	})))

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		fmt.Printf("failed to connect to Postgres: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	fmt.Println("✓ Connected to Postgres")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Connected to Redis")

	adapter := theoddsapi.NewClient(cfg.Odds.APIKey)

	weatherClient := weather.NewClient(weather.Config{
		BaseURL: cfg.Weather.BaseURL,
		Enabled: cfg.Weather.Enabled,
	})

	sportRegistry := registry.NewSportRegistry()
	if err := sportRegistry.Register(football_nfl.NewModule()); err != nil {
		fmt.Printf("failed to register NFL module: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Registered %d sport(s)\n", sportRegistry.Count())

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Alerts.TelegramToken != "" && cfg.Alerts.TelegramChatID != 0 {
		if tn := notify.NewTelegramNotifier(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID); tn != nil {
			notifier = tn
			fmt.Println("✓ Telegram alerts enabled")
		}
	}
	defer notifier.Close()

	settler := settle.NewSettler(st.DB())

	sched := ingest.NewScheduler(st.DB(), redisClient, adapter, sportRegistry,
		weatherClient, notifier, settler, ingest.Options{
			CacheTTL:          cfg.Odds.CacheTTL.Std(),
			MovementThreshold: cfg.Alerts.MovementThresholdPct,
			AllowedBooks:      cfg.Odds.AllowedBooks,
		})

	if err := sched.Start(ctx); err != nil {
		fmt.Printf("failed to start scheduler: %v\n", err)
		os.Exit(1)
	}

	// Start blocks until Stop or ctx cancel, so both pollers get their
	// own goroutine
	statusUpdater := settle.NewStatusUpdater(st.DB(), time.Minute)
	go statusUpdater.Start(ctx)

	capturer := settle.NewCapturer(st.DB(), redisClient, time.Minute)
	go capturer.Start(ctx)

	server := api.NewServer(st, cfg.ListenAddr)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	fmt.Println("✓ SmartLine started")
	fmt.Printf("  API: %s\n", cfg.ListenAddr)
	fmt.Printf("  Cache TTL: %v\n", cfg.Odds.CacheTTL.Std())
	for _, sport := range sportRegistry.GetAll() {
		fmt.Printf("  [%s] markets=%v regions=%v\n",
			sport.GetDisplayName(), sport.GetFeaturedMarkets(), sport.GetRegions())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		fmt.Println("\n✓ Shutting down gracefully...")
	case err := <-serverErr:
		if err != nil {
			fmt.Printf("api server failed: %v\n", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("api shutdown: %v\n", err)
	}

	sched.Stop()
	statusUpdater.Stop()
	capturer.Stop()

	fmt.Println("✓ SmartLine stopped")
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
