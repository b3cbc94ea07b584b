// cmd/bot/main.go
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"biteiq-bot/config"
	"biteiq-bot/internal/billing"
	"biteiq-bot/internal/bot"
	"biteiq-bot/internal/db"
	"biteiq-bot/internal/gpt"
	"biteiq-bot/internal/payment"
	"biteiq-bot/internal/planner"
	"biteiq-bot/internal/scheduler"
	"biteiq-bot/internal/server"
	"biteiq-bot/internal/state"
	"biteiq-bot/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.NewDevelopment().Fatalw("Failed to load config", "error", err)
	}

	l := logger.New(cfg.Log.Level)
	if cfg.Log.Debug {
		l = logger.NewDevelopment()
	}
	defer func() { _ = l.Sync() }()
	l.Infow("Starting BiteIQBot...", "mode", cfg.Telegram.Mode)

	if err := cfg.Validate(); err != nil {
		l.Fatalw("Invalid configuration", "error", err)
	}
	loc, _ := time.LoadLocation(cfg.App.Timezone)

	// Initialize database connection with retry
	var database *db.PostgresDB
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		database, err = db.NewPostgresDB(cfg.DB)
		if err == nil {
			break
		}
		l.Errorw("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if database == nil {
		l.Fatalw("Failed to connect to database after multiple attempts", "error", err)
	}
	defer database.Close()

	applied, err := database.Migrate()
	if err != nil {
		l.Fatalw("Failed to apply migrations", "error", err)
	}
	l.Infow("Database ready", "migrated", applied)

	stripeClient := payment.NewStripeClient(cfg.Stripe, cfg.App.BaseURL)
	gptClient := gpt.NewClient(cfg.GPT.APIKey).WithModel(cfg.GPT.Model)
	plans := planner.NewService(database, gptClient, loc, l)

	var pending state.Store
	if cfg.Redis.URL != "" {
		redisStore, err := state.NewRedisStore(context.Background(), cfg.Redis.URL, state.DefaultTTL)
		if err != nil {
			l.Fatalw("Failed to connect to Redis", "error", err)
		}
		defer redisStore.Close()
		pending = redisStore
		l.Infow("Pending input kept in Redis")
	} else {
		pending = state.NewMemoryStore(state.DefaultTTL)
	}

	api, err := bot.NewBotAPI(cfg.Telegram.Token, cfg.Log.Debug)
	if err != nil {
		l.Fatalw("Failed to create Telegram bot", "error", err)
	}
	l.Infow("Authorized on Telegram", "account", api.Self.UserName)

	sender := bot.NewSender(api, l)
	telegramBot := bot.NewTelegramBot(api, sender, bot.Deps{
		Store:   database,
		Advisor: gptClient,
		Billing: stripeClient,
		Planner: plans,
		Pending: pending,
	}, l)

	if err := telegramBot.SetCommands(); err != nil {
		l.Warnw("Failed to publish command menu", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the Telegram route is mounted only when updates arrive by webhook
	handlers := server.Handlers{
		Stripe: billing.NewHandler(database, stripeClient, telegramBot, l),
		DB:     database,
	}

	switch cfg.Telegram.Mode {
	case config.ModePolling:
		if err := telegramBot.StartPolling(ctx); err != nil {
			l.Fatalw("Failed to start polling", "error", err)
		}
	default:
		secret := cfg.Telegram.WebhookSecret
		if secret == "" {
			secret = uuid.NewString()
		}
		if err := telegramBot.RegisterWebhook(cfg.App.BaseURL, secret); err != nil {
			l.Fatalw("Failed to register webhook", "error", err)
		}
		handlers.Telegram = telegramBot
	}

	jobs, err := scheduler.New(database, plans, sender, gptClient, loc, l)
	if err != nil {
		l.Fatalw("Failed to create scheduler", "error", err)
	}
	jobs.Start()

	httpServer := server.NewServer(cfg.Server.Port, handlers, l)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	// Wait for termination signal
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			l.Errorw("HTTP server failed", "error", err)
		}
	}

	l.Infow("Shutting down bot...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Stop HTTP server first so no new updates arrive
	if err := httpServer.Stop(shutdownCtx); err != nil {
		l.Errorw("Error during HTTP server shutdown", "error", err)
	}
	if err := jobs.Stop(); err != nil {
		l.Errorw("Error during scheduler shutdown", "error", err)
	}
	if err := telegramBot.Stop(shutdownCtx); err != nil {
		l.Errorw("Error during bot shutdown", "error", err)
	}

	l.Infow("Bot stopped successfully")
}
