package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"astro-readings/internal/catalog"
	"astro-readings/internal/client"
	"astro-readings/internal/config"
	"astro-readings/internal/notify"
	"astro-readings/internal/repository"
	"astro-readings/internal/server"
	"astro-readings/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(&cfg.Log)
	slog.SetDefault(logger)

	db, err := client.InitDBClient(&cfg.Database)
	if err != nil {
		logger.Error("init database", "err", err)
		os.Exit(1)
	}

	paypalClient := client.NewPaypalClient(&cfg.Paypal)
	nowpaymentsClient := client.NewNowpaymentsClient(&cfg.Nowpayments)

	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	sink := notify.NewMultiSink(logger,
		notify.NewCSVSink(cfg.Notify.CSVPath),
		notify.NewDiscordSink(cfg.Notify.DiscordWebhookURL, cfg.Notify.NotifyOnCreated),
	)

	cat := catalog.New()

	orderService := service.NewOrderService(
		db, cat,
		paypalClient, nowpaymentsClient,
		orderRepo, webhookEventRepo,
		sink,
		cfg.BaseURL,
		logger,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(orderService, cat, logger)

	logger.Info("starting HTTP server", "addr", serverAddr, "env", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "err", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Error("HTTP server shutdown error", "err", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Log) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
