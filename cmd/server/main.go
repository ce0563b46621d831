package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/blackjack-go/internal/api"
	"github.com/mcoot/blackjack-go/internal/config"
	"github.com/mcoot/blackjack-go/internal/factory"
	"github.com/mcoot/blackjack-go/internal/services/session"
	redisstorage "github.com/mcoot/blackjack-go/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		Session:     session.Config{IdleTimeout: cfg.SessionIdleTimeout},
		Room:        cfg.Room,

		AllowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.SessionTTL = cfg.SessionIdleTimeout
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	go app.SessionController.RunSweeper(ctx, cfg.SessionSweepInterval)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(app.Router(), serverConfig, logger)

	logger.Info("server configured",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageType),
		slog.Duration("session_idle_timeout", cfg.SessionIdleTimeout),
		slog.Int("room_bet", cfg.Room.Bet),
		slog.Int("room_balance", cfg.Room.Balance),
	)

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
