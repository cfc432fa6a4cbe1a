// cmd/vinto-server/main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto/internal/cache"
	"github.com/Lonli-Lokli/vinto/internal/config"
	"github.com/Lonli-Lokli/vinto/internal/database"
	"github.com/Lonli-Lokli/vinto/internal/server"
)

func main() {
	cfg := config.Load()
	cfg.ApplyLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
		logrus.Fatalf("main: %v", err)
	}
	if database.DB != nil {
		defer database.DB.Close()
		if err := database.CreateSchema(ctx); err != nil {
			logrus.Fatalf("main: %v", err)
		}
	}

	if err := cache.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPass); err != nil {
		logrus.Fatalf("main: %v", err)
	}

	if cfg.JWTSecret == "" {
		logrus.Warn("main: JWT_SECRET is empty, tokens are forgeable")
	}

	srv := server.New(cfg)
	if err := srv.ListenAndServe(ctx); err != nil {
		logrus.Fatalf("main: server: %v", err)
	}
	logrus.Info("main: shutdown complete")
}
