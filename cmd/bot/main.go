package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/app/botapp"
	"github.com/ivankudzin/groupguard/internal/config"
	"github.com/ivankudzin/groupguard/internal/infra/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Env)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := botapp.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("create app", zap.Error(err))
	}

	zl.Info("bot starting")
	if err := application.Run(ctx); err != nil {
		zl.Fatal("bot stopped with error", zap.Error(err))
	}
	zl.Info("bot stopped")
}
