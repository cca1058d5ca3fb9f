package main

import (
	"context"
	"flag"
	stdlog "log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/config"
	"github.com/otabekmirzaev/intern-scout/internal/feed"
	"github.com/otabekmirzaev/intern-scout/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	url := flag.String("url", cfg.FeedURL, "Listings feed URL")
	out := flag.String("out", cfg.ListingsFile, "Output listings file")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall sync timeout")
	flag.Parse()

	log, err := logger.New(cfg.EffectiveLogLevel(), cfg.LogFormat)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	syncer := feed.NewSyncer(*url, *out, log)
	if err := syncer.Run(ctx); err != nil {
		log.Fatal("feed sync failed", zap.Error(err))
	}
	log.Info("feed synced", zap.String("file", *out))
}
