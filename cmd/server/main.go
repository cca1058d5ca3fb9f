package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/ai"
	"github.com/otabekmirzaev/intern-scout/internal/api"
	"github.com/otabekmirzaev/intern-scout/internal/config"
	"github.com/otabekmirzaev/intern-scout/internal/core"
	"github.com/otabekmirzaev/intern-scout/internal/feed"
	"github.com/otabekmirzaev/intern-scout/internal/logger"
	"github.com/otabekmirzaev/intern-scout/internal/store"
)

func main() {
	// .env is optional; deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.EffectiveLogLevel(), cfg.LogFormat)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()

	st, err := newStore(cfg)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer st.Close()

	// Keep the postgres schema current on boot so deploys don't need a
	// separate migration step.
	if pg, ok := st.(*store.PostgresStore); ok {
		workDir, _ := os.Getwd()
		schemaPath := filepath.Join(workDir, "internal", "store", "schema.sql")
		if err := pg.RunMigrations(schemaPath); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	aiClient, err := ai.NewClient(cfg, log)
	if err != nil {
		log.Fatal("failed to init ai client", zap.Error(err))
	}

	loader := feed.NewLoader(cfg.ListingsFile, log)

	ctx := context.Background()
	if cfg.FeedSyncInterval > 0 {
		syncer := feed.NewSyncer(cfg.FeedURL, cfg.ListingsFile, log)
		syncer.Start(ctx, cfg.FeedSyncInterval)
	}

	recommendations := core.NewRecommendationService(loader, st, aiClient, log)
	feedbackSvc := core.NewFeedbackService(st, aiClient, log)

	srv := api.NewServer(cfg, st, loader, recommendations, feedbackSvc, log)

	log.Info("starting server",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("storage", cfg.StorageBackend),
		zap.String("ai_provider", aiClient.Name()))
	if err := http.ListenAndServe(cfg.HTTPAddr, srv.Router()); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func newStore(cfg config.Config) (store.Store, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return store.NewPostgresStore(cfg.DatabaseURL)
	case "local", "":
		return store.NewLocalStore(cfg.LocalStorePath)
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (use local or postgres)", cfg.StorageBackend)
	}
}
