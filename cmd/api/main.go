package main

import (
	"context"
	"errors"
	"log"

	"github.com/printloom/mockup-backend/config"
	"github.com/printloom/mockup-backend/internal/auth"
	authmw "github.com/printloom/mockup-backend/internal/auth/middleware"
	"github.com/printloom/mockup-backend/internal/bootstrap"
	cronjob "github.com/printloom/mockup-backend/internal/mockups/cron"
	"github.com/printloom/mockup-backend/internal/mockups/repository"
	"github.com/printloom/mockup-backend/internal/realtime"
	"github.com/printloom/mockup-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database)})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer pool.Close()

	catalogDB, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to open catalog database: %v", err)
	}
	defer catalogDB.Close()

	redisClient, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("failed to open redis: %v", err)
	}
	defer redisClient.Close()

	var verifier authmw.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		authClient, err := auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			log.Fatalf("failed to initialize Firebase: %v", err)
		}
		verifier = authClient
	} else {
		log.Println("Warning: FIREBASE_CREDENTIALS_PATH not set, falling back to X-User-Id header auth (development only)")
	}

	hub := realtime.NewHub()
	publisher := realtime.NewPublisher(redisClient)
	subscriber := realtime.NewSubscriber(redisClient, hub)
	go func() {
		if err := subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("realtime subscriber stopped: %v", err)
		}
	}()

	designRepo := repository.NewDesignRepository(pool)
	sweeper := cronjob.NewSweeper(designRepo, cfg.Sweeper.Schedule, cfg.Sweeper.StaleAfter)
	sweeper.Start()
	defer sweeper.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:   "mockup-backend",
		Version:       cfg.App.Version,
		DB:            pool,
		CatalogDB:     catalogDB,
		Hub:           hub,
		Notifier:      publisher,
		Verifier:      verifier,
		VendorBaseURL: cfg.Vendor.BaseURL,
		VendorAPIKey:  cfg.Vendor.APIKey,
		VendorRate:    cfg.Vendor.RequestsPerMinute,
		WebhookSecret: cfg.Webhook.Secret,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
