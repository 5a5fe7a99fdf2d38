package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricely/config"
	"pricely/database"
	"pricely/routes"
	"pricely/services/pricing"
	"pricely/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	log := utils.Logger()
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}
	log.Info().Msg("migration complete")
	if cfg.SeedDemo {
		if err := database.SeedDemoCatalog(db); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo catalog")
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	if cfg.PriceSyncEnabled {
		syncer := pricing.NewSyncer(db, pricing.NewFetcher(cfg.PriceSyncTimeout))
		scheduler, err := pricing.StartPriceSyncCron(syncer, cfg.PriceSyncSchedule)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start price sync")
		}
		defer scheduler.Stop()
	}

	var mailer utils.Mailer
	if cfg.SMTPHost != "" {
		mailer = utils.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		log.Warn().Msg("SMTP_HOST is not set, verification emails are disabled")
	}

	r := routes.SetupRouter(routes.Deps{DB: db, Redis: rdb, Config: cfg, Mailer: mailer})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to run server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	_ = rdb.Close()
}
