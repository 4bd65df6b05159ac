// @title        User Service API
// @version      1.0
// @description  Identity and credential management with delegated token issuance.
// @BasePath     /v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wasp-platform/user-service/internal/api"
	"github.com/wasp-platform/user-service/internal/infrastructure/config"
	mongodb "github.com/wasp-platform/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/wasp-platform/user-service/internal/infrastructure/db/redis"
	"github.com/wasp-platform/user-service/internal/infrastructure/queue"
	"github.com/wasp-platform/user-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}
	admin, err := userRepo.EnsureBootstrapAdmin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin seeding failed")
	}
	log.Info().Str("admin_id", admin.ID).Msg("bootstrap admin present")

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() { _ = rdb.Close() }()
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	auditDispatcher := queue.NewDispatcher(0, mongodb.NewAuditRepository(db), log)
	auditDispatcher.Start(ctx)

	e := api.NewRouter(cfg, db, rdb, auditDispatcher, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
