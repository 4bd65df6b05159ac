// Command admininit sets the bootstrap admin's credential. The seed row is
// created with an empty password hash; this one-shot utility fills it in
// from ADMIN_PASSWORD and exits. Re-running against an admin that already
// has a credential is a no-op.
package main

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/wasp-platform/user-service/internal/core/ports"
	"github.com/wasp-platform/user-service/internal/infrastructure/config"
	mongodb "github.com/wasp-platform/user-service/internal/infrastructure/db/mongo"
	"github.com/wasp-platform/user-service/internal/infrastructure/hash"
	"github.com/wasp-platform/user-service/pkg/logger"
)

type initConfig struct {
	AdminPassword string `env:"ADMIN_PASSWORD, required"`
	LogLevel      string `env:"LOG_LEVEL, default=info"`

	Mongo config.MongoConfig
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var cfg initConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		panic(err)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	repo := mongodb.NewUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	admin, err := repo.EnsureBootstrapAdmin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin seeding failed")
	}

	if admin.PasswordHash != "" {
		log.Info().Str("admin_id", admin.ID).Msg("admin credentials exist already, skipping")
		return
	}

	passwordHash, err := hash.NewBcryptHasher(0).Hash(cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("hashing admin password failed")
	}

	if _, err := repo.Update(ctx, admin.ID, ports.UserUpdate{PasswordHash: &passwordHash}); err != nil {
		log.Fatal().Err(err).Msg("storing admin credentials failed")
	}
	log.Info().Str("admin_id", admin.ID).Msg("admin credentials inserted")
}
