package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret verifies authority-minted bearer tokens presented back to
	// this service. Empty disables bearer identity; the user-id header still
	// works.
	JWTSecret string `env:"JWT_SECRET"`

	Mongo MongoConfig
	Redis RedisConfig
	Auth  AuthConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=users"`
}

type RedisConfig struct {
	// Addr left empty disables Redis-backed login throttling.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// AuthConfig points at the external token authority.
type AuthConfig struct {
	URL        string `env:"AUTH_SERVICE_URL,         default=http://wasp-authentication-service"`
	APIVersion string `env:"AUTH_SERVICE_API_VERSION, default=v1"`
	TokenName  string `env:"AUTH_TOKEN_NAME,          default=login"`
	// TokenExpiryDays is the whole-day token lifetime sent to the authority.
	TokenExpiryDays int           `env:"AUTH_TOKEN_EXPIRY,    default=1"`
	Timeout         time.Duration `env:"AUTH_SERVICE_TIMEOUT, default=10s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
