package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/wasp-platform/user-service/docs"
	"github.com/wasp-platform/user-service/internal/api/handler"
	"github.com/wasp-platform/user-service/internal/api/middleware"
	"github.com/wasp-platform/user-service/internal/core/ports"
	"github.com/wasp-platform/user-service/internal/core/service"
	"github.com/wasp-platform/user-service/internal/infrastructure/authority"
	"github.com/wasp-platform/user-service/internal/infrastructure/config"
	mongodb "github.com/wasp-platform/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/wasp-platform/user-service/internal/infrastructure/db/redis"
	"github.com/wasp-platform/user-service/internal/infrastructure/hash"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb and audit may be nil; the corresponding features are then disabled.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit ports.AuditRecorder, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("user_service"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	var limiter ports.LoginLimiter
	if rdb != nil {
		limiter = redisdb.NewLoginLimiter(rdb)
	}
	authorityClient := authority.NewClient(authority.Config{
		BaseURL:    cfg.Auth.URL,
		APIVersion: cfg.Auth.APIVersion,
		Timeout:    cfg.Auth.Timeout,
	})
	userService := service.NewUserService(
		userRepo,
		hash.NewBcryptHasher(0),
		authorityClient,
		limiter,
		audit,
		cfg.Auth.TokenName,
		cfg.Auth.TokenExpiryDays,
		log,
	)
	userHandler := handler.NewUserHandler(userService)

	// --- API routes ---
	v1 := e.Group("/v1", middleware.Identity(cfg.JWTSecret))
	v1.POST("/login", userHandler.Login)
	v1.GET("/user", userHandler.List)
	v1.POST("/user", userHandler.Create)
	v1.GET("/user/current", userHandler.GetCurrent)
	v1.PUT("/user/current/password", userHandler.PutCurrentPassword)
	v1.GET("/user/:id", userHandler.Get)
	v1.PATCH("/user/:id", userHandler.Patch)
	v1.PUT("/user/:id/password", userHandler.ResetPassword)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/v1/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e
}
