package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"github.com/quintaldo/pos-engine/api-gateway/config"
	"github.com/quintaldo/pos-engine/api-gateway/middleware"
	"github.com/quintaldo/pos-engine/api-gateway/routes"
	"github.com/quintaldo/pos-engine/pkg/logger"
	"github.com/quintaldo/pos-engine/pkg/tracing"
)

func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "pos-gateway")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logLevel := getEnv("LOG_LEVEL", "info")
	logger.Init(serviceName, logLevel, isDevelopment)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Msg("Starting gateway")

	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shut down tracer")
			}
		}()
	}

	// Redis backs the rate limiter and the read cache. Without it the
	// gateway still proxies, just without either.
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: getEnv("REDIS_PASSWORD", ""),
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", redisAddr).
			Msg("Redis unreachable, rate limiting and response cache disabled")
		redisClient = nil
	}

	cfg := config.LoadConfig()
	cbManager := middleware.NewCircuitBreakerManager()

	app := fiber.New(fiber.Config{
		AppName:      "POS Gateway",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		ErrorHandler: errorHandler,
	})

	setupMiddleware(app, redisClient, cbManager)
	routes.SetupRoutes(app, cfg)

	go func() {
		addr := ":" + cfg.Port
		for name, svc := range cfg.Services {
			logger.Logger.Info().
				Str("service", name).
				Strs("instances", svc.Instances).
				Msg("Routing to backend")
		}
		logger.Logger.Info().Str("addr", addr).Msg("Gateway listening")

		if err := app.Listen(addr); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start gateway")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down gateway...")
	if err := app.Shutdown(); err != nil {
		logger.Logger.Error().Err(err).Msg("Gateway shutdown failed")
	}
}

// setupMiddleware installs the global chain. Order matters: recovery and
// request ids first, then tracing so every later log line carries a trace
// id, then the cache before the breaker so cache hits never count against
// a tripped engine.
func setupMiddleware(app *fiber.App, redisClient *redis.Client, cbManager *middleware.CircuitBreakerManager) {
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLoggingMiddleware())

	if redisClient != nil {
		cacheConfig := middleware.DefaultCacheConfig()
		app.Use(middleware.CacheMiddleware(redisClient, cacheConfig))
		logger.Logger.Info().
			Dur("sales_ttl", cacheConfig.SalesTTL).
			Dur("stock_ttl", cacheConfig.StockTTL).
			Msg("Engine read cache enabled")
	}

	app.Use(middleware.CircuitBreakerMiddleware(cbManager))

	if redisClient != nil {
		app.Use(middleware.GlobalRateLimiter(redisClient))
		logger.Logger.Info().Msg("Rate limiting enabled (100 req/min per caller)")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "*"),
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-Id, traceparent, tracestate",
		ExposeHeaders:    "X-Request-Id, X-Trace-Id, X-Cache, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		MaxAge:           86400,
	}))

	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
}

// errorHandler shapes unhandled errors into the gateway's envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":      err.Error(),
		"statusCode": code,
		"path":       c.Path(),
		"requestId":  c.Get("X-Request-Id"),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
