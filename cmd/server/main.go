package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"gorm.io/gorm"

	_ "github.com/quintaldo/pos-engine/docs"
	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	"github.com/quintaldo/pos-engine/internal/inventory"
	invhttp "github.com/quintaldo/pos-engine/internal/inventory/delivery/http"
	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	"github.com/quintaldo/pos-engine/internal/sale"
	saledomain "github.com/quintaldo/pos-engine/internal/sale/domain"
	salecommand "github.com/quintaldo/pos-engine/internal/sale/usecase/command"
	"github.com/quintaldo/pos-engine/kafka"
	"github.com/quintaldo/pos-engine/pkg/database"
	"github.com/quintaldo/pos-engine/pkg/logger"
	"github.com/quintaldo/pos-engine/pkg/middleware"
	"github.com/quintaldo/pos-engine/pkg/tracing"
)

// @title POS Engine API
// @version 1.0
// @description Sale and inventory transaction engine
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "pos-engine")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logLevel := getEnv("LOG_LEVEL", "info")
	logger.Init(serviceName, logLevel, isDevelopment)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting pos engine")

	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to shut down tracer")
		}
	}()

	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "posdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	reportDB, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open reporting connection")
	}
	defer reportDB.Close()

	if err := migrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		logger.Logger.Info().Str("addr", addr).Msg("Redis cache enabled")
	}

	var publisher *kafka.Publisher
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		publisher, err = kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to connect to kafka")
		}
		defer publisher.Close()
	}

	saleHandler, err := sale.InitializeSaleHandler(db, rdb, eventPublisherOrNil(publisher))
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize sale handler")
	}

	stockHandler, err := inventory.InitializeStockHandler(db, reportDB, movementPublisherOrNil(publisher))
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize stock handler")
	}

	router := mux.NewRouter()
	middlewareConfig := middleware.DefaultConfig()
	middleware.Register(router, middlewareConfig)

	saleHandler.RegisterRoutes(router)
	stockHandler.RegisterRoutes(router)
	stockHandler.RegisterHealthCheck(router, reportDB)

	router.Handle("/metrics", promhttp.Handler())
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler())

	httpPort := getEnv("HTTP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      middleware.SetupCORS(middlewareConfig)(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", httpPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalogdomain.Store{},
		&catalogdomain.PaymentMethod{},
		&invdomain.Product{},
		&invdomain.StockMovement{},
		&saledomain.Sale{},
		&saledomain.SaleItem{},
		&saledomain.SalePayment{},
	)
}

// eventPublisherOrNil keeps the publisher interface nil when kafka is not
// configured, so handlers can skip publishing instead of calling through a
// typed nil.
func eventPublisherOrNil(p *kafka.Publisher) salecommand.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func movementPublisherOrNil(p *kafka.Publisher) invhttp.MovementPublisher {
	if p == nil {
		return nil
	}
	return p
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
