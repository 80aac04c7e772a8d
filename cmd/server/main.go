package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	cartHTTP "github.com/tienda/tienda-backend/internal/cart/delivery/http"
	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	cartrepo "github.com/tienda/tienda-backend/internal/cart/repository"
	catalogHTTP "github.com/tienda/tienda-backend/internal/catalog/delivery/http"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	catalogrepo "github.com/tienda/tienda-backend/internal/catalog/repository"
	"github.com/tienda/tienda-backend/internal/middleware"
	orderHTTP "github.com/tienda/tienda-backend/internal/order/delivery/http"
	orderdomain "github.com/tienda/tienda-backend/internal/order/domain"
	orderrepo "github.com/tienda/tienda-backend/internal/order/repository"
	ordercommand "github.com/tienda/tienda-backend/internal/order/usecase/command"
	reviewHTTP "github.com/tienda/tienda-backend/internal/review/delivery/http"
	reviewdomain "github.com/tienda/tienda-backend/internal/review/domain"
	reviewrepo "github.com/tienda/tienda-backend/internal/review/repository"
	reviewcommand "github.com/tienda/tienda-backend/internal/review/usecase/command"
	userHTTP "github.com/tienda/tienda-backend/internal/user/delivery/http"
	userdomain "github.com/tienda/tienda-backend/internal/user/domain"
	userrepo "github.com/tienda/tienda-backend/internal/user/repository"
	"github.com/tienda/tienda-backend/kafka"
	"github.com/tienda/tienda-backend/pkg/database"
	"github.com/tienda/tienda-backend/pkg/logger"
	"github.com/tienda/tienda-backend/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "tienda-backend")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting tienda backend")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "tiendadb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	err = db.AutoMigrate(
		&userdomain.User{},
		&catalogdomain.Product{},
		&cartdomain.Cart{},
		&cartdomain.CartItem{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.StatusChange{},
		&orderdomain.OrderCounter{},
		&reviewdomain.Review{},
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Kafka publisher is optional, the server runs without it
	var publisher *kafka.Publisher
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		publisher, err = kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to connect to Kafka, events disabled")
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// Redis cache is optional, catalog reads skip caching without it
	var redisClient *redis.Client
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to connect to Redis, caching disabled")
			redisClient = nil
		}
	}

	pricing := pricingFromEnv()

	// Repositories
	products := catalogrepo.NewGormProductRepositoryWithTracing(db)
	carts := cartrepo.NewGormCartRepository(db)
	orders := orderrepo.NewGormOrderRepository(db)
	reviews := reviewrepo.NewGormReviewRepository(db)
	users := userrepo.NewGormUserRepository(db)

	var orderEvents ordercommand.EventPublisher
	var reviewEvents reviewcommand.EventPublisher
	if publisher != nil {
		orderEvents = publisher
		reviewEvents = publisher
	}

	// Handlers
	cacheTTL, _ := time.ParseDuration(getEnv("CATALOG_CACHE_TTL", "1m"))
	catalogHandler := catalogHTTP.NewProductHandler(products, catalogHTTP.NewCache(redisClient, cacheTTL))
	cartHandler := cartHTTP.NewCartHandler(carts, products, pricing)
	orderHandler := orderHTTP.NewOrderHandler(orders, carts, products, pricing, orderEvents)
	reviewHandler := reviewHTTP.NewReviewHandler(reviews, products, orders, reviewEvents)
	userHandler := userHTTP.NewUserHandler(users)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.Logging)

	userHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)
	orderHandler.RegisterRoutes(router)
	reviewHandler.RegisterRoutes(router)

	// Health check endpoint
	router.HandleFunc("/health", healthHandler(sqlDB)).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	httpPort := getEnv("HTTP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      c.Handler(middleware.Tracing("tienda-backend", router)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", httpPort).
			Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}

func pricingFromEnv() cartdomain.Pricing {
	pricing := cartdomain.DefaultPricing()
	if v, err := strconv.ParseFloat(getEnv("TAX_RATE", ""), 64); err == nil {
		pricing.TaxRate = v
	}
	if v, err := strconv.ParseFloat(getEnv("SHIPPING_FEE", ""), 64); err == nil {
		pricing.ShippingFee = v
	}
	if v, err := strconv.ParseFloat(getEnv("FREE_SHIPPING_OVER", ""), 64); err == nil {
		pricing.FreeShippingOver = v
	}
	return pricing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
