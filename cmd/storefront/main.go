package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"storefront/internal/api"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/consumer"
	"storefront/internal/events"
	appmiddleware "storefront/internal/middleware"
	"storefront/internal/repository/mysqlrepo"
	"storefront/internal/service"
	"storefront/migrations"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func connectDB(cfg *config.Config) (*sql.DB, error) {
	dbCfg := mysql.NewConfig()
	dbCfg.User = cfg.DBUser
	dbCfg.Passwd = cfg.DBPassword
	dbCfg.Net = "tcp"
	dbCfg.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	dbCfg.DBName = cfg.DBName
	dbCfg.ParseTime = true
	dbCfg.Loc = time.UTC
	// RowsAffected counts matched rows, so an UPDATE that changes nothing is not "not found"
	dbCfg.ClientFoundRows = true

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dbCfg.FormatDSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				db.SetMaxOpenConns(cfg.DBMaxOpenConns)
				db.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
				db.SetConnMaxLifetime(5 * time.Minute)
				logger.Info().Str("db", cfg.DBName).Msg("Connected to DB")
				return db, nil
			}
			db.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Str("addr", dbCfg.Addr).Msg("Failed to connect to DB")
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s after retries: %w", cfg.DBName, dbCfg.Addr, err)
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventBroker {
	case config.BrokerKafka:
		return events.NewKafkaPublisher(config.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)), nil
	case config.BrokerRabbitMQ:
		return events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	case config.BrokerNone, "":
		return events.Discard, nil
	}
	return nil, fmt.Errorf("unknown EVENT_BROKER %q", cfg.EventBroker)
}

func main() {
	cfg := config.LoadConfig()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := connectDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer db.Close()

	if err := migrations.AutoMigrate(db, 3); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate tables")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	publisher, err := newPublisher(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create event publisher")
	}
	defer publisher.Close()

	store := mysqlrepo.NewStore(db)
	productCache := cache.NewProductCache(rdb, cfg.ProductCacheTTL)
	idempotency := cache.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)

	authService := service.NewAuthService(store.Customers(), cfg.JWTSecret, cfg.JWTTTL)
	catalogService := service.NewCatalogService(store, productCache, publisher)
	stockService := service.NewStockService(store, publisher, productCache)
	cartService := service.NewCartService(store)
	wishlistService := service.NewWishlistService(store)
	checkoutService := service.NewCheckoutService(store, publisher, productCache, idempotency, cfg.CheckoutTimeout)
	orderService := service.NewOrderService(store, publisher, productCache)
	reviewService := service.NewReviewService(store)
	profileService := service.NewProfileService(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create admin account")
	}

	// consumer
	if cfg.EventBroker == config.BrokerKafka {
		reader := config.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		go consumer.NewConsumer(reader, productCache).Run(ctx)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded", "code": "RATE_LIMITED"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded", "code": "RATE_LIMITED"})
		},
	}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := logger.Info()
			if v.Error != nil {
				evt = logger.Error().Err(v.Error)
			}
			evt.Str("request_id", v.RequestID).Str("method", v.Method).Str("uri", v.URI).
				Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))
	e.Use(appmiddleware.Prometheus())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	// Routes
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	api.RegisterRoutes(e, api.Handlers{
		Auth:      api.NewAuthHandler(authService),
		Catalog:   api.NewCatalogHandler(catalogService, reviewService),
		Cart:      api.NewCartHandler(cartService),
		Orders:    api.NewOrderHandler(checkoutService, orderService),
		Wishlist:  api.NewWishlistHandler(wishlistService),
		Inventory: api.NewInventoryHandler(stockService),
		Profile:   api.NewProfileHandler(profileService),
	}, cfg.JWTSecret)

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error shutting down HTTP server")
	}
}
