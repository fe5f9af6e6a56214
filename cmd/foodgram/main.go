package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tair/foodgram/docs"
	"github.com/tair/foodgram/internal/config"
	"github.com/tair/foodgram/internal/recipe"
	"github.com/tair/foodgram/internal/recipe/cache"
	recipedomain "github.com/tair/foodgram/internal/recipe/domain"
	reciperepo "github.com/tair/foodgram/internal/recipe/repository"
	"github.com/tair/foodgram/internal/recipe/usecase/command"
	"github.com/tair/foodgram/internal/user"
	userrepo "github.com/tair/foodgram/internal/user/repository"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/database"
	"github.com/tair/foodgram/pkg/httpx"
	"github.com/tair/foodgram/pkg/logger"
	"github.com/tair/foodgram/pkg/ratelimit"
	"github.com/tair/foodgram/pkg/storage"
	"github.com/tair/foodgram/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("foodgram", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.Log.Level)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.Log.Level).
		Msg("Starting foodgram service")

	// Initialize tracer
	tp, err := tracing.InitTracer(cfg.Tracing())
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

	auth.Configure(cfg.JWT.Secret, cfg.JWT.TTL)

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database())
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	users := userrepo.NewGormUserRepository(db)
	recipes := reciperepo.NewGormRecipeRepository(db)
	if err := users.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to migrate user tables")
	}
	if err := recipes.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to migrate recipe tables")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	// Redis backs the shopping list cache and the rate limiter when configured
	var (
		redisClient *redis.Client
		lists       recipedomain.ShoppingListCache = cache.Nop{}
		limiter     ratelimit.Limiter
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		lists = cache.NewRedisShoppingListCache(redisClient, cfg.Cache.ShoppingListTTL)
		if cfg.RateLimit.Requests > 0 {
			limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
		logger.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connected")
	} else if cfg.RateLimit.Requests > 0 {
		limiter = ratelimit.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	// Events go to Kafka when brokers are configured, otherwise they are handled in-process
	var events kafka.EventPublisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher, err := kafka.NewPublisher(brokers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Strs("brokers", brokers).Msg("Failed to create Kafka publisher")
		}
		events = publisher
	} else {
		bus := kafka.NewLocalBus()
		command.NewInvalidateShoppingListsHandler(lists).Register(bus)
		events = bus
		logger.Logger.Info().Msg("Kafka not configured, using in-process event bus")
	}
	defer events.Close()

	router := mux.NewRouter()

	// Images go to S3 when a bucket is configured, otherwise to local disk served under MEDIA_URL
	var images storage.ImageStore
	if cfg.S3.Bucket != "" {
		s3Store, err := storage.NewS3Store(context.Background(), cfg.Storage())
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize S3 image store")
		}
		images = s3Store
	} else {
		local := storage.NewLocalStore(cfg.Media.Root, cfg.Media.URL)
		prefix := strings.TrimSuffix(cfg.Media.URL, "/") + "/"
		router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root()))))
		images = local
	}

	validate := httpx.NewValidator()
	reg := prometheus.DefaultRegisterer
	limits := cfg.Limits()

	userHandler, err := user.InitializeHTTPHandler(db, recipes, events, validate, reg, limits)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize user handler")
	}
	recipeHandler, err := recipe.InitializeHTTPHandler(db, users, lists, images, events, limiter, validate, reg, limits)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize recipe handler")
	}

	middlewareConfig := httpx.DefaultMiddlewareConfig(cfg.ServiceName)
	httpx.RegisterMiddlewares(router, middlewareConfig)

	api := router.PathPrefix("/api").Subrouter()
	userHandler.RegisterRoutes(api)
	recipeHandler.RegisterRoutes(api)

	checks := []httpx.HealthCheck{{Name: "database", Ping: sqlDB.PingContext}}
	if redisClient != nil {
		checks = append(checks, httpx.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	router.HandleFunc("/health", httpx.HealthHandler(checks...)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler())

	docs.SwaggerInfo.Host = ""
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           httpx.SetupCORS(middlewareConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTP.Port).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}
