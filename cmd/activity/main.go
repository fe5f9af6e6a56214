package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tair/foodgram/internal/config"
	"github.com/tair/foodgram/internal/recipe/cache"
	"github.com/tair/foodgram/internal/recipe/usecase/command"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/httpx"
	"github.com/tair/foodgram/pkg/logger"
	"github.com/tair/foodgram/pkg/tracing"
)

var eventsHandled = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "activity_events_handled_total",
		Help: "Recipe events processed by the activity worker",
	},
	[]string{"event_type", "status"},
)

// counted records the outcome of every handled event.
func counted(eventType string, next kafka.EventHandler) kafka.EventHandler {
	return func(ctx context.Context, event kafka.Event) error {
		err := next(ctx, event)
		status := "success"
		if err != nil {
			status = "error"
		}
		eventsHandled.WithLabelValues(eventType, status).Inc()
		return err
	}
}

type counter struct {
	consumer *kafka.Consumer
}

func (c counter) RegisterHandler(eventType string, handler kafka.EventHandler) {
	c.consumer.RegisterHandler(eventType, counted(eventType, handler))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("foodgram-activity", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	serviceName := cfg.ServiceName + "-activity"
	logger.Init(serviceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.Log.Level)

	tracingConfig := cfg.Tracing()
	tracingConfig.ServiceName = serviceName
	tp, err := tracing.InitTracer(tracingConfig)
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

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Logger.Fatal().Msg("KAFKA_BROKERS is required for the activity worker")
	}
	if cfg.Redis.Addr == "" {
		logger.Logger.Fatal().Msg("REDIS_ADDR is required for the activity worker")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	consumer, err := kafka.NewConsumer(brokers, cfg.Kafka.GroupID, []string{kafka.TopicRecipes})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	lists := cache.NewRedisShoppingListCache(redisClient, cfg.Cache.ShoppingListTTL)
	command.NewInvalidateShoppingListsHandler(lists).Register(counter{consumer: consumer})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start consumer")
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", httpx.HealthHandler(httpx.HealthCheck{
		Name: "redis",
		Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: ":" + cfg.HTTP.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Logger.Info().Str("port", cfg.HTTP.Port).Msg("Activity worker metrics server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down activity worker...")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Metrics server forced to shutdown")
	}
}
