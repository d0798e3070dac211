package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/agenda-api/internal/config"
	"github.com/jwalitptl/agenda-api/internal/handler"
	"github.com/jwalitptl/agenda-api/internal/handler/availability"
	schedulehandler "github.com/jwalitptl/agenda-api/internal/handler/schedule"
	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/repository/cache"
	"github.com/jwalitptl/agenda-api/internal/repository/postgres"
	"github.com/jwalitptl/agenda-api/internal/router"
	"github.com/jwalitptl/agenda-api/internal/service/schedule"
	"github.com/jwalitptl/agenda-api/internal/worker"
	"github.com/jwalitptl/agenda-api/pkg/auth"
	"github.com/jwalitptl/agenda-api/pkg/circuitbreaker"
	"github.com/jwalitptl/agenda-api/pkg/logger"
	"github.com/jwalitptl/agenda-api/pkg/messaging/redis"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	m := metrics.NewMetrics(cfg.Monitoring.Namespace, prometheus.DefaultRegisterer)
	loc := cfg.Schedule.Location()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := redis.NewClient(ctx, redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	breaker := circuitbreaker.New(circuitbreaker.Settings{Name: "redis"})
	broker := redis.NewRedisBroker(redisClient, breaker, logger.Component("broker"))

	// Initialize repositories
	rulesRepo := cache.NewAvailabilityCache(
		postgres.NewAvailabilityRepository(db, m),
		redisClient,
		breaker,
		cache.Config{
			TTL:             cfg.Cache.TTL,
			CleanupInterval: cfg.Cache.CleanupInterval,
			RedisTTL:        cfg.Cache.RedisTTL,
			KeyPrefix:       cfg.Cache.KeyPrefix,
		},
		m,
		logger.Component("cache"),
	)
	agendaRepo := postgres.NewAgendaRepository(db, loc, m)

	// Initialize services
	scheduleSvc := schedule.NewService(rulesRepo, agendaRepo, loc,
		schedule.WithPublisher(broker, cfg.Redis.Channel),
		schedule.WithMetrics(m),
		schedule.WithMaxAgendaRange(cfg.Schedule.MaxAgenda),
	)
	boards := schedule.NewBoardStore(scheduleSvc, schedule.BoardStoreConfig{
		TTL:             cfg.Schedule.BoardTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
		LoadTimeout:     cfg.Schedule.LoadTimeout,
	})
	defer boards.Close()

	// Initialize middleware
	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}
	authMiddleware := middleware.NewAuthMiddleware(auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer))

	// Initialize handlers
	h := handler.NewHandler(prometheus.DefaultGatherer, map[string]handler.Checker{
		"database": postgres.Pinger{DB: db},
		"redis": handler.CheckerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	})

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		h,
		m,
		router.RouterConfig{
			Mode:           cfg.Server.Mode,
			RateLimit:      rate.Limit(cfg.RateLimit.RPS),
			RateBurst:      cfg.RateLimit.Burst,
			RequestTimeout: cfg.Server.RequestTimeout,
			CORSConfig:     middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...),
		},
		availability.NewHandler(scheduleSvc),
		schedulehandler.NewHandler(scheduleSvc, boards),
	)
	r.Setup()

	// Start workers
	var wg sync.WaitGroup
	invalidation := worker.NewInvalidationWorker(broker, cfg.Redis.Channel, rulesRepo, boards, m, logger.Component("worker"))
	refresher := worker.NewBoardRefreshWorker(boards, cfg.Schedule.RefreshInterval, logger.Component("worker"))
	wg.Add(2)
	go func() {
		defer wg.Done()
		invalidation.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		refresher.Start(ctx)
	}()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("timezone", loc.String()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	stop()
	wg.Wait()
	log.Info().Msg("server exited properly")
}
