package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelbook/internal/api"
	"hotelbook/internal/cache"
	"hotelbook/internal/config"
	"hotelbook/internal/database"
	"hotelbook/internal/database/mongostore"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/lock"
	"hotelbook/internal/logging"
	"hotelbook/internal/metrics"
	"hotelbook/internal/repository"
	"hotelbook/internal/service"
	"hotelbook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, sqliteDB, err := initStore(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := seedDirectory(ctx, cfg.SeedPath, store, &logger); err != nil {
		return err
	}

	kv, redisClient := initKV(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	locks := lock.NewManager(kv, cfg.Lock.TTL, logging.Component(&logger, "lock"))

	var bookingCache *cache.BookingCache
	if cfg.Cache.Enabled {
		bookingCache = cache.NewBookingCache(kv, cfg.Cache.TTL, logging.Component(&logger, "cache"))
	}

	bus := events.NewEventBus()
	eventWorker, sink := startEventWorker(ctx, cfg, bus, redisClient, &logger)
	if sink != nil {
		defer sink.Close()
	}

	bookings := service.NewBookingService(store, store, locks, bookingCache, bus, service.BookingOptions{
		LockTTL:        cfg.Lock.TTL,
		MaxAdvanceDays: cfg.Booking.MaxAdvanceDays,
	}, logging.Component(&logger, "booking"))
	rooms := service.NewRoomService(store, store, logging.Component(&logger, "directory"))

	if sqliteDB != nil && cfg.Backup.Enabled {
		backup := database.NewBackupService(sqliteDB, cfg.Backup, logging.Component(&logger, "backup"))
		go backup.Start(ctx)
	}

	metrics.Register()
	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.API, bookings, rooms, store, logging.Component(&logger, "http"))
	if eventWorker != nil {
		httpServer.WithDeadLetters(eventWorker)
	}
	return serve(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, *baseLogger, closer, nil
}

// initStore opens the configured reservation store. The SQLite handle is
// returned separately because only it supports file backups.
func initStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.Store, *database.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		store, err := mongostore.Connect(connectCtx, cfg.Database.Mongo, logging.Component(logger, "mongo"))
		if err != nil {
			logger.Error().Err(err).Msg("init mongodb store")
			return nil, nil, err
		}
		return store, nil, nil
	default:
		db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "sqlite"))
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
			return nil, nil, err
		}
		return db, db, nil
	}
}

// initKV picks the store behind room leases and the booking cache. A
// configured Redis is kept even when the boot ping fails. Without an address
// the in-memory store only serialises admissions within this process.
func initKV(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.KVStore, *redis.Client) {
	if cfg.Redis.Address == "" {
		logger.Warn().Msg("redis address is empty, using in-memory leases and cache; run a single instance only")
		return repository.NewMemoryStore(), nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, redisClient); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis unreachable at startup, leases fail open until it recovers")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return repository.NewRedisStore(redisClient), redisClient
}

// startEventWorker forwards bus events to Kafka when brokers are configured.
func startEventWorker(
	ctx context.Context,
	cfg *config.Config,
	bus *events.EventBus,
	redisClient *redis.Client,
	logger *zerolog.Logger,
) (*worker.EventWorker, *events.KafkaSink) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info().Msg("kafka brokers not configured, booking events stay in-process")
		return nil, nil
	}

	sink := events.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	w := worker.NewEventWorker(
		sink,
		redisClient,
		worker.PolicyFromConfig(cfg.Worker),
		cfg.Worker.QueueSize,
		cfg.Worker.DeadLetterKey,
		logging.Component(logger, "event-worker"),
	)
	bus.SubscribeAll(w.Handle)
	go w.Start(ctx)

	logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("event worker started")
	return w, sink
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}
