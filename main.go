package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/routecast/routecast-backend/config"
	"github.com/routecast/routecast-backend/handlers"
	"github.com/routecast/routecast-backend/internal/cache"
	"github.com/routecast/routecast-backend/internal/providers"
	"github.com/routecast/routecast-backend/logger"
	"github.com/routecast/routecast-backend/router"
	"github.com/routecast/routecast-backend/services"
	"github.com/routecast/routecast-backend/store"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.ConnString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	catalog, err := config.LoadThresholdCatalog(cfg.Risk.ThresholdsPath)
	if err != nil {
		log.Fatalf("Failed to load threshold catalog: %v", err)
	}

	var backend store.SnapshotBackend
	if cfg.Report.SnapshotBackend == "redis" {
		backend = store.NewRedisBackend(redisClient, 0)
	} else {
		backend, err = store.NewFileBackend(cfg.Report.SnapshotDir)
		if err != nil {
			log.Fatalf("Failed to initialize snapshot store: %v", err)
		}
	}

	weatherCache := cache.New(
		time.Duration(cfg.Weather.CacheTTLSeconds)*time.Second,
		cfg.Weather.CacheMaxEntries,
	)
	provider := providers.NewOpenMeteoClient(cfg.Weather.ProviderBaseURL)

	weatherService := services.NewWeatherService(provider, weatherCache)
	riskService := services.NewRiskService(catalog)
	changeDetector := services.NewChangeDetector(services.ChangeThresholds{
		TemperatureC:    cfg.Change.TemperatureC,
		WindKmh:         cfg.Change.WindKmh,
		PrecipitationMM: cfg.Change.PrecipitationMM,
	})
	snapshotStore := store.NewSnapshotStore(backend)

	notifiers := []services.Notifier{&services.ConsoleNotifier{Out: os.Stdout}}
	if cfg.Email.ResendAPIKey != "" {
		notifiers = append(notifiers, services.NewEmailService(&cfg.Email))
	}

	reportService := services.NewReportService(
		weatherService, riskService, changeDetector, snapshotStore, notifiers...,
	)

	tripStore := store.NewPgTripStore(pool)

	// Kick off scheduled reporting for all known trips.
	if trips, err := tripStore.ListTrips(ctx); err != nil {
		log.Warnw("Failed to list trips for scheduling", "error", err)
	} else {
		interval := time.Duration(cfg.Report.IntervalHours) * time.Hour
		for _, trip := range trips {
			reportService.StartScheduledReports(ctx, trip, interval)
		}
		log.Infow("Scheduled reports started", "trips", len(trips), "interval", interval)
	}

	healthHandler := handlers.NewHealthHandler(cfg.Server.Version, map[string]handlers.HealthCheck{
		"database": pool.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})
	tripHandler := handlers.NewTripHandler(tripStore, reportService)

	engine := router.New(cfg, router.Dependencies{
		Health: healthHandler,
		Trips:  tripHandler,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Graceful shutdown failed", "error", err)
	}
}
