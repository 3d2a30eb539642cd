package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/gocomet/rideshare/internal/api/handlers"
	"github.com/gocomet/rideshare/internal/api/routes"
	"github.com/gocomet/rideshare/internal/config"
	"github.com/gocomet/rideshare/internal/domain/driver"
	"github.com/gocomet/rideshare/internal/service/drivers"
	"github.com/gocomet/rideshare/internal/service/pricing"
	"github.com/gocomet/rideshare/internal/service/rides"
	"github.com/gocomet/rideshare/internal/service/users"
	"github.com/gocomet/rideshare/internal/store"
	"github.com/gocomet/rideshare/internal/store/memory"
	"github.com/gocomet/rideshare/internal/store/postgres"
	"github.com/gocomet/rideshare/pkg/broker"
	"github.com/gocomet/rideshare/pkg/cache"
	"github.com/gocomet/rideshare/pkg/database"
	"github.com/gocomet/rideshare/pkg/logger"
	"github.com/gocomet/rideshare/pkg/monitoring"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting rideshare API",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
		logger.String("store", cfg.Store.Driver),
	)

	ctx := context.Background()

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
		LogLevel:   cfg.NewRelic.LogLevel,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
		nrApp, _ = monitoring.New(monitoring.Config{})
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized successfully",
			logger.String("app_name", cfg.NewRelic.AppName))
	} else {
		appLogger.Info("New Relic APM disabled")
	}
	defer nrApp.Shutdown(10 * time.Second)

	checks := map[string]handlers.HealthCheck{}

	// Initialize the store
	var (
		st store.Store
		db *sql.DB
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		st = memory.New()
		appLogger.Warn("Using in-memory store; data is lost on restart")
	default:
		db, err = database.NewPostgresDB(ctx, database.Config{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.Name,
			SSLMode:     cfg.Database.SSLMode,
			MaxConns:    cfg.Database.MaxConnections,
			MaxIdle:     cfg.Database.MaxIdleConns,
			MaxLifetime: cfg.Database.MaxLifetime,
		})
		if err != nil {
			appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
		}
		defer db.Close()

		if cfg.Store.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				appLogger.Fatal("Failed to apply schema", logger.Err(err))
			}
		}
		st = postgres.New(db)
		checks["postgres"] = db.PingContext
		appLogger.Info("Connected to PostgreSQL successfully")
	}

	var (
		rideOpts   = []rides.Option{rides.WithRecorder(nrApp)}
		driverOpts = []drivers.Option{drivers.WithRecorder(nrApp)}
	)

	// Initialize Redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cache.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			MaxRetries:  cfg.Redis.MaxRetries,
			PoolSize:    cfg.Redis.PoolSize,
			MinIdleConn: cfg.Redis.MinIdleConn,
			DialTimeout: cfg.Redis.DialTimeout,
			ReadTimeout: cfg.Redis.ReadTimeout,
		})
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
		}
		defer cache.Close(redisClient)

		tracker := cache.NewDriverRideTracker(redisClient, cfg.Redis.CurrentRideTTL)
		rideOpts = append(rideOpts, rides.WithTracker(tracker))
		driverOpts = append(driverOpts, drivers.WithCurrentRideReader(tracker))
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		appLogger.Info("Connected to Redis successfully")
	}

	// Initialize RabbitMQ
	if cfg.RabbitMQ.Enabled {
		publisher, err := broker.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			appLogger.Fatal("Failed to connect to RabbitMQ", logger.Err(err))
		}
		defer publisher.Close()

		rideOpts = append(rideOpts, rides.WithPublisher(publisher))
		driverOpts = append(driverOpts, drivers.WithPublisher(publisher))
		appLogger.Info("Connected to RabbitMQ successfully",
			logger.String("exchange", cfg.RabbitMQ.Exchange))
	}

	// Initialize services
	loc, _ := cfg.Ride.Location()
	pricer := pricing.NewService(pricing.Config{
		BaseFare: map[driver.VehicleType]float64{
			driver.VehicleCar:  cfg.Pricing.BaseFareCar,
			driver.VehicleBike: cfg.Pricing.BaseFareBike,
		},
		PerKMRate: map[driver.VehicleType]float64{
			driver.VehicleCar:  cfg.Pricing.PerKMRateCar,
			driver.VehicleBike: cfg.Pricing.PerKMRateBike,
		},
		FallbackType: driver.VehicleCar,
	})

	rideSvc := rides.NewService(st, pricer, appLogger, rides.Config{
		MaxDailyCancellations: cfg.Ride.MaxDailyCancellations,
		Location:              loc,
	}, rideOpts...)
	driverSvc := drivers.NewService(st, appLogger, driverOpts...)
	userSvc := users.NewService(st, appLogger)

	h := handlers.NewHandlers(rideSvc, driverSvc, userSvc, appLogger, checks)

	// Initialize Gin router
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	var nrApplication *newrelic.Application
	if nrApp.IsEnabled() {
		nrApplication = nrApp.Application
	}
	routes.SetupRoutes(router, h, nrApplication, appLogger)

	appLogger.Info("Routes configured successfully")

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	if nrApp.IsEnabled() {
		go reportPoolStats(statsCtx, nrApp, db, redisClient)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}

// reportPoolStats pushes connection pool gauges until ctx is done
func reportPoolStats(ctx context.Context, nrApp *monitoring.NewRelicApp, db *sql.DB, redisClient *redis.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if db != nil {
				nrApp.RecordDatabasePoolStats(database.PoolStats(db))
			}
			if redisClient != nil {
				nrApp.RecordRedisPoolStats(cache.GetClientStats(redisClient))
			}
		}
	}
}
