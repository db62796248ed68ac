package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fleetops/fleet-manager/internal/fleet"
	"github.com/fleetops/fleet-manager/internal/intervention"
	"github.com/fleetops/fleet-manager/pkg/cache"
	"github.com/fleetops/fleet-manager/pkg/common"
	"github.com/fleetops/fleet-manager/pkg/config"
	"github.com/fleetops/fleet-manager/pkg/database"
	"github.com/fleetops/fleet-manager/pkg/eventbus"
	"github.com/fleetops/fleet-manager/pkg/logger"
	"github.com/fleetops/fleet-manager/pkg/middleware"
	redisclient "github.com/fleetops/fleet-manager/pkg/redis"
)

const (
	serviceName = "fleet-api"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting fleet API",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	if err := database.RunMigrations(&cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	var (
		redisClient  *redisclient.Client
		cacheManager *cache.Manager
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisclient.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
		cacheManager = cache.NewManager(redisClient)
		logger.Info("Redis cache enabled")
	}

	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		busCfg := eventbus.DefaultConfig()
		busCfg.URL = cfg.NATS.URL
		busCfg.Name = serviceName
		bus, err = eventbus.New(busCfg)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer bus.Close()
	}

	fleetRepo := fleet.NewRepository(db)
	fleetService := fleet.NewService(fleetRepo, cacheManager)
	if bus != nil {
		fleetService.SetEventPublisher(bus)
	}
	fleetHandler := fleet.NewHandler(fleetService)

	interventionRepo := intervention.NewRepository(db)
	var publisher intervention.Publisher
	if bus != nil {
		publisher = bus
	}
	interventionService := intervention.NewService(interventionRepo, fleetRepo, publisher)
	interventionHandler := intervention.NewHandler(interventionService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics(serviceName))

	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := make(map[string]func() error)
	healthChecks["database"] = func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return db.Ping(ctx)
	}
	if redisClient != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Client.Ping(ctx).Err()
		}
	}
	if bus != nil {
		healthChecks["nats"] = func() error {
			if !bus.Connected() {
				return fmt.Errorf("nats connection lost")
			}
			return nil
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"version": version,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	fleetHandler.RegisterRoutes(router, cfg.JWT.Secret)
	interventionHandler.RegisterRoutes(router, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
