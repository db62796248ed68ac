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

	"github.com/fleetops/fleet-manager/internal/notify"
	"github.com/fleetops/fleet-manager/pkg/common"
	"github.com/fleetops/fleet-manager/pkg/config"
	"github.com/fleetops/fleet-manager/pkg/eventbus"
	"github.com/fleetops/fleet-manager/pkg/logger"
	"github.com/fleetops/fleet-manager/pkg/middleware"
)

const (
	serviceName = "fleet-notifier"
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

	logger.Info("Starting fleet notifier",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	busCfg := eventbus.DefaultConfig()
	busCfg.URL = cfg.NATS.URL
	busCfg.Name = serviceName
	bus, err := eventbus.New(busCfg)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer bus.Close()

	emailClient := notify.NewEmailClient(&cfg.SMTP)
	notifyService := notify.NewService(emailClient, &cfg.Notify)
	eventHandler := notify.NewEventHandler(notifyService)

	rootCtx, cancelSubs := context.WithCancel(context.Background())
	defer cancelSubs()

	if err := eventHandler.RegisterSubscriptions(rootCtx, bus); err != nil {
		logger.Fatal("Failed to register event subscriptions", zap.Error(err))
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.Metrics(serviceName))

	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := map[string]func() error{
		"nats": func() error {
			if !bus.Connected() {
				return fmt.Errorf("nats connection lost")
			}
			return nil
		},
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

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
