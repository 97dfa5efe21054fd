package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model-governance-service/internal/adapters/primary/http/handlers"
	"model-governance-service/internal/adapters/primary/http/middleware"
	"model-governance-service/internal/bootstrap"
	"model-governance-service/internal/config"
	"model-governance-service/internal/telemetry"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Tracing (Optional - based on config)
	if cfg.Telemetry.TracingEnabled {
		shutdown, err := telemetry.InitTracing(cfg.Telemetry.ServiceName, os.Stdout)
		if err != nil {
			log.Fatalf("init tracing: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.WithError(err).Warn("tracer shutdown failed")
			}
		}()
		log.Info("tracing enabled")
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics()
	}

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	store, err := bootstrap.OpenStorage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("close storage failed")
		}
	}()
	log.WithField("driver", cfg.Storage.Driver).Info("storage opened")

	svc, err := bootstrap.NewServices(store, cfg, metrics)
	if err != nil {
		log.Fatalf("wire services: %v", err)
	}

	// Primary Adapter (HTTP Handlers)
	h := svc.Handler()

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), middleware.Metrics(metrics), gin.Recovery())

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	router.GET("/healthz", handlers.Healthz(store.Ping))
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
		return
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
