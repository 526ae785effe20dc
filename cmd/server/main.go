package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/auth"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/geoip"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/handler"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/hub"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/logging"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/metrics"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New(config.LogConfig{Level: "info"}).Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewWithService(cfg.Log, cfg.Service.Name)
	logger.Info("Starting signaling service")

	// GeoIP is optional; without a database every viewer resolves to Unknown
	var locator *geoip.Locator
	if cfg.GeoIP.DatabasePath != "" {
		locator, err = geoip.Open(cfg.GeoIP.DatabasePath)
		if err != nil {
			logger.WithError(err).Warn("GeoIP database unavailable, country resolution disabled")
		} else {
			defer locator.Close()
		}
	}

	collector := metrics.NewPrometheusCollector()

	// Wire hub and service together
	h := hub.New(cfg.WebSocket, logger)
	svc := service.New(cfg, logger, collector, h, locator)
	h.SetHandler(svc)
	go h.Run()

	authService := auth.NewService(cfg.Auth)
	loginLimiter := auth.NewRateLimiter(cfg.Auth.LoginPerMinute, cfg.Auth.LoginBurst)
	defer loginLimiter.Stop()

	wsHandler := handler.NewWebSocketHandler(cfg, svc, h, logger)
	httpHandler := handler.NewHTTPHandler(cfg, svc, authService, loginLimiter, logger)

	// Create HTTP router
	router := mux.NewRouter()
	router.Handle(cfg.WebSocket.Path, wsHandler)
	router.Handle("/metrics", collector.Handler())
	httpHandler.SetupRoutes(router)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// Start HTTP server
	go func() {
		logger.WithField("address", cfg.HTTP.Address).Info("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown error")
	}

	svc.Close()
	h.Close()

	logger.Info("Shutdown complete")
}
