package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/internal/config"
	"main/internal/handlers"
	"main/internal/middleware"
	"main/internal/protocol"
	"main/internal/room"
	"main/internal/transport"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	limits := middleware.NewLimits(cfg)
	ipLimiter := middleware.NewIPRateLimit()
	registry := room.NewRegistry()
	broadcaster := room.NewBroadcaster()
	validator := protocol.NewValidator()

	sessionHandler := handlers.NewSessionHandler(registry, broadcaster, limits)
	drawingHandler := handlers.NewDrawingHandler(validator, broadcaster, limits)
	permissionHandler := handlers.NewPermissionHandler(validator, broadcaster)
	router := handlers.NewMessageRouter(sessionHandler, drawingHandler, permissionHandler)

	wsServer := transport.NewServer(cfg, limits, validator, sessionHandler, router, ipLimiter)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsServer.HandleWebSocket)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupLoop(ctx, cfg, registry, ipLimiter)

	go func() {
		logrus.WithField("port", cfg.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Shutdown error")
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.AppEnv == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// cleanupLoop periodically prunes stale rooms and idle IP limiters.
func cleanupLoop(ctx context.Context, cfg *config.Config, registry *room.Registry, ipLimiter *middleware.IPRateLimit) {
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			registry.Cleanup(cfg.RoomMaxIdle)
			ipLimiter.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}
