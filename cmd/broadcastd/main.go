package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/auth"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/broadcast"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/bus"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/config"
	"github.com/tofabd/call-center-shajgoj-sub003/pkg/logger"
	"github.com/tofabd/call-center-shajgoj-sub003/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	registry := broadcast.NewRegistry()
	dispatcher := broadcast.NewDispatcher(registry, log, cfg.Broadcast.DeliveryTimeout)
	publisher := bus.NewPublisher(rdb, log)
	listener := bus.NewListener(rdb, dispatcher, log)

	go func() {
		if err := listener.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bus listener stopped", "err", err)
			stop()
		}
	}()

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, registry, dispatcher, publisher, authManager, log)

	// No Read/WriteTimeout here: upgraded websocket connections are
	// long-lived and keepalive is handled by ping/pong deadlines.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("broadcastd listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
