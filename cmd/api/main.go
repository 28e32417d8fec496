package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workforce/internal/attendance"
	"workforce/internal/config"
	"workforce/internal/difficulty"
	"workforce/internal/handler"
	"workforce/internal/httpmiddleware"
	"workforce/internal/queue"
	"workforce/internal/report"
	"workforce/internal/store"
	"workforce/internal/task"
	"workforce/internal/user"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "production" || env == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	return logger
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	userRepo := user.NewRepository(db.Client)
	users := user.NewService(userRepo, cfg.BcryptCost)

	attRepo := attendance.NewRepository(db.Client)
	att := attendance.NewService(attRepo, logger)

	taskRepo := task.NewRepository(db.Client)
	tasks := task.NewService(taskRepo)

	difficulties := difficulty.NewRepository(db.Client)
	reports := report.NewAggregator(db.Client, attRepo, userRepo, difficulties)

	limiter := httpmiddleware.NewRedisSlidingWindow(redisClient.Client, "workforce:ratelimit", cfg.RateLimitPerMin, time.Minute)

	h := handler.New(cfg, logger, users, att, tasks, difficulties, reports, q, db, redisClient)

	r := gin.New()
	r.Use(handler.Middleware(logger, limiter)...)
	h.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}
