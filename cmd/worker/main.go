package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"workforce/internal/attendance"
	"workforce/internal/config"
	"workforce/internal/queue"
	"workforce/internal/store"
)

// Worker consumes attendance events, writes an audit line for each, and
// keeps the per-day live active-member gauge in redis.
func main() {
	cfg := config.Load()

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Env == "production" || cfg.Env == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		logger.Fatal("queue consume init failed", zap.Error(err))
	}

	logger.Info("worker started")
	for msg := range messages {
		var evt attendance.Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			logger.Warn("malformed event", zap.String("kind", msg.Kind), zap.Error(err))
			continue
		}

		logger.Info("attendance event",
			zap.String("kind", evt.Kind),
			zap.String("user_id", evt.UserID),
			zap.String("day", evt.Day.String()),
			zap.Time("at", evt.At),
		)

		switch evt.Kind {
		case "checkin":
			if err := redisClient.IncrActive(ctx, evt.Day); err != nil {
				logger.Warn("active gauge incr failed", zap.Error(err))
			}
		case "checkout":
			if err := redisClient.DecrActive(ctx, evt.Day); err != nil {
				logger.Warn("active gauge decr failed", zap.Error(err))
			}
		}
	}

	logger.Info("worker stopped")
}
