package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"colivery/internal/config"
	"colivery/internal/models"
	"colivery/internal/utils"
	"colivery/pkg/cache"
	"colivery/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	notificationQueueKey = "notifications:queue"
	dispatchedCounterKey = "notifications:dispatched"
	popTimeout           = 5 * time.Second
	backlogLogInterval   = time.Minute
)

// The dispatcher drains the notification queue the API fills. Delivery is
// decoupled from ledger operations on purpose: the API enqueues and moves
// on, and this process owns retries and provider fan-out.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Notification dispatcher started")

	lastBacklogLog := time.Now()
	for {
		select {
		case <-ctx.Done():
			appLogger.Info("Notification dispatcher stopping")
			return
		default:
		}

		result, err := redisCache.BRPop(ctx, popTimeout, notificationQueueKey)
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			appLogger.WithError(err).Error("Failed to pop notification")
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value].
		if len(result) != 2 {
			continue
		}

		var notification models.Notification
		if err := json.Unmarshal([]byte(result[1]), &notification); err != nil {
			appLogger.WithError(err).Error("Dropping malformed notification payload")
			continue
		}

		dispatch(appLogger, &notification)
		if _, err := redisCache.Increment(ctx, dispatchedCounterKey); err != nil {
			appLogger.WithError(err).Warn("Failed to bump dispatched counter")
		}

		if time.Since(lastBacklogLog) > backlogLogInterval {
			if backlog, err := redisCache.LLen(ctx, notificationQueueKey); err == nil {
				appLogger.WithField("backlog", backlog).Info("Notification queue depth")
			}
			lastBacklogLog = time.Now()
		}
	}
}

// dispatch hands the notification to the delivery channel for its kind.
// Push and SMS providers plug in here; for now everything goes to the log
// so the queue contract is exercised end to end.
func dispatch(appLogger *logger.Logger, notification *models.Notification) {
	fields := map[string]interface{}{
		"user_id": notification.UserID.Hex(),
		"kind":    string(notification.Kind),
		"data":    notification.Data,
	}
	if display := displayAmount(notification.Data); display != "" {
		fields["display_amount"] = display
	}
	appLogger.WithFields(fields).Info("Dispatching notification")
}

// displayAmount renders the minor-unit amount the ledger events carry into
// the human form a provider template would use.
func displayAmount(data map[string]string) string {
	raw, ok := data["amount"]
	if !ok {
		return ""
	}
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ""
	}
	return utils.FormatAmount(amount, data["currency"])
}
