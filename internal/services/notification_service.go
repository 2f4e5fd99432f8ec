package services

import (
	"context"
	"time"

	"colivery/internal/models"
	"colivery/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const notificationQueueKey = "notifications:queue"

// NotificationService hands user-facing notifications to the out-of-process
// dispatcher. Dispatch is fire-and-forget: a failed enqueue is logged and
// never affects the ledger operation that triggered it.
type NotificationService interface {
	Notify(userID primitive.ObjectID, kind models.NotificationKind, data map[string]string)
}

type notificationService struct {
	cache   CacheService
	logger  *logger.Logger
	timeout time.Duration
}

func NewNotificationService(cache CacheService, log *logger.Logger) NotificationService {
	return &notificationService{
		cache:   cache,
		logger:  log,
		timeout: 5 * time.Second,
	}
}

func (s *notificationService) Notify(userID primitive.ObjectID, kind models.NotificationKind, data map[string]string) {
	notification := &models.Notification{
		UserID:    userID,
		Kind:      kind,
		Data:      data,
		CreatedAt: time.Now(),
	}

	// Detached from the caller's request: the ledger result must not wait
	// on, or fail with, notification delivery.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.cache.LPush(ctx, notificationQueueKey, notification); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"user_id": userID.Hex(),
				"kind":    string(kind),
			}).Warn("Failed to enqueue notification")
		}
	}()
}
