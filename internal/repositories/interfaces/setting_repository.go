package interfaces

import (
	"context"
	"errors"

	"colivery/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrSettingNotFound = errors.New("platform setting not found")

type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.PlatformSetting, error)
	Set(ctx context.Context, key, value string, updatedBy *primitive.ObjectID) error
}
