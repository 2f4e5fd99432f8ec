package mongodb

import (
	"context"
	"fmt"
	"time"

	"colivery/internal/models"
	"colivery/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type settingRepository struct {
	collection *mongo.Collection
}

func NewSettingRepository(db *mongo.Database) interfaces.SettingRepository {
	return &settingRepository{
		collection: db.Collection("platform_settings"),
	}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*models.PlatformSetting, error) {
	var setting models.PlatformSetting
	err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&setting)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	return &setting, nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string, updatedBy *primitive.ObjectID) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"value":      value,
			"updated_by": updatedBy,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"key":        key,
			"created_at": now,
		},
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"key": key},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	return nil
}
