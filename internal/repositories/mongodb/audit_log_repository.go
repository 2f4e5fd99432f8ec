package mongodb

import (
	"context"
	"fmt"
	"time"

	"colivery/internal/models"
	"colivery/internal/repositories/interfaces"
	"colivery/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type auditLogRepository struct {
	collection *mongo.Collection
}

func NewAuditLogRepository(db *mongo.Database) interfaces.AuditLogRepository {
	return &auditLogRepository{
		collection: db.Collection("audit_logs"),
	}
}

func (r *auditLogRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	auditLog.ID = primitive.NewObjectID()
	auditLog.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, auditLog)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func (r *auditLogRepository) GetByAdminID(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	filter := bson.M{"admin_id": adminID}
	return r.findAuditLogsWithFilter(ctx, filter, params)
}

func (r *auditLogRepository) GetByResource(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	filter := bson.M{"resource": resource}
	if resourceID != "" {
		filter["resource_id"] = resourceID
	}
	return r.findAuditLogsWithFilter(ctx, filter, params)
}

func (r *auditLogRepository) findAuditLogsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	var auditLogs []*models.AuditLog
	if err := cursor.All(ctx, &auditLogs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode audit logs: %w", err)
	}

	return auditLogs, total, nil
}
