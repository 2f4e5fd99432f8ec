package services

import (
	"context"

	"colivery/internal/models"
	"colivery/internal/repositories/interfaces"
	"colivery/internal/utils"
	"colivery/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditService records state-changing admin actions. Writes are attempted
// synchronously so failures are visible to the admin in logs, but they are
// not part of the ledger's atomic unit and never fail the operation.
type AuditService interface {
	RecordAdminAction(ctx context.Context, adminID primitive.ObjectID, action models.AuditAction, resource, resourceID string, details map[string]interface{})
	ListByResource(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
	ListByAdmin(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}

type auditService struct {
	auditRepo   interfaces.AuditLogRepository
	auditStream *logger.AuditLogger
	logger      *logger.Logger
}

func NewAuditService(auditRepo interfaces.AuditLogRepository, auditStream *logger.AuditLogger, log *logger.Logger) AuditService {
	return &auditService{
		auditRepo:   auditRepo,
		auditStream: auditStream,
		logger:      log,
	}
}

func (s *auditService) RecordAdminAction(ctx context.Context, adminID primitive.ObjectID, action models.AuditAction, resource, resourceID string, details map[string]interface{}) {
	entry := &models.AuditLog{
		AdminID:    adminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
	}

	// Operational log line plus the dedicated audit stream; the mongo row
	// below is the queryable record.
	s.logger.LogAdminAction(adminID, string(action), details)
	if s.auditStream != nil {
		s.auditStream.LogAction(string(action), resource, &adminID, details)
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"admin_id": adminID.Hex(),
			"action":   string(action),
			"resource": resource,
		}).Error("Failed to write audit log entry")
	}
}

func (s *auditService) ListByResource(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	return s.auditRepo.GetByResource(ctx, resource, resourceID, params)
}

func (s *auditService) ListByAdmin(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	return s.auditRepo.GetByAdminID(ctx, adminID, params)
}
