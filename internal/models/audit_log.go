package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditAction string

const (
	AuditActionCreditWallet      AuditAction = "credit_wallet"
	AuditActionApproveWithdrawal AuditAction = "approve_withdrawal"
	AuditActionRejectWithdrawal  AuditAction = "reject_withdrawal"
	AuditActionUpdateCommission  AuditAction = "update_commission_rate"
)

// AuditLog records a state-changing admin action against a ledger resource.
type AuditLog struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	AdminID    primitive.ObjectID     `json:"admin_id" bson:"admin_id" validate:"required"`
	Action     AuditAction            `json:"action" bson:"action" validate:"required"`
	Resource   string                 `json:"resource" bson:"resource" validate:"required"`
	ResourceID string                 `json:"resource_id" bson:"resource_id"`
	Details    map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
}
