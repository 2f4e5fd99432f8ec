package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const SettingCommissionRate = "commission_rate"

// PlatformSetting is a single key/value configuration row. The commission
// rate is stored as a decimal string in [0,1] and re-read on every fee
// computation so admin changes take effect without a restart.
type PlatformSetting struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Key       string              `json:"key" bson:"key" validate:"required"`
	Value     string              `json:"value" bson:"value" validate:"required"`
	UpdatedBy *primitive.ObjectID `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at"`
}
