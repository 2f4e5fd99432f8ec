package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet is the per-user balance record. Balance is kept in minor currency
// units and is a derived cache of the completed transactions for the user;
// it is only ever mutated through the wallet service.
type Wallet struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Balance   int64              `json:"balance" bson:"balance"`
	Currency  string             `json:"currency" bson:"currency"`
	IsActive  bool               `json:"is_active" bson:"is_active"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
