package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string
type UserType string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserTypeCustomer UserType = "customer"
	UserTypeCourier  UserType = "courier"
	UserTypeAdmin    UserType = "admin"
)

// User carries the minimal account surface the ledger needs: identity and
// whether the account may move money. Profile, auth and KYC live elsewhere.
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	FirstName string             `json:"first_name" bson:"first_name"`
	LastName  string             `json:"last_name" bson:"last_name"`
	UserType  UserType           `json:"user_type" bson:"user_type"`
	Status    UserStatus         `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
