package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationKind string

const (
	NotificationWalletCredited      NotificationKind = "wallet_credited"
	NotificationWalletDebited       NotificationKind = "wallet_debited"
	NotificationWithdrawalRequested NotificationKind = "withdrawal_requested"
	NotificationWithdrawalApproved  NotificationKind = "withdrawal_approved"
	NotificationWithdrawalRejected  NotificationKind = "withdrawal_rejected"
)

// Notification is the message enqueued for the out-of-process dispatcher.
// Delivery (SMS, push, email) happens outside this service; the ledger only
// fires and forgets.
type Notification struct {
	UserID    primitive.ObjectID `json:"user_id"`
	Kind      NotificationKind   `json:"kind"`
	Data      map[string]string  `json:"data,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
