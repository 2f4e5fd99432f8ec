package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string
type TransactionStatus string
type TransactionCategory string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"

	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"

	CategoryDeliveryIncome  TransactionCategory = "delivery_income"
	CategoryDeliveryPayment TransactionCategory = "delivery_payment"
	CategoryFee             TransactionCategory = "fee"
	CategoryBonus           TransactionCategory = "bonus"
	CategoryWithdrawal      TransactionCategory = "withdrawal"
	CategoryRefund          TransactionCategory = "refund"
	CategoryAdjustment      TransactionCategory = "adjustment"
)

// Transaction is an append-only ledger entry. Amount is always positive;
// the type field carries the direction. Only the status (and the withdrawal
// processing fields inside the metadata) may change after creation.
type Transaction struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID   `json:"user_id" bson:"user_id" validate:"required"`
	Type        TransactionType      `json:"type" bson:"type" validate:"required"`
	Status      TransactionStatus    `json:"status" bson:"status"`
	Amount      int64                `json:"amount" bson:"amount" validate:"required,gt=0"`
	Currency    string               `json:"currency" bson:"currency"`
	Description string               `json:"description" bson:"description"`
	Category    TransactionCategory  `json:"category" bson:"category" validate:"required"`
	ReferenceID *primitive.ObjectID  `json:"reference_id,omitempty" bson:"reference_id,omitempty"`
	Metadata    *TransactionMetadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
	// AffectsBalance is false only for bookkeeping entries recorded without
	// a paired balance mutation; reconciliation skips those.
	AffectsBalance bool       `json:"affects_balance" bson:"affects_balance"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

type MetadataKind string

const (
	MetadataKindDeliveryIncome MetadataKind = "delivery_income"
	MetadataKindWithdrawal     MetadataKind = "withdrawal"
	MetadataKindRefund         MetadataKind = "refund"
	MetadataKindBonus          MetadataKind = "bonus"
	MetadataKindAudit          MetadataKind = "audit"
)

// TransactionMetadata is a tagged union: Kind names the populated arm and
// exactly one arm must be set. Shapes are validated at write time so ledger
// annotations cannot drift into free-form maps.
type TransactionMetadata struct {
	Kind           MetadataKind            `json:"kind" bson:"kind"`
	DeliveryIncome *DeliveryIncomeMetadata `json:"delivery_income,omitempty" bson:"delivery_income,omitempty"`
	Withdrawal     *WithdrawalMetadata     `json:"withdrawal,omitempty" bson:"withdrawal,omitempty"`
	Refund         *RefundMetadata         `json:"refund,omitempty" bson:"refund,omitempty"`
	Bonus          *BonusMetadata          `json:"bonus,omitempty" bson:"bonus,omitempty"`
	Audit          *AuditMetadata          `json:"audit,omitempty" bson:"audit,omitempty"`
}

// DeliveryIncomeMetadata records the fee split captured at settlement time.
// Later commission-rate changes never touch these values.
type DeliveryIncomeMetadata struct {
	GrossAmount int64              `json:"gross_amount" bson:"gross_amount"`
	FeeAmount   int64              `json:"fee_amount" bson:"fee_amount"`
	NetAmount   int64              `json:"net_amount" bson:"net_amount"`
	FeeRate     string             `json:"fee_rate" bson:"fee_rate"`
	DeliveryID  primitive.ObjectID `json:"delivery_id" bson:"delivery_id"`
}

type WithdrawalMetadata struct {
	Destination     string              `json:"destination" bson:"destination"`
	ProcessedBy     *primitive.ObjectID `json:"processed_by,omitempty" bson:"processed_by,omitempty"`
	ProcessedAt     *time.Time          `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
}

type RefundMetadata struct {
	OriginalTransactionID primitive.ObjectID `json:"original_transaction_id" bson:"original_transaction_id"`
	Reason                string             `json:"reason" bson:"reason"`
	IssuedBy              primitive.ObjectID `json:"issued_by" bson:"issued_by"`
}

type BonusMetadata struct {
	GrantedBy primitive.ObjectID `json:"granted_by" bson:"granted_by"`
	Reason    string             `json:"reason" bson:"reason"`
}

// AuditMetadata annotates bookkeeping-only entries recorded without a
// balance mutation, e.g. an off-ledger cash payment logged for the record.
type AuditMetadata struct {
	Source  string `json:"source" bson:"source"`
	Details string `json:"details,omitempty" bson:"details,omitempty"`
}

var ErrInvalidMetadata = errors.New("transaction metadata does not match its declared kind")

// Validate checks that the populated arm matches Kind and that Kind is
// allowed for the given category. A nil metadata is valid for any category.
func (m *TransactionMetadata) Validate(category TransactionCategory) error {
	if m == nil {
		return nil
	}

	arms := 0
	var match bool
	if m.DeliveryIncome != nil {
		arms++
		match = m.Kind == MetadataKindDeliveryIncome
	}
	if m.Withdrawal != nil {
		arms++
		match = m.Kind == MetadataKindWithdrawal
	}
	if m.Refund != nil {
		arms++
		match = m.Kind == MetadataKindRefund
	}
	if m.Bonus != nil {
		arms++
		match = m.Kind == MetadataKindBonus
	}
	if m.Audit != nil {
		arms++
		match = m.Kind == MetadataKindAudit
	}
	if arms != 1 || !match {
		return ErrInvalidMetadata
	}

	switch m.Kind {
	case MetadataKindDeliveryIncome:
		if category != CategoryDeliveryIncome {
			return ErrInvalidMetadata
		}
		if m.DeliveryIncome.GrossAmount != m.DeliveryIncome.FeeAmount+m.DeliveryIncome.NetAmount {
			return ErrInvalidMetadata
		}
	case MetadataKindWithdrawal:
		if category != CategoryWithdrawal {
			return ErrInvalidMetadata
		}
	case MetadataKindRefund:
		if category != CategoryRefund {
			return ErrInvalidMetadata
		}
	case MetadataKindBonus:
		if category != CategoryBonus {
			return ErrInvalidMetadata
		}
	}

	return nil
}
