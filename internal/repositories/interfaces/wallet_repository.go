package interfaces

import (
	"context"
	"errors"

	"colivery/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrWalletExists        = errors.New("wallet already exists for user")
)

type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)

	// IncrementBalance adds amount (positive) to the wallet balance.
	IncrementBalance(ctx context.Context, userID primitive.ObjectID, amount int64) error

	// DecrementBalance subtracts amount from the wallet balance. The
	// sufficiency check and the decrement are a single conditional update
	// so two concurrent debits cannot both pass the check; returns
	// ErrInsufficientBalance when the condition does not hold.
	DecrementBalance(ctx context.Context, userID primitive.ObjectID, amount int64) error

	// InvalidateCache drops the cached wallet document. Callers mutating
	// the balance inside a storage transaction must invalidate after the
	// transaction commits, not inside it: a delete before commit lets a
	// concurrent reader re-cache the pre-commit balance.
	InvalidateCache(ctx context.Context, userID primitive.ObjectID)
}
