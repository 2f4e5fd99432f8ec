package interfaces

import (
	"context"
	"errors"
	"time"

	"colivery/internal/models"
	"colivery/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrStatusConflict is returned when a guarded status transition finds
	// the transaction in a different state than expected.
	ErrStatusConflict = errors.New("transaction not in expected status")
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	GetByReferenceID(ctx context.Context, referenceID primitive.ObjectID) ([]*models.Transaction, error)
	GetPendingByCategory(ctx context.Context, category models.TransactionCategory, params *utils.PaginationParams) ([]*models.Transaction, int64, error)

	// TransitionStatus moves a transaction from one status to another as a
	// single guarded update, optionally replacing the metadata, and returns
	// the updated document. Returns ErrStatusConflict when the transaction
	// exists but is not in the from status.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.TransactionStatus, metadata *models.TransactionMetadata, processedAt time.Time) (*models.Transaction, error)

	// SumCompletedByUser returns credits minus debits over balance-affecting
	// entries for the user: completed transactions plus pending debit holds.
	// Used by reconciliation.
	SumCompletedByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}
