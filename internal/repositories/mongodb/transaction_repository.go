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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type transactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) interfaces.TransactionRepository {
	return &transactionRepository{
		collection: db.Collection("transactions"),
	}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, transaction)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &transaction, nil
}

func (r *transactionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	filter := bson.M{"user_id": userID}
	return r.findTransactionsWithFilter(ctx, filter, params)
}

func (r *transactionRepository) GetByReferenceID(ctx context.Context, referenceID primitive.ObjectID) ([]*models.Transaction, error) {
	cursor, err := r.collection.Find(
		ctx,
		bson.M{"reference_id": referenceID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions by reference: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*models.Transaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return transactions, nil
}

func (r *transactionRepository) GetPendingByCategory(ctx context.Context, category models.TransactionCategory, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	filter := bson.M{
		"category": category,
		"status":   models.TransactionStatusPending,
	}
	return r.findTransactionsWithFilter(ctx, filter, params)
}

func (r *transactionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.TransactionStatus, metadata *models.TransactionMetadata, processedAt time.Time) (*models.Transaction, error) {
	update := bson.M{
		"status":       to,
		"processed_at": processedAt,
		"updated_at":   time.Now(),
	}
	if metadata != nil {
		update["metadata"] = metadata
	}

	// The status guard in the filter makes the transition a compare-and-set;
	// a second approve or reject of the same entry matches nothing.
	var transaction models.Transaction
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
			if countErr != nil {
				return nil, fmt.Errorf("failed to check transaction existence: %w", countErr)
			}
			if count == 0 {
				return nil, interfaces.ErrTransactionNotFound
			}
			return nil, interfaces.ErrStatusConflict
		}
		return nil, fmt.Errorf("failed to transition transaction status: %w", err)
	}

	return &transaction, nil
}

func (r *transactionRepository) SumCompletedByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	// Pending debits are withdrawal holds: the balance was decremented at
	// request time, so they count against the ledger sum until resolved.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":         userID,
			"affects_balance": true,
			"$or": bson.A{
				bson.M{"status": models.TransactionStatusCompleted},
				bson.M{"status": models.TransactionStatusPending, "type": models.TransactionTypeDebit},
			},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"total": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$type", models.TransactionTypeCredit}},
				"$amount",
				bson.M{"$subtract": bson.A{0, "$amount"}},
			}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode transaction sum: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	return results[0].Total, nil
}

func (r *transactionRepository) findTransactionsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*models.Transaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return transactions, total, nil
}
