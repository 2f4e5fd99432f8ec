package mongodb

import (
	"context"
	"fmt"
	"time"

	"colivery/internal/models"
	"colivery/internal/repositories/interfaces"
	"colivery/internal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const walletCacheTTL = 60 * time.Second

type walletRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewWalletRepository(db *mongo.Database, cache services.CacheService) interfaces.WalletRepository {
	return &walletRepository{
		collection: db.Collection("wallets"),
		cache:      cache,
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	wallet.ID = primitive.NewObjectID()
	wallet.CreatedAt = time.Now()
	wallet.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, wallet)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrWalletExists
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	if wallet := r.getWalletFromCache(ctx, userID); wallet != nil {
		return wallet, nil
	}

	var wallet models.Wallet
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	r.cacheWallet(ctx, &wallet)

	return &wallet, nil
}

func (r *walletRepository) IncrementBalance(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc": bson.M{"balance": amount},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment wallet balance: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrWalletNotFound
	}

	return nil
}

func (r *walletRepository) DecrementBalance(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	// The balance filter makes the sufficiency check and the decrement one
	// storage operation; concurrent debits serialize on the document and
	// the loser sees MatchedCount == 0.
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userID, "balance": bson.M{"$gte": amount}},
		bson.M{
			"$inc": bson.M{"balance": -amount},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to decrement wallet balance: %w", err)
	}

	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
		if err != nil {
			return fmt.Errorf("failed to check wallet existence: %w", err)
		}
		if count == 0 {
			return interfaces.ErrWalletNotFound
		}
		return interfaces.ErrInsufficientBalance
	}

	return nil
}

// InvalidateCache runs outside the mutation's storage transaction: deleting
// the key before commit would let a concurrent GetByUserID re-cache the
// pre-commit balance for the full TTL.
func (r *walletRepository) InvalidateCache(ctx context.Context, userID primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, r.walletCacheKey(userID))
}

// Cache helpers

func (r *walletRepository) walletCacheKey(userID primitive.ObjectID) string {
	return "wallet:user:" + userID.Hex()
}

func (r *walletRepository) cacheWallet(ctx context.Context, wallet *models.Wallet) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Set(ctx, r.walletCacheKey(wallet.UserID), wallet, walletCacheTTL)
}

func (r *walletRepository) getWalletFromCache(ctx context.Context, userID primitive.ObjectID) *models.Wallet {
	if r.cache == nil {
		return nil
	}
	var wallet models.Wallet
	if err := r.cache.Get(ctx, r.walletCacheKey(userID), &wallet); err != nil {
		return nil
	}
	return &wallet
}
