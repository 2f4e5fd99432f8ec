package services

import (
	"context"
	"errors"

	"colivery/internal/models"
	"colivery/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountStatusChecker gates ledger operations on account standing.
// Suspended accounts may not move money in or out.
type AccountStatusChecker interface {
	EnsureActive(ctx context.Context, userID primitive.ObjectID) error
}

type accountStatusChecker struct {
	userRepo interfaces.UserRepository
}

func NewAccountStatusChecker(userRepo interfaces.UserRepository) AccountStatusChecker {
	return &accountStatusChecker{userRepo: userRepo}
}

func (s *accountStatusChecker) EnsureActive(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}

	if user.Status == models.UserStatusSuspended {
		return ErrAccountSuspended
	}

	return nil
}
