package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"colivery/internal/models"
	"colivery/internal/repositories/interfaces"
	"colivery/internal/utils"
	"colivery/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithdrawalService runs the cashout state machine: a request immediately
// holds the funds as a pending debit, and an admin later approves it
// (terminal, no balance change) or rejects it (terminal, refunded through a
// new compensating credit — history is never rewritten).
type WithdrawalService interface {
	RequestWithdrawal(ctx context.Context, userID primitive.ObjectID, amount int64, destination string) (*models.Transaction, error)
	ApproveWithdrawal(ctx context.Context, withdrawalID, adminID primitive.ObjectID) (*models.Transaction, error)
	RejectWithdrawal(ctx context.Context, withdrawalID, adminID primitive.ObjectID, reason string) (*models.Transaction, error)
	ListPendingWithdrawals(ctx context.Context, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	GetWithdrawal(ctx context.Context, withdrawalID primitive.ObjectID) (*WithdrawalDetail, error)
}

// WithdrawalDetail pairs a withdrawal with the entries referencing it,
// i.e. the compensating refund credit when the withdrawal was rejected.
type WithdrawalDetail struct {
	Withdrawal *models.Transaction   `json:"withdrawal"`
	Related    []*models.Transaction `json:"related"`
}

type withdrawalService struct {
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	runner          TransactionRunner
	accountStatus   AccountStatusChecker
	notifications   NotificationService
	audit           AuditService
	logger          *logger.Logger
	minAmount       int64
	currency        string
}

func NewWithdrawalService(
	walletRepo interfaces.WalletRepository,
	transactionRepo interfaces.TransactionRepository,
	runner TransactionRunner,
	accountStatus AccountStatusChecker,
	notifications NotificationService,
	audit AuditService,
	log *logger.Logger,
	minAmount int64,
) WithdrawalService {
	return &withdrawalService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		runner:          runner,
		accountStatus:   accountStatus,
		notifications:   notifications,
		audit:           audit,
		logger:          log,
		minAmount:       minAmount,
		currency:        utils.BaseCurrency,
	}
}

func (s *withdrawalService) RequestWithdrawal(ctx context.Context, userID primitive.ObjectID, amount int64, destination string) (*models.Transaction, error) {
	if amount <= 0 || amount < s.minAmount {
		return nil, ErrInvalidAmount
	}

	if err := s.accountStatus.EnsureActive(ctx, userID); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Type:        models.TransactionTypeDebit,
		Status:      models.TransactionStatusPending,
		Amount:      amount,
		Currency:    s.currency,
		Description: "Withdrawal request",
		Category:    models.CategoryWithdrawal,
		Metadata: &models.TransactionMetadata{
			Kind:       models.MetadataKindWithdrawal,
			Withdrawal: &models.WithdrawalMetadata{Destination: destination},
		},
		AffectsBalance: true,
	}

	// The hold and the pending record are one atomic unit: funds leave the
	// spendable balance the moment the request exists, so the same money
	// cannot back a second withdrawal or purchase.
	err := s.runner.RunTransaction(ctx, func(txCtx context.Context) error {
		if err := s.walletRepo.DecrementBalance(txCtx, userID, amount); err != nil {
			return err
		}
		return s.transactionRepo.Create(txCtx, transaction)
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		if errors.Is(err, interfaces.ErrWalletNotFound) {
			return nil, ErrInsufficientBalance
		}
		s.logger.WithError(err).WithUserID(userID).Error("Withdrawal request failed")
		return nil, fmt.Errorf("failed to request withdrawal: %w", err)
	}

	s.walletRepo.InvalidateCache(ctx, userID)

	s.logger.LogLedgerEvent(transaction.ID, "withdrawal_requested", amount, s.currency, map[string]interface{}{
		"user_id": userID.Hex(),
	})
	s.notifications.Notify(userID, models.NotificationWithdrawalRequested, map[string]string{
		"amount":   strconv.FormatInt(amount, 10),
		"currency": s.currency,
	})

	return transaction, nil
}

func (s *withdrawalService) ApproveWithdrawal(ctx context.Context, withdrawalID, adminID primitive.ObjectID) (*models.Transaction, error) {
	original, err := s.getWithdrawal(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	metadata := withdrawalMetadataFrom(original)
	metadata.Withdrawal.ProcessedBy = &adminID
	metadata.Withdrawal.ProcessedAt = &now

	// Funds were already deducted at request time; approval only closes the
	// record.
	updated, err := s.transactionRepo.TransitionStatus(ctx, withdrawalID, models.TransactionStatusPending, models.TransactionStatusCompleted, metadata, now)
	if err != nil {
		return nil, s.mapTransitionError(err)
	}

	s.audit.RecordAdminAction(ctx, adminID, models.AuditActionApproveWithdrawal, "withdrawal", withdrawalID.Hex(), map[string]interface{}{
		"user_id": updated.UserID.Hex(),
		"amount":  updated.Amount,
	})
	s.notifications.Notify(updated.UserID, models.NotificationWithdrawalApproved, map[string]string{
		"amount":   strconv.FormatInt(updated.Amount, 10),
		"currency": updated.Currency,
	})

	return updated, nil
}

func (s *withdrawalService) RejectWithdrawal(ctx context.Context, withdrawalID, adminID primitive.ObjectID, reason string) (*models.Transaction, error) {
	original, err := s.getWithdrawal(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	metadata := withdrawalMetadataFrom(original)
	metadata.Withdrawal.ProcessedBy = &adminID
	metadata.Withdrawal.ProcessedAt = &now
	metadata.Withdrawal.RejectionReason = reason

	refund := &models.Transaction{
		UserID:      original.UserID,
		Type:        models.TransactionTypeCredit,
		Status:      models.TransactionStatusCompleted,
		Amount:      original.Amount,
		Currency:    original.Currency,
		Description: "Withdrawal refund",
		Category:    models.CategoryRefund,
		ReferenceID: &withdrawalID,
		Metadata: &models.TransactionMetadata{
			Kind: models.MetadataKindRefund,
			Refund: &models.RefundMetadata{
				OriginalTransactionID: withdrawalID,
				Reason:                reason,
				IssuedBy:              adminID,
			},
		},
		AffectsBalance: true,
		ProcessedAt:    &now,
	}

	// Rejection fails the original entry and compensates with a brand-new
	// credit; the original is never reversed in place.
	var updated *models.Transaction
	err = s.runner.RunTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		updated, txErr = s.transactionRepo.TransitionStatus(txCtx, withdrawalID, models.TransactionStatusPending, models.TransactionStatusFailed, metadata, now)
		if txErr != nil {
			return txErr
		}
		if txErr := s.walletRepo.IncrementBalance(txCtx, original.UserID, original.Amount); txErr != nil {
			return txErr
		}
		return s.transactionRepo.Create(txCtx, refund)
	})
	if err != nil {
		return nil, s.mapTransitionError(err)
	}

	s.walletRepo.InvalidateCache(ctx, original.UserID)

	s.audit.RecordAdminAction(ctx, adminID, models.AuditActionRejectWithdrawal, "withdrawal", withdrawalID.Hex(), map[string]interface{}{
		"user_id": original.UserID.Hex(),
		"amount":  original.Amount,
		"reason":  reason,
	})
	s.notifications.Notify(original.UserID, models.NotificationWithdrawalRejected, map[string]string{
		"amount":   strconv.FormatInt(original.Amount, 10),
		"currency": original.Currency,
		"reason":   reason,
	})

	return updated, nil
}

func (s *withdrawalService) ListPendingWithdrawals(ctx context.Context, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return s.transactionRepo.GetPendingByCategory(ctx, models.CategoryWithdrawal, params)
}

func (s *withdrawalService) GetWithdrawal(ctx context.Context, withdrawalID primitive.ObjectID) (*WithdrawalDetail, error) {
	withdrawal, err := s.getWithdrawal(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	related, err := s.transactionRepo.GetByReferenceID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	return &WithdrawalDetail{Withdrawal: withdrawal, Related: related}, nil
}

func (s *withdrawalService) getWithdrawal(ctx context.Context, withdrawalID primitive.ObjectID) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		if errors.Is(err, interfaces.ErrTransactionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if transaction.Category != models.CategoryWithdrawal {
		return nil, ErrNotFound
	}
	return transaction, nil
}

func (s *withdrawalService) mapTransitionError(err error) error {
	if errors.Is(err, interfaces.ErrTransactionNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, interfaces.ErrStatusConflict) {
		return ErrAlreadyProcessed
	}
	s.logger.WithError(err).Error("Withdrawal state transition failed")
	return fmt.Errorf("failed to process withdrawal: %w", err)
}

// withdrawalMetadataFrom copies the stored withdrawal metadata so the
// processing annotations never mutate the fetched document in place.
func withdrawalMetadataFrom(transaction *models.Transaction) *models.TransactionMetadata {
	metadata := &models.TransactionMetadata{
		Kind:       models.MetadataKindWithdrawal,
		Withdrawal: &models.WithdrawalMetadata{},
	}
	if transaction.Metadata != nil && transaction.Metadata.Withdrawal != nil {
		copied := *transaction.Metadata.Withdrawal
		metadata.Withdrawal = &copied
	}
	return metadata
}
