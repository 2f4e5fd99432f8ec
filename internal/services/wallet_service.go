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

// TransactionRunner executes fn as a single atomic storage unit. Everything
// fn does with the passed context commits or rolls back together.
// *database.MongoDB satisfies this with a session transaction.
type TransactionRunner interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LedgerResult pairs the transaction record with the wallet state after the
// operation committed.
type LedgerResult struct {
	Transaction *models.Transaction `json:"transaction"`
	Wallet      *models.Wallet      `json:"wallet"`
}

// BalanceReconciliation compares the cached wallet balance against the sum
// of completed, balance-affecting ledger entries.
type BalanceReconciliation struct {
	UserID        primitive.ObjectID `json:"user_id"`
	WalletBalance int64              `json:"wallet_balance"`
	LedgerBalance int64              `json:"ledger_balance"`
	Consistent    bool               `json:"consistent"`
}

// WalletService is the single path through which wallet balances change.
// Every balance mutation is paired with exactly one transaction record
// inside one atomic unit.
type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)

	Credit(ctx context.Context, userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) (*LedgerResult, error)
	Debit(ctx context.Context, userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) (*LedgerResult, error)

	// RecordTransaction writes a bookkeeping-only ledger entry without
	// touching the balance. Callers must not expect the balance to reflect
	// these entries.
	RecordTransaction(ctx context.Context, userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, txType models.TransactionType, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) (*LedgerResult, error)

	GetBalance(ctx context.Context, userID primitive.ObjectID) (int64, error)
	GetTransaction(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	GetTransactionHistory(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	ReconcileBalance(ctx context.Context, userID primitive.ObjectID) (*BalanceReconciliation, error)
}

type walletService struct {
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	runner          TransactionRunner
	notifications   NotificationService
	logger          *logger.Logger
	currency        string
}

func NewWalletService(
	walletRepo interfaces.WalletRepository,
	transactionRepo interfaces.TransactionRepository,
	runner TransactionRunner,
	notifications NotificationService,
	log *logger.Logger,
) WalletService {
	return &walletService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		runner:          runner,
		notifications:   notifications,
		logger:          log,
		currency:        utils.BaseCurrency,
	}
}

func (s *walletService) GetOrCreateWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, interfaces.ErrWalletNotFound) {
		return nil, err
	}

	wallet = &models.Wallet{
		UserID:   userID,
		Balance:  0,
		Currency: s.currency,
		IsActive: true,
	}
	err = s.walletRepo.Create(ctx, wallet)
	if err == nil {
		return wallet, nil
	}
	if errors.Is(err, interfaces.ErrWalletExists) {
		// Lost the creation race; the winner's wallet is the one.
		return s.walletRepo.GetByUserID(ctx, userID)
	}
	return nil, err
}

func (s *walletService) Credit(ctx context.Context, userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) (*LedgerResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := metadata.Validate(category); err != nil {
		return nil, fmt.Errorf("invalid transaction metadata: %w", err)
	}

	if _, err := s.GetOrCreateWallet(ctx, userID); err != nil {
		return nil, err
	}

	transaction := s.newTransaction(userID, amount, description, category, models.TransactionTypeCredit, referenceID, metadata)

	err := s.runner.RunTransaction(ctx, func(txCtx context.Context) error {
		if err := s.transactionRepo.Create(txCtx, transaction); err != nil {
			return err
		}
		return s.walletRepo.IncrementBalance(txCtx, userID, amount)
	})
	if err != nil {
		s.logger.WithError(err).WithUserID(userID).Error("Credit failed")
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	// Invalidate only after the commit so readers cannot re-cache the
	// pre-commit balance.
	s.walletRepo.InvalidateCache(ctx, userID)

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.LogLedgerEvent(transaction.ID, "credit", amount, s.currency, map[string]interface{}{
		"user_id":  userID.Hex(),
		"category": string(category),
	})
	s.notifications.Notify(userID, models.NotificationWalletCredited, map[string]string{
		"amount":   strconv.FormatInt(amount, 10),
		"currency": s.currency,
		"category": string(category),
	})

	return &LedgerResult{Transaction: transaction, Wallet: wallet}, nil
}

func (s *walletService) Debit(ctx context.Context, userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) (*LedgerResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := metadata.Validate(category); err != nil {
		return nil, fmt.Errorf("invalid transaction metadata: %w", err)
	}

	if _, err := s.GetOrCreateWallet(ctx, userID); err != nil {
		return nil, err
	}

	transaction := s.newTransaction(userID, amount, description, category, models.TransactionTypeDebit, referenceID, metadata)

	err := s.runner.RunTransaction(ctx, func(txCtx context.Context) error {
		// The decrement carries its own balance >= amount guard; the whole
		// unit aborts when the wallet cannot cover the debit.
		if err := s.walletRepo.DecrementBalance(txCtx, userID, amount); err != nil {
			return err
		}
		return s.transactionRepo.Create(txCtx, transaction)
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		s.logger.WithError(err).WithUserID(userID).Error("Debit failed")
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	s.walletRepo.InvalidateCache(ctx, userID)

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.LogLedgerEvent(transaction.ID, "debit", amount, s.currency, map[string]interface{}{
		"user_id":  userID.Hex(),
		"category": string(category),
	})
	s.notifications.Notify(userID, models.NotificationWalletDebited, map[string]string{
		"amount":   strconv.FormatInt(amount, 10),
		"currency": s.currency,
		"category": string(category),
	})

	return &LedgerResult{Transaction: transaction, Wallet: wallet}, nil
}

func (s *walletService) RecordTransaction(ctx context.Context, userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, txType models.TransactionType, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) (*LedgerResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := metadata.Validate(category); err != nil {
		return nil, fmt.Errorf("invalid transaction metadata: %w", err)
	}

	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	transaction := s.newTransaction(userID, amount, description, category, txType, referenceID, metadata)
	transaction.AffectsBalance = false

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		s.logger.WithError(err).WithUserID(userID).Error("Failed to record transaction")
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	return &LedgerResult{Transaction: transaction, Wallet: wallet}, nil
}

func (s *walletService) GetBalance(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

func (s *walletService) GetTransaction(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrTransactionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return transaction, nil
}

func (s *walletService) GetTransactionHistory(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return s.transactionRepo.GetByUserID(ctx, userID, params)
}

func (s *walletService) ReconcileBalance(ctx context.Context, userID primitive.ObjectID) (*BalanceReconciliation, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrWalletNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ledgerBalance, err := s.transactionRepo.SumCompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BalanceReconciliation{
		UserID:        userID,
		WalletBalance: wallet.Balance,
		LedgerBalance: ledgerBalance,
		Consistent:    wallet.Balance == ledgerBalance,
	}, nil
}

func (s *walletService) newTransaction(userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, txType models.TransactionType, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) *models.Transaction {
	now := time.Now()
	return &models.Transaction{
		UserID:         userID,
		Type:           txType,
		Status:         models.TransactionStatusCompleted,
		Amount:         amount,
		Currency:       s.currency,
		Description:    description,
		Category:       category,
		ReferenceID:    referenceID,
		Metadata:       metadata,
		AffectsBalance: true,
		ProcessedAt:    &now,
	}
}
