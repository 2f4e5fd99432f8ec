package services

import (
	"context"
	"time"

	"colivery/internal/models"
	"colivery/internal/utils"
	"colivery/pkg/logger"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mocks ---

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) IncrementBalance(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) DecrementBalance(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) InvalidateCache(ctx context.Context, userID primitive.ObjectID) {
	m.Called(ctx, userID)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) GetByReferenceID(ctx context.Context, referenceID primitive.ObjectID) ([]*models.Transaction, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetPendingByCategory(ctx context.Context, category models.TransactionCategory, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, category, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.TransactionStatus, metadata *models.TransactionMetadata, processedAt time.Time) (*models.Transaction, error) {
	args := m.Called(ctx, id, from, to, metadata, processedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumCompletedByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (*models.PlatformSetting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformSetting), args.Error(1)
}

func (m *MockSettingRepository) Set(ctx context.Context, key, value string, updatedBy *primitive.ObjectID) error {
	args := m.Called(ctx, key, value, updatedBy)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogRepository) GetByAdminID(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, adminID, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockAuditLogRepository) GetByResource(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, resource, resourceID, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(userID primitive.ObjectID, kind models.NotificationKind, data map[string]string) {
	m.Called(userID, kind, data)
}

type MockAccountStatusChecker struct {
	mock.Mock
}

func (m *MockAccountStatusChecker) EnsureActive(ctx context.Context, userID primitive.ObjectID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) RecordAdminAction(ctx context.Context, adminID primitive.ObjectID, action models.AuditAction, resource, resourceID string, details map[string]interface{}) {
	m.Called(ctx, adminID, action, resource, resourceID, details)
}

func (m *MockAuditService) ListByResource(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, resource, resourceID, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockAuditService) ListByAdmin(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, adminID, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetOrCreateWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletService) Credit(ctx context.Context, userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) (*LedgerResult, error) {
	args := m.Called(ctx, userID, amount, description, category, referenceID, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LedgerResult), args.Error(1)
}

func (m *MockWalletService) Debit(ctx context.Context, userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) (*LedgerResult, error) {
	args := m.Called(ctx, userID, amount, description, category, referenceID, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LedgerResult), args.Error(1)
}

func (m *MockWalletService) RecordTransaction(ctx context.Context, userID primitive.ObjectID, amount int64, description string, category models.TransactionCategory, txType models.TransactionType, referenceID *primitive.ObjectID, metadata *models.TransactionMetadata) (*LedgerResult, error) {
	args := m.Called(ctx, userID, amount, description, category, txType, referenceID, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LedgerResult), args.Error(1)
}

func (m *MockWalletService) GetBalance(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) GetTransaction(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockWalletService) GetTransactionHistory(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockWalletService) ReconcileBalance(ctx context.Context, userID primitive.ObjectID) (*BalanceReconciliation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BalanceReconciliation), args.Error(1)
}

// passthroughRunner executes the unit directly; the repositories are mocked
// so there is no session to run it in.
type passthroughRunner struct{}

func (passthroughRunner) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestLogger() *logger.Logger {
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	return log
}
