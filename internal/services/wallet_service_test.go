package services

import (
	"context"
	"sync"
	"testing"

	"colivery/internal/models"
	"colivery/internal/repositories/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type walletServiceFixture struct {
	walletRepo      *MockWalletRepository
	transactionRepo *MockTransactionRepository
	notifications   *MockNotificationService
	service         WalletService
}

func newWalletServiceFixture() *walletServiceFixture {
	f := &walletServiceFixture{
		walletRepo:      new(MockWalletRepository),
		transactionRepo: new(MockTransactionRepository),
		notifications:   new(MockNotificationService),
	}
	f.service = NewWalletService(f.walletRepo, f.transactionRepo, passthroughRunner{}, f.notifications, newTestLogger())
	return f
}

func TestGetOrCreateWallet_ReturnsExistingWallet(t *testing.T) {
	f := newWalletServiceFixture()
	userID := primitive.NewObjectID()
	existing := &models.Wallet{UserID: userID, Balance: 5000, Currency: "XOF", IsActive: true}
	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(existing, nil)

	wallet, err := f.service.GetOrCreateWallet(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, existing, wallet)
	f.walletRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetOrCreateWallet_CreatesZeroBalanceWallet(t *testing.T) {
	f := newWalletServiceFixture()
	userID := primitive.NewObjectID()
	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(nil, interfaces.ErrWalletNotFound)
	f.walletRepo.On("Create", mock.Anything, mock.MatchedBy(func(w *models.Wallet) bool {
		return w.UserID == userID && w.Balance == 0 && w.Currency == "XOF" && w.IsActive
	})).Return(nil)

	wallet, err := f.service.GetOrCreateWallet(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), wallet.Balance)
	f.walletRepo.AssertExpectations(t)
}

func TestGetOrCreateWallet_SurvivesCreationRace(t *testing.T) {
	f := newWalletServiceFixture()
	userID := primitive.NewObjectID()
	winner := &models.Wallet{UserID: userID, Balance: 0, Currency: "XOF", IsActive: true}

	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(nil, interfaces.ErrWalletNotFound).Once()
	f.walletRepo.On("Create", mock.Anything, mock.Anything).Return(interfaces.ErrWalletExists)
	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(winner, nil).Once()

	wallet, err := f.service.GetOrCreateWallet(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, winner, wallet)
}

func TestCredit_RejectsNonPositiveAmount(t *testing.T) {
	f := newWalletServiceFixture()

	for _, amount := range []int64{0, -500} {
		_, err := f.service.Credit(context.Background(), primitive.NewObjectID(), amount, "bonus", models.CategoryBonus, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}

	f.transactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCredit_WritesEntryAndIncrementsBalance(t *testing.T) {
	f := newWalletServiceFixture()
	userID := primitive.NewObjectID()
	wallet := &models.Wallet{UserID: userID, Balance: 1000, Currency: "XOF", IsActive: true}

	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
	f.transactionRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.UserID == userID &&
			tx.Type == models.TransactionTypeCredit &&
			tx.Status == models.TransactionStatusCompleted &&
			tx.Amount == 2500 &&
			tx.AffectsBalance &&
			tx.ProcessedAt != nil
	})).Return(nil)
	f.walletRepo.On("IncrementBalance", mock.Anything, userID, int64(2500)).Return(nil)
	f.walletRepo.On("InvalidateCache", mock.Anything, userID).Return()
	f.notifications.On("Notify", userID, models.NotificationWalletCredited, mock.Anything).Return()

	result, err := f.service.Credit(context.Background(), userID, 2500, "signup bonus", models.CategoryBonus, nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.CategoryBonus, result.Transaction.Category)
	f.walletRepo.AssertExpectations(t)
	f.transactionRepo.AssertExpectations(t)
}

// recordingRunner notes when the transactional unit commits so ordering
// around it can be asserted.
type recordingRunner struct {
	events *[]string
}

func (r recordingRunner) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	*r.events = append(*r.events, "commit")
	return nil
}

func TestCredit_InvalidatesCacheOnlyAfterCommit(t *testing.T) {
	var events []string
	walletRepo := new(MockWalletRepository)
	transactionRepo := new(MockTransactionRepository)
	notifications := new(MockNotificationService)
	service := NewWalletService(walletRepo, transactionRepo, recordingRunner{events: &events}, notifications, newTestLogger())

	userID := primitive.NewObjectID()
	wallet := &models.Wallet{UserID: userID, Balance: 1000, Currency: "XOF", IsActive: true}

	walletRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
	transactionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	walletRepo.On("IncrementBalance", mock.Anything, userID, int64(2500)).Return(nil)
	walletRepo.On("InvalidateCache", mock.Anything, userID).Run(func(mock.Arguments) {
		events = append(events, "invalidate")
	}).Return()
	notifications.On("Notify", userID, models.NotificationWalletCredited, mock.Anything).Return()

	_, err := service.Credit(context.Background(), userID, 2500, "signup bonus", models.CategoryBonus, nil, nil)

	// A delete inside the transaction would let a concurrent reader
	// re-cache the pre-commit balance for the full TTL.
	assert.NoError(t, err)
	assert.Equal(t, []string{"commit", "invalidate"}, events)
}

func TestCredit_RejectsMetadataKindMismatch(t *testing.T) {
	f := newWalletServiceFixture()

	metadata := &models.TransactionMetadata{
		Kind:  models.MetadataKindWithdrawal,
		Bonus: &models.BonusMetadata{GrantedBy: primitive.NewObjectID(), Reason: "promo"},
	}
	_, err := f.service.Credit(context.Background(), primitive.NewObjectID(), 1000, "bonus", models.CategoryBonus, nil, metadata)

	assert.ErrorIs(t, err, models.ErrInvalidMetadata)
	f.transactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.walletRepo.AssertNotCalled(t, "IncrementBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestDebit_MapsInsufficientBalance(t *testing.T) {
	f := newWalletServiceFixture()
	userID := primitive.NewObjectID()
	wallet := &models.Wallet{UserID: userID, Balance: 100, Currency: "XOF", IsActive: true}

	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
	f.walletRepo.On("DecrementBalance", mock.Anything, userID, int64(5000)).Return(interfaces.ErrInsufficientBalance)

	_, err := f.service.Debit(context.Background(), userID, 5000, "payment", models.CategoryDeliveryPayment, nil, nil)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	f.transactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDebit_DecrementsBeforeWritingEntry(t *testing.T) {
	f := newWalletServiceFixture()
	userID := primitive.NewObjectID()
	wallet := &models.Wallet{UserID: userID, Balance: 10000, Currency: "XOF", IsActive: true}

	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
	f.walletRepo.On("DecrementBalance", mock.Anything, userID, int64(3000)).Return(nil)
	f.transactionRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Type == models.TransactionTypeDebit && tx.Amount == 3000 && tx.AffectsBalance
	})).Return(nil)
	f.walletRepo.On("InvalidateCache", mock.Anything, userID).Return()
	f.notifications.On("Notify", userID, models.NotificationWalletDebited, mock.Anything).Return()

	result, err := f.service.Debit(context.Background(), userID, 3000, "delivery payment", models.CategoryDeliveryPayment, nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, result.Transaction.Status)
	f.walletRepo.AssertExpectations(t)
}

// memWalletRepo implements the conditional-decrement contract with real
// mutual exclusion so the debit race can be exercised with live goroutines.
type memWalletRepo struct {
	mu     sync.Mutex
	wallet *models.Wallet
}

func (r *memWalletRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	return interfaces.ErrWalletExists
}

func (r *memWalletRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *r.wallet
	return &copied, nil
}

func (r *memWalletRepo) IncrementBalance(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallet.Balance += amount
	return nil
}

func (r *memWalletRepo) DecrementBalance(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wallet.Balance < amount {
		return interfaces.ErrInsufficientBalance
	}
	r.wallet.Balance -= amount
	return nil
}

func (r *memWalletRepo) InvalidateCache(ctx context.Context, userID primitive.ObjectID) {}

func TestDebit_ConcurrentDebitsCannotOverdraw(t *testing.T) {
	userID := primitive.NewObjectID()
	repo := &memWalletRepo{wallet: &models.Wallet{UserID: userID, Balance: 1000, Currency: "XOF", IsActive: true}}
	transactionRepo := new(MockTransactionRepository)
	notifications := new(MockNotificationService)
	transactionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifications.On("Notify", userID, models.NotificationWalletDebited, mock.Anything).Return()
	service := NewWalletService(repo, transactionRepo, passthroughRunner{}, notifications, newTestLogger())

	// Together the debits exceed the balance; each alone fits, so only
	// the check-and-decrement atomicity decides the outcome.
	amounts := []int64{700, 600}
	errs := make([]error, len(amounts))
	var wg sync.WaitGroup
	for i, amount := range amounts {
		wg.Add(1)
		go func(i int, amount int64) {
			defer wg.Done()
			_, errs[i] = service.Debit(context.Background(), userID, amount, "delivery payment", models.CategoryDeliveryPayment, nil, nil)
		}(i, amount)
	}
	wg.Wait()

	var succeeded []int64
	for i, err := range errs {
		if err == nil {
			succeeded = append(succeeded, amounts[i])
		} else {
			assert.ErrorIs(t, err, ErrInsufficientBalance)
		}
	}
	if assert.Len(t, succeeded, 1) {
		assert.Equal(t, 1000-succeeded[0], repo.wallet.Balance)
	}
}

func TestRecordTransaction_NeverTouchesBalance(t *testing.T) {
	f := newWalletServiceFixture()
	userID := primitive.NewObjectID()
	wallet := &models.Wallet{UserID: userID, Balance: 700, Currency: "XOF", IsActive: true}

	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
	f.transactionRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *models.Transaction) bool {
		return !tx.AffectsBalance && tx.Status == models.TransactionStatusCompleted
	})).Return(nil)

	metadata := &models.TransactionMetadata{
		Kind:  models.MetadataKindAudit,
		Audit: &models.AuditMetadata{Source: "cash_on_delivery"},
	}
	result, err := f.service.RecordTransaction(context.Background(), userID, 1500, "cash payment", models.CategoryAdjustment, models.TransactionTypeCredit, nil, metadata)

	assert.NoError(t, err)
	assert.False(t, result.Transaction.AffectsBalance)
	assert.Equal(t, int64(700), result.Wallet.Balance)
	f.walletRepo.AssertNotCalled(t, "IncrementBalance", mock.Anything, mock.Anything, mock.Anything)
	f.walletRepo.AssertNotCalled(t, "DecrementBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileBalance_FlagsDrift(t *testing.T) {
	f := newWalletServiceFixture()
	userID := primitive.NewObjectID()

	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(&models.Wallet{UserID: userID, Balance: 9000}, nil)
	f.transactionRepo.On("SumCompletedByUser", mock.Anything, userID).Return(int64(8500), nil)

	reconciliation, err := f.service.ReconcileBalance(context.Background(), userID)

	assert.NoError(t, err)
	assert.False(t, reconciliation.Consistent)
	assert.Equal(t, int64(9000), reconciliation.WalletBalance)
	assert.Equal(t, int64(8500), reconciliation.LedgerBalance)
}

func TestReconcileBalance_ConsistentWallet(t *testing.T) {
	f := newWalletServiceFixture()
	userID := primitive.NewObjectID()

	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(&models.Wallet{UserID: userID, Balance: 4200}, nil)
	f.transactionRepo.On("SumCompletedByUser", mock.Anything, userID).Return(int64(4200), nil)

	reconciliation, err := f.service.ReconcileBalance(context.Background(), userID)

	assert.NoError(t, err)
	assert.True(t, reconciliation.Consistent)
}

func TestGetTransaction_MapsNotFound(t *testing.T) {
	f := newWalletServiceFixture()
	id := primitive.NewObjectID()
	f.transactionRepo.On("GetByID", mock.Anything, id).Return(nil, interfaces.ErrTransactionNotFound)

	_, err := f.service.GetTransaction(context.Background(), id)

	assert.ErrorIs(t, err, ErrNotFound)
}
