package services

import (
	"context"
	"testing"

	"colivery/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSettleDeliveryPayment_CreditsNetAndRecordsSplit(t *testing.T) {
	payeeID := primitive.NewObjectID()
	deliveryID := primitive.NewObjectID()

	feeService, _ := newFeeServiceWithRate(t, "0.175", 0, 0)
	walletService := new(MockWalletService)

	walletService.On("Credit", mock.Anything, payeeID, int64(4122), mock.Anything,
		models.CategoryDeliveryIncome, &deliveryID,
		mock.MatchedBy(func(m *models.TransactionMetadata) bool {
			return m.Kind == models.MetadataKindDeliveryIncome &&
				m.DeliveryIncome != nil &&
				m.DeliveryIncome.GrossAmount == 4996 &&
				m.DeliveryIncome.FeeAmount == 874 &&
				m.DeliveryIncome.NetAmount == 4122 &&
				m.DeliveryIncome.FeeRate == "0.175" &&
				m.DeliveryIncome.DeliveryID == deliveryID
		})).Return(&LedgerResult{
		Transaction: &models.Transaction{
			ID:       primitive.NewObjectID(),
			UserID:   payeeID,
			Amount:   4122,
			Currency: "XOF",
		},
		Wallet: &models.Wallet{UserID: payeeID, Balance: 4122},
	}, nil)

	service := NewSettlementService(walletService, feeService, newTestLogger())
	result, err := service.SettleDeliveryPayment(context.Background(), payeeID, 4996, deliveryID)

	assert.NoError(t, err)
	assert.Equal(t, int64(4122), result.Transaction.Amount)
	walletService.AssertExpectations(t)
}

func TestSettleDeliveryPayment_RejectsNonPositiveGross(t *testing.T) {
	feeService, _ := newFeeServiceWithRate(t, "0.175", 0, 0)
	walletService := new(MockWalletService)

	service := NewSettlementService(walletService, feeService, newTestLogger())
	_, err := service.SettleDeliveryPayment(context.Background(), primitive.NewObjectID(), 0, primitive.NewObjectID())

	assert.ErrorIs(t, err, ErrInvalidAmount)
	walletService.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleDeliveryPayment_RateChangeAppliesToNextSettlement(t *testing.T) {
	payeeID := primitive.NewObjectID()
	deliveryID := primitive.NewObjectID()

	settingRepo := new(MockSettingRepository)
	settingRepo.On("Get", mock.Anything, models.SettingCommissionRate).Return(&models.PlatformSetting{
		Key: models.SettingCommissionRate, Value: "0.1",
	}, nil).Once()
	settingRepo.On("Get", mock.Anything, models.SettingCommissionRate).Return(&models.PlatformSetting{
		Key: models.SettingCommissionRate, Value: "0.2",
	}, nil).Once()

	provider := NewSettingRateProvider(settingRepo, decimal.RequireFromString("0.175"), newTestLogger())
	feeService := NewFeeService(provider, settingRepo, 0, 0)

	walletService := new(MockWalletService)
	walletService.On("Credit", mock.Anything, payeeID, int64(9000), mock.Anything,
		models.CategoryDeliveryIncome, &deliveryID, mock.Anything).Return(&LedgerResult{
		Transaction: &models.Transaction{Amount: 9000, Currency: "XOF"},
		Wallet:      &models.Wallet{},
	}, nil).Once()
	walletService.On("Credit", mock.Anything, payeeID, int64(8000), mock.Anything,
		models.CategoryDeliveryIncome, &deliveryID, mock.Anything).Return(&LedgerResult{
		Transaction: &models.Transaction{Amount: 8000, Currency: "XOF"},
		Wallet:      &models.Wallet{},
	}, nil).Once()

	service := NewSettlementService(walletService, feeService, newTestLogger())

	first, err := service.SettleDeliveryPayment(context.Background(), payeeID, 10000, deliveryID)
	assert.NoError(t, err)
	assert.Equal(t, int64(9000), first.Transaction.Amount)

	second, err := service.SettleDeliveryPayment(context.Background(), payeeID, 10000, deliveryID)
	assert.NoError(t, err)
	assert.Equal(t, int64(8000), second.Transaction.Amount)

	settingRepo.AssertExpectations(t)
}
