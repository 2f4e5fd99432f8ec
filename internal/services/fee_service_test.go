package services

import (
	"context"
	"testing"

	"colivery/internal/models"
	"colivery/internal/repositories/interfaces"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newFeeServiceWithRate(t *testing.T, storedRate string, minFee, maxFee int64) (FeeService, *MockSettingRepository) {
	t.Helper()

	settingRepo := new(MockSettingRepository)
	if storedRate == "" {
		settingRepo.On("Get", mock.Anything, models.SettingCommissionRate).Return(nil, interfaces.ErrSettingNotFound)
	} else {
		settingRepo.On("Get", mock.Anything, models.SettingCommissionRate).Return(&models.PlatformSetting{
			Key:   models.SettingCommissionRate,
			Value: storedRate,
		}, nil)
	}

	provider := NewSettingRateProvider(settingRepo, decimal.RequireFromString("0.175"), newTestLogger())
	return NewFeeService(provider, settingRepo, minFee, maxFee), settingRepo
}

func TestCalculateFee_SplitsGrossAtStoredRate(t *testing.T) {
	feeService, _ := newFeeServiceWithRate(t, "0.175", 0, 0)

	breakdown, err := feeService.CalculateFee(context.Background(), 100000)

	assert.NoError(t, err)
	assert.Equal(t, int64(100000), breakdown.GrossAmount)
	assert.Equal(t, int64(17500), breakdown.FeeAmount)
	assert.Equal(t, int64(82500), breakdown.NetAmount)
	assert.Equal(t, "0.175", breakdown.FeeRate.String())
}

func TestCalculateFee_RoundsFeeDown(t *testing.T) {
	feeService, _ := newFeeServiceWithRate(t, "0.175", 0, 0)

	// 4996 * 0.175 = 874.3; the platform's cut rounds down, never up.
	breakdown, err := feeService.CalculateFee(context.Background(), 4996)

	assert.NoError(t, err)
	assert.Equal(t, int64(874), breakdown.FeeAmount)
	assert.Equal(t, int64(4122), breakdown.NetAmount)
	assert.Equal(t, breakdown.GrossAmount, breakdown.FeeAmount+breakdown.NetAmount)
}

func TestCalculateFee_UsesDefaultRateWhenSettingMissing(t *testing.T) {
	feeService, _ := newFeeServiceWithRate(t, "", 0, 0)

	breakdown, err := feeService.CalculateFee(context.Background(), 10000)

	assert.NoError(t, err)
	assert.Equal(t, int64(1750), breakdown.FeeAmount)
}

func TestCalculateFee_UsesDefaultRateWhenStoredValueInvalid(t *testing.T) {
	for _, stored := range []string{"not-a-number", "-0.1", "1.5"} {
		feeService, _ := newFeeServiceWithRate(t, stored, 0, 0)

		breakdown, err := feeService.CalculateFee(context.Background(), 10000)

		assert.NoError(t, err)
		assert.Equal(t, int64(1750), breakdown.FeeAmount, "stored rate %q should fall back to default", stored)
	}
}

func TestCalculateFee_ClampsToConfiguredRange(t *testing.T) {
	feeService, _ := newFeeServiceWithRate(t, "0.175", 500, 2000)

	low, err := feeService.CalculateFee(context.Background(), 1000)
	assert.NoError(t, err)
	assert.Equal(t, int64(500), low.FeeAmount)
	assert.Equal(t, int64(500), low.NetAmount)

	high, err := feeService.CalculateFee(context.Background(), 1000000)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), high.FeeAmount)
	assert.Equal(t, int64(998000), high.NetAmount)
}

func TestCalculateFee_FeeNeverExceedsGross(t *testing.T) {
	feeService, _ := newFeeServiceWithRate(t, "0.175", 500, 0)

	breakdown, err := feeService.CalculateFee(context.Background(), 300)

	assert.NoError(t, err)
	assert.Equal(t, int64(300), breakdown.FeeAmount)
	assert.Equal(t, int64(0), breakdown.NetAmount)
}

func TestCalculateFee_RejectsNonPositiveGross(t *testing.T) {
	feeService, _ := newFeeServiceWithRate(t, "0.175", 0, 0)

	_, err := feeService.CalculateFee(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = feeService.CalculateFee(context.Background(), -100)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSetRate_PersistsNormalizedValue(t *testing.T) {
	adminID := primitive.NewObjectID()
	settingRepo := new(MockSettingRepository)
	settingRepo.On("Set", mock.Anything, models.SettingCommissionRate, "0.2", &adminID).Return(nil)

	provider := NewSettingRateProvider(settingRepo, decimal.RequireFromString("0.175"), newTestLogger())
	feeService := NewFeeService(provider, settingRepo, 0, 0)

	err := feeService.SetRate(context.Background(), "0.20", adminID)

	assert.NoError(t, err)
	settingRepo.AssertExpectations(t)
}

func TestSetRate_RejectsOutOfRangeValues(t *testing.T) {
	feeService, settingRepo := newFeeServiceWithRate(t, "0.175", 0, 0)

	for _, rate := range []string{"-0.1", "1.1", "abc", ""} {
		err := feeService.SetRate(context.Background(), rate, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrInvalidRate, "rate %q should be rejected", rate)
	}

	settingRepo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
