package services

import (
	"context"
	"errors"

	"colivery/internal/models"
	"colivery/internal/repositories/interfaces"
	"colivery/pkg/logger"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeeBreakdown is the commission split computed at settlement time. It is
// persisted into transaction metadata as-is; later rate changes never touch
// historical records.
type FeeBreakdown struct {
	GrossAmount int64           `json:"gross_amount"`
	FeeAmount   int64           `json:"fee_amount"`
	NetAmount   int64           `json:"net_amount"`
	FeeRate     decimal.Decimal `json:"fee_rate"`
}

// RateProvider yields the commission rate in effect right now. Reads go to
// storage on every call so admin changes apply without restart; a provider
// must always return a usable rate, falling back to its default when the
// stored value is missing or unreadable.
type RateProvider interface {
	GetRate(ctx context.Context) decimal.Decimal
}

type settingRateProvider struct {
	settingRepo interfaces.SettingRepository
	defaultRate decimal.Decimal
	logger      *logger.Logger
}

func NewSettingRateProvider(settingRepo interfaces.SettingRepository, defaultRate decimal.Decimal, log *logger.Logger) RateProvider {
	return &settingRateProvider{
		settingRepo: settingRepo,
		defaultRate: defaultRate,
		logger:      log,
	}
}

func (p *settingRateProvider) GetRate(ctx context.Context) decimal.Decimal {
	setting, err := p.settingRepo.Get(ctx, models.SettingCommissionRate)
	if err != nil {
		if !errors.Is(err, interfaces.ErrSettingNotFound) {
			p.logger.WithError(err).Warn("Failed to read commission rate, using default")
		}
		return p.defaultRate
	}

	rate, err := decimal.NewFromString(setting.Value)
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		p.logger.WithField("value", setting.Value).Warn("Stored commission rate is invalid, using default")
		return p.defaultRate
	}

	return rate
}

// FeeService computes the platform's cut of gross delivery payments.
type FeeService interface {
	GetRate(ctx context.Context) decimal.Decimal
	CalculateFee(ctx context.Context, grossAmount int64) (*FeeBreakdown, error)
	SetRate(ctx context.Context, rate string, updatedBy primitive.ObjectID) error
}

type feeService struct {
	rateProvider RateProvider
	settingRepo  interfaces.SettingRepository
	minFee       int64
	maxFee       int64 // 0 means unbounded
}

func NewFeeService(rateProvider RateProvider, settingRepo interfaces.SettingRepository, minFee, maxFee int64) FeeService {
	return &feeService{
		rateProvider: rateProvider,
		settingRepo:  settingRepo,
		minFee:       minFee,
		maxFee:       maxFee,
	}
}

func (s *feeService) GetRate(ctx context.Context) decimal.Decimal {
	return s.rateProvider.GetRate(ctx)
}

// CalculateFee rounds the fee down so the platform never takes more than
// the stated rate, then clamps it into the configured fee range.
func (s *feeService) CalculateFee(ctx context.Context, grossAmount int64) (*FeeBreakdown, error) {
	if grossAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	rate := s.rateProvider.GetRate(ctx)

	feeAmount := decimal.NewFromInt(grossAmount).Mul(rate).Floor().IntPart()
	if feeAmount < s.minFee {
		feeAmount = s.minFee
	}
	if s.maxFee > 0 && feeAmount > s.maxFee {
		feeAmount = s.maxFee
	}
	if feeAmount > grossAmount {
		feeAmount = grossAmount
	}

	return &FeeBreakdown{
		GrossAmount: grossAmount,
		FeeAmount:   feeAmount,
		NetAmount:   grossAmount - feeAmount,
		FeeRate:     rate,
	}, nil
}

func (s *feeService) SetRate(ctx context.Context, rate string, updatedBy primitive.ObjectID) error {
	parsed, err := decimal.NewFromString(rate)
	if err != nil || parsed.IsNegative() || parsed.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidRate
	}

	return s.settingRepo.Set(ctx, models.SettingCommissionRate, parsed.String(), &updatedBy)
}
