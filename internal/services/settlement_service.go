package services

import (
	"context"
	"fmt"

	"colivery/internal/models"
	"colivery/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettlementService pays out a completed delivery: the platform keeps its
// commission and the courier's wallet receives the remainder in a single
// credit, with the full split recorded on the entry for audit.
type SettlementService interface {
	SettleDeliveryPayment(ctx context.Context, payeeID primitive.ObjectID, grossAmount int64, deliveryID primitive.ObjectID) (*LedgerResult, error)
}

type settlementService struct {
	walletService WalletService
	feeService    FeeService
	logger        *logger.Logger
}

func NewSettlementService(walletService WalletService, feeService FeeService, log *logger.Logger) SettlementService {
	return &settlementService{
		walletService: walletService,
		feeService:    feeService,
		logger:        log,
	}
}

func (s *settlementService) SettleDeliveryPayment(ctx context.Context, payeeID primitive.ObjectID, grossAmount int64, deliveryID primitive.ObjectID) (*LedgerResult, error) {
	breakdown, err := s.feeService.CalculateFee(ctx, grossAmount)
	if err != nil {
		return nil, err
	}

	metadata := &models.TransactionMetadata{
		Kind: models.MetadataKindDeliveryIncome,
		DeliveryIncome: &models.DeliveryIncomeMetadata{
			GrossAmount: breakdown.GrossAmount,
			FeeAmount:   breakdown.FeeAmount,
			NetAmount:   breakdown.NetAmount,
			FeeRate:     breakdown.FeeRate.String(),
			DeliveryID:  deliveryID,
		},
	}

	description := fmt.Sprintf("Delivery earnings (delivery %s)", deliveryID.Hex())
	result, err := s.walletService.Credit(ctx, payeeID, breakdown.NetAmount, description, models.CategoryDeliveryIncome, &deliveryID, metadata)
	if err != nil {
		return nil, err
	}

	s.logger.LogLedgerEvent(result.Transaction.ID, "delivery_settled", breakdown.NetAmount, result.Transaction.Currency, map[string]interface{}{
		"payee_id":     payeeID.Hex(),
		"delivery_id":  deliveryID.Hex(),
		"gross_amount": breakdown.GrossAmount,
		"fee_amount":   breakdown.FeeAmount,
	})

	return result, nil
}
