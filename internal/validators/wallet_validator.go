package validators

// Amounts are integer minor units of the wallet currency. XOF has no
// subunit, so an amount of 1000 is exactly 1000 francs.

type WithdrawalCreateRequest struct {
	Amount      int64  `json:"amount" validate:"required,min=1"`
	Destination string `json:"destination" validate:"required,min=3,max=255"`
}

type WithdrawalRejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type AdminCreditRequest struct {
	Amount      int64  `json:"amount" validate:"required,min=1"`
	Category    string `json:"category" validate:"required,oneof=bonus adjustment"`
	Description string `json:"description" validate:"required,min=3,max=255"`
	Reason      string `json:"reason" validate:"omitempty,max=500"`
}

type CommissionRateUpdateRequest struct {
	Rate string `json:"rate" validate:"required,commission_rate"`
}

type SettlementCreateRequest struct {
	PayeeID     string `json:"payee_id" validate:"required,object_id"`
	GrossAmount int64  `json:"gross_amount" validate:"required,min=1"`
	DeliveryID  string `json:"delivery_id" validate:"required,object_id"`
}
