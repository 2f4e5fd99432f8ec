package handlers

import (
	"colivery/internal/models"
	"colivery/internal/services"
	"colivery/internal/utils"
	"colivery/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler exposes back-office operations: manual credits, withdrawal
// review, delivery settlement, commission-rate management and balance
// reconciliation.
type AdminHandler struct {
	walletService     services.WalletService
	withdrawalService services.WithdrawalService
	settlementService services.SettlementService
	feeService        services.FeeService
	auditService      services.AuditService
	accountStatus     services.AccountStatusChecker
}

func NewAdminHandler(
	walletService services.WalletService,
	withdrawalService services.WithdrawalService,
	settlementService services.SettlementService,
	feeService services.FeeService,
	auditService services.AuditService,
	accountStatus services.AccountStatusChecker,
) *AdminHandler {
	return &AdminHandler{
		walletService:     walletService,
		withdrawalService: withdrawalService,
		settlementService: settlementService,
		feeService:        feeService,
		auditService:      auditService,
		accountStatus:     accountStatus,
	}
}

// CreditWallet credits a user's wallet with a bonus or manual adjustment
func (h *AdminHandler) CreditWallet(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("user_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	var request validators.AdminCreditRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	// Suspended accounts cannot receive manual credits.
	if err := h.accountStatus.EnsureActive(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err)
		return
	}

	category := models.TransactionCategory(request.Category)
	metadata := creditMetadata(category, adminID, request.Reason)

	result, err := h.walletService.Credit(c.Request.Context(), userID, request.Amount, request.Description, category, nil, metadata)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.auditService.RecordAdminAction(c.Request.Context(), adminID, models.AuditActionCreditWallet, "wallet", userID.Hex(), map[string]interface{}{
		"amount":         request.Amount,
		"category":       request.Category,
		"transaction_id": result.Transaction.ID.Hex(),
	})

	utils.CreatedResponse(c, "Wallet credited successfully", result)
}

// ListPendingWithdrawals returns withdrawal requests awaiting review
func (h *AdminHandler) ListPendingWithdrawals(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	withdrawals, total, err := h.withdrawalService.ListPendingWithdrawals(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	meta := utils.CreatePaginationMeta(params, total)
	utils.SuccessResponseWithMeta(c, "Pending withdrawals retrieved successfully", withdrawals, &utils.Meta{Pagination: meta})
}

// GetWithdrawal returns a withdrawal together with any entries that
// reference it, such as the refund credit after a rejection
func (h *AdminHandler) GetWithdrawal(c *gin.Context) {
	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid withdrawal ID")
		return
	}

	detail, err := h.withdrawalService.GetWithdrawal(c.Request.Context(), withdrawalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Withdrawal retrieved successfully", detail)
}

// ApproveWithdrawal marks a pending withdrawal as paid out
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid withdrawal ID")
		return
	}

	transaction, err := h.withdrawalService.ApproveWithdrawal(c.Request.Context(), withdrawalID, adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Withdrawal approved successfully", transaction)
}

// RejectWithdrawal fails a pending withdrawal and refunds the hold
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid withdrawal ID")
		return
	}

	var request validators.WithdrawalRejectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	transaction, err := h.withdrawalService.RejectWithdrawal(c.Request.Context(), withdrawalID, adminID, request.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Withdrawal rejected successfully", transaction)
}

// SettleDelivery pays out a completed delivery to the courier
func (h *AdminHandler) SettleDelivery(c *gin.Context) {
	var request validators.SettlementCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	payeeID, err := primitive.ObjectIDFromHex(request.PayeeID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payee ID")
		return
	}
	deliveryID, err := primitive.ObjectIDFromHex(request.DeliveryID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid delivery ID")
		return
	}

	result, err := h.settlementService.SettleDeliveryPayment(c.Request.Context(), payeeID, request.GrossAmount, deliveryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Delivery settled successfully", result)
}

// GetCommissionRate returns the commission rate currently applied
func (h *AdminHandler) GetCommissionRate(c *gin.Context) {
	rate := h.feeService.GetRate(c.Request.Context())
	utils.SuccessResponse(c, "Commission rate retrieved successfully", gin.H{"rate": rate.String()})
}

// UpdateCommissionRate changes the commission rate for future settlements
func (h *AdminHandler) UpdateCommissionRate(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request validators.CommissionRateUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	if err := h.feeService.SetRate(c.Request.Context(), request.Rate, adminID); err != nil {
		respondServiceError(c, err)
		return
	}

	h.auditService.RecordAdminAction(c.Request.Context(), adminID, models.AuditActionUpdateCommission, "platform_setting", models.SettingCommissionRate, map[string]interface{}{
		"rate": request.Rate,
	})

	utils.SuccessResponse(c, "Commission rate updated successfully", gin.H{"rate": request.Rate})
}

// ListAuditLogs returns the admin action trail, filterable by resource or
// by the admin who acted
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	if adminHex := c.Query("admin_id"); adminHex != "" {
		adminID, err := primitive.ObjectIDFromHex(adminHex)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid admin ID")
			return
		}
		logs, total, err := h.auditService.ListByAdmin(c.Request.Context(), adminID, params)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		meta := utils.CreatePaginationMeta(params, total)
		utils.SuccessResponseWithMeta(c, "Audit logs retrieved successfully", logs, &utils.Meta{Pagination: meta})
		return
	}

	resource := c.Query("resource")
	if resource == "" {
		utils.BadRequestResponse(c, "Either admin_id or resource is required")
		return
	}

	logs, total, err := h.auditService.ListByResource(c.Request.Context(), resource, c.Query("resource_id"), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	meta := utils.CreatePaginationMeta(params, total)
	utils.SuccessResponseWithMeta(c, "Audit logs retrieved successfully", logs, &utils.Meta{Pagination: meta})
}

// ReconcileWallet compares a wallet's stored balance with its ledger sum
func (h *AdminHandler) ReconcileWallet(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("user_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	reconciliation, err := h.walletService.ReconcileBalance(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Wallet reconciled successfully", reconciliation)
}

func creditMetadata(category models.TransactionCategory, adminID primitive.ObjectID, reason string) *models.TransactionMetadata {
	switch category {
	case models.CategoryBonus:
		return &models.TransactionMetadata{
			Kind:  models.MetadataKindBonus,
			Bonus: &models.BonusMetadata{GrantedBy: adminID, Reason: reason},
		}
	default:
		return &models.TransactionMetadata{
			Kind:  models.MetadataKindAudit,
			Audit: &models.AuditMetadata{Source: "admin_adjustment", Details: reason},
		}
	}
}
