package handlers

import (
	"colivery/internal/services"
	"colivery/internal/utils"
	"colivery/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletHandler exposes the account holder's view of their own wallet.
type WalletHandler struct {
	walletService     services.WalletService
	withdrawalService services.WithdrawalService
}

func NewWalletHandler(walletService services.WalletService, withdrawalService services.WithdrawalService) *WalletHandler {
	return &WalletHandler{
		walletService:     walletService,
		withdrawalService: withdrawalService,
	}
}

// GetWallet returns the caller's wallet, creating it on first access
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wallet, err := h.walletService.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Wallet retrieved successfully", wallet)
}

// GetBalance returns just the spendable balance, for polling clients that
// do not need the full wallet document
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.walletService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Balance retrieved successfully", gin.H{
		"balance":  balance,
		"currency": utils.BaseCurrency,
	})
}

// GetTransactionHistory returns the caller's ledger entries, newest first
func (h *WalletHandler) GetTransactionHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.walletService.GetTransactionHistory(c.Request.Context(), userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	meta := utils.CreatePaginationMeta(params, total)
	utils.SuccessResponseWithMeta(c, "Transactions retrieved successfully", transactions, &utils.Meta{Pagination: meta})
}

// GetTransaction returns a single ledger entry owned by the caller
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	transactionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid transaction ID")
		return
	}

	transaction, err := h.walletService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if transaction.UserID != userID {
		utils.NotFoundResponse(c, "Transaction not found")
		return
	}

	utils.SuccessResponse(c, "Transaction retrieved successfully", transaction)
}

// RequestWithdrawal places a cashout request and holds the funds
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request validators.WithdrawalCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	transaction, err := h.withdrawalService.RequestWithdrawal(c.Request.Context(), userID, request.Amount, request.Destination)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Withdrawal requested successfully", transaction)
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}

	userID, ok := value.(primitive.ObjectID)
	if !ok {
		utils.BadRequestResponse(c, "Invalid user ID")
		return primitive.NilObjectID, false
	}

	return userID, true
}

func respondValidationErrors(c *gin.Context, errs validators.ValidationErrors) {
	details := make(map[string]string, len(errs))
	for _, e := range errs {
		details[e.Field] = e.Message
	}
	utils.ValidationErrorResponse(c, details)
}
