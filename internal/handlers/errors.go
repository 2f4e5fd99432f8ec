package handlers

import (
	"errors"
	"net/http"

	"colivery/internal/models"
	"colivery/internal/services"
	"colivery/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps domain errors to stable error codes so clients
// can branch on code instead of parsing messages.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		utils.ErrorResponse(c, http.StatusBadRequest, utils.CodeInvalidAmount, "Amount must be a positive integer above the allowed minimum")
	case errors.Is(err, services.ErrInsufficientBalance):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, utils.CodeInsufficientBalance, "Wallet balance is insufficient for this operation")
	case errors.Is(err, services.ErrAccountSuspended):
		utils.ErrorResponse(c, http.StatusForbidden, utils.CodeAccountSuspended, "Account is suspended")
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "Resource not found")
	case errors.Is(err, services.ErrAlreadyProcessed):
		utils.ErrorResponse(c, http.StatusConflict, utils.CodeAlreadyProcessed, "Withdrawal has already been processed")
	case errors.Is(err, services.ErrInvalidRate):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_RATE", "Commission rate must be a decimal between 0 and 1")
	case errors.Is(err, models.ErrInvalidMetadata):
		utils.BadRequestResponse(c, "Transaction metadata does not match its declared kind")
	default:
		utils.InternalServerErrorResponse(c)
	}
}
