package routes

import (
	"colivery/internal/handlers"
	"colivery/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupWalletRoutes sets up the account holder's wallet routes
func SetupWalletRoutes(r *gin.RouterGroup, walletHandler *handlers.WalletHandler, jwtSecret string) {
	wallet := r.Group("/wallet")
	wallet.Use(middleware.AuthRequired(jwtSecret))
	{
		wallet.GET("", walletHandler.GetWallet)
		wallet.GET("/balance", walletHandler.GetBalance)
		wallet.GET("/transactions", walletHandler.GetTransactionHistory)
		wallet.GET("/transactions/:id", walletHandler.GetTransaction)
		// Only couriers cash out; customer wallets spend in-platform.
		wallet.POST("/withdrawals", middleware.CourierRequired(), walletHandler.RequestWithdrawal)
	}
}
