package routes

import (
	"colivery/internal/handlers"
	"colivery/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up the back-office routes for wallet operations
func SetupAdminRoutes(r *gin.RouterGroup, adminHandler *handlers.AdminHandler, jwtSecret string) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/wallets/:user_id/credit", adminHandler.CreditWallet)
		admin.GET("/wallets/:user_id/reconcile", adminHandler.ReconcileWallet)

		admin.GET("/withdrawals/pending", adminHandler.ListPendingWithdrawals)
		admin.GET("/withdrawals/:id", adminHandler.GetWithdrawal)
		admin.PUT("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
		admin.PUT("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)

		admin.GET("/audit-logs", adminHandler.ListAuditLogs)

		admin.POST("/settlements", adminHandler.SettleDelivery)

		admin.GET("/settings/commission-rate", adminHandler.GetCommissionRate)
		admin.PUT("/settings/commission-rate", adminHandler.UpdateCommissionRate)
	}
}
