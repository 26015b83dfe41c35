// internal/app/router.go
package app

import (
	auditHandler "checkout-service/internal/handlers/audit"
	authHandler "checkout-service/internal/handlers/auth"
	checkoutHandler "checkout-service/internal/handlers/checkout"
	couponHandler "checkout-service/internal/handlers/coupon"
	customerHandler "checkout-service/internal/handlers/customer"
	productHandler "checkout-service/internal/handlers/product"
	reportHandler "checkout-service/internal/handlers/report"
	saleHandler "checkout-service/internal/handlers/sale"
	settingsHandler "checkout-service/internal/handlers/settings"
	sweepHandler "checkout-service/internal/handlers/sweep"
	webhookHandler "checkout-service/internal/handlers/webhook"
	wsHandler "checkout-service/internal/handlers/ws"
	"checkout-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	CheckoutHandler *checkoutHandler.CheckoutHandler
	WebhookHandler  *webhookHandler.WebhookHandler
	SweepHandler    *sweepHandler.SweepHandler
	SaleHandler     *saleHandler.SaleHandler
	CustomerHandler *customerHandler.CustomerHandler
	ProductHandler  *productHandler.ProductHandler
	CouponHandler   *couponHandler.CouponHandler
	ReportHandler   *reportHandler.ReportHandler
	AuditHandler    *auditHandler.AuditHandler
	SettingsHandler *settingsHandler.SettingsHandler
	WSHandler       *wsHandler.WSHandler
	AuthMiddleware  *middleware.AuthMiddleware
	CronSecret      string
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Checkout ====================
	checkout := api.Group("/checkout")
	{
		checkout.POST("", h.CheckoutHandler.CreateCheckout)
		checkout.POST("/upsell", h.CheckoutHandler.AcceptUpsell)
	}

	// ==================== Gateway Webhook ====================
	api.POST("/webhooks/payment", h.WebhookHandler.PaymentCallback)

	// ==================== Scheduled Jobs ====================
	cron := api.Group("/cron")
	cron.Use(middleware.CronAuth(h.CronSecret))
	{
		cron.POST("/reverify-pending", h.SweepHandler.ReverifyPending)
		cron.POST("/send-reminders", h.SweepHandler.SendReminders)
		cron.POST("/dispatch-outbox", h.SweepHandler.DispatchOutbox)
	}

	// ==================== Auth ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Account Management (super admin) ====================
	accounts := api.Group("/accounts")
	accounts.Use(h.AuthMiddleware.SuperAdminOnly()...)
	{
		accounts.POST("", h.AuthHandler.CreateAccount)
		accounts.GET("", h.AuthHandler.ListAccounts)
		accounts.DELETE("/:id", h.AuthHandler.DeactivateAccount)
	}

	// ==================== Audit Trail (super admin) ====================
	auditGroup := api.Group("/audit")
	auditGroup.Use(h.AuthMiddleware.SuperAdminOnly()...)
	{
		auditGroup.GET("", h.AuditHandler.ListEntries)
	}

	// ==================== Sales ====================
	sales := api.Group("/sales")
	sales.Use(h.AuthMiddleware.Auth())
	{
		sales.GET("", h.SaleHandler.ListSales)
		sales.GET("/:id", h.SaleHandler.GetSale)
	}

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.Auth())
	{
		customers.GET("", h.CustomerHandler.ListCustomers)
		customers.GET("/by-email", h.CustomerHandler.GetCustomer)
		customers.GET("/stats", h.CustomerHandler.GetStats)
	}

	// ==================== Products ====================
	products := api.Group("/products")
	products.Use(h.AuthMiddleware.Auth())
	{
		products.POST("", h.ProductHandler.CreateProduct)
		products.GET("", h.ProductHandler.ListProducts)
		products.GET("/:id", h.ProductHandler.GetProduct)
		products.PUT("/:id", h.ProductHandler.UpdateProduct)
		products.DELETE("/:id", h.ProductHandler.DeleteProduct)
	}

	// ==================== Coupons ====================
	coupons := api.Group("/coupons")
	coupons.Use(h.AuthMiddleware.Auth())
	{
		coupons.POST("", h.CouponHandler.CreateCoupon)
		coupons.GET("", h.CouponHandler.ListCoupons)
		coupons.PUT("/:id", h.CouponHandler.UpdateCoupon)
		coupons.DELETE("/:id", h.CouponHandler.DeleteCoupon)
	}

	// ==================== Reports ====================
	reports := api.Group("/reports")
	reports.Use(h.AuthMiddleware.Auth())
	{
		reports.GET("/summary", h.ReportHandler.GetSummary)
	}

	// ==================== Settings ====================
	settings := api.Group("/settings")
	settings.Use(h.AuthMiddleware.Auth())
	{
		settings.GET("", h.SettingsHandler.GetSettings)
		settings.PUT("", h.SettingsHandler.UpdateSettings)
	}

	// ==================== WebSocket ====================
	ws := r.Group("/ws")
	ws.Use(h.AuthMiddleware.Auth())
	{
		ws.GET("", h.WSHandler.Connect)
	}
}
