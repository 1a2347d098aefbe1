package routes

import (
	"table-order-api/handlers"
	"table-order-api/middleware"
	"table-order-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, scanLimiter *middleware.RateLimiter) {
	r.GET("/health", h.Health)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/login", h.Login)
		public.POST("/auth/logout", h.Logout)

		// Menu (no auth needed)
		public.GET("/products", h.ListProducts)
		public.GET("/products/:id", h.GetProduct)

		// QR scan opens a table session; diners order with its token
		public.GET("/tables/t/:token", scanLimiter.Limit(), h.ScanTable)
		public.POST("/orders", h.CreateOrder)

		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Staff routes ───────────────────────────────────────────────
	staff := r.Group("/api")
	staff.Use(middleware.AuthRequired(h.JWTSecret), middleware.RoleRequired(models.RoleStaff, models.RoleAdmin))
	{
		staff.GET("/auth/verify", h.Verify)

		staff.GET("/orders", h.ListOrders)
		staff.GET("/orders/:id", h.GetOrder)
		staff.PATCH("/orders/:id/status", h.UpdateOrderStatus)

		staff.PATCH("/products/:id/availability", h.SetProductAvailability)

		staff.GET("/tables", h.ListTables)
		staff.GET("/tables/:id/qr.png", h.TableQRCode)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api")
	admin.Use(middleware.AuthRequired(h.JWTSecret), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.POST("/tables", h.CreateTable)
		admin.GET("/users", h.ListUsers)
	}
}
