package main

import (
	"database/sql"
	"time"

	"creator-platform/internal/httpapi"
	"creator-platform/internal/notify"
	"creator-platform/internal/rbac"
	"creator-platform/internal/wallet"
	"creator-platform/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, db *sql.DB, h httpapi.Handlers, authMW gin.HandlerFunc, ws *notify.Handler) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Token issuance.
	// NOTE: placeholder credential handling; see Handlers.Login.
	r.POST("/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		// Ring socket: creators hold this open to receive incoming-request
		// pushes.
		v1.GET("/notifications/ring", rbac.RequireAnyRole(rbac.RoleCreator), ws.Serve)

		// CALL REQUEST routes
		sessions := v1.Group("/sessions")
		{
			// Fans open requests; creators decide them. A fan cannot ring a
			// creator for more tokens than their wallet holds.
			sessions.POST("/request",
				rbac.RequireAnyRole(rbac.RoleFan),
				wallet.RequireSufficientBalance(h.Wallet),
				h.CreateRequest)

			creatorOnly := rbac.RequireAnyRole(rbac.RoleCreator)
			sessions.GET("/requests", creatorOnly, h.ListRequests)
			sessions.POST("/requests/:id/accept", creatorOnly, h.AcceptRequest)
			sessions.POST("/requests/:id/decline", creatorOnly, h.DeclineRequest)
			sessions.POST("/requests/:id/cancel", creatorOnly, h.CancelRequest)
		}

		// SESSION / BILLING routes
		users := v1.Group("/users")
		{
			users.GET("/session/:id", h.GetSession)
			users.GET("/session/:id/billing", rbac.RequireAnyRole(rbac.RoleFan), h.GetSessionBilling)
			users.POST("/session/:id/billing/confirm", rbac.RequireAnyRole(rbac.RoleFan), h.ConfirmSessionBilling)
		}

		// WALLET routes
		wallets := v1.Group("/wallets")
		{
			wallets.GET("/:wallet_id/balance", h.GetWalletBalance)
		}

		// REPORTING routes (creator dashboards)
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleCreator))
		{
			reports.GET("/requests", h.RequestsSummary)
			reports.GET("/earnings", h.EarningsSummary)
		}

		// ADMIN routes
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			admin.GET("/ping", func(c *gin.Context) {
				c.JSON(200, gin.H{"status": "ok"})
			})
			admin.POST("/wallets/manual-credit", h.AdminManualCredit)
		}
	}
}
