package main

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pverdier/go-gestion-locative/billing"
	"github.com/pverdier/go-gestion-locative/receipt"
	"github.com/pverdier/go-gestion-locative/shared/config"
	"github.com/pverdier/go-gestion-locative/shared/middleware"
	"github.com/pverdier/go-gestion-locative/shared/utils"
)

func setupRouter(db *gorm.DB, cfg *config.Config, authMiddleware *middleware.AuthMiddleware, generator *billing.Generator, events *billing.Producer, archiver *receipt.Archiver) *gin.Engine {
	router := gin.Default()

	// A nil *Producer must stay a nil interface inside the handlers.
	var billEvents billEventPublisher
	if events != nil {
		billEvents = events
	}

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Back office API is healthy", nil)
	})

	auth := router.Group("/auth")
	{
		auth.POST("/signup", handleSignup(db))
		auth.POST("/login", handleLogin(db, authMiddleware))
		auth.POST("/logout", handleLogout())
		auth.POST("/forgot-password", handleForgotPassword(db))
		auth.POST("/reset-password", handleResetPassword(db))
	}

	api := router.Group("/")
	api.Use(authMiddleware.RequireAuth())
	{
		users := api.Group("/users")
		{
			users.GET("/me", handleGetProfile(db))
			users.PUT("/me", handleUpdateProfile(db))
		}

		properties := api.Group("/properties")
		{
			properties.POST("/", handleCreateProperty(db))
			properties.GET("/", handleGetProperties(db))
			properties.GET("/:id", handleGetProperty(db))
			properties.PUT("/:id", handleUpdateProperty(db))
			properties.DELETE("/:id", handleDeleteProperty(db))
		}

		units := api.Group("/units")
		{
			units.POST("/", handleCreateUnit(db))
			units.GET("/", handleGetUnits(db))
			units.GET("/:id", handleGetUnit(db))
			units.PUT("/:id", handleUpdateUnit(db))
			units.DELETE("/:id", handleDeleteUnit(db))
			units.GET("/:id/current-tenant", handleGetCurrentTenant(db))
		}

		tenants := api.Group("/tenants")
		{
			tenants.POST("/", handleCreateTenant(db))
			tenants.GET("/", handleGetTenants(db))
			tenants.GET("/:id", handleGetTenant(db))
			tenants.PUT("/:id", handleUpdateTenant(db))
			tenants.DELETE("/:id", handleMoveOutTenant(db))
			tenants.GET("/:id/bills", handleGetTenantBills(db))
		}

		bills := api.Group("/bills")
		{
			bills.GET("/:id", handleGetBill(db))
			bills.PUT("/:id/pay", handleMarkBillPaid(db, billEvents))
			bills.POST("/generate", handleGenerateBills(generator))
			bills.GET("/:id/receipt", handleGetReceipt(db, archiver))
		}

		api.GET("/dashboard/stats", handleGetDashboardStats(db, cfg.DashboardCacheTTL))
	}

	return router
}
