package handler

import (
	"booking-finance-engine/internal/adapter/http/middleware"
	"booking-finance-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	RateSvc        ports.RateService
	PricingSvc     ports.PricingService
	LedgerSvc      ports.LedgerService
	ReportingSvc   ports.ReportingService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies the configured store and cache)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API v1 routes
	v1 := r.Group("/api/v1")

	quoteHandler := NewQuoteHandler(deps.RateSvc, deps.PricingSvc)
	v1.POST("/quotes", quoteHandler.Quote)

	paymentHandler := NewPaymentHandler(deps.LedgerSvc)
	payments := v1.Group("/payments")
	{
		payments.POST("", paymentHandler.Initiate)
		payments.POST("/:id/confirm", paymentHandler.Confirm)
		payments.GET("/:id", paymentHandler.Get)
	}

	reportHandler := NewReportHandler(deps.ReportingSvc)
	v1.GET("/transactions", reportHandler.ListTransactions)
	v1.GET("/stats", reportHandler.GetStats)

	return r
}
