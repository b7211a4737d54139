package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/rentstack/rentstack/internal/api/v1"
	"github.com/rentstack/rentstack/internal/rest/middleware"
)

type Handlers struct {
	Business *v1.BusinessHandler
	Billing  *v1.BillingHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	businesses := router.Group("/businesses")
	{
		businesses.GET("", handlers.Business.ListBusinesses)
		businesses.GET("/names", handlers.Business.SearchNames)
		businesses.GET("/:id", handlers.Business.GetBusiness)
		businesses.GET("/:id/paid-employees-count", handlers.Business.PaidEmployeesCount)

		subscription := businesses.Group("/:id/subscription")
		{
			subscription.POST("/tier", handlers.Billing.ChangeTier)
			subscription.POST("/billing-interval", handlers.Billing.ChangeBillingInterval)
			subscription.POST("/user-count", handlers.Billing.ChangeUserCount)
			subscription.POST("/user-count/preview", handlers.Billing.PreviewUserCountChange)
			subscription.POST("/storefront", handlers.Billing.SetStorefront)
			subscription.POST("/downgrade-request", handlers.Billing.RequestDowngrade)
			subscription.POST("/cancellation-request", handlers.Billing.RequestCancellation)
		}

		paymentMethods := businesses.Group("/:id/payment-methods")
		{
			paymentMethods.POST("/card", handlers.Billing.SaveCreditCard)
			paymentMethods.POST("/bank-account", handlers.Billing.SaveBankAccount)
		}

		businesses.POST("/:id/reactivate", handlers.Billing.Reactivate)
	}
}
