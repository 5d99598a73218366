package api

import (
	"github.com/flexprice/ticketing/internal/api/cron"
	v1 "github.com/flexprice/ticketing/internal/api/v1"
	"github.com/flexprice/ticketing/internal/config"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/metrics"
	"github.com/flexprice/ticketing/internal/rest/middleware"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Billing      *v1.BillingHandler
	Subscription *v1.SubscriptionHandler
	CronSweep    *cron.SweepHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, m *metrics.Metrics) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.MetricsMiddleware(m),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// v1 routes are tenant scoped
	v1Group := router.Group("/v1")
	v1Group.Use(middleware.TenantMiddleware, middleware.SentryScopeMiddleware)
	registerV1Routes(v1Group, handlers)

	// cron routes sweep every tenant
	cronGroup := router.Group("/cron")
	cronGroup.Use(middleware.CronAuthMiddleware(cfg, logger), middleware.SentryScopeMiddleware)
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	billing := router.Group("/billing")
	{
		billing.POST("/payment-date", handlers.Billing.CalculatePaymentDate)
		billing.POST("/service-period", handlers.Billing.CalculateServicePeriod)
		billing.POST("/service-period/next", handlers.Billing.NextServicePeriod)
		billing.POST("/service-period/contains", handlers.Billing.ServicePeriodContains)
		billing.POST("/proportional-ticket/preview", handlers.Billing.PreviewProportionalTicket)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.GET("/:id/payment-date", handlers.Subscription.PreviewPaymentDate)
		subscriptions.GET("/:id/status", handlers.Subscription.DeriveStatus)
		subscriptions.POST("/:id/proportional-ticket", handlers.Subscription.GenerateProportionalTicket)
		subscriptions.GET("/:id/tickets", handlers.Subscription.ListTickets)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	router.POST("/subscriptions/payment-dates", handlers.CronSweep.RefreshPaymentDates)
	router.POST("/tickets/proportional", handlers.CronSweep.BackfillProportionalTickets)
}
