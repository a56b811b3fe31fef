// Package server assembles services, handlers and middleware into the HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "budgetwise/internal/docs" // Import swagger docs
	"budgetwise/internal/engine"
	"budgetwise/internal/handlers"
	"budgetwise/internal/logger"
	"budgetwise/internal/middleware"
	"budgetwise/internal/services"
)

// Options tunes the router. A nil Location means UTC.
type Options struct {
	Settings       engine.Settings
	Location       *time.Location
	AllowedOrigins []string
}

// Services bundles the business services behind the routes.
type Services struct {
	Category    services.CategoryServicer
	Transaction services.TransactionServicer
	Income      services.IncomeServicer
	Methodology services.MethodologyServicer
	Budget      services.BudgetServicer
	Alert       services.AlertServicer
	Audit       services.AuditServicer
}

// NewServices wires every service against db.
func NewServices(db *gorm.DB, opts Options) *Services {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db, opts.Settings, loc)
	return &Services{
		Category:    categoryService,
		Transaction: services.NewTransactionService(db, categoryService),
		Income:      services.NewIncomeService(db),
		Methodology: services.NewMethodologyService(db, budgetService, opts.Settings),
		Budget:      budgetService,
		Alert:       services.NewAlertService(db, budgetService, opts.Settings, loc),
		Audit:       services.NewAuditService(db),
	}
}

// NewRouter builds the Gin engine with every route mounted under /api/v1.
func NewRouter(db *gorm.DB, svc *Services, opts Options) *gin.Engine {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	categoryHandler := handlers.NewCategoryHandler(svc.Category, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction, svc.Audit, loc)
	incomeHandler := handlers.NewIncomeHandler(svc.Income, svc.Audit)
	methodologyHandler := handlers.NewMethodologyHandler(svc.Methodology, svc.Audit, loc)
	budgetHandler := handlers.NewBudgetHandler(svc.Budget, loc)
	alertHandler := handlers.NewAlertHandler(svc.Alert, svc.Audit, loc)
	auditHandler := handlers.NewAuditHandler(svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.NoRoute(middleware.NotFound())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", health(db))

	v1 := router.Group("/api/v1")

	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	incomes := v1.Group("/incomes")
	incomes.POST("", incomeHandler.CreateIncome)
	incomes.GET("", incomeHandler.GetIncomes)
	incomes.GET("/summary", incomeHandler.GetIncomeSummary)
	incomes.GET("/:id", incomeHandler.GetIncome)
	incomes.PUT("/:id", incomeHandler.UpdateIncome)
	incomes.DELETE("/:id", incomeHandler.DeleteIncome)

	budget := v1.Group("/budget")

	methodologies := budget.Group("/methodologies")
	methodologies.GET("", methodologyHandler.GetMethodologies)
	methodologies.POST("", methodologyHandler.CreateMethodology)
	methodologies.GET("/active", methodologyHandler.GetActiveMethodology)
	methodologies.GET("/recommendations", methodologyHandler.Recommend)
	methodologies.POST("/compare", methodologyHandler.Compare)
	methodologies.GET("/:id", methodologyHandler.GetMethodology)
	methodologies.PUT("/:id", methodologyHandler.UpdateMethodology)
	methodologies.DELETE("/:id", methodologyHandler.DeleteMethodology)
	methodologies.POST("/:id/activate", methodologyHandler.ActivateMethodology)
	methodologies.GET("/:id/calculate", methodologyHandler.Calculate)
	methodologies.POST("/:id/calculate", methodologyHandler.Calculate)
	methodologies.POST("/:id/apply", methodologyHandler.Apply)
	methodologies.GET("/:id/validate", methodologyHandler.ValidateMethodology)
	budget.POST("/allocate", methodologyHandler.Allocate)

	budget.GET("/progress", budgetHandler.GetProgress)
	budget.GET("/variance", budgetHandler.GetVariance)
	budget.GET("/patterns", budgetHandler.GetPatterns)
	budget.GET("/forecast", budgetHandler.GetForecast)
	budget.GET("/suggestions", budgetHandler.GetSuggestions)
	budget.GET("/trends", budgetHandler.GetTrends)
	budget.GET("/performance-score", budgetHandler.GetPerformanceScore)
	budget.GET("/transaction-impact/:id", budgetHandler.GetTransactionImpact)
	budget.POST("/effective", budgetHandler.GetEffectiveBudgets)

	alerts := v1.Group("/alerts")
	alerts.GET("", alertHandler.GetAlerts)
	alerts.POST("", alertHandler.CreateAlert)
	alerts.POST("/evaluate", alertHandler.EvaluateAlerts)
	alerts.POST("/anomalies/detect", alertHandler.DetectAnomaly)
	alerts.GET("/preferences", alertHandler.GetPreferences)
	alerts.PUT("/preferences", alertHandler.UpdatePreferences)
	alerts.POST("/:id/dismiss", alertHandler.DismissAlert)
	alerts.POST("/:id/snooze", alertHandler.SnoozeAlert)

	v1.GET("/audit-logs", auditHandler.GetAuditLogs)

	return router
}

// WithCORS wraps h with the CORS policy for the given origins.
func WithCORS(h http.Handler, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return c.Handler(h)
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logger.Get().Warnw("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
