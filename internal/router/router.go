// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/assistant"
	"github.com/bizzyhq/bizzy-backend/internal/config"
	"github.com/bizzyhq/bizzy-backend/internal/handlers"
	"github.com/bizzyhq/bizzy-backend/internal/middleware"
	"github.com/bizzyhq/bizzy-backend/internal/services"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	gateway := services.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret)
	completer := assistant.NewOpenAICompleter(cfg.Assistant.APIKey, cfg.Assistant.BaseURL, cfg.Assistant.Model)
	return InitializeWith(db, cfg, gateway, completer)
}

// InitializeWith wires the router with injected gateway and completer,
// which is what integration tests use.
func InitializeWith(db *gorm.DB, cfg *config.Config, gateway services.Gateway, completer assistant.Completer) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db)
	ledgerService := services.NewLedgerService(db, productService)
	reportService := services.NewReportService(db)
	paymentService := services.NewPaymentService(db, cfg, gateway, productService)
	chatService := services.NewChatService(db)

	executor := assistant.NewExecutor(productService, ledgerService, reportService, paymentService)
	runner := assistant.NewRunner(completer, executor, chatService, cfg.Assistant.MaxSteps)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService, storageService)
	reportHandler := handlers.NewReportHandler(reportService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	chatHandler := handlers.NewChatHandler(chatService)
	assistantHandler := handlers.NewAssistantHandler(runner, executor)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	var origins []string
	if cfg.Environment == "production" && cfg.Frontend.BaseURL != "" {
		origins = []string{cfg.Frontend.BaseURL}
	}
	r.Use(middleware.CORS(origins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
			auth.PUT("/profile", middleware.AuthRequired(), authHandler.UpdateProfile)
		}

		// Product catalog routes
		products := v1.Group("/products")
		products.Use(middleware.AuthRequired())
		{
			products.POST("", productHandler.CreateProduct)
			products.GET("", productHandler.ListProducts)
			products.GET("/low-stock", productHandler.ListLowStock)
			products.GET("/:id", productHandler.GetProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
			products.POST("/:id/stock", productHandler.AdjustStock)
			products.GET("/:id/movements", productHandler.ListMovements)
		}

		// Ledger routes
		transactions := v1.Group("/transactions")
		transactions.Use(middleware.AuthRequired())
		{
			transactions.POST("", transactionHandler.RecordTransaction)
			transactions.GET("", transactionHandler.ListTransactions)
			transactions.GET("/:id", transactionHandler.GetTransaction)
			transactions.POST("/:id/receipt", middleware.UploadRateLimit(), transactionHandler.AttachReceipt)
		}

		// Report routes
		reports := v1.Group("/reports")
		reports.Use(middleware.AuthRequired())
		{
			reports.GET("/summary", reportHandler.Summary)
			reports.GET("/compare", reportHandler.Compare)
			reports.GET("/revenue", reportHandler.Revenue)
			reports.GET("/products", reportHandler.ProductRevenue)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/links", paymentHandler.CreatePaymentLink)
			payments.GET("/orders", paymentHandler.ListPaymentOrders)
			payments.GET("/orders/:orderID", paymentHandler.GetPaymentOrder)
		}

		// Gateway webhooks carry their own signature, no JWT
		v1.POST("/webhooks/stripe", paymentHandler.GatewayWebhook)

		// Chat transcript routes
		chats := v1.Group("/chats")
		chats.Use(middleware.AuthRequired())
		{
			chats.POST("", chatHandler.SaveSession)
			chats.GET("", chatHandler.ListSessions)
			chats.GET("/:id", chatHandler.GetSession)
			chats.DELETE("/:id", chatHandler.DeleteSession)
		}

		// Assistant routes
		assistantRoutes := v1.Group("/assistant")
		assistantRoutes.Use(middleware.AuthRequired(), middleware.AssistantRateLimit())
		{
			assistantRoutes.POST("/chat", assistantHandler.Chat)
			assistantRoutes.GET("/tools", assistantHandler.ListTools)
			assistantRoutes.POST("/tools/execute", assistantHandler.ExecuteTool)
		}
	}

	return r
}
