package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/craftline/backend/internal/application/catalog"
	eventapp "github.com/craftline/backend/internal/application/event"
	gatepassapp "github.com/craftline/backend/internal/application/gatepass"
	inventoryapp "github.com/craftline/backend/internal/application/inventory"
	orderapp "github.com/craftline/backend/internal/application/order"
	paymentapp "github.com/craftline/backend/internal/application/payment"
	procurementapp "github.com/craftline/backend/internal/application/procurement"
	productionapp "github.com/craftline/backend/internal/application/production"
	"github.com/craftline/backend/internal/infrastructure/auth"
	"github.com/craftline/backend/internal/infrastructure/cache"
	"github.com/craftline/backend/internal/infrastructure/config"
	"github.com/craftline/backend/internal/infrastructure/event"
	"github.com/craftline/backend/internal/infrastructure/logger"
	paymentgw "github.com/craftline/backend/internal/infrastructure/payment"
	"github.com/craftline/backend/internal/infrastructure/persistence"
	"github.com/craftline/backend/internal/infrastructure/scheduler"
	"github.com/craftline/backend/internal/interfaces/http/handler"
	"github.com/craftline/backend/internal/interfaces/http/middleware"
	"github.com/craftline/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Craftline Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize transaction scopes, one per bounded context
	catalogScope := persistence.NewGormCatalogTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	orderScope := persistence.NewGormOrderTransactionScope(db.DB)
	paymentScope := persistence.NewGormPaymentTransactionScope(db.DB)
	procurementScope := persistence.NewGormProcurementTransactionScope(db.DB)
	productionScope := persistence.NewGormProductionTransactionScope(db.DB)
	gatePassScope := persistence.NewGormGatePassTransactionScope(db.DB)

	// Standalone repositories for background processing
	webhookRepo := persistence.NewGormWebhookEventRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize event serializer and register all domain event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Services publish through the outbox table; the outbox processor
	// delivers to in-process subscribers with retry and dead-lettering.
	storedPublisher := event.NewStoredEventPublisher(db.DB, eventSerializer)

	// Initialize event bus and subscribers
	eventBus := event.NewInMemoryEventBus(log)

	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Low stock -> procurement reorder signal
	lowStockHandler := procurementapp.NewLowStockAlertHandler(log)
	eventBus.Subscribe(event.NewIdempotentHandler(lowStockHandler, idempotencyStore, log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
		outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
		outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Initialize payment gateway adapter and webhook signature verifier
	gateway, err := paymentgw.NewRazorpayAdapter(&paymentgw.RazorpayConfig{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
	})
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}
	webhookVerifier, err := paymentgw.NewRazorpayWebhookVerifier(cfg.Razorpay.WebhookSecret)
	if err != nil {
		log.Fatal("Failed to initialize webhook verifier", zap.Error(err))
	}

	// Initialize application services
	productService := catalogapp.NewProductService(catalogScope, log)
	methodService := catalogapp.NewMethodService(catalogScope, log)
	stockService := inventoryapp.NewStockMovementService(inventoryScope, log)
	orderService := orderapp.NewOrderService(orderScope, log)
	paymentService := paymentapp.NewPaymentService(paymentScope, gateway, log)
	webhookIngestService := paymentapp.NewWebhookIngestService(webhookRepo, webhookVerifier, log)
	webhookProcessorService := paymentapp.NewWebhookProcessorService(paymentScope, webhookRepo, log)
	indentService := procurementapp.NewIndentService(procurementScope, log)
	purchaseOrderService := procurementapp.NewPurchaseOrderService(procurementScope, log)
	bomService := productionapp.NewBOMService(productionScope, log)
	batchService := productionapp.NewBatchService(productionScope, log)
	gatePassService := gatepassapp.NewGatePassService(gatePassScope, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Inject the outbox-backed publisher into services that emit events
	productService.SetEventPublisher(storedPublisher)
	stockService.SetEventPublisher(storedPublisher)
	orderService.SetEventPublisher(storedPublisher)
	paymentService.SetEventPublisher(storedPublisher)
	webhookProcessorService.SetEventPublisher(storedPublisher)
	purchaseOrderService.SetEventPublisher(storedPublisher)
	batchService.SetEventPublisher(storedPublisher)
	gatePassService.SetEventPublisher(storedPublisher)

	// Catalog read cache (if enabled)
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		productService.SetCache(cache.NewRedisProductCache(redisClient, cfg.Cache.ProductTTL, log))
		log.Info("Product cache enabled", zap.Duration("ttl", cfg.Cache.ProductTTL))
	}

	// Webhook retry worker drains the pending queue with exponential backoff
	if cfg.Webhook.WorkerEnabled {
		workerConfig := scheduler.DefaultWebhookWorkerConfig()
		workerConfig.PollInterval = cfg.Webhook.PollInterval
		workerConfig.BatchSize = cfg.Webhook.BatchSize
		workerConfig.CleanupEnabled = cfg.Webhook.CleanupEnabled
		workerConfig.CleanupRetention = cfg.Webhook.CleanupRetention
		webhookWorker := scheduler.NewWebhookWorker(webhookProcessorService, webhookRepo, workerConfig, log)
		if err := webhookWorker.Start(context.Background()); err != nil {
			log.Fatal("Failed to start webhook worker", zap.Error(err))
		}
		defer func() {
			if err := webhookWorker.Stop(context.Background()); err != nil {
				log.Error("Error stopping webhook worker", zap.Error(err))
			}
		}()
		log.Info("Webhook worker started",
			zap.Int("batch_size", workerConfig.BatchSize),
			zap.Duration("poll_interval", workerConfig.PollInterval),
		)
	}

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService)
	checkoutMethodHandler := handler.NewCheckoutMethodHandler(methodService)
	inventoryHandler := handler.NewInventoryHandler(stockService)
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService, webhookProcessorService)
	razorpayWebhookHandler := handler.NewRazorpayWebhookHandler(webhookIngestService)
	indentHandler := handler.NewIndentHandler(indentService)
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(purchaseOrderService)
	productionHandler := handler.NewProductionHandler(bomService, batchService)
	gatePassHandler := handler.NewGatePassHandler(gatePassService)
	outboxHandler := handler.NewOutboxHandler(outboxService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Gateway webhook endpoint (no authentication; verified by signature)
	webhookGroup := engine.Group("/api/v1/payments/webhooks")
	webhookGroup.POST("/razorpay", razorpayWebhookHandler.Receive)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/payments/webhooks",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Catalog domain (products, checkout methods)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.Get)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.PUT("/products/:id/pricing", productHandler.SetPricing)
	catalogRoutes.PUT("/products/:id/stock", productHandler.SetStock)
	catalogRoutes.POST("/products/:id/activate", productHandler.Activate)
	catalogRoutes.POST("/products/:id/deactivate", productHandler.Deactivate)
	catalogRoutes.POST("/shipping-methods", checkoutMethodHandler.CreateShippingMethod)
	catalogRoutes.GET("/shipping-methods", checkoutMethodHandler.ListShippingMethods)
	catalogRoutes.POST("/shipping-methods/:id/activate", checkoutMethodHandler.ActivateShippingMethod)
	catalogRoutes.POST("/shipping-methods/:id/deactivate", checkoutMethodHandler.DeactivateShippingMethod)
	catalogRoutes.POST("/payment-methods", checkoutMethodHandler.CreatePaymentMethod)
	catalogRoutes.GET("/payment-methods", checkoutMethodHandler.ListPaymentMethods)
	catalogRoutes.POST("/payment-methods/:id/activate", checkoutMethodHandler.ActivatePaymentMethod)
	catalogRoutes.POST("/payment-methods/:id/deactivate", checkoutMethodHandler.DeactivatePaymentMethod)

	// Inventory domain (raw materials, packaged products, movements)
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.POST("/items", inventoryHandler.CreateItem)
	inventoryRoutes.GET("/items", inventoryHandler.ListItems)
	inventoryRoutes.GET("/items/low-stock", inventoryHandler.LowStock)
	inventoryRoutes.GET("/items/:id", inventoryHandler.GetItem)
	inventoryRoutes.PUT("/items/:id/levels", inventoryHandler.UpdateLevels)
	inventoryRoutes.DELETE("/items/:id", inventoryHandler.DeactivateItem)
	inventoryRoutes.GET("/items/:id/movements", inventoryHandler.ListMovements)
	inventoryRoutes.GET("/items/:id/consistency", inventoryHandler.CheckConsistency)
	inventoryRoutes.POST("/movements", inventoryHandler.AdjustStock)
	inventoryRoutes.POST("/packaged-products", inventoryHandler.CreatePackagedProduct)
	inventoryRoutes.GET("/packaged-products", inventoryHandler.ListPackagedProducts)
	inventoryRoutes.GET("/packaged-products/:id", inventoryHandler.GetPackagedProduct)
	inventoryRoutes.GET("/packaged-products/:id/movements", inventoryHandler.ListPackagedMovements)
	inventoryRoutes.POST("/packaged-movements", inventoryHandler.AdjustPackagedStock)

	// Storefront cart
	cartRoutes := router.NewDomainGroup("cart", "/cart")
	cartRoutes.GET("", orderHandler.GetCart)
	cartRoutes.POST("/items", orderHandler.AddToCart)
	cartRoutes.PUT("/items", orderHandler.UpdateCartItem)

	// Order domain
	orderRoutes := router.NewDomainGroup("order", "/orders")
	orderRoutes.POST("", orderHandler.Checkout)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/mine", orderHandler.ListMine)
	orderRoutes.GET("/number/:number", orderHandler.GetByNumber)
	orderRoutes.GET("/addresses", orderHandler.ListAddresses)
	orderRoutes.POST("/addresses", orderHandler.CreateAddress)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.PUT("/:id/status", orderHandler.UpdateStatus)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)

	// Payment domain (collection, refunds, webhook queue administration)
	paymentRoutes := router.NewDomainGroup("payment", "/payments")
	paymentRoutes.POST("", paymentHandler.Create)
	paymentRoutes.GET("", paymentHandler.List)
	paymentRoutes.GET("/order/:id", paymentHandler.ListByOrder)
	paymentRoutes.GET("/webhooks/stats", paymentHandler.QueueStats)
	paymentRoutes.GET("/webhooks/dead", paymentHandler.ListDeadLetters)
	paymentRoutes.POST("/webhooks/dead/:id/requeue", paymentHandler.RequeueDeadLetter)
	paymentRoutes.GET("/:id", paymentHandler.Get)
	paymentRoutes.GET("/:id/transactions", paymentHandler.ListTransactions)
	paymentRoutes.POST("/:id/refund", paymentHandler.Refund)

	// Procurement domain (indents, purchase orders, goods receipts)
	procurementRoutes := router.NewDomainGroup("procurement", "/procurement")
	procurementRoutes.POST("/indents", indentHandler.Create)
	procurementRoutes.GET("/indents", indentHandler.List)
	procurementRoutes.GET("/indents/:id", indentHandler.Get)
	procurementRoutes.POST("/indents/:id/submit", indentHandler.Submit)
	procurementRoutes.POST("/indents/:id/approve", indentHandler.Approve)
	procurementRoutes.POST("/indents/:id/reject", indentHandler.Reject)
	procurementRoutes.POST("/purchase-orders", purchaseOrderHandler.Create)
	procurementRoutes.GET("/purchase-orders", purchaseOrderHandler.List)
	procurementRoutes.GET("/purchase-orders/number/:number", purchaseOrderHandler.GetByNumber)
	procurementRoutes.GET("/purchase-orders/:id", purchaseOrderHandler.Get)
	procurementRoutes.POST("/purchase-orders/:id/submit", purchaseOrderHandler.Submit)
	procurementRoutes.POST("/purchase-orders/:id/approve", purchaseOrderHandler.Approve)
	procurementRoutes.POST("/purchase-orders/:id/cancel", purchaseOrderHandler.Cancel)
	procurementRoutes.POST("/purchase-orders/:id/receipts", purchaseOrderHandler.ReceiveGoods)
	procurementRoutes.GET("/purchase-orders/:id/receipts", purchaseOrderHandler.ListReceipts)
	procurementRoutes.GET("/receipts/:id", purchaseOrderHandler.GetReceipt)

	// Production domain (BOMs, batches)
	productionRoutes := router.NewDomainGroup("production", "/production")
	productionRoutes.POST("/boms", productionHandler.CreateBOM)
	productionRoutes.GET("/boms/:id", productionHandler.GetBOM)
	productionRoutes.POST("/boms/:id/activate", productionHandler.ActivateBOM)
	productionRoutes.GET("/products/:productId/boms", productionHandler.ListBOMs)
	productionRoutes.GET("/products/:productId/boms/active", productionHandler.ActiveBOM)
	productionRoutes.GET("/products/:productId/requirements", productionHandler.MaterialRequirements)
	productionRoutes.POST("/batches", productionHandler.CreateBatch)
	productionRoutes.GET("/batches", productionHandler.ListBatches)
	productionRoutes.GET("/batches/:id", productionHandler.GetBatch)
	productionRoutes.POST("/batches/:id/start", productionHandler.StartBatch)
	productionRoutes.POST("/batches/:id/complete", productionHandler.CompleteBatch)
	productionRoutes.POST("/batches/:id/cancel", productionHandler.CancelBatch)

	// Gate pass domain
	gatePassRoutes := router.NewDomainGroup("gatepass", "/gate-passes")
	gatePassRoutes.POST("", gatePassHandler.Create)
	gatePassRoutes.GET("", gatePassHandler.List)
	gatePassRoutes.GET("/:id", gatePassHandler.Get)
	gatePassRoutes.POST("/:id/approve", gatePassHandler.Approve)
	gatePassRoutes.POST("/:id/reject", gatePassHandler.Reject)

	// System routes (info, outbox administration)
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/outbox/stats", outboxHandler.GetStats)
	systemRoutes.GET("/outbox/dead", outboxHandler.GetDeadLetterEntries)
	systemRoutes.POST("/outbox/retry-all", outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/:id", outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", outboxHandler.RetryDeadEntry)

	// Register all domain groups
	r.Register(catalogRoutes).
		Register(inventoryRoutes).
		Register(cartRoutes).
		Register(orderRoutes).
		Register(paymentRoutes).
		Register(procurementRoutes).
		Register(productionRoutes).
		Register(gatePassRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
