package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coalmart/coalmart/config"
	"github.com/coalmart/coalmart/internal/auth"
	"github.com/coalmart/coalmart/internal/b2bcheck"
	"github.com/coalmart/coalmart/internal/cache"
	handler "github.com/coalmart/coalmart/internal/handler/http"
	"github.com/coalmart/coalmart/internal/logger"
	"github.com/coalmart/coalmart/internal/middleware"
	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/payments"
	"github.com/coalmart/coalmart/internal/repository"
	"github.com/coalmart/coalmart/internal/repository/postgres"
	"github.com/coalmart/coalmart/internal/service"
	"github.com/coalmart/coalmart/internal/shipping"
	"github.com/coalmart/coalmart/internal/worker"
)

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	tokenKey, err := hex.DecodeString(cfg.AuthTokenKey)
	if err != nil {
		logger.Log.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// carrier auth tokens live in redis when configured, otherwise
	// in process memory
	var tokenCache cache.Cache
	if cfg.RedisAddr != "" {
		tokenCache = cache.NewRedis(cfg.RedisAddr)
	} else {
		tokenCache = cache.NewMemory()
	}

	// shipping carriers
	carriers := shipping.NewRegistry(cfg.DefaultCarrier)
	carriers.Register("dhl", shipping.NewDHLClient(cfg.DHLBaseURL, cfg.DHLAPIKey))
	carriers.Register("dpd", shipping.NewDPDClient(cfg.DPDBaseURL, shipping.DPDCredentials{
		DelisID:  cfg.DPDDelisID,
		Password: cfg.DPDPassword,
	}, tokenCache))

	// repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	stockRepo := repository.NewStockRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	b2bRepo := repository.NewB2BCheckRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// dependency injection
	alertService := service.NewAlertService(alertRepo, "telegram", cfg.AlertTarget)

	b2bService := service.NewB2BService(
		b2bcheck.NewVIESClient(),
		b2bcheck.NewRegistryClient(cfg.RegistryBaseURL),
		b2bcheck.NewOSINTClient(cfg.OSINTBaseURL, cfg.SnapshotDir),
		b2bRepo,
		userRepo,
		alertService,
		cfg.B2BScoreThreshold,
	)

	userService := service.NewUserService(userRepo, token, b2bService)
	userHandler := handler.NewUserHandler(userService)

	checkoutClient := payments.NewClient(cfg.StripeSecretKey)
	orderService := service.NewOrderService(orderRepo, productRepo, paymentRepo, stockRepo, checkoutClient)
	orderHandler := handler.NewOrderHandler(orderService, userService)

	fulfillmentService := service.NewFulfillmentService(orderRepo, stockRepo, warehouseRepo, shipmentRepo, carriers)

	skipVerify := cfg.AppEnv == "development"
	paymentService := service.NewPaymentService(paymentRepo, fulfillmentService, cfg.StripeWebhookSecret, skipVerify)
	webhookHandler := handler.NewWebhookHandler(paymentService)

	warehouseService := service.NewWarehouseService(warehouseRepo)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)

	stockService := service.NewStockService(stockRepo, alertService, cfg.LowStockThreshold)
	reportService := service.NewReportService(orderRepo, alertService)
	stockHandler := handler.NewStockHandler(stockService)

	b2bHandler := handler.NewB2BHandler(b2bService, userService)

	shippingService := service.NewShippingService(shipmentRepo, carriers)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	router.Post("/api/user/register", userHandler.Register())
	router.Post("/api/user/login", userHandler.Login())
	router.Post("/webhooks/{provider}", webhookHandler.HandleEvent())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Post("/api/orders", orderHandler.Checkout())
		group.Get("/api/orders", orderHandler.ListOrders())
		group.Post("/api/orders/{orderID}/cancel", orderHandler.CancelOrder())
	})

	// staff routes
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Use(middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
		group.Get("/api/warehouse/tasks", warehouseHandler.ListPending())
		group.Post("/api/warehouse/tasks/{taskID}/advance", warehouseHandler.AdvanceTask())
		group.Post("/api/warehouse/tasks/{taskID}/claim", warehouseHandler.ClaimTask())
	})

	// admin routes
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Use(middleware.RequireRole(models.RoleAdmin))
		group.Get("/api/admin/stock/{productID}", stockHandler.GetStock())
		group.Post("/api/admin/stock/{productID}/adjust", stockHandler.AdjustStock())
		group.Post("/api/admin/users/{userID}/recheck", b2bHandler.Recheck())
	})

	// background maintenance
	runner := worker.New(shippingService, b2bService, stockService, reportService)
	go runner.Run(ctx)

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
