// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"checkout-service/internal/attribution"
	"checkout-service/internal/config"
	"checkout-service/internal/db"
	"checkout-service/internal/domain/sale"
	"checkout-service/internal/events"
	"checkout-service/internal/gateway"
	auditHandler "checkout-service/internal/handlers/audit"
	authHandler "checkout-service/internal/handlers/auth"
	checkoutHandler "checkout-service/internal/handlers/checkout"
	couponHandler "checkout-service/internal/handlers/coupon"
	customerHandler "checkout-service/internal/handlers/customer"
	productHandler "checkout-service/internal/handlers/product"
	reportHandler "checkout-service/internal/handlers/report"
	saleHandler "checkout-service/internal/handlers/sale"
	settingsHandler "checkout-service/internal/handlers/settings"
	sweepHandler "checkout-service/internal/handlers/sweep"
	webhookHandler "checkout-service/internal/handlers/webhook"
	wsHandler "checkout-service/internal/handlers/ws"
	"checkout-service/internal/middleware"
	"checkout-service/internal/pkg/cache"
	"checkout-service/internal/pkg/jwt"
	"checkout-service/internal/repository/postgres"
	auditsvc "checkout-service/internal/service/audit"
	authsvc "checkout-service/internal/service/auth"
	checkoutsvc "checkout-service/internal/service/checkout"
	couponsvc "checkout-service/internal/service/coupon"
	customersvc "checkout-service/internal/service/customer"
	"checkout-service/internal/service/email"
	outboxsvc "checkout-service/internal/service/outbox"
	"checkout-service/internal/service/payment"
	productsvc "checkout-service/internal/service/product"
	reportsvc "checkout-service/internal/service/report"
	salesvc "checkout-service/internal/service/sale"
	settingssvc "checkout-service/internal/service/settings"
	"checkout-service/internal/service/sweeper"
	"checkout-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	httpServer *http.Server
	producer   *events.Producer
	cancelJobs context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.ConnectDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addresses: []string{s.cfg.RedisAddr},
		Password:  s.cfg.RedisPass,
		DB:        0,
		PoolSize:  10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// Background jobs (hub, producer, dispatcher) stop on shutdown.
	jobCtx, cancelJobs := context.WithCancel(ctx)
	s.cancelJobs = cancelJobs

	// ----- Kafka producer -----
	producer := events.NewProducer(s.cfg.KafkaBrokers, s.cfg.KafkaTopic, 256, logger)
	go producer.Start(jobCtx)
	s.producer = producer

	// ----- External clients -----
	gatewayClient := gateway.NewClient(s.cfg.GatewayBaseURL, s.cfg.GatewayAPIKey, s.cfg.GatewayTimeout)
	attributionClient := attribution.NewClient(s.cfg.AttributionURL, s.cfg.AttributionToken, 15*time.Second)

	// ----- Repositories -----
	outboxRepo := postgres.NewOutboxRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool, outboxRepo)
	productRepo := postgres.NewProductRepository(pool)
	couponRepo := postgres.NewCouponRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	cartRepo := postgres.NewAbandonedCartRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger)
	go hub.Run(jobCtx)

	// ----- Services -----
	auditRecorder := auditsvc.NewRecorder(auditRepo, logger)
	authService := authsvc.NewService(adminRepo, jwtManager, auditRecorder, logger)

	reportCache := cache.New(5*time.Minute, cache.SystemClock{})
	reportService := reportsvc.NewService(saleRepo, reportCache, logger)

	commission := checkoutsvc.NewPlatformCommission(settingsRepo, s.cfg.CommissionPercent)
	checkoutService := checkoutsvc.NewService(
		saleRepo, productRepo, couponRepo, cartRepo, customerRepo,
		gatewayClient, producer, commission, logger,
	)

	customerService := customersvc.NewService(customerRepo, logger)

	paidListener := &paidFanout{hub: hub, reports: reportService}
	verifier := payment.NewVerifier(
		saleRepo, productRepo, customerService, cartRepo,
		gatewayClient, payment.NewRedisLocker(redisClient),
		producer, paidListener, logger,
	)

	mailer := email.NewMailer(settingsRepo, email.SMTPConfig{
		Host:     s.cfg.SMTPHost,
		Port:     s.cfg.SMTPPort,
		User:     s.cfg.SMTPUser,
		Pass:     s.cfg.SMTPPass,
		FromName: s.cfg.SMTPFromName,
		Secure:   s.cfg.SMTPSecure,
	}, logger)

	dispatcher := outboxsvc.NewDispatcher(
		outboxRepo, attributionClient, mailer, producer, settingsRepo,
		s.cfg.OutboxDispatchPeriod, logger,
	)
	go dispatcher.Start(jobCtx)

	sweeperService := sweeper.NewService(saleRepo, cartRepo, outboxRepo, verifier, sweeper.Config{
		PendingLookback:    s.cfg.PendingLookback,
		PendingMinAge:      s.cfg.PendingMinAge,
		PixReminderDelay:   s.cfg.PixReminderDelay,
		AbandonedCartDelay: s.cfg.AbandonedCartDelay,
	}, logger)

	saleService := salesvc.NewService(saleRepo, logger)
	productService := productsvc.NewService(productRepo, logger)
	couponService := couponsvc.NewService(couponRepo, logger)
	settingsService := settingssvc.NewService(settingsRepo, logger)

	// ----- Super admin bootstrap -----
	bootCtx, cancelBoot := context.WithTimeout(ctx, 30*time.Second)
	if err := authService.EnsureSuperAdminExists(bootCtx); err != nil {
		logger.Error("failed to ensure super admin exists", zap.Error(err))
	}
	cancelBoot()

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:     authHandler.NewAuthHandler(authService),
		CheckoutHandler: checkoutHandler.NewCheckoutHandler(checkoutService),
		WebhookHandler:  webhookHandler.NewWebhookHandler(verifier, logger),
		SweepHandler:    sweepHandler.NewSweepHandler(sweeperService, dispatcher),
		SaleHandler:     saleHandler.NewSaleHandler(saleService),
		CustomerHandler: customerHandler.NewCustomerHandler(customerService),
		ProductHandler:  productHandler.NewProductHandler(productService),
		CouponHandler:   couponHandler.NewCouponHandler(couponService),
		ReportHandler:   reportHandler.NewReportHandler(reportService),
		AuditHandler:    auditHandler.NewAuditHandler(auditRecorder),
		SettingsHandler: settingsHandler.NewSettingsHandler(settingsService),
		WSHandler:       wsHandler.NewWSHandler(hub, logger),
		AuthMiddleware:  authMiddleware,
		CronSecret:      s.cfg.CronSecret,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	s.httpServer = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}
	logger.Info("server listening", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP listener, then the background jobs, then flushes
// the Kafka producer.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.cancelJobs != nil {
		s.cancelJobs()
	}
	if s.producer != nil {
		s.producer.WaitClosed()
	}
	if s.logger != nil {
		s.logger.Sync()
	}
	return err
}

// paidFanout forwards paid-sale confirmations to the dashboard hub and
// drops the seller's cached reports.
type paidFanout struct {
	hub     *websocket.Hub
	reports *reportsvc.Service
}

func (f *paidFanout) SalePaid(s *sale.Sale) {
	f.hub.SalePaid(s)
	f.reports.InvalidateSeller(s.SellerID)
}
