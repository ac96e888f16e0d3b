package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	kitchenapp "github.com/edgepos/backend/internal/application/kitchen"
	orderingapp "github.com/edgepos/backend/internal/application/ordering"
	paymentapp "github.com/edgepos/backend/internal/application/payment"
	printingapp "github.com/edgepos/backend/internal/application/printing"
	sessionapp "github.com/edgepos/backend/internal/application/session"
	"github.com/edgepos/backend/internal/infrastructure/auth"
	"github.com/edgepos/backend/internal/infrastructure/cache"
	"github.com/edgepos/backend/internal/infrastructure/config"
	"github.com/edgepos/backend/internal/infrastructure/event"
	"github.com/edgepos/backend/internal/infrastructure/logger"
	"github.com/edgepos/backend/internal/infrastructure/persistence"
	"github.com/edgepos/backend/internal/infrastructure/scheduler"
	"github.com/edgepos/backend/internal/infrastructure/telemetry"
	"github.com/edgepos/backend/internal/interfaces/http/handler"
	"github.com/edgepos/backend/internal/interfaces/http/middleware"
	"github.com/edgepos/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
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

	log.Info("Starting POS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize OpenTelemetry tracing and metrics (if enabled)
	var businessMetrics *telemetry.BusinessMetrics
	var meterProvider *telemetry.MeterProvider
	if cfg.Telemetry.Enabled {
		telemetryCtx := context.Background()

		tracerProvider, err := telemetry.NewTracerProvider(telemetryCtx, telemetry.Config{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err = telemetry.NewMeterProvider(telemetryCtx, telemetry.MetricsConfig{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		// Trace database queries through the shared GORM connection
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}

		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         meterProvider.Meter("edgepos.backend"),
			Logger:        log,
			QueueProvider: telemetry.NewGormQueueMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
			businessMetrics = nil
		} else {
			businessMetrics.StartPeriodicCollection(telemetryCtx, time.Minute)
			defer businessMetrics.Stop()
		}

		log.Info("Telemetry initialized",
			zap.String("collector", cfg.Telemetry.CollectorEndpoint),
			zap.Float64("sampling_ratio", cfg.Telemetry.SamplingRatio),
		)
	}

	// Initialize continuous profiling (if enabled)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiler.Enabled,
		ServerAddress:     cfg.Profiler.ServerAddress,
		ApplicationName:   cfg.Profiler.ApplicationName,
		ProfileCPU:        true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Warn("Failed to stop profiler", zap.Error(err))
			}
		}()
	}

	// Initialize repositories
	billRepo := persistence.NewGormBillRepository(db.DB)
	billLogRepo := persistence.NewGormBillLogRepository(db.DB)
	ticketRepo := persistence.NewGormKitchenTicketRepository(db.DB)
	ticketLogRepo := persistence.NewGormTicketLogRepository(db.DB)
	printerRepo := persistence.NewGormStationPrinterRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	refundRepo := persistence.NewGormRefundRepository(db.DB)
	shiftRepo := persistence.NewGormShiftRepository(db.DB)
	checklistRepo := persistence.NewGormChecklistRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)
	printJobRepo := persistence.NewGormPrintJobRepository(db.DB)
	templateRepo := persistence.NewGormReceiptTemplateRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Session reads are hot on every bill and payment mutation, so the
	// session repository gets a Redis cache in front of it.
	sessionCache := cache.NewSessionCache(cfg.Redis, log)
	sessionRepo := cache.NewCachedSessionRepository(persistence.NewGormSessionRepository(db.DB), sessionCache)

	// Initialize transaction manager
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Initialize event serializer and durable publisher. Services write
	// events to the outbox inside their own flow; the outbox processor
	// delivers them to the in-process bus afterwards.
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	durablePublisher := event.NewDurablePublisher(outboxRepo, eventSerializer)

	// Supervisor PIN verification for privileged operations
	verifier := auth.NewPINApprovalVerifier(db.DB)

	// Session gate shared by ordering and payment flows
	sessionGuard := sessionapp.NewGuard(sessionRepo)

	varianceThreshold, err := decimal.NewFromString(cfg.Session.VarianceThreshold)
	if err != nil {
		log.Fatal("Invalid session variance threshold",
			zap.String("value", cfg.Session.VarianceThreshold),
			zap.Error(err),
		)
	}

	// Initialize application services
	tableReleaser := event.NewEventTableReleaser(durablePublisher)
	billService := orderingapp.NewBillService(billRepo, billLogRepo, ticketRepo, txManager, sessionGuard, verifier, tableReleaser, log)
	paymentService := paymentapp.NewPaymentService(paymentRepo, billRepo, billLogRepo, shiftRepo, txManager, sessionGuard, tableReleaser, log)
	refundService := paymentapp.NewRefundService(refundRepo, paymentRepo, billRepo, shiftRepo, txManager, verifier, log)
	sessionService := sessionapp.NewSessionService(
		sessionRepo,
		shiftRepo,
		checklistRepo,
		alertRepo,
		billRepo,
		billLogRepo,
		paymentRepo,
		refundRepo,
		ticketRepo,
		txManager,
		verifier,
		log,
	)
	shiftService := sessionapp.NewShiftService(
		shiftRepo,
		sessionRepo,
		paymentRepo,
		refundRepo,
		alertRepo,
		txManager,
		verifier,
		varianceThreshold,
		log,
	)
	dispatchService := kitchenapp.NewDispatchService(ticketRepo, printerRepo, ticketLogRepo, alertRepo, txManager, log)
	printerService := kitchenapp.NewPrinterService(printerRepo, log)
	queueService := printingapp.NewQueueService(printJobRepo, templateRepo, billRepo, billLogRepo, paymentRepo, ticketRepo, log)
	templateService := printingapp.NewTemplateService(templateRepo, log)
	agentService := printingapp.NewAgentService(printJobRepo, txManager, log)

	// Route domain events through the outbox for at-least-once delivery
	billService.SetEventPublisher(durablePublisher)
	paymentService.SetEventPublisher(durablePublisher)
	refundService.SetEventPublisher(durablePublisher)
	sessionService.SetEventPublisher(durablePublisher)
	shiftService.SetEventPublisher(durablePublisher)
	dispatchService.SetEventPublisher(durablePublisher)
	queueService.SetEventPublisher(durablePublisher)
	agentService.SetEventPublisher(durablePublisher)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Handlers run at-least-once, so they are wrapped with an idempotency
	// store keyed by event ID. Redis-backed when available.
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Bill closed -> receipt print job
	receiptHandler := printingapp.NewReceiptOnCloseHandler(queueService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(receiptHandler, idempotencyStore, log))

	// Kitchen ticket created -> kitchen print job
	kitchenJobHandler := printingapp.NewKitchenJobHandler(queueService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(kitchenJobHandler, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("receipt_on_close_events", receiptHandler.EventTypes()),
		zap.Strings("kitchen_job_events", kitchenJobHandler.EventTypes()),
	)

	// Business metrics observe the same event stream
	if businessMetrics != nil {
		eventBus.Subscribe(telemetry.NewMetricsEventHandler(businessMetrics, log))
	}

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start the outbox processor for guaranteed event delivery
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
		}
		outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}

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

	// Initialize the sweep scheduler (if enabled). Sweeps flag overdue
	// sessions and recycle stuck print jobs and kitchen tickets.
	if cfg.Scheduler.Enabled {
		sweepExecutor := scheduler.NewSweepExecutor(scheduler.SweepExecutorConfig{
			StuckJobCutoff:    cfg.Printing.StuckJobCutoff,
			StuckTicketCutoff: cfg.Kitchen.StuckTicketCutoff,
		}, sessionService, agentService, dispatchService)

		sweepScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
		}, sweepExecutor, log)
		if err := sweepScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep scheduler", zap.Error(err))
		}
		defer func() {
			if err := sweepScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping sweep scheduler", zap.Error(err))
			}
		}()

		sweepTrigger := scheduler.NewSweepTrigger(scheduler.SweepTriggerConfig{
			SessionOverdueInterval: cfg.Session.OverdueSweepInterval,
			PrintJobsInterval:      cfg.Printing.StuckSweepInterval,
			KitchenTicketsInterval: cfg.Kitchen.StuckSweepInterval,
		}, sweepScheduler, log)
		if err := sweepTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep trigger", zap.Error(err))
		}
		defer func() {
			if err := sweepTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping sweep trigger", zap.Error(err))
			}
		}()
		log.Info("Sweep scheduler started",
			zap.Duration("session_overdue_interval", cfg.Session.OverdueSweepInterval),
			zap.Duration("print_jobs_interval", cfg.Printing.StuckSweepInterval),
			zap.Duration("kitchen_tickets_interval", cfg.Kitchen.StuckSweepInterval),
		)
	}

	// Initialize JWT authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable for token blacklist, using in-memory fallback", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}

	authMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		Logger:         log,
	})

	// Initialize HTTP handlers
	billHandler := handler.NewBillHandler(billService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	refundHandler := handler.NewRefundHandler(refundService)
	kitchenHandler := handler.NewKitchenHandler(dispatchService, printerService)
	printAgentHandler := handler.NewPrintAgentHandler(agentService, dispatchService)
	printingHandler := handler.NewPrintingHandler(queueService, agentService, templateService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	shiftHandler := handler.NewShiftHandler(shiftService)

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
	// 2. Recovery - Recover from panics with structured logging
	// 3. Logger - Request logging with request ID correlation
	// 4. Secure - Security headers
	// 5. CORS - Cross-origin resource sharing
	// 6. BodyLimit - Request body size limiting
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		if meterProvider != nil {
			engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("edgepos.backend.http"), true))
		}
	}
	if cfg.Profiler.Enabled {
		engine.Use(middleware.Profiling())
	}

	// Health check endpoint (no auth)
	engine.GET("/health", healthHandler(db, log))

	// Register domain routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.BillRoutes(billHandler, paymentHandler, refundHandler, kitchenHandler, authMiddleware)).
		Register(handler.RefundRoutes(refundHandler, authMiddleware)).
		Register(handler.KitchenRoutes(kitchenHandler, authMiddleware)).
		Register(handler.PrintAgentRoutes(printAgentHandler, authMiddleware)).
		Register(handler.PrintingRoutes(printingHandler, authMiddleware)).
		Register(handler.SessionRoutes(sessionHandler, authMiddleware)).
		Register(handler.ShiftRoutes(shiftHandler, authMiddleware))
	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with timeouts
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
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
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
