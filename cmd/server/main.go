package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	crmapp "github.com/peopledesk/backend/internal/application/crm"
	eventapp "github.com/peopledesk/backend/internal/application/event"
	featureflagapp "github.com/peopledesk/backend/internal/application/featureflag"
	financeapp "github.com/peopledesk/backend/internal/application/finance"
	hrapp "github.com/peopledesk/backend/internal/application/hr"
	identityapp "github.com/peopledesk/backend/internal/application/identity"
	mdmapp "github.com/peopledesk/backend/internal/application/mdm"
	printingapp "github.com/peopledesk/backend/internal/application/printing"
	supportapp "github.com/peopledesk/backend/internal/application/support"
	"github.com/peopledesk/backend/internal/domain/featureflag"
	"github.com/peopledesk/backend/internal/domain/identity"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/infrastructure/auth"
	"github.com/peopledesk/backend/internal/infrastructure/cache"
	"github.com/peopledesk/backend/internal/infrastructure/config"
	"github.com/peopledesk/backend/internal/infrastructure/event"
	"github.com/peopledesk/backend/internal/infrastructure/logger"
	"github.com/peopledesk/backend/internal/infrastructure/persistence"
	printinginfra "github.com/peopledesk/backend/internal/infrastructure/printing"
	printproviders "github.com/peopledesk/backend/internal/infrastructure/printing/providers"
	"github.com/peopledesk/backend/internal/infrastructure/scheduler"
	"github.com/peopledesk/backend/internal/infrastructure/storage"
	"github.com/peopledesk/backend/internal/infrastructure/telemetry"
	"github.com/peopledesk/backend/internal/interfaces/http/handler"
	"github.com/peopledesk/backend/internal/interfaces/http/middleware"
	"github.com/peopledesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "github.com/peopledesk/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			PeopleDesk Backend API
//	@version		1.0
//	@description	Multi-tenant HR, payroll, accounting and CRM dashboard backend

//	@contact.name	API Support
//	@contact.url	https://github.com/peopledesk/backend
//	@contact.email	support@peopledesk.app

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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

	log.Info("Starting PeopleDesk Backend",
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

	// Register database query tracing (otelgorm) if enabled
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize OpenTelemetry tracer provider
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize tracer provider", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// Initialize OpenTelemetry meter provider
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize meter provider", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()
	}

	// Initialize repositories
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	leaveRequestRepo := persistence.NewGormLeaveRequestRepository(db.DB)
	payrollRunRepo := persistence.NewGormPayrollRunRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	journalEntryRepo := persistence.NewGormJournalEntryRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	deviceRepo := persistence.NewGormMobileDeviceRepository(db.DB)
	ticketRepo := persistence.NewGormTicketRepository(db.DB)
	printTemplateRepo := persistence.NewGormPrintTemplateRepository(db.DB)
	printJobRepo := persistence.NewGormPrintJobRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	flagRepo := persistence.NewGormFeatureFlagRepository(db.DB)
	flagOverrideRepo := persistence.NewGormFlagOverrideRepository(db.DB)
	flagAuditLogRepo := persistence.NewGormFlagAuditLogRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types. The
	// versioned serializer upgrades payloads written by older releases.
	eventSerializer := event.NewVersionedSerializer(log)
	event.RegisterAllEvents(eventSerializer)

	// Object storage for ticket attachments (S3 or stub when disabled)
	var objectStorage supportapp.ObjectStorageService
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize S3 object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("S3 object storage initialized",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage disabled, ticket attachments will use stub URLs")
	}

	// Feature flag cache: tiered (in-memory + Redis) when Redis is configured
	var flagCache featureflag.FlagCache
	var flagInvalidator featureflag.CacheInvalidator
	var tieredCache *cache.TieredFeatureFlagCache
	if cfg.Redis.Host != "" {
		redisCfg := cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		l2Cache, err := cache.NewRedisFeatureFlagCache(redisCfg)
		if err != nil {
			log.Warn("Failed to connect to Redis, falling back to in-memory flag cache", zap.Error(err))
			flagCache = cache.NewInMemoryFeatureFlagCache()
		} else {
			invalidator, err := cache.NewRedisFlagCacheInvalidator(redisCfg)
			if err != nil {
				log.Warn("Failed to create Redis flag cache invalidator", zap.Error(err))
			}
			tieredCache = cache.NewTieredFeatureFlagCache(
				cache.NewInMemoryFeatureFlagCache(),
				l2Cache,
				invalidator,
				cache.WithTieredLogger(log),
			)
			flagCache = tieredCache
			if invalidator != nil {
				flagInvalidator = invalidator
			}
			log.Info("Tiered feature flag cache initialized",
				zap.String("redis_host", cfg.Redis.Host),
				zap.Int("redis_port", cfg.Redis.Port),
			)
		}
	} else {
		flagCache = cache.NewInMemoryFeatureFlagCache()
	}

	// Printing infrastructure: template engine, PDF renderer and storage
	templateEngine := printinginfra.NewTemplateEngine()
	pdfRenderer, err := printinginfra.NewChromedpRenderer(&printinginfra.ChromedpConfig{
		DefaultTimeout: 30 * time.Second,
		Headless:       true,
		DisableGPU:     true,
		NoSandbox:      true,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()
	pdfStorage, err := printinginfra.NewFileSystemStorage(&printinginfra.FileSystemStorageConfig{
		BaseURL: "/api/v1/prints",
		Logger:  log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF storage", zap.Error(err))
	}

	// Initialize application services
	employeeService := hrapp.NewEmployeeService(employeeRepo, outboxRepo, log)
	leaveService := hrapp.NewLeaveService(leaveRequestRepo, employeeRepo, outboxRepo, log)
	payrollService := hrapp.NewPayrollService(payrollRunRepo, employeeRepo, outboxRepo, log)
	invoiceService := financeapp.NewInvoiceService(invoiceRepo, customerRepo, outboxRepo, log)
	ledgerService := financeapp.NewLedgerService(accountRepo, journalEntryRepo, outboxRepo, log)
	vendorService := financeapp.NewVendorService(vendorRepo, log)
	customerService := crmapp.NewCustomerService(customerRepo, outboxRepo, log)
	deviceService := mdmapp.NewDeviceService(deviceRepo, employeeRepo, outboxRepo, log)
	ticketService := supportapp.NewTicketService(ticketRepo, objectStorage, outboxRepo, log)
	// Data providers let print jobs load document data by ID instead of
	// requiring the caller to post the full payload
	printDataRegistry := printproviders.NewDataProviderRegistry()
	printDataRegistry.Register(printproviders.NewInvoiceProvider(invoiceRepo, customerRepo))
	printDataRegistry.Register(printproviders.NewCustomerStatementProvider(customerRepo, invoiceRepo))
	printDataRegistry.Register(printproviders.NewPayslipProvider(payrollRunRepo, employeeRepo))
	printDataRegistry.Register(printproviders.NewPayrollSummaryProvider(payrollRunRepo, employeeRepo))

	printService := printingapp.NewPrintService(printTemplateRepo, printJobRepo, templateEngine, pdfRenderer, pdfStorage, log,
		printingapp.WithDocumentDataSource(printDataRegistry))
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Identity services (auth, user, role, tenant)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Token blacklist backs logout: Redis when configured, in-memory otherwise
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Failed to connect to Redis for token blacklist, falling back to in-memory", zap.Error(err))
			tokenBlacklist = auth.NewInMemoryTokenBlacklist()
		} else {
			tokenBlacklist = redisBlacklist
		}
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}

	authService := identityapp.NewAuthService(userRepo, roleRepo, jwtService, tokenBlacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, roleRepo, log)
	roleService := identityapp.NewRoleService(roleRepo, userRepo, log)
	tenantService := identityapp.NewTenantService(tenantRepo, log)

	// Feature flag services
	flagService := featureflagapp.NewFlagService(flagRepo, flagAuditLogRepo, outboxRepo, log)
	evaluationService := featureflagapp.NewCachedEvaluationService(flagRepo, flagOverrideRepo, flagCache, log)
	overrideService := featureflagapp.NewOverrideService(flagRepo, flagOverrideRepo, flagAuditLogRepo, outboxRepo, log)

	// Initialize event bus and cross-context handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Outbox delivery is at-least-once, so ledger handlers are wrapped
	// with idempotency to keep journal entries from being double-booked
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Paid invoice -> ledger journal entry (revenue recognition)
	invoicePaidHandler := financeapp.NewInvoicePaidHandler(accountRepo, journalEntryRepo, log)
	idempotentInvoicePaid := event.NewIdempotentHandler(invoicePaidHandler, idempotencyStore, log)
	eventBus.Subscribe(idempotentInvoicePaid, idempotentInvoicePaid.EventTypes()...)

	// Paid payroll run -> ledger journal entry (salary expense)
	payrollPaidHandler := financeapp.NewPayrollPaidHandler(accountRepo, journalEntryRepo, log)
	idempotentPayrollPaid := event.NewIdempotentHandler(payrollPaidHandler, idempotencyStore, log)
	eventBus.Subscribe(idempotentPayrollPaid, idempotentPayrollPaid.EventTypes()...)

	log.Info("Event handlers registered",
		zap.Strings("invoice_paid_events", invoicePaidHandler.EventTypes()),
		zap.Strings("payroll_paid_events", payrollPaidHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Start outbox processor for guaranteed event delivery
	outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
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

	// Start Redis invalidation subscription for the tiered flag cache
	cacheCtx, cacheCancel := context.WithCancel(context.Background())
	defer cacheCancel()
	if tieredCache != nil {
		if err := tieredCache.StartInvalidationSubscription(cacheCtx); err != nil {
			log.Warn("Failed to start flag cache invalidation subscription", zap.Error(err))
		}
		defer func() {
			if err := tieredCache.Close(); err != nil {
				log.Error("Error closing flag cache", zap.Error(err))
			}
		}()
	}

	// Initialize maintenance scheduler (overdue invoices, stale devices,
	// print job retention, monthly payroll drafts)
	if cfg.Scheduler.Enabled {
		maintenanceExecutor := scheduler.NewMaintenanceExecutor(
			scheduler.DefaultMaintenanceExecutorConfig(),
			invoiceService,
			deviceService,
			printJobRepo,
			&payrollDrafter{payroll: payrollService, tenants: tenantRepo},
			log,
		)
		sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, maintenanceExecutor, log)
		sched.SetJobRepository(scheduler.NewSchedulerJobRepository(db.DB))
		if err := sched.Start(context.Background()); err != nil {
			log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
		}
		defer func() {
			if err := sched.Stop(context.Background()); err != nil {
				log.Error("Error stopping maintenance scheduler", zap.Error(err))
			}
		}()

		nightlyHour, nightlyMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.DailyCronSchedule)
		if err != nil {
			log.Warn("Invalid daily cron schedule, using defaults", zap.Error(err))
		}
		triggerConfig := scheduler.DefaultCronTriggerConfig()
		triggerConfig.NightlyHour = nightlyHour
		triggerConfig.NightlyMinute = nightlyMinute
		cronTrigger := scheduler.NewCronTrigger(triggerConfig, sched, &activeTenants{tenants: tenantRepo}, log)
		if err := cronTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := cronTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Maintenance scheduler started",
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
			zap.Int("nightly_hour", nightlyHour),
			zap.Int("nightly_minute", nightlyMinute),
		)
	}

	// Periodic workforce gauges (active employees, pending leave per tenant)
	if meterProvider != nil && meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:             meterProvider.Meter(telemetry.TracerName),
			Logger:            log,
			WorkforceProvider: telemetry.NewGormWorkforceMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			metricsCtx, metricsCancel := context.WithCancel(context.Background())
			defer metricsCancel()
			businessMetrics.StartPeriodicCollection(metricsCtx, telemetry.NewGormTenantProvider(db.DB), 5*time.Minute)
			defer businessMetrics.Stop()
		}
	}

	// Initialize HTTP handlers
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	leaveHandler := handler.NewLeaveHandler(leaveService)
	payrollHandler := handler.NewPayrollHandler(payrollService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	vendorHandler := handler.NewVendorHandler(vendorService)
	customerHandler := handler.NewCustomerHandler(customerService)
	deviceHandler := handler.NewDeviceHandler(deviceService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	printHandler := handler.NewPrintHandler(printService)
	authHandler := handler.NewAuthHandler(authService, cfg.Cookie, cfg.JWT)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	featureFlagHandler := handler.NewFeatureFlagHandler(flagService, evaluationService, overrideService)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler()

	// SSE stream for live flag updates, requires the Redis invalidator
	var sseHandler *handler.FeatureFlagSSEHandler
	if flagInvalidator != nil {
		sseHandler = handler.NewFeatureFlagSSEHandler(flagInvalidator, handler.WithSSELogger(log))
		if err := sseHandler.Start(); err != nil {
			log.Warn("Failed to start feature flag SSE handler", zap.Error(err))
			sseHandler = nil
		} else {
			defer sseHandler.Stop()
		}
	}

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
	// 4. Tracing - OpenTelemetry HTTP spans
	// 5. Metrics - HTTP request metrics
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
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

	// JWT authentication with skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// Swagger documentation endpoint (guarded by config)
	if cfg.Swagger.Enabled {
		swaggerGuard := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware)
		engine.GET("/swagger/*any", swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(jwtMiddleware)

	// Ownership scoping: restricts employee-owned resources to the
	// requester unless their role grants a wider data scope
	r.Use(middleware.DataScopeMiddlewareWithConfig(middleware.DataScopeMiddlewareConfig{
		RoleRepository: roleRepo,
		UserRepository: userRepo,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	// Auth routes (login/refresh are public via JWT skip paths)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.RateLimit(authLimiter))
	}
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// HR domain (employees, leave, payroll)
	hrRoutes := router.NewDomainGroup("hr", "/hr")

	// Employee routes
	hrRoutes.POST("/employees", employeeHandler.Create)
	hrRoutes.GET("/employees", employeeHandler.List)
	hrRoutes.GET("/employees/staff-number/:staffNumber", employeeHandler.GetByStaffNumber)
	hrRoutes.GET("/employees/:id", employeeHandler.GetByID)
	hrRoutes.PUT("/employees/:id", employeeHandler.Update)
	hrRoutes.PUT("/employees/:id/salary", employeeHandler.SetSalary)
	hrRoutes.POST("/employees/:id/terminate", employeeHandler.Terminate)
	hrRoutes.POST("/employees/:id/reinstate", employeeHandler.Reinstate)
	hrRoutes.DELETE("/employees/:id", employeeHandler.Delete)

	// Leave request routes
	hrRoutes.POST("/leave-requests", leaveHandler.Create)
	hrRoutes.GET("/leave-requests", leaveHandler.List)
	hrRoutes.GET("/leave-requests/day-count", leaveHandler.DayCount)
	hrRoutes.GET("/leave-requests/:id", leaveHandler.GetByID)
	hrRoutes.POST("/leave-requests/:id/approve", leaveHandler.Approve)
	hrRoutes.POST("/leave-requests/:id/reject", leaveHandler.Reject)
	hrRoutes.POST("/leave-requests/:id/cancel", leaveHandler.Cancel)

	// Payroll run routes
	hrRoutes.POST("/payroll-runs", payrollHandler.Create)
	hrRoutes.GET("/payroll-runs", payrollHandler.List)
	hrRoutes.GET("/payroll-runs/period/:year/:month", payrollHandler.GetByPeriod)
	hrRoutes.GET("/payroll-runs/:id", payrollHandler.GetByID)
	hrRoutes.POST("/payroll-runs/:id/payslips", payrollHandler.AddPayslip)
	hrRoutes.PUT("/payroll-runs/:id/payslips/:payslipId", payrollHandler.UpdatePayslip)
	hrRoutes.DELETE("/payroll-runs/:id/payslips/:payslipId", payrollHandler.RemovePayslip)
	hrRoutes.POST("/payroll-runs/:id/process", payrollHandler.Process)
	hrRoutes.POST("/payroll-runs/:id/complete", payrollHandler.Complete)
	hrRoutes.POST("/payroll-runs/:id/mark-paid", payrollHandler.MarkPaid)
	hrRoutes.POST("/payroll-runs/:id/cancel", payrollHandler.Cancel)

	// Finance domain (invoices, ledger, vendors)
	financeRoutes := router.NewDomainGroup("finance", "/finance")

	// Invoice routes
	financeRoutes.POST("/invoices", invoiceHandler.Create)
	financeRoutes.GET("/invoices", invoiceHandler.List)
	financeRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	financeRoutes.PUT("/invoices/:id", invoiceHandler.Update)
	financeRoutes.DELETE("/invoices/:id", invoiceHandler.Delete)
	financeRoutes.POST("/invoices/:id/items", invoiceHandler.AddItem)
	financeRoutes.PUT("/invoices/:id/items/:itemId", invoiceHandler.UpdateItem)
	financeRoutes.DELETE("/invoices/:id/items/:itemId", invoiceHandler.RemoveItem)
	financeRoutes.POST("/invoices/:id/send", invoiceHandler.Send)
	financeRoutes.POST("/invoices/:id/payments", invoiceHandler.RecordPayment)
	financeRoutes.POST("/invoices/:id/cancel", invoiceHandler.Cancel)

	// Ledger account routes
	financeRoutes.POST("/accounts", ledgerHandler.CreateAccount)
	financeRoutes.GET("/accounts", ledgerHandler.ListAccounts)
	financeRoutes.GET("/accounts/:id", ledgerHandler.GetAccount)
	financeRoutes.POST("/accounts/:id/rename", ledgerHandler.RenameAccount)
	financeRoutes.PUT("/accounts/:id/active", ledgerHandler.SetAccountActive)
	financeRoutes.DELETE("/accounts/:id", ledgerHandler.DeleteAccount)

	// Journal entry routes
	financeRoutes.POST("/journal-entries", ledgerHandler.CreateJournalEntry)
	financeRoutes.GET("/journal-entries", ledgerHandler.ListJournalEntries)
	financeRoutes.GET("/journal-entries/:id", ledgerHandler.GetJournalEntry)
	financeRoutes.POST("/journal-entries/:id/post", ledgerHandler.PostJournalEntry)
	financeRoutes.POST("/journal-entries/:id/reverse", ledgerHandler.ReverseJournalEntry)

	// Financial reports
	financeRoutes.GET("/reports/trial-balance", ledgerHandler.TrialBalance)
	financeRoutes.GET("/reports/balance-sheet", ledgerHandler.BalanceSheet)

	// Vendor routes
	financeRoutes.POST("/vendors", vendorHandler.Create)
	financeRoutes.GET("/vendors", vendorHandler.List)
	financeRoutes.GET("/vendors/:id", vendorHandler.GetByID)
	financeRoutes.PUT("/vendors/:id", vendorHandler.Update)
	financeRoutes.DELETE("/vendors/:id", vendorHandler.Delete)
	financeRoutes.POST("/vendors/:id/activate", vendorHandler.Activate)
	financeRoutes.POST("/vendors/:id/deactivate", vendorHandler.Deactivate)
	financeRoutes.POST("/vendors/:id/block", vendorHandler.Block)

	// CRM domain (customers)
	crmRoutes := router.NewDomainGroup("crm", "/crm")
	crmRoutes.POST("/customers", customerHandler.Create)
	crmRoutes.GET("/customers", customerHandler.List)
	crmRoutes.GET("/customers/code/:code", customerHandler.GetByCode)
	crmRoutes.GET("/customers/:id", customerHandler.GetByID)
	crmRoutes.PUT("/customers/:id", customerHandler.Update)
	crmRoutes.DELETE("/customers/:id", customerHandler.Delete)
	crmRoutes.POST("/customers/:id/activate", customerHandler.Activate)
	crmRoutes.POST("/customers/:id/deactivate", customerHandler.Deactivate)
	crmRoutes.POST("/customers/:id/suspend", customerHandler.Suspend)

	// MDM domain (mobile devices)
	mdmRoutes := router.NewDomainGroup("mdm", "/mdm")
	mdmRoutes.POST("/devices", deviceHandler.Enroll)
	mdmRoutes.GET("/devices", deviceHandler.List)
	mdmRoutes.POST("/devices/heartbeat", deviceHandler.Heartbeat)
	mdmRoutes.GET("/devices/:id", deviceHandler.GetByID)
	mdmRoutes.DELETE("/devices/:id", deviceHandler.Delete)
	mdmRoutes.POST("/devices/:id/assign", deviceHandler.Assign)
	mdmRoutes.POST("/devices/:id/unassign", deviceHandler.Unassign)
	mdmRoutes.POST("/devices/:id/lock", deviceHandler.Lock)
	mdmRoutes.POST("/devices/:id/unlock", deviceHandler.Unlock)
	mdmRoutes.POST("/devices/:id/wipe", deviceHandler.Wipe)
	mdmRoutes.POST("/devices/:id/retire", deviceHandler.Retire)

	// Support domain (tickets with attachments)
	supportRoutes := router.NewDomainGroup("support", "/support")
	supportRoutes.POST("/tickets", ticketHandler.Create)
	supportRoutes.GET("/tickets", ticketHandler.List)
	supportRoutes.GET("/tickets/:id", ticketHandler.GetByID)
	supportRoutes.PUT("/tickets/:id", ticketHandler.Update)
	supportRoutes.DELETE("/tickets/:id", ticketHandler.Delete)
	supportRoutes.POST("/tickets/:id/assign", ticketHandler.Assign)
	supportRoutes.POST("/tickets/:id/resolve", ticketHandler.Resolve)
	supportRoutes.POST("/tickets/:id/reopen", ticketHandler.Reopen)
	supportRoutes.POST("/tickets/:id/close", ticketHandler.Close)
	supportRoutes.POST("/tickets/:id/comments", ticketHandler.AddComment)
	supportRoutes.POST("/tickets/:id/attachments/initiate", ticketHandler.InitiateAttachment)
	supportRoutes.POST("/tickets/:id/attachments/confirm", ticketHandler.ConfirmAttachment)
	supportRoutes.GET("/tickets/:id/attachments/:attachmentId/download", ticketHandler.DownloadAttachment)

	// Identity domain (users, roles, permissions, tenants)
	identityRoutes := router.NewDomainGroup("identity", "/identity")

	// User management routes
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/stats/count", userHandler.Count)
	identityRoutes.GET("/users/:id", userHandler.GetByID)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.POST("/users/:id/lock", userHandler.Lock)
	identityRoutes.POST("/users/:id/unlock", userHandler.Unlock)
	identityRoutes.POST("/users/:id/reset-password", userHandler.ResetPassword)
	identityRoutes.PUT("/users/:id/roles", userHandler.AssignRoles)

	// Role management routes
	identityRoutes.POST("/roles", roleHandler.Create)
	identityRoutes.GET("/roles", roleHandler.List)
	identityRoutes.GET("/roles/system", roleHandler.GetSystemRoles)
	identityRoutes.GET("/roles/stats/count", roleHandler.Count)
	identityRoutes.GET("/roles/code/:code", roleHandler.GetByCode)
	identityRoutes.GET("/roles/:id", roleHandler.GetByID)
	identityRoutes.PUT("/roles/:id", roleHandler.Update)
	identityRoutes.DELETE("/roles/:id", roleHandler.Delete)
	identityRoutes.POST("/roles/:id/enable", roleHandler.Enable)
	identityRoutes.POST("/roles/:id/disable", roleHandler.Disable)
	identityRoutes.PUT("/roles/:id/permissions", roleHandler.SetPermissions)

	// Permission catalog
	identityRoutes.GET("/permissions", roleHandler.GetPermissions)

	// Tenant management routes
	identityRoutes.POST("/tenants", tenantHandler.Create)
	identityRoutes.GET("/tenants", tenantHandler.List)
	identityRoutes.GET("/tenants/stats", tenantHandler.GetStats)
	identityRoutes.GET("/tenants/stats/count", tenantHandler.Count)
	identityRoutes.GET("/tenants/code/:code", tenantHandler.GetByCode)
	identityRoutes.GET("/tenants/:id", tenantHandler.GetByID)
	identityRoutes.PUT("/tenants/:id", tenantHandler.Update)
	identityRoutes.PUT("/tenants/:id/profile", tenantHandler.UpdateProfile)
	identityRoutes.DELETE("/tenants/:id", tenantHandler.Delete)
	identityRoutes.POST("/tenants/:id/activate", tenantHandler.Activate)
	identityRoutes.POST("/tenants/:id/deactivate", tenantHandler.Deactivate)
	identityRoutes.POST("/tenants/:id/suspend", tenantHandler.Suspend)

	// Feature flag routes
	flagRoutes := router.NewDomainGroup("feature-flags", "/feature-flags")
	flagRoutes.GET("", featureFlagHandler.ListFlags)
	flagRoutes.POST("", featureFlagHandler.CreateFlag)
	flagRoutes.POST("/evaluate-batch", featureFlagHandler.BatchEvaluate)
	flagRoutes.POST("/client-config", featureFlagHandler.GetClientConfig)
	flagRoutes.GET("/:key", featureFlagHandler.GetFlag)
	flagRoutes.PUT("/:key", featureFlagHandler.UpdateFlag)
	flagRoutes.DELETE("/:key", featureFlagHandler.ArchiveFlag)
	flagRoutes.POST("/:key/enable", featureFlagHandler.EnableFlag)
	flagRoutes.POST("/:key/disable", featureFlagHandler.DisableFlag)
	flagRoutes.POST("/:key/evaluate", featureFlagHandler.EvaluateFlag)
	flagRoutes.GET("/:key/overrides", featureFlagHandler.ListOverrides)
	flagRoutes.POST("/:key/overrides", featureFlagHandler.CreateOverride)
	flagRoutes.DELETE("/:key/overrides/:id", featureFlagHandler.DeleteOverride)
	flagRoutes.GET("/:key/audit-logs", featureFlagHandler.GetAuditLogs)
	if sseHandler != nil {
		flagRoutes.GET("/stream", sseHandler.Stream)
	}

	// System routes (info, ping, outbox admin)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/outbox/dead", outboxHandler.GetDeadLetterEntries)
	systemRoutes.GET("/outbox/stats", outboxHandler.GetStats)
	systemRoutes.GET("/outbox/:id", outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", outboxHandler.RetryDeadEntry)
	systemRoutes.POST("/outbox/dead/retry-all", outboxHandler.RetryAllDeadEntries)

	// Register all domain groups
	r.Register(authRoutes).
		Register(hrRoutes).
		Register(financeRoutes).
		Register(crmRoutes).
		Register(mdmRoutes).
		Register(supportRoutes).
		Register(identityRoutes).
		Register(flagRoutes).
		Register(handler.PrintRoutes(printHandler, jwtMiddleware)).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Rendered PDF download (tenant-scoped paths, authenticated)
	engine.GET("/api/v1/prints/:tenant_id/:year/:month/:filename", jwtMiddleware, func(c *gin.Context) {
		printHandler.ServePDF(c, pdfStorage)
	})

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

// tenantPageSize is the batch size used when walking active tenants
const tenantPageSize = 200

// activeTenants adapts the tenant repository to the scheduler's tenant provider
type activeTenants struct {
	tenants identity.TenantRepository
}

func (p *activeTenants) GetAllActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for page := 1; ; page++ {
		batch, err := p.tenants.FindActive(ctx, shared.Filter{Page: page, PageSize: tenantPageSize})
		if err != nil {
			return nil, err
		}
		for i := range batch {
			ids = append(ids, batch[i].ID)
		}
		if len(batch) < tenantPageSize {
			return ids, nil
		}
	}
}

// payrollDrafter drafts the monthly payroll run for each tenant using
// the tenant's default currency. An already existing run for the period
// is treated as success so reruns stay idempotent.
type payrollDrafter struct {
	payroll *hrapp.PayrollService
	tenants identity.TenantRepository
}

func (d *payrollDrafter) DraftMonthlyRun(ctx context.Context, tenantID uuid.UUID, year, month int) error {
	tenant, err := d.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}

	_, err = d.payroll.Create(ctx, hrapp.CreatePayrollRunInput{
		TenantID:         tenantID,
		PeriodYear:       year,
		PeriodMonth:      month,
		Currency:         string(tenant.Profile.DefaultCurrency),
		GeneratePayslips: true,
	})
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == "PERIOD_EXISTS" {
		return nil
	}
	return err
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
