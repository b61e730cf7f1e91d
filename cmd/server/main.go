package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	analyticsapp "github.com/shopfront/backend/internal/application/analytics"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	identityapp "github.com/shopfront/backend/internal/application/identity"
	marketingapp "github.com/shopfront/backend/internal/application/marketing"
	shoppingapp "github.com/shopfront/backend/internal/application/shopping"
	siteapp "github.com/shopfront/backend/internal/application/site"
	tradeapp "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/site"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/billing"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/event"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/ratelimit"
	"github.com/shopfront/backend/internal/infrastructure/scheduler"
	"github.com/shopfront/backend/internal/infrastructure/storage"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/shopfront/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:generate swag init --v3.1 -g cmd/server/main.go -d ../../ -o ../../docs --parseInternal

//	@title			Shopfront API
//	@version		1.0
//	@description	E-commerce storefront and admin console backend

//	@contact.name	Shopfront API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	settingsCacheTTL = 5 * time.Minute
	shutdownTimeout  = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log := logger.New(logCfg)

	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	if cfg.Telemetry.LogsEnabled {
		log = logger.New(logCfg, tel.LogCore(logger.ParseLevel(cfg.Log.Level)))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Shopfront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := tel.InstrumentDB(db.DB); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		log.Warn("Redis disabled; token blacklist, rate limits and caches are process-local")
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	adminRepo := persistence.NewGormAdminRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	importRepo := persistence.NewGormProductImportRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	wishlistRepo := persistence.NewGormWishlistRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	subscriberRepo := persistence.NewGormSubscriberRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Process-local or Redis-backed infrastructure
	var (
		blacklist     auth.TokenBlacklist
		idempotency   shared.IdempotencyStore
		settingsCache site.SettingsCache
	)
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		idempotency = cache.NewRedisIdempotencyStore(redisClient, "shopfront:webhook:")
		settingsCache = cache.NewRedisSettingsCache(redisClient, settingsCacheTTL, log)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		memStore := cache.NewInMemoryIdempotencyStore()
		defer func() { _ = memStore.Close() }()
		idempotency = memStore
		settingsCache = cache.NewInMemorySettingsCache(settingsCacheTTL)
	}

	mediaStorage, err := newMediaStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	var payments tradeapp.PaymentGateway
	if cfg.Payment.Enabled {
		gateway, err := billing.NewStripeGateway(billing.StripeConfigFrom(cfg.Payment), log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe", zap.Error(err))
		}
		payments = gateway
		log.Info("Card payments enabled")
	} else {
		log.Warn("Card payments disabled; checkout accepts cash on delivery only")
	}

	// Domain events fan out to in-process handlers and, when enabled, Kafka
	meter := tel.Meter("shopfront")
	shopMetrics, err := telemetry.NewShopMetrics(meter, productRepo.CountLowStock)
	if err != nil {
		log.Fatal("Failed to register shop metrics", zap.Error(err))
	}
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.LoggingHandler(log))
	bus.Subscribe(shopMetrics)
	publisher := event.Fanout{bus}
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := event.NewKafkaPublisher(cfg.Kafka, log)
		if err != nil {
			log.Fatal("Failed to initialize Kafka publisher", zap.Error(err))
		}
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("Error closing Kafka publisher", zap.Error(err))
			}
		}()
		publisher = append(publisher, kafkaPublisher)
		log.Info("Kafka event publishing enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	limits := catalogapp.UploadLimits{
		MaxImageSize:    cfg.Upload.MaxImageSize,
		MaxVideoSize:    cfg.Upload.MaxVideoSize,
		MaxBulkSize:     cfg.Upload.MaxBulkSize,
		MaxImagesPerReq: cfg.Upload.MaxImagesPerReq,
	}

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, txManager, publisher, log)
	adminAuthService := identityapp.NewAdminAuthService(adminRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, jwtService, blacklist, publisher, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, cartRepo, mediaStorage, limits, publisher, log)
	importService := catalogapp.NewImportService(productRepo, categoryRepo, importRepo, limits, publisher, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, txManager, publisher, log)
	reviewService := catalogapp.NewReviewService(reviewRepo, productRepo, orderRepo, txManager, log)
	cartService := shoppingapp.NewCartService(cartRepo, productRepo, log)
	wishlistService := shoppingapp.NewWishlistService(wishlistRepo, productRepo, cartService, log)
	settingsService := siteapp.NewSettingsService(settingsRepo, settingsCache, log)
	checkoutService := tradeapp.NewCheckoutService(cartRepo, productRepo, orderRepo, userRepo, settingsService, payments, txManager, publisher, log)
	orderService := tradeapp.NewOrderService(orderRepo, productRepo, payments, txManager, publisher, log)
	webhookService := tradeapp.NewWebhookService(payments, orderRepo, idempotency, publisher, log)
	newsletterService := marketingapp.NewNewsletterService(subscriberRepo, log)
	contactService := marketingapp.NewContactService(contactRepo, log)
	analyticsService := analyticsapp.NewAnalyticsService(orderRepo, userRepo, productRepo, log)

	if err := adminAuthService.Bootstrap(ctx, cfg.Admin); err != nil {
		log.Fatal("Failed to bootstrap admin account", zap.Error(err))
	}

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService, cfg.Cookie),
		AdminAuth:  handler.NewAdminAuthHandler(adminAuthService, cfg.Cookie),
		Product:    handler.NewProductHandler(productService, importService),
		Category:   handler.NewCategoryHandler(categoryService),
		Review:     handler.NewReviewHandler(reviewService),
		Cart:       handler.NewCartHandler(cartService),
		Wishlist:   handler.NewWishlistHandler(wishlistService),
		Order:      handler.NewOrderHandler(checkoutService, orderService),
		Webhook:    handler.NewWebhookHandler(webhookService),
		Newsletter: handler.NewNewsletterHandler(newsletterService),
		Contact:    handler.NewContactHandler(contactService),
		Settings:   handler.NewSettingsHandler(settingsService),
		User:       handler.NewUserHandler(userService),
		Analytics:  handler.NewAnalyticsHandler(analyticsService),
	}

	healthChecks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, "1.0.0", healthChecks)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request ID, logger, recovery, tracing, security
	// headers, CORS, body limit, metrics, profiling labels, rate limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tel.TracingEnabled()))
	engine.Use(middleware.SpanEnricher())

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()
	engine.Use(middleware.SecureWithConfig(security))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilerEnabled))

	guards := router.Guards{
		Customer: middleware.CustomerAuth(jwtService, blacklist, log),
		Admin:    middleware.AdminAuth(jwtService, blacklist, log),
	}
	apiRouter := router.NewRouter(engine, router.WithAPIVersion("v1"))
	if cfg.HTTP.RateLimitEnabled {
		newLimiter := limiterFactory(redisClient)
		apiRouter.Use(middleware.RateLimit(
			newLimiter("api", ratelimit.Config{Limit: cfg.HTTP.RateLimitRequests, Window: cfg.HTTP.RateLimitWindow}), "api", shopMetrics))
		guards.AuthLimit = middleware.RateLimit(
			newLimiter("auth", ratelimit.Config{Limit: cfg.HTTP.AuthRateLimitRequests, Window: cfg.HTTP.AuthRateLimitWindow}), "auth", shopMetrics)
		guards.ContactLimit = middleware.RateLimit(
			newLimiter("contact", ratelimit.Config{Limit: cfg.HTTP.ContactRateLimitRequests, Window: cfg.HTTP.ContactRateLimitWindow}), "contact", shopMetrics)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.GET("/health", systemHandler.Health)
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(true, cfg.Swagger.AllowedIPs),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiRouter.Register(router.ShopRoutes(handlers, guards)...).Setup()

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(scheduler.Config{
			JobTimeout:    cfg.Scheduler.JobTimeout,
			RetryAttempts: cfg.Scheduler.RetryAttempts,
			RetryDelay:    cfg.Scheduler.RetryDelay,
		}, log)
		task := scheduler.AbandonedOrderTask(orderService, cfg.Scheduler.AbandonedOrderMaxAge, log)
		if err := jobs.Every(cfg.Scheduler.AbandonedOrderInterval, task); err != nil {
			log.Fatal("Failed to schedule abandoned order expiry", zap.Error(err))
		}
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler did not stop cleanly", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// newMediaStorage returns S3 storage when configured. Without it uploads are
// kept in process memory, which only suits local development.
func newMediaStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalogapp.MediaStorage, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled; uploaded media is held in memory")
		return storage.NewMemoryMediaStorage(cfg.Storage.PublicURL), nil
	}
	s3, err := storage.NewS3MediaStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))
	return s3, nil
}

// limiterFactory shares Redis counters across instances when Redis is up
func limiterFactory(client redis.UniversalClient) func(scope string, cfg ratelimit.Config) ratelimit.Limiter {
	return func(scope string, cfg ratelimit.Config) ratelimit.Limiter {
		if client != nil {
			return ratelimit.NewRedisLimiter(client, "shopfront:ratelimit:"+scope+":", cfg)
		}
		return ratelimit.NewMemoryLimiter(cfg)
	}
}
