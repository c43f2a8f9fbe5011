package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/getmentor/mentorship-api/config"
	"github.com/getmentor/mentorship-api/internal/cache"
	"github.com/getmentor/mentorship-api/internal/handlers"
	"github.com/getmentor/mentorship-api/internal/middleware"
	"github.com/getmentor/mentorship-api/internal/repository"
	"github.com/getmentor/mentorship-api/internal/repository/memory"
	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/getmentor/mentorship-api/pkg/db"
	"github.com/getmentor/mentorship-api/pkg/httpclient"
	"github.com/getmentor/mentorship-api/pkg/jwt"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/profiling"
	"github.com/getmentor/mentorship-api/pkg/storage"
	"github.com/getmentor/mentorship-api/pkg/tracing"
	"github.com/getmentor/mentorship-api/pkg/trigger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// stores bundles the persistence layer chosen at startup
type stores struct {
	profiles repository.ProfileStore
	requests repository.RequestStore
	reviews  repository.ReviewStore
	health   repository.HealthChecker
	close    func()
}

func newStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Database.WorkOffline {
		logger.Warn("DB_WORK_OFFLINE is set: using the in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &stores{
			profiles: store,
			requests: store,
			reviews:  store,
			health:   store,
			close:    func() {},
		}, nil
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
		TLS: db.TLSConfig{
			CAFile:     cfg.Database.TLSCAFile,
			ServerName: cfg.Database.TLSServerName,
		},
	})
	if err != nil {
		return nil, err
	}

	reviewRepo := repository.NewReviewRepository(pool)
	return &stores{
		profiles: repository.NewProfileRepository(pool),
		requests: repository.NewRequestRepository(pool, reviewRepo),
		reviews:  reviewRepo,
		health:   repository.NewPoolHealthChecker(pool),
		close:    func() { db.Close(pool) },
	}, nil
}

// newProfileCache prefers a shared Redis cache and falls back to an in-process one
func newProfileCache(ctx context.Context, cfg *config.Config) (cache.ProfileCache, func()) {
	if cfg.Cache.DisableProfiles {
		logger.Warn("Profile cache is DISABLED - reading from the database on every lookup")
		return cache.NopProfileCache{}, func() {}
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("Invalid REDIS_URL, using local profile cache", zap.Error(err))
		} else {
			rdb := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := rdb.Ping(pingCtx).Err(); err != nil {
				logger.Error("Redis unreachable, using local profile cache", zap.Error(err))
				_ = rdb.Close() //nolint:errcheck
			} else {
				logger.Info("Using Redis profile cache", zap.String("addr", opts.Addr))
				return cache.NewRedisProfileCache(rdb, cfg.Cache.ProfileTTLSeconds), func() { _ = rdb.Close() } //nolint:errcheck
			}
		}
	}

	return cache.NewLocalProfileCache(cfg.Cache.ProfileTTLSeconds), func() {}
}

func newFileStorage(cfg *config.Config) services.FileStorage {
	if !cfg.StorageEnabled() {
		logger.Warn("Object storage not configured: resume uploads will be rejected")
		return nil
	}

	client, err := storage.NewClient(storage.Options{
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		BucketName:      cfg.Storage.BucketName,
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
	})
	if err != nil {
		logger.Fatal("Failed to initialize object storage client", zap.Error(err))
	}
	return client
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Mentorship API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.Start(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics(rootCtx, 15*time.Second)

	// NOTE: migrations run separately via cmd/migrate before the API starts
	st, err := newStores(rootCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer st.close()

	profileCache, closeCache := newProfileCache(rootCtx, cfg)
	defer closeCache()

	notifier := trigger.NewNotifier(httpclient.New("notification_trigger", httpclient.WithTimeout(10*time.Second)))
	tokenManager := jwt.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.JWTIssuer, cfg.Session.SessionTTLHours)

	// Initialize services
	directoryService := services.NewMentorDirectoryService(st.profiles, profileCache)
	ledgerService := services.NewRequestLedgerService(st.requests, st.profiles, notifier, cfg)
	reviewService := services.NewReviewService(st.reviews, services.NewRoleResolver(st.reviews), newFileStorage(cfg), notifier, cfg)
	engagementService := services.NewEngagementService(ledgerService, cfg)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(st.health)
	apiHandlers := handlers.Handlers{
		Profiles: handlers.NewProfileHandler(directoryService),
		Requests: handlers.NewMentorshipRequestHandler(ledgerService, engagementService),
		Reviews:  handlers.NewReviewHandler(reviewService),
	}

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for session cookies
		MaxAge:           12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(rootCtx, 100, 200) // 100 req/sec, burst of 200
	userRateLimiter := middleware.NewRateLimiter(rootCtx, 10, 30)      // 10 req/sec per user, burst of 30

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	handlers.RegisterV1Routes(router.Group("/api/v1"), apiHandlers,
		middleware.SessionMiddleware(tokenManager, cfg.Session.CookieName),
		userRateLimiter.Middleware())

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second, // resume uploads
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// let in-flight notification webhooks finish
	notifier.Wait()
	stop()

	logger.Info("Server exited")
}
