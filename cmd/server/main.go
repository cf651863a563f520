package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subtrackr/internal/billing"
	"subtrackr/internal/config"
	"subtrackr/internal/database"
	"subtrackr/internal/handlers"
	"subtrackr/internal/middleware"
	"subtrackr/internal/repositories"
	"subtrackr/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db.DB)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db.DB)
	blacklistedTokenRepo := repositories.NewBlacklistedTokenRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)
	providerRepo := repositories.NewProviderRepository(db.DB)
	subscriptionRepo := repositories.NewSubscriptionRepository(db.DB)

	// Services
	metrics := services.NewPrometheusMetrics()
	clock := billing.RealClock{}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	passwordService := services.NewPasswordService()
	tokenService := services.NewTokenService(&cfg.JWT)
	authService := services.NewAuthService(
		userRepo, refreshTokenRepo, auditRepo, blacklistedTokenRepo,
		passwordService, tokenService, metrics, logger)
	subscriptionService := services.NewSubscriptionService(
		subscriptionRepo, providerRepo, auditRepo, clock, rng, metrics, logger)
	providerService := services.NewProviderService(
		providerRepo, subscriptionRepo, auditRepo, clock, metrics, logger)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		hash, err := passwordService.HashPassword(cfg.Admin.Password)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		if _, err := db.SeedAdminUser(cfg.Admin.Email, hash, cfg.Admin.FirstName, cfg.Admin.LastName); err != nil {
			log.Fatalf("Failed to seed admin user: %v", err)
		}
		logger.Info("admin user seeded", "email", cfg.Admin.Email)
	}

	// Expired refresh and blacklisted tokens are purged hourly
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.CleanupExpiredTokens(); err != nil {
				logger.Error("token cleanup failed", "error", err)
			}
		}
	}()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	providerHandler := handlers.NewProviderHandler(providerService)
	adminHandler := handlers.NewAdminHandler(providerService, subscriptionService, auditRepo)
	healthHandler := handlers.NewHealthCheckHandler(db.DB)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitPerSecond*2))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, middleware.RequireAuth(tokenService, blacklistedTokenRepo))

	requireAuth := middleware.RequireAuth(tokenService, blacklistedTokenRepo)

	subscriptions := api.Group("/subscriptions", requireAuth)
	subscriptions.POST("", subscriptionHandler.CreateSubscription)
	subscriptions.GET("", subscriptionHandler.ListSubscriptions)
	subscriptions.GET("/summary", subscriptionHandler.GetSummary)
	subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
	subscriptions.PUT("/:id", subscriptionHandler.UpdateSubscription)
	subscriptions.DELETE("/:id", subscriptionHandler.DeleteSubscription)

	// Catalog reads are public so the builtin catalog is browsable before signup
	providers := api.Group("/providers")
	providers.GET("", providerHandler.ListProviders)
	providers.GET("/search", providerHandler.SearchProviders)

	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	admin.POST("/providers", providerHandler.CreateProvider)
	admin.PUT("/providers/:id", providerHandler.UpdateProvider)
	admin.DELETE("/providers/:id", providerHandler.DeleteProvider)
	admin.POST("/providers/:id/verify", providerHandler.VerifyProvider)
	admin.POST("/reconcile", adminHandler.Reconcile)
	admin.PUT("/subscriptions/:id/provider", adminHandler.OverrideSubscriptionProvider)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", "addr", server.Addr, "env", cfg.Server.Environment)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server")
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
}
