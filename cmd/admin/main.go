package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aitimaad/verify-admin-go/internal/config"
	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/aitimaad/verify-admin-go/internal/handler"
	"github.com/aitimaad/verify-admin-go/internal/infra/cache"
	"github.com/aitimaad/verify-admin-go/internal/infra/messaging"
	"github.com/aitimaad/verify-admin-go/internal/infra/observability"
	"github.com/aitimaad/verify-admin-go/internal/infra/resilience"
	"github.com/aitimaad/verify-admin-go/internal/infra/supabase"
	"github.com/aitimaad/verify-admin-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Bool("nats_enabled", cfg.NATSURL != ""),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.OTLPEndpoint, "verify-admin")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	statsCache := cache.New[domain.DashboardStats](cfg.CacheTTL)
	revokedSessions := cache.New[bool](cfg.SessionTTL)

	// --- Supabase store ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	cb := resilience.NewCircuitBreaker("supabase")
	store := supabase.NewClient(httpClient, cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey, cb, logger)

	// --- Services ---
	verificationSvc := service.NewVerificationService(store, store, metrics, logger)
	businessSvc := service.NewBusinessService(store, store, metrics, logger)
	dashboardSvc := service.NewDashboardService(store, statsCache, metrics, logger)
	sessionSvc := service.NewSessionService(
		cfg.AdminEmail,
		cfg.AdminPassword,
		cfg.AdminPasswordHash,
		cfg.JWTSecret,
		cfg.SessionTTL,
		revokedSessions,
		logger,
	)

	// --- Change notifications ---
	rootCtx, stopListening := context.WithCancel(context.Background())
	defer stopListening()

	if cfg.NATSURL != "" {
		retryCfg := resilience.RetryConfig{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
		}
		listener, err := messaging.NewNATSListener(rootCtx, cfg.NATSURL, retryCfg, cfg.MaxConcurrency, logger)
		if err != nil {
			logger.Error("NATS unavailable, dashboard stats fall back to pull-only refresh", zap.Error(err))
		} else {
			defer listener.Close()
			if err := listener.Subscribe(rootCtx, func(change domain.TableChange) {
				dashboardSvc.OnChange(rootCtx, change)
			}); err != nil {
				logger.Error("failed to subscribe to table changes", zap.Error(err))
			}
		}
	} else {
		logger.Info("NATS not configured, dashboard stats refresh on cache expiry only")
	}

	// --- Router ---
	router := handler.NewRouter(verificationSvc, businessSvc, dashboardSvc, sessionSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
