package handler

import (
	"net/http"
	"time"

	"github.com/aitimaad/verify-admin-go/internal/infra/observability"
	"github.com/aitimaad/verify-admin-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract used by the admin dashboard frontend.
func NewRouter(
	verificationSvc *service.VerificationService,
	businessSvc *service.BusinessService,
	dashboardSvc *service.DashboardService,
	sessionSvc *service.SessionService,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(metricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(verificationSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Session (public login, protected logout)
		// =============================================
		r.Post("/auth/login", loginHandler(sessionSvc, logger))

		r.Group(func(r chi.Router) {
			r.Use(SessionAuthMiddleware(sessionSvc, logger))

			r.Post("/auth/logout", logoutHandler(sessionSvc, logger))

			// =============================================
			// User verifications
			// =============================================
			r.Get("/verifications/users", listUserVerificationsHandler(verificationSvc, logger))
			r.Get("/verifications/users/{verificationId}", getUserVerificationHandler(verificationSvc, logger))
			r.Post("/verifications/users/{verificationId}/approve", approveUserVerificationHandler(verificationSvc, logger))
			r.Post("/verifications/users/{verificationId}/reject", rejectUserVerificationHandler(verificationSvc, logger))

			// =============================================
			// Business verification requests
			// =============================================
			r.Get("/verifications/businesses", listBusinessVerificationsHandler(businessSvc, logger))
			r.Get("/verifications/businesses/{verificationId}", getBusinessVerificationHandler(businessSvc, logger))
			r.Post("/verifications/businesses/{verificationId}/verify", verifyBusinessHandler(businessSvc, logger))
			r.Post("/verifications/businesses/{verificationId}/reject", rejectBusinessHandler(businessSvc, logger))

			// =============================================
			// Dashboard
			// =============================================
			r.Get("/dashboard/stats", dashboardStatsHandler(dashboardSvc, logger))
			r.Get("/metrics/ops", opsMetricsHandler(metrics, logger))
		})
	})

	return r
}

// metricsMiddleware records per-request durations labeled by route pattern.
func metricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			metrics.RecordRequestDuration(r.Method+" "+pattern, time.Since(start))
		})
	}
}

// ============================================================
// Health
// ============================================================

func healthzHandler(verificationSvc *service.VerificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		status := "healthy"
		supabaseStatus := "healthy"

		start := time.Now()
		if _, err := verificationSvc.List(ctx); err != nil {
			supabaseStatus = "degraded"
			status = "degraded"
		}
		latency := time.Since(start).Milliseconds()

		writeJSON(w, http.StatusOK, map[string]any{
			"status": status,
			"services": []map[string]any{
				{"name": "admin-api", "status": "healthy", "latency_ms": 0, "last_checked": now},
				{"name": "supabase", "status": supabaseStatus, "latency_ms": latency, "last_checked": now},
			},
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
