package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/aitimaad/verify-admin-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// User verifications
// ============================================================

func listUserVerificationsHandler(svc *service.VerificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/verifications/users")
		defer span.End()

		items, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"verifications": items})
	}
}

func getUserVerificationHandler(svc *service.VerificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/verifications/users/{verificationId}")
		defer span.End()

		verificationID := chi.URLParam(r, "verificationId")
		span.SetAttributes(attribute.String("verification.id", verificationID))

		item, err := svc.Get(ctx, verificationID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func approveUserVerificationHandler(svc *service.VerificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/verifications/users/{verificationId}/approve")
		defer span.End()

		verificationID := chi.URLParam(r, "verificationId")
		span.SetAttributes(attribute.String("verification.id", verificationID))

		item, err := svc.Get(ctx, verificationID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		adminID := AdminIDFromContext(ctx)
		if err := svc.Approve(ctx, verificationID, item.UserID, adminID); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		items, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.DecisionResponse[domain.UserVerificationItem]{
			Message:       "User verified successfully!",
			Verifications: items,
		})
	}
}

func rejectUserVerificationHandler(svc *service.VerificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/verifications/users/{verificationId}/reject")
		defer span.End()

		verificationID := chi.URLParam(r, "verificationId")
		span.SetAttributes(attribute.String("verification.id", verificationID))

		var req domain.RejectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		adminID := AdminIDFromContext(ctx)
		if err := svc.Reject(ctx, verificationID, adminID, req.Reason); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		items, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.DecisionResponse[domain.UserVerificationItem]{
			Message:       "Verification rejected",
			Verifications: items,
		})
	}
}
