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
// Business verification requests
// ============================================================

func listBusinessVerificationsHandler(svc *service.BusinessService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/verifications/businesses")
		defer span.End()

		items, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"verifications": items})
	}
}

func getBusinessVerificationHandler(svc *service.BusinessService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/verifications/businesses/{verificationId}")
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

func verifyBusinessHandler(svc *service.BusinessService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/verifications/businesses/{verificationId}/verify")
		defer span.End()

		verificationID := chi.URLParam(r, "verificationId")
		span.SetAttributes(attribute.String("verification.id", verificationID))

		if err := svc.Verify(ctx, verificationID); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		items, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.DecisionResponse[domain.BusinessVerificationItem]{
			Message:       "Business verified successfully!",
			Verifications: items,
		})
	}
}

func rejectBusinessHandler(svc *service.BusinessService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/verifications/businesses/{verificationId}/reject")
		defer span.End()

		verificationID := chi.URLParam(r, "verificationId")
		span.SetAttributes(attribute.String("verification.id", verificationID))

		var req domain.RejectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.Reject(ctx, verificationID, req.Reason); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		items, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.DecisionResponse[domain.BusinessVerificationItem]{
			Message:       "Business verification rejected",
			Verifications: items,
		})
	}
}
