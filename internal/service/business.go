package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/aitimaad/verify-admin-go/internal/infra/observability"
	"github.com/aitimaad/verify-admin-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// BusinessService handles the business registration review workflow.
//
// Verify is three sequential writes: the verification_requests row (primary),
// then best-effort mirrors onto the businesses row matched by email and onto
// the submitter's profile. The mirrors are looked up by email, not foreign
// key; when no business matches, none is created; the gap is logged and the
// operation still reports success. Re-verifying an already-verified row
// re-applies every write; there is no idempotence guard.
type BusinessService struct {
	store    port.BusinessVerificationStore
	profiles port.ProfileStore
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewBusinessService creates the business verification workflow service.
func NewBusinessService(store port.BusinessVerificationStore, profiles port.ProfileStore, metrics *observability.Metrics, logger *zap.Logger) *BusinessService {
	return &BusinessService{
		store:    store,
		profiles: profiles,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns every submission, newest first, with rendered badges.
func (s *BusinessService) List(ctx context.Context) ([]domain.BusinessVerificationItem, error) {
	ctx, span := tracer.Start(ctx, "BusinessService.List")
	defer span.End()

	rows, err := s.store.ListBusinessVerifications(ctx)
	if err != nil {
		s.metrics.IncrStoreError("verification_requests")
		return nil, fmt.Errorf("list verification requests: %w", err)
	}

	items := make([]domain.BusinessVerificationItem, 0, len(rows))
	for _, v := range rows {
		items = append(items, domain.BusinessVerificationItem{
			BusinessVerification: v,
			Badge:                domain.BadgeFor(v.Status),
		})
	}
	return items, nil
}

// Get returns one submission with its badge.
func (s *BusinessService) Get(ctx context.Context, verificationID string) (*domain.BusinessVerificationItem, error) {
	ctx, span := tracer.Start(ctx, "BusinessService.Get")
	defer span.End()

	v, err := s.store.GetBusinessVerification(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	return &domain.BusinessVerificationItem{
		BusinessVerification: *v,
		Badge:                domain.BadgeFor(v.Status),
	}, nil
}

// Verify marks a submission verified and mirrors the verified state onto the
// matched business row and the submitter's profile, best effort.
func (s *BusinessService) Verify(ctx context.Context, verificationID string) error {
	ctx, span := tracer.Start(ctx, "BusinessService.Verify")
	defer span.End()
	span.SetAttributes(attribute.String("verification.id", verificationID))

	// The submission holds the business_email and user_id the mirrors key on.
	verification, err := s.store.GetBusinessVerification(ctx, verificationID)
	if err != nil {
		return err
	}

	now := s.now().UTC().Format(time.RFC3339)
	if err := s.store.UpdateBusinessVerification(ctx, verificationID, map[string]any{
		"status":      domain.StatusVerified,
		"verified_at": now,
		"updated_at":  now,
	}); err != nil {
		s.metrics.IncrStoreError("verification_requests")
		return fmt.Errorf("verify business: %w", err)
	}

	s.mirrorBusiness(ctx, verification.BusinessEmail, map[string]any{
		"is_verified":         true,
		"verification_status": domain.StatusVerified,
		"updated_at":          now,
	})

	if err := s.profiles.UpdateProfileByUserID(ctx, verification.UserID, map[string]any{
		"is_verified": true,
	}); err != nil {
		s.metrics.IncrStoreError("profiles")
		s.logger.Error("verify: profile update failed",
			zap.String("verification_id", verificationID),
			zap.String("user_id", verification.UserID),
			zap.Error(err),
		)
	}

	s.metrics.IncrDecision("business", "verified")
	s.logger.Info("business verified",
		zap.String("verification_id", verificationID),
		zap.String("business_email", verification.BusinessEmail),
	)
	return nil
}

// Reject marks a submission rejected, storing the reason in admin_notes, and
// mirrors the rejected state onto the matched business row if one exists.
// An empty reason is a silent no-op. No profile mutation on reject.
func (s *BusinessService) Reject(ctx context.Context, verificationID, reason string) error {
	ctx, span := tracer.Start(ctx, "BusinessService.Reject")
	defer span.End()
	span.SetAttributes(attribute.String("verification.id", verificationID))

	if reason == "" {
		s.logger.Debug("reject skipped: empty reason",
			zap.String("verification_id", verificationID),
		)
		return nil
	}

	verification, err := s.store.GetBusinessVerification(ctx, verificationID)
	if err != nil {
		return err
	}

	now := s.now().UTC().Format(time.RFC3339)
	if err := s.store.UpdateBusinessVerification(ctx, verificationID, map[string]any{
		"status":      domain.StatusRejected,
		"admin_notes": reason,
		"updated_at":  now,
	}); err != nil {
		s.metrics.IncrStoreError("verification_requests")
		return fmt.Errorf("reject business: %w", err)
	}

	s.mirrorBusiness(ctx, verification.BusinessEmail, map[string]any{
		"is_verified":         false,
		"verification_status": domain.StatusRejected,
		"updated_at":          now,
	})

	s.metrics.IncrDecision("business", "rejected")
	s.logger.Info("business verification rejected",
		zap.String("verification_id", verificationID),
	)
	return nil
}

// mirrorBusiness looks up the business row by email and applies fields to the
// first match. Lookup failure, update failure and zero matches are all
// logged only; the decision has already been committed to the primary row.
func (s *BusinessService) mirrorBusiness(ctx context.Context, email string, fields map[string]any) {
	business, err := s.store.FindBusinessByEmail(ctx, email)
	if err != nil {
		s.metrics.IncrStoreError("businesses")
		s.logger.Error("business lookup failed",
			zap.String("business_email", email),
			zap.Error(err),
		)
		return
	}
	if business == nil {
		s.logger.Warn("no business found for email; listing left untouched",
			zap.String("business_email", email),
		)
		return
	}

	if err := s.store.UpdateBusiness(ctx, business.ID, fields); err != nil {
		s.metrics.IncrStoreError("businesses")
		s.logger.Error("business mirror update failed",
			zap.String("business_id", business.ID),
			zap.String("business_email", email),
			zap.Error(err),
		)
	}
}
