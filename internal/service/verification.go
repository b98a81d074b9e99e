// Package service implements the review workflows: the ordered writes that
// move a submission out of pending and fan out to the linked records.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/aitimaad/verify-admin-go/internal/infra/observability"
	"github.com/aitimaad/verify-admin-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

// VerificationService handles the user identity verification workflow.
//
// A decision is two independent writes: the verification row first, then the
// owning profile. There is no transaction spanning them: if the profile
// write fails after the verification write succeeded, the two records stay
// inconsistent until corrected by hand. Each write is attempted exactly once.
type VerificationService struct {
	store    port.VerificationStore
	profiles port.ProfileStore
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewVerificationService creates the user verification workflow service.
func NewVerificationService(store port.VerificationStore, profiles port.ProfileStore, metrics *observability.Metrics, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		store:    store,
		profiles: profiles,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns every verification row, newest first, with rendered badges.
// An empty table is an empty slice, never an error.
func (s *VerificationService) List(ctx context.Context) ([]domain.UserVerificationItem, error) {
	ctx, span := tracer.Start(ctx, "VerificationService.List")
	defer span.End()

	rows, err := s.store.ListUserVerifications(ctx)
	if err != nil {
		s.metrics.IncrStoreError("verifications")
		return nil, fmt.Errorf("list verifications: %w", err)
	}

	items := make([]domain.UserVerificationItem, 0, len(rows))
	for _, v := range rows {
		items = append(items, domain.UserVerificationItem{
			UserVerification: v,
			Badge:            domain.BadgeFor(v.Status),
		})
	}
	return items, nil
}

// Get returns one verification row with its badge.
func (s *VerificationService) Get(ctx context.Context, verificationID string) (*domain.UserVerificationItem, error) {
	ctx, span := tracer.Start(ctx, "VerificationService.Get")
	defer span.End()

	v, err := s.store.GetUserVerification(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	return &domain.UserVerificationItem{
		UserVerification: *v,
		Badge:            domain.BadgeFor(v.Status),
	}, nil
}

// Approve marks a verification approved and flips is_verified on the owning
// profile. The verification write is the primary one: if it fails, nothing
// else is attempted. A profile failure after a successful primary write is
// surfaced but not compensated.
func (s *VerificationService) Approve(ctx context.Context, verificationID, userID, adminID string) error {
	ctx, span := tracer.Start(ctx, "VerificationService.Approve")
	defer span.End()
	span.SetAttributes(
		attribute.String("verification.id", verificationID),
		attribute.String("user.id", userID),
	)

	now := s.now().UTC().Format(time.RFC3339)
	if err := s.store.UpdateUserVerification(ctx, verificationID, map[string]any{
		"status":      domain.StatusApproved,
		"reviewed_at": now,
		"reviewed_by": adminID,
	}); err != nil {
		s.metrics.IncrStoreError("verifications")
		return fmt.Errorf("approve verification: %w", err)
	}

	if err := s.profiles.UpdateProfileByUserID(ctx, userID, map[string]any{
		"is_verified": true,
	}); err != nil {
		// The verification row is already approved; the profile is now out
		// of step with it and stays that way.
		s.metrics.IncrStoreError("profiles")
		s.logger.Error("approve: profile update failed after verification write",
			zap.String("verification_id", verificationID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("update profile: %w", err)
	}

	s.metrics.IncrDecision("user", "approved")
	s.logger.Info("verification approved",
		zap.String("verification_id", verificationID),
		zap.String("user_id", userID),
		zap.String("reviewed_by", adminID),
	)
	return nil
}

// Reject marks a verification rejected with the given reason. An empty
// reason aborts silently: no write is issued and no error returned, matching
// the dashboard's cancelled-prompt behavior. No profile mutation on reject.
func (s *VerificationService) Reject(ctx context.Context, verificationID, adminID, reason string) error {
	ctx, span := tracer.Start(ctx, "VerificationService.Reject")
	defer span.End()
	span.SetAttributes(attribute.String("verification.id", verificationID))

	if reason == "" {
		s.logger.Debug("reject skipped: empty reason",
			zap.String("verification_id", verificationID),
		)
		return nil
	}

	now := s.now().UTC().Format(time.RFC3339)
	if err := s.store.UpdateUserVerification(ctx, verificationID, map[string]any{
		"status":           domain.StatusRejected,
		"rejection_reason": reason,
		"reviewed_at":      now,
		"reviewed_by":      adminID,
	}); err != nil {
		s.metrics.IncrStoreError("verifications")
		return fmt.Errorf("reject verification: %w", err)
	}

	s.metrics.IncrDecision("user", "rejected")
	s.logger.Info("verification rejected",
		zap.String("verification_id", verificationID),
		zap.String("reviewed_by", adminID),
	)
	return nil
}
