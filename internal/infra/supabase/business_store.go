package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aitimaad/verify-admin-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Business registration submissions (`verification_requests` table)
// and the `businesses` table they mirror into.
// (implements port.BusinessVerificationStore)
// ============================================================

// ListBusinessVerifications fetches every submission, newest first.
func (c *Client) ListBusinessVerifications(ctx context.Context) ([]domain.BusinessVerification, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBusinessVerifications")
	defer span.End()

	body, err := c.get(ctx, "verification_requests?select=*&order=created_at.desc")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/verification_requests", Err: err}
	}

	rows := []domain.BusinessVerification{}
	if body == nil {
		return rows, nil
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode verification_requests: %w", err)
	}
	return rows, nil
}

// GetBusinessVerification fetches a single submission by id.
func (c *Client) GetBusinessVerification(ctx context.Context, verificationID string) (*domain.BusinessVerification, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBusinessVerification")
	defer span.End()
	span.SetAttributes(attribute.String("verification.id", verificationID))

	path := fmt.Sprintf("verification_requests?id=eq.%s&limit=1", url.QueryEscape(verificationID))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/verification_requests", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "verification_request", ID: verificationID}
	}

	var rows []domain.BusinessVerification
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode verification_request: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "verification_request", ID: verificationID}
	}
	return &rows[0], nil
}

// UpdateBusinessVerification applies a partial update to a submission row.
func (c *Client) UpdateBusinessVerification(ctx context.Context, verificationID string, fields map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBusinessVerification")
	defer span.End()
	span.SetAttributes(attribute.String("verification.id", verificationID))

	path := fmt.Sprintf("verification_requests?id=eq.%s", url.QueryEscape(verificationID))
	if err := c.patch(ctx, path, fields); err != nil {
		return &domain.ErrExternalService{Service: "supabase/verification_requests", Err: err}
	}
	return nil
}

// FindBusinessByEmail looks up the business listing matching a submission's
// email. The email is not a foreign key: zero matches returns (nil, nil) and
// multiple matches yield only the oldest row, so the caller never
// double-updates. PostgREST row order is unspecified without an explicit
// order clause, so one is always sent.
func (c *Client) FindBusinessByEmail(ctx context.Context, email string) (*domain.Business, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindBusinessByEmail")
	defer span.End()

	path := fmt.Sprintf("businesses?email=eq.%s&order=created_at.asc&limit=1", url.QueryEscape(email))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/businesses", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.Business
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode businesses: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpdateBusiness applies a partial update to a business listing row.
func (c *Client) UpdateBusiness(ctx context.Context, businessID string, fields map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBusiness")
	defer span.End()
	span.SetAttributes(attribute.String("business.id", businessID))

	path := fmt.Sprintf("businesses?id=eq.%s", url.QueryEscape(businessID))
	if err := c.patch(ctx, path, fields); err != nil {
		return &domain.ErrExternalService{Service: "supabase/businesses", Err: err}
	}
	return nil
}
