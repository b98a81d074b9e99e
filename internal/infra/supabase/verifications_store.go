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
// User identity verifications (`verifications` table)
// (implements port.VerificationStore)
// ============================================================

// ListUserVerifications fetches every verification row, newest first.
// The dashboard renders the full collection; there is no pagination.
func (c *Client) ListUserVerifications(ctx context.Context) ([]domain.UserVerification, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUserVerifications")
	defer span.End()

	body, err := c.get(ctx, "verifications?select=*&order=created_at.desc")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/verifications", Err: err}
	}

	rows := []domain.UserVerification{}
	if body == nil {
		return rows, nil
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode verifications: %w", err)
	}
	return rows, nil
}

// GetUserVerification fetches a single verification row by id.
func (c *Client) GetUserVerification(ctx context.Context, verificationID string) (*domain.UserVerification, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserVerification")
	defer span.End()
	span.SetAttributes(attribute.String("verification.id", verificationID))

	path := fmt.Sprintf("verifications?id=eq.%s&limit=1", url.QueryEscape(verificationID))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/verifications", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "verification", ID: verificationID}
	}

	var rows []domain.UserVerification
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode verification: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "verification", ID: verificationID}
	}
	return &rows[0], nil
}

// UpdateUserVerification applies a partial update to a verification row.
func (c *Client) UpdateUserVerification(ctx context.Context, verificationID string, fields map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateUserVerification")
	defer span.End()
	span.SetAttributes(attribute.String("verification.id", verificationID))

	path := fmt.Sprintf("verifications?id=eq.%s", url.QueryEscape(verificationID))
	if err := c.patch(ctx, path, fields); err != nil {
		return &domain.ErrExternalService{Service: "supabase/verifications", Err: err}
	}
	return nil
}
