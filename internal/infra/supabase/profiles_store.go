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
// Platform user profiles (`profiles` table)
// (implements port.ProfileStore)
// ============================================================

// UpdateProfileByUserID applies a partial update to the profile row owned by
// userID. Both verification workflows use this to flip is_verified.
func (c *Client) UpdateProfileByUserID(ctx context.Context, userID string, fields map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProfileByUserID")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("profiles?user_id=eq.%s", url.QueryEscape(userID))
	if err := c.patch(ctx, path, fields); err != nil {
		return &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return nil
}

// ListProfiles fetches the fields the dashboard aggregates over, newest first.
func (c *Client) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProfiles")
	defer span.End()

	body, err := c.get(ctx, "profiles?select=id,user_id,user_type,is_verified,full_name,email,created_at&order=created_at.desc")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	rows := []domain.Profile{}
	if body == nil {
		return rows, nil
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return rows, nil
}

// CountBusinesses returns how many rows the businesses table holds.
func (c *Client) CountBusinesses(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountBusinesses")
	defer span.End()

	body, err := c.get(ctx, "businesses?select=id")
	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/businesses", Err: err}
	}
	if body == nil {
		return 0, nil
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode businesses: %w", err)
	}
	return len(rows), nil
}
