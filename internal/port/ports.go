// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/aitimaad/verify-admin-go/internal/domain"
)

// VerificationStore defines data operations for user identity verifications
// (the `verifications` table). Implemented by the Supabase adapter.
type VerificationStore interface {
	ListUserVerifications(ctx context.Context) ([]domain.UserVerification, error)
	GetUserVerification(ctx context.Context, verificationID string) (*domain.UserVerification, error)
	UpdateUserVerification(ctx context.Context, verificationID string, fields map[string]any) error
}

// BusinessVerificationStore defines data operations for business
// registration submissions (`verification_requests`) and the `businesses`
// table they fan out to.
type BusinessVerificationStore interface {
	ListBusinessVerifications(ctx context.Context) ([]domain.BusinessVerification, error)
	GetBusinessVerification(ctx context.Context, verificationID string) (*domain.BusinessVerification, error)
	UpdateBusinessVerification(ctx context.Context, verificationID string, fields map[string]any) error

	// FindBusinessByEmail returns the first business matching the email, or
	// nil when none does. The email is not a foreign key; zero or multiple
	// matches are expected states, not errors.
	FindBusinessByEmail(ctx context.Context, email string) (*domain.Business, error)
	UpdateBusiness(ctx context.Context, businessID string, fields map[string]any) error
}

// ProfileStore defines data operations for the `profiles` table.
type ProfileStore interface {
	UpdateProfileByUserID(ctx context.Context, userID string, fields map[string]any) error
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	CountBusinesses(ctx context.Context) (int, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// ChangeListener delivers row-level table change notifications.
type ChangeListener interface {
	Subscribe(ctx context.Context, handler func(domain.TableChange)) error
	Close()
}
