// Package domain holds the core entities of the verification admin service:
// verification submissions, the businesses and profiles they fan out to, and
// the API request/response shapes the dashboard consumes.
package domain

// Status values for user identity verifications.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// UserVerification is an identity-document submission awaiting review.
// Rows are created by the platform, never by this service; the workflow
// mutates a row at most once (pending -> approved|rejected).
type UserVerification struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	DocumentType    string  `json:"document_type"`
	FrontImageURL   string  `json:"front_image_url"`
	BackImageURL    string  `json:"back_image_url"`
	Status          string  `json:"status"`
	SubmittedAt     string  `json:"submitted_at"`
	ReviewedAt      *string `json:"reviewed_at"`
	ReviewedBy      *string `json:"reviewed_by"`
	RejectionReason *string `json:"rejection_reason"`
	CreatedAt       string  `json:"created_at"`
}

// BusinessVerification is a business registration submission.
// Status moves pending -> verified|rejected; admin_notes carries the
// rejection reason. The linked Business row is matched by email, not by
// foreign key.
type BusinessVerification struct {
	ID                  string  `json:"id"`
	UserID              string  `json:"user_id"`
	BusinessName        string  `json:"business_name"`
	BusinessEmail       string  `json:"business_email"`
	BusinessPhone       string  `json:"business_phone"`
	BusinessCategory    string  `json:"business_category"`
	BusinessAddress     string  `json:"business_address"`
	BusinessCity        string  `json:"business_city"`
	BusinessDescription string  `json:"business_description"`
	BusinessWebsite     string  `json:"business_website"`
	PreferredContact    string  `json:"preferred_contact"`
	BestTimeToCall      string  `json:"best_time_to_call"`
	AdditionalInfo      string  `json:"additional_info"`
	Status              string  `json:"status"`
	AdminNotes          *string `json:"admin_notes"`
	ContactedAt         *string `json:"contacted_at"`
	ContactedBy         *string `json:"contacted_by"`
	SubmittedAt         string  `json:"submitted_at"`
	VerifiedAt          *string `json:"verified_at"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// Business is the platform's business listing record.
type Business struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Category           string `json:"category"`
	City               string `json:"city"`
	IsVerified         bool   `json:"is_verified"`
	VerificationStatus string `json:"verification_status"`
	CreatedAt          string `json:"created_at"`
}

// Profile is the platform user record. This service only ever touches
// user_type and is_verified (plus display fields for the activity feed).
type Profile struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	UserType   string `json:"user_type"` // "customer" or "business"
	IsVerified bool   `json:"is_verified"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	CreatedAt  string `json:"created_at"`
}

// ============================================================
// API shapes
// ============================================================

// RejectRequest is the body of a reject decision.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// UserVerificationItem is a list/detail row with its rendered badge.
type UserVerificationItem struct {
	UserVerification
	Badge Badge `json:"badge"`
}

// BusinessVerificationItem is a list/detail row with its rendered badge.
type BusinessVerificationItem struct {
	BusinessVerification
	Badge Badge `json:"badge"`
}

// DecisionResponse is returned by approve/verify/reject endpoints; it folds
// the post-decision full re-fetch into the response so the dashboard never
// patches rows locally.
type DecisionResponse[T any] struct {
	Message       string `json:"message"`
	Verifications []T    `json:"verifications"`
}

// LoginRequest carries the admin credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session.
type LoginResponse struct {
	Token     string `json:"token"`
	AdminID   string `json:"admin_id"`
	ExpiresIn int    `json:"expires_in"`
}

// SuccessResponse is a generic message envelope.
type SuccessResponse struct {
	Message string `json:"message"`
}
