package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/aitimaad/verify-admin-go/internal/infra/observability"
	"github.com/aitimaad/verify-admin-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Fakes
// ============================================================

type writeCall struct {
	id     string
	fields map[string]any
}

type fakeVerificationStore struct {
	rows      []domain.UserVerification
	listErr   error
	getErr    error
	updateErr error
	updates   []writeCall
}

func (f *fakeVerificationStore) ListUserVerifications(ctx context.Context) ([]domain.UserVerification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeVerificationStore) GetUserVerification(ctx context.Context, id string) (*domain.UserVerification, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "verification", ID: id}
}

func (f *fakeVerificationStore) UpdateUserVerification(ctx context.Context, id string, fields map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, writeCall{id: id, fields: fields})
	return nil
}

type fakeProfileStore struct {
	profiles      []domain.Profile
	businessCount int
	listCalls     int
	updateErr     error
	updates       []writeCall
}

func (f *fakeProfileStore) UpdateProfileByUserID(ctx context.Context, userID string, fields map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, writeCall{id: userID, fields: fields})
	return nil
}

func (f *fakeProfileStore) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	f.listCalls++
	return f.profiles, nil
}

func (f *fakeProfileStore) CountBusinesses(ctx context.Context) (int, error) {
	return f.businessCount, nil
}

func newVerificationService(store *fakeVerificationStore, profiles *fakeProfileStore) *service.VerificationService {
	return service.NewVerificationService(store, profiles, observability.NewMetrics(), zap.NewNop())
}

// ============================================================
// Tests
// ============================================================

func TestList_RendersBadges(t *testing.T) {
	store := &fakeVerificationStore{rows: []domain.UserVerification{
		{ID: "v1", Status: "pending"},
		{ID: "v2", Status: "approved"},
		{ID: "v3", Status: "rejected"},
	}}
	svc := newVerificationService(store, &fakeProfileStore{})

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Badge.Label != "Pending" || items[0].Badge.Color != "yellow" {
		t.Errorf("unexpected pending badge: %+v", items[0].Badge)
	}
	if items[1].Badge.Label != "Approved" || items[1].Badge.Color != "green" {
		t.Errorf("unexpected approved badge: %+v", items[1].Badge)
	}
	if items[2].Badge.Label != "Rejected" || items[2].Badge.Color != "red" {
		t.Errorf("unexpected rejected badge: %+v", items[2].Badge)
	}
}

func TestList_EmptyTableIsEmptySlice(t *testing.T) {
	svc := newVerificationService(&fakeVerificationStore{}, &fakeProfileStore{})

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(items) != 0 {
		t.Fatalf("expected 0 items, got %d", len(items))
	}
}

func TestApprove_WritesVerificationThenProfile(t *testing.T) {
	store := &fakeVerificationStore{rows: []domain.UserVerification{{ID: "v1", UserID: "u1", Status: "pending"}}}
	profiles := &fakeProfileStore{}
	svc := newVerificationService(store, profiles)

	if err := svc.Approve(context.Background(), "v1", "u1", "admin-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.updates) != 1 {
		t.Fatalf("expected 1 verification write, got %d", len(store.updates))
	}
	w := store.updates[0]
	if w.id != "v1" {
		t.Errorf("expected write to v1, got %s", w.id)
	}
	if w.fields["status"] != domain.StatusApproved {
		t.Errorf("expected status approved, got %v", w.fields["status"])
	}
	if w.fields["reviewed_by"] != "admin-1" {
		t.Errorf("expected reviewed_by admin-1, got %v", w.fields["reviewed_by"])
	}
	if _, ok := w.fields["reviewed_at"]; !ok {
		t.Error("expected reviewed_at to be set")
	}

	if len(profiles.updates) != 1 {
		t.Fatalf("expected 1 profile write, got %d", len(profiles.updates))
	}
	p := profiles.updates[0]
	if p.id != "u1" {
		t.Errorf("expected profile write keyed by user u1, got %s", p.id)
	}
	if p.fields["is_verified"] != true {
		t.Errorf("expected is_verified true, got %v", p.fields["is_verified"])
	}
}

func TestApprove_PrimaryWriteFailureSkipsProfile(t *testing.T) {
	store := &fakeVerificationStore{updateErr: errors.New("db down")}
	profiles := &fakeProfileStore{}
	svc := newVerificationService(store, profiles)

	if err := svc.Approve(context.Background(), "v1", "u1", "admin-1"); err == nil {
		t.Fatal("expected error")
	}
	if len(profiles.updates) != 0 {
		t.Fatalf("expected no profile write after primary failure, got %d", len(profiles.updates))
	}
}

func TestApprove_ProfileFailureIsNotCompensated(t *testing.T) {
	store := &fakeVerificationStore{rows: []domain.UserVerification{{ID: "v1", UserID: "u1"}}}
	profiles := &fakeProfileStore{updateErr: errors.New("db down")}
	svc := newVerificationService(store, profiles)

	if err := svc.Approve(context.Background(), "v1", "u1", "admin-1"); err == nil {
		t.Fatal("expected error surfaced from profile write")
	}

	// The verification write already happened and stays as-is.
	if len(store.updates) != 1 {
		t.Fatalf("expected verification write to remain, got %d writes", len(store.updates))
	}
}

func TestReject_WritesReasonVerbatim(t *testing.T) {
	store := &fakeVerificationStore{}
	profiles := &fakeProfileStore{}
	svc := newVerificationService(store, profiles)

	reason := "  Blurry photo, please resubmit. "
	if err := svc.Reject(context.Background(), "v1", "admin-1", reason); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.updates) != 1 {
		t.Fatalf("expected 1 write, got %d", len(store.updates))
	}
	w := store.updates[0]
	if w.fields["status"] != domain.StatusRejected {
		t.Errorf("expected status rejected, got %v", w.fields["status"])
	}
	if w.fields["rejection_reason"] != reason {
		t.Errorf("expected reason stored verbatim, got %v", w.fields["rejection_reason"])
	}
	if len(profiles.updates) != 0 {
		t.Fatalf("reject must not touch profiles, got %d writes", len(profiles.updates))
	}
}

func TestReject_EmptyReasonIsSilentNoOp(t *testing.T) {
	store := &fakeVerificationStore{}
	profiles := &fakeProfileStore{}
	svc := newVerificationService(store, profiles)

	if err := svc.Reject(context.Background(), "v1", "admin-1", ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(store.updates) != 0 || len(profiles.updates) != 0 {
		t.Fatal("expected zero writes on empty reason")
	}
}
