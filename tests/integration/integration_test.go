package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/aitimaad/verify-admin-go/internal/handler"
	"github.com/aitimaad/verify-admin-go/internal/infra/cache"
	"github.com/aitimaad/verify-admin-go/internal/infra/observability"
	"github.com/aitimaad/verify-admin-go/internal/infra/resilience"
	"github.com/aitimaad/verify-admin-go/internal/infra/supabase"
	"github.com/aitimaad/verify-admin-go/internal/service"

	"go.uber.org/zap"
)

// fakePostgREST is an in-memory stand-in for the Supabase REST backend.
type fakePostgREST struct {
	mu            sync.Mutex
	verifications []map[string]any
	submissions   []map[string]any
	businesses    []map[string]any
	profiles      []map[string]any
	patches       []string // "<table>:<query>"
}

func (f *fakePostgREST) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		rows := f.tableRows(table)
		if rows == nil {
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			out := rows
			if id := eqFilter(r.URL.Query().Get("id")); id != "" {
				out = filterBy(rows, "id", id)
			}
			if email := eqFilter(r.URL.Query().Get("email")); email != "" {
				out = filterBy(rows, "email", email)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(out)

		case http.MethodPatch:
			f.patches = append(f.patches, table+":"+r.URL.RawQuery)
			var fields map[string]any
			json.NewDecoder(r.Body).Decode(&fields)

			key, val := "id", eqFilter(r.URL.Query().Get("id"))
			if val == "" {
				key, val = "user_id", eqFilter(r.URL.Query().Get("user_id"))
			}
			for _, row := range rows {
				if row[key] == val {
					for k, v := range fields {
						row[k] = v
					}
				}
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func (f *fakePostgREST) tableRows(table string) []map[string]any {
	switch table {
	case "verifications":
		return f.verifications
	case "verification_requests":
		return f.submissions
	case "businesses":
		return f.businesses
	case "profiles":
		return f.profiles
	}
	return nil
}

func eqFilter(v string) string {
	return strings.TrimPrefix(v, "eq.")
}

func filterBy(rows []map[string]any, key, val string) []map[string]any {
	out := []map[string]any{}
	for _, row := range rows {
		if row[key] == val {
			out = append(out, row)
		}
	}
	return out
}

func newBackend() *fakePostgREST {
	now := time.Now().Format(time.RFC3339)
	return &fakePostgREST{
		verifications: []map[string]any{
			{"id": "v1", "user_id": "u1", "document_type": "cnic", "status": "pending", "created_at": now},
		},
		submissions: []map[string]any{
			{"id": "bv1", "user_id": "u2", "business_name": "Karachi Motors", "business_email": "contact@karachimotors.pk", "status": "pending", "created_at": now},
		},
		businesses: []map[string]any{
			{"id": "b1", "email": "contact@karachimotors.pk", "is_verified": false, "created_at": now},
		},
		profiles: []map[string]any{
			{"id": "p1", "user_id": "u1", "user_type": "customer", "is_verified": false, "full_name": "Ayesha Khan", "created_at": now},
			{"id": "p2", "user_id": "u2", "user_type": "business", "is_verified": false, "full_name": "Karachi Motors", "created_at": now},
		},
	}
}

func newStack(t *testing.T, backend *fakePostgREST) http.Handler {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := supabase.NewClient(
		&http.Client{Timeout: 5 * time.Second},
		srv.URL, "anon", "service-role",
		resilience.NewCircuitBreaker("supabase-integration"),
		logger,
	)

	verificationSvc := service.NewVerificationService(store, store, metrics, logger)
	businessSvc := service.NewBusinessService(store, store, metrics, logger)
	dashboardSvc := service.NewDashboardService(store, cache.New[domain.DashboardStats](time.Minute), metrics, logger)
	sessionSvc := service.NewSessionService(
		"admin@aitimaad.pk", "admin123", "", "integration-secret",
		time.Hour, cache.New[bool](time.Hour), logger,
	)

	return handler.NewRouter(verificationSvc, businessSvc, dashboardSvc, sessionSvc, metrics, logger)
}

func login(t *testing.T, router http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		bytes.NewBufferString(`{"email":"admin@aitimaad.pk","password":"admin123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return resp.Token
}

func doAuthed(router http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestIntegration_UserApprovalFlow walks login -> list -> approve -> stats
// against a stubbed Supabase backend.
func TestIntegration_UserApprovalFlow(t *testing.T) {
	backend := newBackend()
	router := newStack(t, backend)
	token := login(t, router)

	// List shows the pending submission.
	rec := doAuthed(router, http.MethodGet, "/v1/verifications/users", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}

	// Approve it.
	rec = doAuthed(router, http.MethodPost, "/v1/verifications/users/v1/approve", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", rec.Code, rec.Body.String())
	}

	var resp domain.DecisionResponse[domain.UserVerificationItem]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode approve response: %v", err)
	}
	if len(resp.Verifications) != 1 || resp.Verifications[0].Status != "approved" {
		t.Fatalf("expected approved row in refreshed list, got %+v", resp.Verifications)
	}

	// Both the verification row and the profile were patched.
	backend.mu.Lock()
	patches := append([]string(nil), backend.patches...)
	profileVerified := backend.profiles[0]["is_verified"]
	backend.mu.Unlock()

	if len(patches) != 2 {
		t.Fatalf("expected 2 PATCHes (verification + profile), got %v", patches)
	}
	if !strings.HasPrefix(patches[0], "verifications:") || !strings.HasPrefix(patches[1], "profiles:") {
		t.Errorf("unexpected patch order: %v", patches)
	}
	if profileVerified != true {
		t.Errorf("expected profile flipped to verified, got %v", profileVerified)
	}

	// Dashboard now counts the verified customer.
	rec = doAuthed(router, http.MethodGet, "/v1/dashboard/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d %s", rec.Code, rec.Body.String())
	}
	var stats domain.DashboardStats
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.TotalUsers != 2 || stats.ApprovedUsers != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

// TestIntegration_BusinessVerifyFlow checks the three-record fan-out.
func TestIntegration_BusinessVerifyFlow(t *testing.T) {
	backend := newBackend()
	router := newStack(t, backend)
	token := login(t, router)

	rec := doAuthed(router, http.MethodPost, "/v1/verifications/businesses/bv1/verify", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: %d %s", rec.Code, rec.Body.String())
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()

	if backend.submissions[0]["status"] != "verified" {
		t.Errorf("expected submission verified, got %v", backend.submissions[0]["status"])
	}
	if backend.businesses[0]["is_verified"] != true {
		t.Errorf("expected business mirror verified, got %v", backend.businesses[0]["is_verified"])
	}
	if backend.profiles[1]["is_verified"] != true {
		t.Errorf("expected submitter profile verified, got %v", backend.profiles[1]["is_verified"])
	}
}

// TestIntegration_RejectWithReason checks the reason lands in admin_notes
// and the business listing is marked rejected.
func TestIntegration_RejectWithReason(t *testing.T) {
	backend := newBackend()
	router := newStack(t, backend)
	token := login(t, router)

	rec := doAuthed(router, http.MethodPost, "/v1/verifications/businesses/bv1/reject", token,
		[]byte(`{"reason":"Incomplete registration documents"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("reject: %d %s", rec.Code, rec.Body.String())
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()

	if backend.submissions[0]["status"] != "rejected" {
		t.Errorf("expected submission rejected, got %v", backend.submissions[0]["status"])
	}
	if backend.submissions[0]["admin_notes"] != "Incomplete registration documents" {
		t.Errorf("expected reason in admin_notes, got %v", backend.submissions[0]["admin_notes"])
	}
	if backend.businesses[0]["verification_status"] != "rejected" {
		t.Errorf("expected business mirror rejected, got %v", backend.businesses[0]["verification_status"])
	}
}
