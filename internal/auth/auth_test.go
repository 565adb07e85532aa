package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"reelhouse/internal/core"
	"reelhouse/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(store.NewMemory(), NewPassword(bcrypt.MinCost), core.Discard())
	ctx := context.Background()
	if _, err := svc.EnsureAdmin(ctx, "jscreator", "admin123"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if _, err := svc.CreateUser(ctx, "viewer", "secret1", false); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return svc
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestService(t)
	mw := NewMiddleware(svc, core.Discard())
	handler := mw.Identify(mw.RequireAdmin(http.HandlerFunc(okHandler)))

	tests := []struct {
		name     string
		username string
		want     int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"unknown user", "ghost", http.StatusForbidden},
		{"regular user", "viewer", http.StatusForbidden},
		{"admin", "jscreator", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/videos", nil)
			if tt.username != "" {
				req.Header.Set(HeaderUsername, tt.username)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequireUser(t *testing.T) {
	svc := newTestService(t)
	mw := NewMiddleware(svc, core.Discard())

	var seen *Identity
	handler := mw.Identify(mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me/likes", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without header, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me/likes", nil)
	req.Header.Set(HeaderUsername, "ghost")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected unknown users to pass the user gate, got %d", rec.Code)
	}
	if seen.Username != "ghost" || seen.Known() {
		t.Errorf("Expected unresolved identity for ghost, got %+v", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/me/likes", nil)
	req.Header.Set(HeaderUsername, "viewer")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !seen.Known() || seen.User.Username != "viewer" || seen.IsAdmin() {
		t.Errorf("Expected resolved non-admin viewer, got %+v", seen)
	}
}

func TestAuthenticateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.AuthenticateUser(ctx, "jscreator", "admin123")
	if err != nil {
		t.Fatalf("Expected valid credentials, got %v", err)
	}
	if !user.IsAdmin {
		t.Error("Expected seeded admin to be an administrator")
	}

	if _, err := svc.AuthenticateUser(ctx, "jscreator", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.AuthenticateUser(ctx, "ghost", "admin123"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	again, err := svc.EnsureAdmin(context.Background(), "jscreator", "different")
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if again.ID != 1 {
		t.Errorf("Expected existing admin id 1, got %d", again.ID)
	}
	if _, err := svc.AuthenticateUser(context.Background(), "jscreator", "admin123"); err != nil {
		t.Errorf("Expected original password to still work, got %v", err)
	}
}

func TestHandlers(t *testing.T) {
	svc := newTestService(t)
	h := NewHandler(svc, core.Discard())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
		want    int
	}{
		{"login ok", h.LoginHandler, `{"username":"jscreator","password":"admin123"}`, http.StatusOK},
		{"login bad password", h.LoginHandler, `{"username":"jscreator","password":"nope"}`, http.StatusUnauthorized},
		{"login missing field", h.LoginHandler, `{"username":"jscreator"}`, http.StatusBadRequest},
		{"login malformed", h.LoginHandler, `{`, http.StatusBadRequest},
		{"register ok", h.RegisterHandler, `{"username":"newbie","password":"longenough"}`, http.StatusCreated},
		{"register taken", h.RegisterHandler, `{"username":"viewer","password":"longenough"}`, http.StatusBadRequest},
		{"register short password", h.RegisterHandler, `{"username":"other","password":"123"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			tt.handler(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "PasswordHash") || strings.Contains(rec.Body.String(), "$2a$") {
				t.Error("Response leaked the password hash")
			}
		})
	}
}

func TestMeHandler(t *testing.T) {
	svc := newTestService(t)
	h := NewHandler(svc, core.Discard())
	mw := NewMiddleware(svc, core.Discard())
	handler := mw.Identify(mw.RequireUser(http.HandlerFunc(h.MeHandler)))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(HeaderUsername, "viewer")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"viewer"`) {
		t.Errorf("Unexpected response %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(HeaderUsername, "ghost")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown user, got %d", rec.Code)
	}
}
