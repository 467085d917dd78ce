package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobcard-backend/internal/auth"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/store"
)

func echoOperator(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(Operator(r.Context())))
}

func TestAuthDisabledUsesOperatorHeader(t *testing.T) {
	m := NewAuthMiddleware(nil, nil, false)
	req := httptest.NewRequest("GET", "/api/job-cards", nil)
	req.Header.Set(OperatorHeader, "Sunita")
	rec := httptest.NewRecorder()

	m.Authenticate(http.HandlerFunc(echoOperator)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "Sunita" {
		t.Errorf("got %d %q", rec.Code, rec.Body)
	}
}

func TestAuthEnabled(t *testing.T) {
	ctx := context.Background()
	users := store.New[models.User](store.NewMemorySlot(), "users")
	active := models.User{ID: "u1", Name: "Asha", Email: "asha@example.com", Role: "qm", IsActive: true}
	inactive := models.User{ID: "u2", Name: "Old", Email: "old@example.com", IsActive: false}
	users.Create(ctx, active)
	users.Create(ctx, inactive)

	jwt := auth.NewJWTManager("secret", "test", time.Hour)
	m := NewAuthMiddleware(jwt, users, true)
	handler := m.Authenticate(http.HandlerFunc(echoOperator))

	activeToken, _ := jwt.GenerateToken(&active)
	inactiveToken, _ := jwt.GenerateToken(&inactive)
	ghostToken, _ := jwt.GenerateToken(&models.User{ID: "ghost"})

	tests := []struct {
		name   string
		header string
		query  string
		want   int
		body   string
	}{
		{"missing", "", "", http.StatusUnauthorized, ""},
		{"malformed", "Token abc", "", http.StatusUnauthorized, ""},
		{"garbage", "Bearer abc", "", http.StatusUnauthorized, ""},
		{"unknown user", "Bearer " + ghostToken, "", http.StatusUnauthorized, ""},
		{"suspended", "Bearer " + inactiveToken, "", http.StatusForbidden, ""},
		{"valid", "Bearer " + activeToken, "", http.StatusOK, "Asha"},
		{"query token", "", "?token=" + activeToken, http.StatusOK, "Asha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ws/job-cards"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q", rec.Body)
			}
		})
	}
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		xff, xri, remote, want string
	}{
		{"10.0.0.1, 10.0.0.2", "", "1.2.3.4:5", "10.0.0.1"},
		{"", "10.0.0.9", "1.2.3.4:5", "10.0.0.9"},
		{"", "", "1.2.3.4:5", "1.2.3.4"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remote
		if tt.xff != "" {
			req.Header.Set("X-Forwarded-For", tt.xff)
		}
		if tt.xri != "" {
			req.Header.Set("X-Real-IP", tt.xri)
		}
		if got := getClientIP(req); got != tt.want {
			t.Errorf("getClientIP = %q, want %q", got, tt.want)
		}
	}
}
