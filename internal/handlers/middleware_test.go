package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/service"
)

func TestAuthMiddleware_HeaderValidation(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		userErr   error
		wantCode  int
		wantError string
	}{
		{"missing header", "", nil, http.StatusUnauthorized, "missing Authorization header"},
		{"wrong scheme", "Token abc", nil, http.StatusUnauthorized, "invalid Authorization header format"},
		{"no space", "Bearerabc", nil, http.StatusUnauthorized, "invalid Authorization header format"},
		{"rejected token", "Bearer abc", service.ErrInvalidToken, http.StatusUnauthorized, "invalid or expired token"},
		{"valid token", "Bearer abc", nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuth{user: testUser(models.RoleUser), userErr: tt.userErr}
			s := &service.Service{Authorization: auth}
			r := newTestRouter(s, nil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d (%s)", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantError != "" {
				var m map[string]string
				_ = json.Unmarshal(w.Body.Bytes(), &m)
				if m["error"] != tt.wantError {
					t.Fatalf("expected error %q, got %q", tt.wantError, m["error"])
				}
			}
		})
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	limiter := &stubLimiter{allow: false}
	s := &service.Service{Authorization: &mockAuth{}}
	r := newTestRouter(s, limiter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d (%s)", w.Code, w.Body.String())
	}
	if len(limiter.keys) != 1 || !strings.HasPrefix(limiter.keys[0], "signup:") {
		t.Fatalf("expected one signup-keyed check, got %v", limiter.keys)
	}
}

func TestRateLimit_FailsOpenOnBackendError(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis down")}
	auth := &mockAuth{signUpUser: &models.User{ID: 1, Email: "a@x.com"}}
	r := newTestRouter(&service.Service{Authorization: auth}, limiter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"username":"a","email":"a@x.com","password":"s3cr3t"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// a broken counter backend must not block signups
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestRateLimit_NilLimiterAdmitsEverything(t *testing.T) {
	auth := &mockAuth{signUpUser: &models.User{ID: 1, Email: "a@x.com"}}
	r := newTestRouter(&service.Service{Authorization: auth}, nil)

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signup",
			strings.NewReader(`{"username":"a","email":"a@x.com","password":"s3cr3t"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, w.Code)
		}
	}
}

func TestRateLimit_UnderLimitPassesThrough(t *testing.T) {
	limiter := &stubLimiter{allow: true}
	auth := &mockAuth{
		loginPair: service.TokenPair{AccessToken: "acc", RefreshToken: "ref", TokenType: "bearer"},
	}
	r := newTestRouter(&service.Service{Authorization: auth}, limiter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", loginForm("diana@x.com", "pw"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if len(limiter.keys) != 1 || !strings.HasPrefix(limiter.keys[0], "login:") {
		t.Fatalf("expected one login-keyed check, got %v", limiter.keys)
	}
}
