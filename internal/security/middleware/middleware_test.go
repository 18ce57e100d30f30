package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourorg/orgvault/internal/domain"
)

type stubAuthenticator struct {
	identity *domain.AdminIdentity
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.AdminIdentity, error) {
	if s.identity != nil && token == "good-token" {
		return s.identity, nil
	}
	return nil, domain.ErrUnauthorized
}

func newTestHandler(authn Authenticator) (http.Handler, *bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return JWTMiddleware(authn, nil)(next), &reached
}

func TestPreflightBypassesAuth(t *testing.T) {
	h, reached := newTestHandler(&stubAuthenticator{})

	// Browsers never attach Authorization to preflights; the CORS answer
	// must come from behind the middleware, not a 401 in front of it.
	req := httptest.NewRequest(http.MethodOptions, "/api/org", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !*reached {
		t.Fatal("preflight never reached the inner handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	identity := &domain.AdminIdentity{AdminID: "a1", OrganizationName: "Acme Corp"}
	h, _ := newTestHandler(&stubAuthenticator{identity: identity})

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"signup is public", http.MethodPost, "/api/org", "", http.StatusOK},
		{"lookup is public", http.MethodGet, "/api/org", "", http.StatusOK},
		{"login is public", http.MethodPost, "/api/login", "", http.StatusOK},
		{"health is public", http.MethodGet, "/healthz", "", http.StatusOK},
		{"update requires auth", http.MethodPut, "/api/org", "", http.StatusUnauthorized},
		{"delete requires auth", http.MethodDelete, "/api/org", "", http.StatusUnauthorized},
		{"bad token rejected", http.MethodPut, "/api/org", "bad-token", http.StatusUnauthorized},
		{"good token accepted", http.MethodPut, "/api/org", "good-token", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestIdentityStoredInContext(t *testing.T) {
	identity := &domain.AdminIdentity{AdminID: "a1", OrganizationName: "Acme Corp"}
	var got *domain.AdminIdentity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := JWTMiddleware(&stubAuthenticator{identity: identity}, nil)(next)

	req := httptest.NewRequest(http.MethodPut, "/api/org", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got == nil || got.AdminID != "a1" {
		t.Fatalf("identity in context = %+v, want admin a1", got)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	var inCtx string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inCtx = RequestIDFromContext(r.Context())
	})
	h := RequestID(next, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if inCtx != "upstream-42" {
		t.Errorf("context request id = %q, want upstream-42", inCtx)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "upstream-42" {
		t.Errorf("response header = %q, want upstream-42", got)
	}
}
