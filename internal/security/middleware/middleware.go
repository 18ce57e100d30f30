package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/orgvault/internal/domain"
	"github.com/yourorg/orgvault/internal/security/auth"
)

type identityContextKey struct{}
type requestIDContextKey struct{}

// Authenticator resolves a bearer token into the admin's current identity.
// Implemented by service.AuthService; the token claims alone are never
// trusted, the admin record is re-read on every request.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.AdminIdentity, error)
}

// JWTMiddleware authenticates requests and stores the caller's identity in
// the request context. Public endpoints (health, metrics, login, signup,
// organization lookup) pass through untouched.
func JWTMiddleware(authn Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			identity, err := authn.Authenticate(r.Context(), tokenString)
			if err != nil {
				log.Info("request rejected", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublic(r *http.Request) bool {
	// CORS preflights carry no credentials; they must reach the CORS layer.
	if r.Method == http.MethodOptions {
		return true
	}
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics", "/api/login":
		return true
	case "/api/org":
		// Signup and lookup are unauthenticated; update and delete are not.
		return r.Method == http.MethodPost || r.Method == http.MethodGet
	}
	return false
}

// IdentityFromContext returns the authenticated admin, if any.
func IdentityFromContext(ctx context.Context) (*domain.AdminIdentity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*domain.AdminIdentity)
	return identity, ok
}

// RequestID attaches a request ID to the context and response headers and
// logs request completion.
func RequestID(next http.Handler, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDContextKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

// RequestIDFromContext returns the request ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
