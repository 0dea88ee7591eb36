package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/levelup/heist/internal/auth"
	"github.com/levelup/heist/pkg/metrics"
)

type contextKey string

// claimsKey stores the verified session claims on the request context.
const claimsKey contextKey = "claims"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush passes through to the wrapped writer so streaming handlers keep
// working behind the middleware.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MetricsMiddleware records request count and latency for an endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := float64(time.Since(start).Milliseconds())
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(rw.statusCode))
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, duration)
	}
}

// AuthMiddleware verifies bearer tokens and enforces role requirements.
type AuthMiddleware struct {
	deps Dependencies
}

// NewAuthMiddleware creates an auth middleware backed by deps.
func NewAuthMiddleware(deps Dependencies) *AuthMiddleware {
	return &AuthMiddleware{deps: deps}
}

// Require rejects requests without a valid session token.
func (m *AuthMiddleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.verify(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
			return
		}
		next(w, r.WithContext(withClaims(r.Context(), claims)))
	}
}

// RequireTeam rejects requests unless the session belongs to a team.
func (m *AuthMiddleware) RequireTeam(next http.HandlerFunc) http.HandlerFunc {
	return m.Require(func(w http.ResponseWriter, r *http.Request) {
		if claims := ClaimsFrom(r.Context()); claims == nil || claims.TeamID == "" {
			writeError(w, http.StatusForbidden, "forbidden", ErrForbidden)
			return
		}
		next(w, r)
	})
}

// RequireAdmin rejects requests unless the session carries the admin role.
func (m *AuthMiddleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.Require(func(w http.ResponseWriter, r *http.Request) {
		if claims := ClaimsFrom(r.Context()); claims == nil || !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", ErrForbidden)
			return
		}
		next(w, r)
	})
}

// verify extracts and validates the session token. SSE clients cannot set
// headers from EventSource, so a token query parameter is also accepted.
func (m *AuthMiddleware) verify(r *http.Request) (*auth.Claims, error) {
	token := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else if q := r.URL.Query().Get("token"); q != "" {
		token = q
	}
	if token == "" {
		return nil, ErrUnauthorized
	}
	return m.deps.VerifyToken(token)
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFrom returns the verified claims stored on the context, or nil.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
