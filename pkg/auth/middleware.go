package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tair/foodgram/pkg/logger"
)

// RoleAdmin is the staff role.
const RoleAdmin = "admin"

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller.
type Principal struct {
	UserID   uint
	Username string
	Role     string
}

// IsAdmin reports whether the caller has staff rights.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the caller, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// ViewerID returns the caller's id, or 0 for anonymous requests.
func ViewerID(ctx context.Context) uint {
	p, _ := FromContext(ctx)
	return p.UserID
}

// ErrorResponder writes an error response for the middleware.
type ErrorResponder func(w http.ResponseWriter, status int, message string)

// Middleware resolves bearer/token credentials into a Principal.
type Middleware struct {
	respond ErrorResponder
}

// NewMiddleware creates auth middleware that reports failures through respond.
func NewMiddleware(respond ErrorResponder) *Middleware {
	return &Middleware{respond: respond}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func principalFrom(claims *Claims) Principal {
	return Principal{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}
}

// Required rejects requests without a valid token
func (m *Middleware) Required(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			m.respond(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		claims, err := ValidateToken(token)
		if err != nil {
			logger.Warn(r.Context()).Err(err).Msg("Invalid token")
			m.respond(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principalFrom(claims))))
	}
}

// Admin requires a valid token with the admin role
func (m *Middleware) Admin(next http.HandlerFunc) http.HandlerFunc {
	return m.Required(func(w http.ResponseWriter, r *http.Request) {
		p, _ := FromContext(r.Context())
		if !p.IsAdmin() {
			logger.Warn(r.Context()).Uint("user_id", p.UserID).Msg("Admin access denied")
			m.respond(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Optional identifies the caller when a valid token is present and continues anonymously otherwise
func (m *Middleware) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if claims, err := ValidateToken(token); err == nil {
				r = r.WithContext(WithPrincipal(r.Context(), principalFrom(claims)))
			}
		}
		next.ServeHTTP(w, r)
	}
}
