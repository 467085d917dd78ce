package middleware

import (
	"context"
	"net/http"
	"strings"

	"jobcard-backend/internal/auth"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/store"
)

type contextKey string

const UserIDKey contextKey = "user_id"
const NameKey contextKey = "name"
const EmailKey contextKey = "email"
const RoleKey contextKey = "role"

// OperatorHeader names the person acting when authentication is off.
const OperatorHeader = "X-Operator"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      *store.Store[models.User]
	enabled    bool
}

// NewAuthMiddleware returns a middleware that checks bearer tokens when
// enabled. Disabled, every request passes and the X-Operator header (if
// any) is recorded as the acting user.
func NewAuthMiddleware(jwtManager *auth.JWTManager, users *store.Store[models.User], enabled bool) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, users: users, enabled: enabled}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		// browsers cannot set headers on a websocket handshake
		if t := r.URL.Query().Get("token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Authenticate is a middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			ctx := r.Context()
			if op := strings.TrimSpace(r.Header.Get(OperatorHeader)); op != "" {
				ctx = context.WithValue(ctx, NameKey, op)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		// the users slot is the source of truth, so a deactivated account
		// loses access before its token expires
		user, err := m.users.Get(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}
		if !user.IsActive {
			http.Error(w, "Account suspended. Please contact administrator.", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
		ctx = context.WithValue(ctx, NameKey, user.Name)
		ctx = context.WithValue(ctx, EmailKey, user.Email)
		ctx = context.WithValue(ctx, RoleKey, user.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetEmailFromContext extracts email from request context
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

// GetRoleFromContext extracts role from request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// Operator names whoever made the request, for audit entries. Empty when
// nobody is known.
func Operator(ctx context.Context) string {
	if name, ok := ctx.Value(NameKey).(string); ok && name != "" {
		return name
	}
	email, _ := GetEmailFromContext(ctx)
	return email
}
