package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"chiller-selector/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenVerifier is satisfied by *auth.JWTManager.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (jwt.MapClaims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logr     *zap.Logger
}

type contextKey string

const (
	ContextSubjectKey contextKey = "subject"
	ContextRolesKey   contextKey = "roles"
)

// NewAuthMiddleware creates a reusable JWT auth middleware instance
func NewAuthMiddleware(verifier TokenVerifier, logr *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logr:     logr,
	}
}

// JWTAuth validates the bearer token and attaches the subject and roles to
// the request context.
func (m *AuthMiddleware) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			writeError(w, http.StatusUnauthorized, "invalid token format")
			return
		}

		claims, err := m.verifier.VerifyToken(tokenString)
		if err != nil {
			m.logr.Warn("token parse error", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		subject, _ := claims["sub"].(string)
		ctx := context.WithValue(r.Context(), ContextSubjectKey, subject)
		ctx = context.WithValue(ctx, ContextRolesKey, auth.Roles(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects requests whose token lacks role. It must run after JWTAuth.
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, _ := r.Context().Value(ContextRolesKey).([]string)
			for _, have := range roles {
				if have == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			subject, _ := r.Context().Value(ContextSubjectKey).(string)
			m.logr.Warn("missing role", zap.String("subject", subject), zap.String("role", role))
			writeError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
