package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sjbaraho/app-places-backend/services"
	"github.com/sjbaraho/app-places-backend/utils/errors"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	emailKey  contextKey = "email"
)

// TokenVerifier is satisfied by services.TokenIssuer.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// JWTMiddleware attaches the verified caller identity to the request context.
// Requests without a valid bearer token never reach the handler.
func JWTMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				WriteError(w, errors.ErrUnauthenticated)
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := verifier.Verify(tokenString)
			if err != nil {
				WriteError(w, errors.Wrap(err, errors.ErrUnauthenticated))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.UserID, claims.Email)))
		})
	}
}

// WithIdentity stores a verified caller identity in ctx.
func WithIdentity(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, emailKey, email)
}

// UserIDFromContext returns the caller id set by JWTMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}
