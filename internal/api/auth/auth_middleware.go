package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/devconnector-api/app/observability/metrics"
	"github.com/FACorreiaa/devconnector-api/internal/api"
)

// Define typed context keys
type contextKey string

const UserIDKey contextKey = "userID"

// TokenHeader is the header the web client sends the token in.
const TokenHeader = "x-auth-token"

// deniedMsg is shared by every rejection so callers cannot tell a missing
// token from a bad one.
const deniedMsg = "Token is not valid, authorization denied."

// Authenticate is middleware that verifies the bearer token and stores the
// identity id in the request context. m may be nil.
func Authenticate(logger *slog.Logger, tokens TokenService, m *metrics.AppMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			tokenString, err := extractToken(r)
			if err != nil {
				l.WarnContext(ctx, "No usable token on request", slog.Any("error", err))
				m.AuthRejected(ctx, "missing")
				api.ErrorResponse(w, r, http.StatusUnauthorized, deniedMsg)
				return
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, api.ErrExpiredToken) {
					reason = "expired"
				}
				l.WarnContext(ctx, "Token verification failed", slog.String("reason", reason), slog.Any("error", err))
				m.AuthRejected(ctx, reason)
				api.ErrorResponse(w, r, http.StatusUnauthorized, deniedMsg)
				return
			}

			ctx = WithUserID(ctx, userID)
			l.DebugContext(ctx, "Authentication successful", slog.String("userID", userID.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads x-auth-token, then falls back to "Authorization: Bearer".
func extractToken(r *http.Request) (string, error) {
	if tok := strings.TrimSpace(r.Header.Get(TokenHeader)); tok != "" {
		return tok, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", api.ErrUnauthenticated
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" || headerParts[1] == "" {
		return "", api.ErrInvalidToken
	}
	return headerParts[1], nil
}

// WithUserID returns a copy of ctx carrying the authenticated identity.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserIDFromContext returns the identity attached by Authenticate.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
