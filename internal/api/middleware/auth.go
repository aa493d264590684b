package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/vocabflow/internal/api/shared"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/redact"
	"github.com/phrazzld/vocabflow/internal/service/auth"
)

// TokenValidator is the part of auth.JWTService the middleware needs.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// AuthMiddleware authenticates requests with bearer tokens.
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	if validator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("token validator cannot be nil")
	}
	return &AuthMiddleware{validator: validator}
}

// Authenticate validates the bearer token in the Authorization header and
// stores the token subject as the learner id in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.validator.ValidateToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrMissingToken),
				errors.Is(err, auth.ErrMissingSubject):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContextOrDefault(r.Context(), slog.Default()).
					Error("failed to validate token", slog.String("error", redact.Error(err)))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := shared.WithLearnerID(r.Context(), claims.LearnerID)
		log := logger.FromContextOrDefault(ctx, slog.Default()).With(slog.String("learner_id", claims.LearnerID))
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
	})
}
