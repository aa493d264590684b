package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/vocabflow/internal/config"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
)

// minSecretLength is the shortest HMAC secret accepted.
const minSecretLength = 32

// defaultClockSkew is the leeway allowed on time claims.
const defaultClockSkew = 2 * time.Minute

// HMACJWTService implements JWTService with HMAC-SHA256 signed tokens.
type HMACJWTService struct {
	signingKey    []byte
	tokenLifetime time.Duration
	timeFunc      func() time.Time // Injectable for testing
	clockSkew     time.Duration
}

// Ensure HMACJWTService implements JWTService interface
var _ JWTService = (*HMACJWTService)(nil)

// NewJWTService creates a JWT service from the auth configuration.
func NewJWTService(cfg config.AuthConfig) (*HMACJWTService, error) {
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	return &HMACJWTService{
		signingKey:    []byte(cfg.JWTSecret),
		tokenLifetime: time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		timeFunc:      time.Now,
		clockSkew:     defaultClockSkew,
	}, nil
}

// WithClock returns a copy of the service that reads time from now.
func (s *HMACJWTService) WithClock(now func() time.Time) *HMACJWTService {
	c := *s
	c.timeFunc = now
	return &c
}

// GenerateToken creates a signed access token with the learner as subject.
func (s *HMACJWTService) GenerateToken(ctx context.Context, learnerID string) (string, error) {
	if learnerID == "" {
		return "", ErrMissingSubject
	}
	now := s.timeFunc()

	claims := jwt.RegisteredClaims{
		Subject:   learnerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifetime)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign JWT access token",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID),
			slog.String("signing_method", jwt.SigningMethodHS256.Name))
		return "", fmt.Errorf("failed to sign access token with HMAC-SHA256: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a token and returns its claims. Tokens signed
// with anything other than HS256 are rejected.
func (s *HMACJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := s.timeFunc()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired")
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid")
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token validation failed",
				slog.String("error_type", fmt.Sprintf("%T", err)),
				slog.Bool("malformed", errors.Is(err, jwt.ErrTokenMalformed)),
				slog.Bool("bad_signature", errors.Is(err, jwt.ErrTokenSignatureInvalid)))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		log.Debug("token validation failed: no subject")
		return nil, ErrMissingSubject
	}

	out := &Claims{
		LearnerID: claims.Subject,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
