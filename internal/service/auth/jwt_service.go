package auth

import (
	"context"
	"time"
)

// JWTService validates the bearer tokens that identify learners. Tokens are
// normally issued by the identity provider; GenerateToken exists for local
// development and tests.
type JWTService interface {
	// GenerateToken creates a signed access token for learnerID.
	GenerateToken(ctx context.Context, learnerID string) (string, error)

	// ValidateToken checks the signature and time claims of tokenString and
	// returns its claims. The subject claim is the learner id and must be
	// present.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the token fields the service relies on.
type Claims struct {
	// LearnerID is the token subject.
	LearnerID string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
