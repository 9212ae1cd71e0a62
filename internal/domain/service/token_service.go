package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the identity payload embedded in access tokens.
type Claims struct {
	UserID uuid.UUID
	Role   string
	jwt.RegisteredClaims
}

// TokenService defines the interface for creating and validating credentials.
// Access tokens are signed JWTs; refresh and reset tokens are opaque random
// strings of which only a hash is ever persisted.
type TokenService interface {
	// GenerateAccessToken creates a signed access token embedding the user's
	// ID and cached role name, with the fixed access-token lifetime.
	GenerateAccessToken(userID uuid.UUID, role string) (string, error)

	// ValidateAccessToken checks signature and expiry of an access token and
	// returns its claims. Any failure (expired, tampered, malformed) is an error.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// NewOpaqueToken generates a high-entropy opaque token string.
	NewOpaqueToken() (string, error)

	// HashToken returns the hash under which an opaque token is stored.
	HashToken(token string) string

	// RefreshTokenDuration returns the refresh token lifetime.
	RefreshTokenDuration() time.Duration

	// ResetTokenDuration returns the password reset token lifetime.
	ResetTokenDuration() time.Duration
}
