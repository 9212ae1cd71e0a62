// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"marketplace/config"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token lifetimes are part of the product's security posture and are fixed
// rather than configurable.
const (
	accessTokenTTL  = 10 * time.Hour
	refreshTokenTTL = 72 * time.Hour
	resetTokenTTL   = time.Hour

	// opaqueTokenBytes yields 64 hex characters per token.
	opaqueTokenBytes = 32
)

// jwtService is a concrete implementation of the TokenService interface.
// Access tokens are HS256-signed JWTs; refresh and reset tokens are opaque
// random strings hashed with SHA-256 before storage.
type jwtService struct {
	secret []byte
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.Secret.Key == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtService{secret: []byte(cfg.Secret.Key)}, nil
}

// GenerateAccessToken creates a signed access token embedding the user's ID
// and cached role name.
func (s *jwtService) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}

	return signed, nil
}

// ValidateAccessToken checks the signature and expiry of an access token and
// extracts its identity claims.
func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token structure")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected token claims type")
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, errors.New("user ID missing from token")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, errors.Wrap(err, "invalid user ID in token")
	}

	role, _ := mapClaims["role"].(string)

	return &service.Claims{UserID: userID, Role: role}, nil
}

// NewOpaqueToken generates a 64-hex-character random token.
func (s *jwtService) NewOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate opaque token")
	}

	return hex.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 hex digest under which opaque tokens are stored.
func (s *jwtService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

// RefreshTokenDuration returns the refresh token lifetime.
func (s *jwtService) RefreshTokenDuration() time.Duration {
	return refreshTokenTTL
}

// ResetTokenDuration returns the password reset token lifetime.
func (s *jwtService) ResetTokenDuration() time.Duration {
	return resetTokenTTL
}
