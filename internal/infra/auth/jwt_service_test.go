package auth

import (
	"testing"
	"time"

	"marketplace/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.Secret.Key = secret

	return cfg
}

func TestJWTService_GenerateAndValidateAccessToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig("test_secret_key_very_long_for_testing"))
	require.NoError(t, err)
	require.NotNil(t, jwtService)

	userID := uuid.New()

	accessToken, err := jwtService.GenerateAccessToken(userID, "seller")
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	claims, err := jwtService.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "seller", claims.Role)
}

func TestJWTService_RequiresSecret(t *testing.T) {
	svc, err := NewJWTService(newTestConfig(""))
	assert.Error(t, err)
	assert.Nil(t, svc)
}

func TestJWTService_InvalidToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig("test_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "failed to parse token structure")
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer, err := NewJWTService(newTestConfig("issuing_secret_key_very_long_for_testing"))
	require.NoError(t, err)
	verifier, err := NewJWTService(newTestConfig("another_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(uuid.New(), "buyer")
	require.NoError(t, err)

	claims, err := verifier.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	secret := "test_secret_key_very_long_for_testing"
	jwtService, err := NewJWTService(newTestConfig(secret))
	require.NoError(t, err)

	// Sign a token whose expiry is already in the past.
	now := time.Now()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "buyer",
		"iat":  now.Add(-2 * time.Hour).Unix(),
		"exp":  now.Add(-time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString([]byte(secret))
	require.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken(tokenString)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_OpaqueTokens(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig("test_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	first, err := jwtService.NewOpaqueToken()
	require.NoError(t, err)
	second, err := jwtService.NewOpaqueToken()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(first), 64)
	assert.NotEqual(t, first, second)

	// The stored form must be a stable digest distinct from the raw token.
	hash := jwtService.HashToken(first)
	assert.NotEqual(t, first, hash)
	assert.Equal(t, hash, jwtService.HashToken(first))
	assert.NotEqual(t, hash, jwtService.HashToken(second))
}

func TestJWTService_Durations(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig("test_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	assert.Equal(t, 72*time.Hour, jwtService.RefreshTokenDuration())
	assert.Equal(t, time.Hour, jwtService.ResetTokenDuration())
}
