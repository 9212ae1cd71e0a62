// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"marketplace/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for refresh token persistence.
var (
	// ErrRefreshTokenNotFound is returned when no live refresh token matches.
	// It covers both "never existed" and "expired"; the distinction is never
	// surfaced to callers.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// RefreshTokenRepository manages the single live refresh token per user.
type RefreshTokenRepository interface {
	// Upsert stores a refresh token, replacing any prior token for the same
	// user. Last writer wins: concurrent logins for one user race and only the
	// later write's token remains valid.
	Upsert(ctx context.Context, token *entity.RefreshToken) error

	// FindLiveByHash retrieves the refresh token with the given hash whose
	// expiry has not passed. Misses and expired tokens both return
	// ErrRefreshTokenNotFound.
	FindLiveByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteExpired removes expired refresh tokens. Housekeeping only; expiry
	// is always re-checked at use time.
	DeleteExpired(ctx context.Context) error
}
