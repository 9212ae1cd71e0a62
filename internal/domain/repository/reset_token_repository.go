// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"marketplace/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrResetTokenNotFound is returned when no live reset token matches; it
// covers missing, already-consumed and expired tokens uniformly.
var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenRepository manages single-use password reset credentials.
type ResetTokenRepository interface {
	// Upsert stores a reset token, replacing any pending reset for the same
	// user. A re-requested reset invalidates the earlier link.
	Upsert(ctx context.Context, token *entity.ResetToken) error

	// Consume atomically finds and deletes the reset token with the given
	// hash whose expiry has not passed. The lookup and delete are a single
	// storage operation so concurrent redemptions of the same token succeed
	// for exactly one caller; the rest get ErrResetTokenNotFound.
	Consume(ctx context.Context, tokenHash string) (*entity.ResetToken, error)
}
