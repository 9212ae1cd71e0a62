// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the single long-lived credential a user holds at a time.
// Only the SHA-256 hash of the raw token is persisted; every new issuance
// overwrites the previous record for the same user, so rotation implicitly
// invalidates the prior token (single active session per user).
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this token record.
	UserID    uuid.UUID // The owning user; at most one live record per user.
	TokenHash string    // SHA-256 hash of the raw opaque token.
	ExpiresAt time.Time // Absolute expiry, issuance time + 3 days.
	CreatedAt time.Time // When this token was issued.
}

// ResetToken is a single-use, time-limited password reset credential.
// Redemption deletes the record atomically so a token can never be used twice,
// even under concurrent requests.
type ResetToken struct {
	ID        uuid.UUID // The unique ID for this token record.
	UserID    uuid.UUID // The owning user; at most one pending reset per user.
	TokenHash string    // SHA-256 hash of the raw opaque token.
	ExpiresAt time.Time // Absolute expiry, issuance time + 1 hour.
	CreatedAt time.Time // When the reset was requested.
}
