// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity record of the marketplace.
// RoleName caches the name of the referenced Role so request-path checks
// and token issuance do not need an extra role lookup; the authorization
// gate still resolves the full permission set from the Role store.
type User struct {
	ID           uuid.UUID // The unique identifier for the user.
	Email        string    // The user's login identifier; unique, matched exactly.
	Name         string    // The user's display name.
	PasswordHash string    // The bcrypt hash of the user's password. Never the plaintext.
	RoleID       uuid.UUID // Reference to the user's single Role.
	RoleName     string    // Denormalized copy of the Role's name.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification.
}
