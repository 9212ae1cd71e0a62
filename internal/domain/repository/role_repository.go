// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRoleNotFound is returned when a role lookup misses.
var ErrRoleNotFound = errors.New("role not found")

// RoleRepository defines the operations for role and permission persistence.
type RoleRepository interface {
	// FindByID retrieves a single role by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Role, error)

	// FindByName retrieves a single role by its unique name.
	FindByName(ctx context.Context, name string) (*entity.Role, error)

	// SeedDefaultRoles inserts the built-in role bundles if and only if the
	// role collection is empty. Idempotent; called once at process startup,
	// outside the request path.
	SeedDefaultRoles(ctx context.Context) error
}
