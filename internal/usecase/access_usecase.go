package usecase

import (
	"context"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// AccessUsecase resolves the permission set an authenticated user currently
// holds. The authorization middleware depends on this contract.
type AccessUsecase interface {
	// PermissionsFor returns the permissions granted by the user's role,
	// looked up fresh so role changes take effect without re-login.
	PermissionsFor(ctx context.Context, userID uuid.UUID) (entity.Permissions, error)
}
