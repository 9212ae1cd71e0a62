package impl

import (
	"context"
	"log/slog"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accessService implements the AccessUsecase interface.
type accessService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	logger   *slog.Logger
}

// AccessServiceParams holds dependencies for accessService, injected by Fx.
type AccessServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	RoleRepo repository.RoleRepository
	Logger   *slog.Logger
}

// NewAccessService is the constructor for accessService.
func NewAccessService(params AccessServiceParams) usecase.AccessUsecase {
	return &accessService{
		userRepo: params.UserRepo,
		roleRepo: params.RoleRepo,
		logger:   params.Logger,
	}
}

func (srv *accessService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// PermissionsFor loads the user's role and returns its permission set. The
// role is resolved by the user's role ID, not the cached role name, so
// permission edits and role reassignments apply immediately.
func (srv *accessService) PermissionsFor(ctx context.Context, userID uuid.UUID) (entity.Permissions, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Permission lookup for unknown user", slog.Any("userID", userID))

			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to load user for permission lookup")
	}

	role, err := srv.roleRepo.FindByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			srv.log(ctx).Error("User references missing role", slog.Any("userID", userID), slog.Any("roleID", user.RoleID))

			return nil, domainerrors.ErrInvalidRole.WrapMessage("user role no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load role for permission lookup")
	}

	return role.Permissions, nil
}
