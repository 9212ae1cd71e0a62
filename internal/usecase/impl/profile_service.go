package impl

import (
	"context"
	"log/slog"

	deliverycontext "marketplace/internal/delivery/context"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	logger    *slog.Logger
}

// ProfileServiceParams holds dependencies for profileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Logger    *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		logger:    params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile returns the authenticated user's own account data.
func (srv *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*usecase.UserOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to load profile")
	}

	return usecase.NewUserOutput(user), nil
}

// UpdateProfile applies the requested account changes. Email moves are
// checked against other accounts, and a role change re-resolves the role so
// the denormalized role name stays consistent with the role reference.
func (srv *profileService) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*usecase.UserOutput, error) {
	srv.log(ctx).Info("Updating profile", slog.Any("userID", input.UserID))

	var updated *usecase.UserOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		roleRepo := repoFactory.RoleRepo()

		user, findErr := userRepo.FindByID(ctx, input.UserID)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(findErr, "failed to load user for profile update")
		}

		if input.Name != "" {
			user.Name = input.Name
		}

		if input.Email != "" && input.Email != user.Email {
			_, takenErr := userRepo.FindByEmailExcluding(ctx, input.Email, user.ID)
			if takenErr == nil {
				return domainerrors.ErrEmailTaken
			}
			if !errors.Is(takenErr, repository.ErrUserNotFound) {
				return errors.Wrap(takenErr, "failed to check email availability")
			}
			user.Email = input.Email
		}

		if input.Role != "" {
			role, roleErr := roleRepo.FindByName(ctx, input.Role)
			if roleErr != nil {
				if errors.Is(roleErr, repository.ErrRoleNotFound) {
					return domainerrors.ErrInvalidRole.WrapMessage("unknown role: " + input.Role)
				}

				return errors.Wrap(roleErr, "failed to resolve role")
			}
			user.RoleID = role.ID
			user.RoleName = role.Name
		}

		if updateErr := userRepo.Update(ctx, user); updateErr != nil {
			return errors.Wrap(updateErr, "failed to persist profile update")
		}

		updated = usecase.NewUserOutput(user)

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Profile update failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, err
	}

	return updated, nil
}
