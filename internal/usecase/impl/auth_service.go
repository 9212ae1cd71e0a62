// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const mailDispatchTimeout = 15 * time.Second

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	roleRepo         repository.RoleRepository
	refreshTokenRepo repository.RefreshTokenRepository
	resetTokenRepo   repository.ResetTokenRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	mailer           service.Mailer
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RoleRepo         repository.RoleRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	ResetTokenRepo   repository.ResetTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Mailer           service.Mailer
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		roleRepo:         params.RoleRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		resetTokenRepo:   params.ResetTokenRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		mailer:           params.Mailer,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup orchestrates the complete account registration process.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.SignupOutput, error) {
	srv.log(ctx).Info("Starting signup", slog.String("email", input.Email), slog.String("role", input.Role))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during signup")
	}

	var createdUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		roleRepo := repoFactory.RoleRepo()

		// Pre-check keeps the common duplicate case a clean conflict; the
		// unique index on email closes the remaining race window.
		_, findErr := userRepo.FindByEmail(ctx, input.Email)
		if findErr == nil {
			return domainerrors.ErrEmailTaken
		}
		if !errors.Is(findErr, repository.ErrUserNotFound) {
			return errors.Wrap(findErr, "failed to check email availability")
		}

		role, roleErr := roleRepo.FindByName(ctx, input.Role)
		if roleErr != nil {
			if errors.Is(roleErr, repository.ErrRoleNotFound) {
				return domainerrors.ErrInvalidRole.WrapMessage("unknown role: " + input.Role)
			}

			return errors.Wrap(roleErr, "failed to resolve role")
		}

		newUser := &entity.User{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: hashedPassword,
			RoleID:       role.ID,
			RoleName:     role.Name,
		}

		if createErr := userRepo.Create(ctx, newUser); createErr != nil {
			return errors.Wrap(createErr, "failed to create user during signup")
		}

		createdUser = newUser

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Signup failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Signup completed", slog.Any("userID", createdUser.ID))

	return &usecase.SignupOutput{User: usecase.NewUserOutput(createdUser)}, nil
}

// Login verifies credentials and issues a fresh token pair on success.
// Unknown email and wrong password collapse into the same error so the
// response never reveals whether an account exists.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "failed to load user for login")
	}

	// bcrypt is CPU-bound; check outside any transaction.
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return nil, domainerrors.ErrInvalidCredentials
	}

	pair, err := srv.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("User logged in", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         usecase.NewUserOutput(user),
	}, nil
}

// Refresh redeems a live refresh token for a brand new token pair. The
// presented token's stored row is overwritten by the new one, so each
// redemption rotates the session.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.TokenPairOutput, error) {
	srv.log(ctx).Debug("Attempting token refresh")

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	stored, err := srv.refreshTokenRepo.FindLiveByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			srv.log(ctx).Warn("Refresh with unknown or expired token")

			return nil, domainerrors.ErrInvalidRefreshToken
		}

		return nil, errors.Wrap(err, "failed to look up refresh token")
	}

	pair, err := srv.issueTokens(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Refresh completed", slog.Any("userID", stored.UserID))

	return pair, nil
}

// ChangePassword verifies the current password and replaces it. The user's
// refresh token stays valid; only the credential changes.
func (srv *authService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	srv.log(ctx).Info("Attempting password change", slog.Any("userID", input.UserID))

	user, err := srv.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound
		}

		return errors.Wrap(err, "failed to load user for password change")
	}

	if !srv.hasher.Check(input.OldPassword, user.PasswordHash) {
		srv.log(ctx).Warn("Password change rejected", slog.Any("userID", input.UserID))

		return domainerrors.ErrInvalidCredentials
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash new password")
	}

	user.PasswordHash = newHash
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return errors.Wrap(err, "failed to persist new password")
	}

	srv.log(ctx).Info("Password changed", slog.Any("userID", input.UserID))

	return nil
}

// ForgotPassword issues a reset token and mails a reset link. It returns nil
// for unknown emails so the endpoint cannot be used to probe for accounts.
func (srv *authService) ForgotPassword(ctx context.Context, input *usecase.ForgotPasswordInput) error {
	srv.log(ctx).Info("Password reset requested", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Debug("Password reset for unknown email", slog.String("email", input.Email))

			return nil
		}

		return errors.Wrap(err, "failed to load user for password reset")
	}

	rawToken, err := srv.tokenService.NewOpaqueToken()
	if err != nil {
		return errors.Wrap(err, "failed to generate reset token")
	}

	resetToken := &entity.ResetToken{
		UserID:    user.ID,
		TokenHash: srv.tokenService.HashToken(rawToken),
		ExpiresAt: time.Now().Add(srv.tokenService.ResetTokenDuration()),
	}

	if err := srv.resetTokenRepo.Upsert(ctx, resetToken); err != nil {
		return errors.Wrap(err, "failed to store reset token")
	}

	// Mail delivery must not block or fail the request; the requester gets
	// the same acknowledgement either way.
	logger := srv.log(ctx)
	go func() {
		mailCtx, cancel := context.WithTimeout(context.Background(), mailDispatchTimeout)
		defer cancel()

		if mailErr := srv.mailer.SendPasswordResetEmail(mailCtx, user.Email, rawToken); mailErr != nil {
			logger.Error("Failed to send password reset email", slog.Any("userID", user.ID), slog.Any("error", mailErr))
		}
	}()

	return nil
}

// ResetPassword redeems a reset token and replaces the owner's password.
// Consumption deletes the token, so a link works exactly once.
func (srv *authService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	srv.log(ctx).Info("Attempting password reset")

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash replacement password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		resetRepo := repoFactory.ResetTokenRepo()
		userRepo := repoFactory.UserRepo()

		consumed, consumeErr := resetRepo.Consume(ctx, srv.tokenService.HashToken(input.Token))
		if consumeErr != nil {
			if errors.Is(consumeErr, repository.ErrResetTokenNotFound) {
				return domainerrors.ErrInvalidResetToken
			}

			return errors.Wrap(consumeErr, "failed to consume reset token")
		}

		user, findErr := userRepo.FindByID(ctx, consumed.UserID)
		if findErr != nil {
			// Token rows reference existing users; a miss here is corruption,
			// not caller error.
			return errors.Wrap(findErr, "failed to load reset token owner")
		}

		user.PasswordHash = newHash
		if updateErr := userRepo.Update(ctx, user); updateErr != nil {
			return errors.Wrap(updateErr, "failed to persist reset password")
		}

		srv.log(ctx).Info("Password reset completed", slog.Any("userID", user.ID))

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Password reset failed", slog.Any("error", err))

		return err
	}

	return nil
}

// issueTokens builds a fresh access/refresh pair for the user and stores the
// refresh token, replacing whichever one the user held before. The user row
// is re-read so the access token always carries the current role.
func (srv *authService) issueTokens(ctx context.Context, userID uuid.UUID) (*usecase.TokenPairOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("token subject no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load user for token issuance")
	}

	accessToken, err := srv.tokenService.GenerateAccessToken(user.ID, user.RoleName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	rawRefresh, err := srv.tokenService.NewOpaqueToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	refreshToken := &entity.RefreshToken{
		UserID:    user.ID,
		TokenHash: srv.tokenService.HashToken(rawRefresh),
		ExpiresAt: time.Now().Add(srv.tokenService.RefreshTokenDuration()),
	}

	if err := srv.refreshTokenRepo.Upsert(ctx, refreshToken); err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token")
	}

	return &usecase.TokenPairOutput{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
	}, nil
}
