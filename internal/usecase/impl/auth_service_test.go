package impl

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupBuyer(t *testing.T, fixture *authFixture, email, password string) *usecase.UserOutput {
	t.Helper()

	output, err := fixture.service.Signup(context.Background(), &usecase.SignupInput{
		Name:     "Test Buyer",
		Email:    email,
		Password: password,
		Role:     entity.RoleBuyer,
	})
	require.NoError(t, err)
	require.NotNil(t, output)

	return output.User
}

func TestAuthService_Signup(t *testing.T) {
	fixture := newAuthFixture()

	user := signupBuyer(t, fixture, "buyer@example.com", "super secret pw")

	assert.NotEqual(t, "", user.ID.String())
	assert.Equal(t, "buyer@example.com", user.Email)
	assert.Equal(t, entity.RoleBuyer, user.Role)

	// The stored credential must be a hash, never the plaintext.
	stored, err := fixture.userRepo.FindByEmail(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "super secret pw", stored.PasswordHash)
	assert.True(t, fixture.hasher.Check("super secret pw", stored.PasswordHash))
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	fixture := newAuthFixture()

	signupBuyer(t, fixture, "dupe@example.com", "super secret pw")

	output, err := fixture.service.Signup(context.Background(), &usecase.SignupInput{
		Name:     "Second",
		Email:    "dupe@example.com",
		Password: "another password",
		Role:     entity.RoleSeller,
	})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)
}

func TestAuthService_SignupUnknownRole(t *testing.T) {
	fixture := newAuthFixture()

	output, err := fixture.service.Signup(context.Background(), &usecase.SignupInput{
		Name:     "Nobody",
		Email:    "nobody@example.com",
		Password: "super secret pw",
		Role:     "admin",
	})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRole)
}

func TestAuthService_SignupRoleNameIsNormalized(t *testing.T) {
	fixture := newAuthFixture()

	output, err := fixture.service.Signup(context.Background(), &usecase.SignupInput{
		Name:     "Shouty",
		Email:    "shouty@example.com",
		Password: "super secret pw",
		Role:     "  SELLER ",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSeller, output.User.Role)
}

func TestAuthService_Login(t *testing.T) {
	fixture := newAuthFixture()
	signupBuyer(t, fixture, "login@example.com", "super secret pw")

	output, err := fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "login@example.com",
		Password: "super secret pw",
	})
	require.NoError(t, err)
	require.NotNil(t, output)
	assert.NotEmpty(t, output.AccessToken)
	assert.GreaterOrEqual(t, len(output.RefreshToken), 64)
	assert.Equal(t, entity.RoleBuyer, output.User.Role)

	claims, err := fixture.tokenService.ValidateAccessToken(output.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, output.User.ID, claims.UserID)
	assert.Equal(t, entity.RoleBuyer, claims.Role)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	fixture := newAuthFixture()
	signupBuyer(t, fixture, "known@example.com", "super secret pw")

	_, wrongPassword := fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "known@example.com",
		Password: "not the password",
	})
	require.Error(t, wrongPassword)

	_, unknownEmail := fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.Error(t, unknownEmail)

	// Both failures must collapse into the same credentials error.
	assert.ErrorIs(t, wrongPassword, domainerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	fixture := newAuthFixture()
	signupBuyer(t, fixture, "rotate@example.com", "super secret pw")

	login, err := fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "rotate@example.com",
		Password: "super secret pw",
	})
	require.NoError(t, err)

	refreshed, err := fixture.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The presented token was replaced, so redeeming it again fails.
	_, err = fixture.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: login.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRefreshToken)

	// The newly issued token still works.
	_, err = fixture.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: refreshed.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestAuthService_SecondLoginSupersedesFirstSession(t *testing.T) {
	fixture := newAuthFixture()
	signupBuyer(t, fixture, "single@example.com", "super secret pw")

	first, err := fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "single@example.com",
		Password: "super secret pw",
	})
	require.NoError(t, err)

	second, err := fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "single@example.com",
		Password: "super secret pw",
	})
	require.NoError(t, err)

	// One live session per user: the earlier refresh token is gone.
	_, err = fixture.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: first.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRefreshToken)

	_, err = fixture.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: second.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestAuthService_RefreshUnknownToken(t *testing.T) {
	fixture := newAuthFixture()

	_, err := fixture.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRefreshToken)
}

func TestAuthService_ChangePassword(t *testing.T) {
	fixture := newAuthFixture()
	user := signupBuyer(t, fixture, "change@example.com", "old password 1")

	login, err := fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "change@example.com",
		Password: "old password 1",
	})
	require.NoError(t, err)

	err = fixture.service.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "old password 1",
		NewPassword: "new password 2",
	})
	require.NoError(t, err)

	// Old credential no longer works, new one does.
	_, err = fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "change@example.com",
		Password: "old password 1",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "change@example.com",
		Password: "new password 2",
	})
	assert.NoError(t, err)

	// The refresh token issued before the change stays valid.
	_, err = fixture.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: login.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestAuthService_ChangePasswordWrongCurrent(t *testing.T) {
	fixture := newAuthFixture()
	user := signupBuyer(t, fixture, "wrongcurrent@example.com", "old password 1")

	err := fixture.service.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "not the password",
		NewPassword: "new password 2",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	fixture := newAuthFixture()
	signupBuyer(t, fixture, "forgot@example.com", "old password 1")

	err := fixture.service.ForgotPassword(context.Background(), &usecase.ForgotPasswordInput{
		Email: "forgot@example.com",
	})
	require.NoError(t, err)

	var mail sentMail
	select {
	case mail = <-fixture.mailer.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("reset email was not dispatched")
	}
	assert.Equal(t, "forgot@example.com", mail.email)
	assert.GreaterOrEqual(t, len(mail.token), 64)

	err = fixture.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Token:       mail.token,
		NewPassword: "fresh password 3",
	})
	require.NoError(t, err)

	_, err = fixture.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "forgot@example.com",
		Password: "fresh password 3",
	})
	assert.NoError(t, err)

	// A reset link redeems exactly once.
	err = fixture.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Token:       mail.token,
		NewPassword: "yet another pw 4",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidResetToken)
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	fixture := newAuthFixture()

	// Unknown emails get the same silent acknowledgement, and no mail goes out.
	err := fixture.service.ForgotPassword(context.Background(), &usecase.ForgotPasswordInput{
		Email: "ghost@example.com",
	})
	require.NoError(t, err)

	select {
	case mail := <-fixture.mailer.sent:
		t.Fatalf("unexpected reset email to %s", mail.email)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAuthService_ResetPasswordInvalidToken(t *testing.T) {
	fixture := newAuthFixture()

	err := fixture.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Token:       "never issued",
		NewPassword: "whatever pw",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidResetToken)
}
