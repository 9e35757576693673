package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stayora/stayora-auth/internal/auth"
	"github.com/stayora/stayora-auth/internal/database/models"
	"github.com/stayora/stayora-auth/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenFromEmail pulls the opaque token out of the last emailed URL.
func tokenFromEmail(t *testing.T, m *testutil.FakeMailer, urlKey string) string {
	t.Helper()

	last := m.Last()
	require.NotNil(t, last, "expected an email to have been sent")
	url, ok := last.Data[urlKey].(string)
	require.True(t, ok, "email data missing %s", urlKey)
	parts := strings.Split(url, "token=")
	require.Len(t, parts, 2)
	return parts[1]
}

func TestService_RegisterUser(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("creates unverified user without password", func(t *testing.T) {
		msg, err := tc.AuthService.RegisterUser(ctx, auth.RegisterUserInput{
			Name:  "Alice",
			Email: "alice@example.com",
		})
		require.NoError(t, err)
		assert.Contains(t, msg, "Registration successful")

		var user models.User
		require.NoError(t, tc.DB.Where("email = ?", "alice@example.com").First(&user).Error)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.Equal(t, models.ProviderEmail, user.Provider)
		assert.False(t, user.IsVerified)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("stores a one hour verification token", func(t *testing.T) {
		var rec models.VerificationToken
		require.NoError(t, tc.DB.Where("token = ?", tokenFromEmail(t, tc.Mailer, "VerifyURL")).First(&rec).Error)
		assert.False(t, rec.Used)
		assert.WithinDuration(t, time.Now().Add(time.Hour), rec.ExpiresAt, time.Minute)
	})

	t.Run("sends the verification email", func(t *testing.T) {
		last := tc.Mailer.Last()
		require.NotNil(t, last)
		assert.Equal(t, "alice@example.com", last.To)
		assert.Equal(t, auth.TemplateRegistration, last.Template)
		assert.Contains(t, last.Data["VerifyURL"], "/verify-email?token=")
	})

	t.Run("duplicate email fails with conflict and creates no user", func(t *testing.T) {
		var before int64
		tc.DB.Model(&models.User{}).Count(&before)

		_, err := tc.AuthService.RegisterUser(ctx, auth.RegisterUserInput{
			Name:  "Alice Again",
			Email: "alice@example.com",
		})
		assert.ErrorIs(t, err, auth.ErrEmailExists)

		var after int64
		tc.DB.Model(&models.User{}).Count(&after)
		assert.Equal(t, before, after)
	})
}

func TestService_RegisterTenant(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("creates tenant user and linked profile", func(t *testing.T) {
		msg, err := tc.AuthService.RegisterTenant(ctx, auth.RegisterTenantInput{
			Name:        "Bob",
			Email:       "bob@biz.com",
			CompanyName: "Bob Rentals",
			PhoneNumber: "+49301234567",
		})
		require.NoError(t, err)
		assert.Contains(t, msg, "Tenant registration successful")

		var user models.User
		require.NoError(t, tc.DB.Where("email = ?", "bob@biz.com").First(&user).Error)
		assert.Equal(t, models.RoleTenant, user.Role)
		assert.False(t, user.IsVerified)

		var tenant models.Tenant
		require.NoError(t, tc.DB.Where("user_id = ?", user.ID).First(&tenant).Error)
		assert.Equal(t, "Bob Rentals", tenant.CompanyName)
		assert.Equal(t, "+49301234567", tenant.PhoneNumber)
	})

	t.Run("duplicate email fails with conflict", func(t *testing.T) {
		_, err := tc.AuthService.RegisterTenant(ctx, auth.RegisterTenantInput{
			Name:        "Bob Two",
			Email:       "bob@biz.com",
			CompanyName: "Other",
			PhoneNumber: "123",
		})
		assert.ErrorIs(t, err, auth.ErrEmailExists)
	})
}

func TestService_ResendVerification(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("unknown user fails with not found", func(t *testing.T) {
		err := tc.AuthService.ResendVerification(ctx, uuid.New())
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("supersedes the previous token", func(t *testing.T) {
		_, err := tc.AuthService.RegisterUser(ctx, auth.RegisterUserInput{
			Name:  "Carol",
			Email: "carol@example.com",
		})
		require.NoError(t, err)
		firstToken := tokenFromEmail(t, tc.Mailer, "VerifyURL")

		var user models.User
		require.NoError(t, tc.DB.Where("email = ?", "carol@example.com").First(&user).Error)

		require.NoError(t, tc.AuthService.ResendVerification(ctx, user.ID))
		secondToken := tokenFromEmail(t, tc.Mailer, "VerifyURL")
		assert.NotEqual(t, firstToken, secondToken)

		// The superseded token no longer verifies.
		_, err = tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{
			Token:    firstToken,
			Password: "longenough1",
		})
		assert.ErrorIs(t, err, auth.ErrTokenInvalidOrExpired)

		// At most one valid token per user.
		var valid int64
		tc.DB.Model(&models.VerificationToken{}).
			Where("user_id = ? AND used = ?", user.ID, false).
			Count(&valid)
		assert.Equal(t, int64(1), valid)
	})
}

func TestService_VerifyEmail(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	register := func(t *testing.T, email string) string {
		t.Helper()
		_, err := tc.AuthService.RegisterUser(ctx, auth.RegisterUserInput{Name: "V", Email: email})
		require.NoError(t, err)
		return tokenFromEmail(t, tc.Mailer, "VerifyURL")
	}

	t.Run("wrong token fails", func(t *testing.T) {
		_, err := tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{
			Token:    "nope",
			Password: "longenough1",
		})
		assert.ErrorIs(t, err, auth.ErrTokenInvalidOrExpired)
	})

	t.Run("short password fails before consuming the token", func(t *testing.T) {
		token := register(t, "short@example.com")

		_, err := tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{
			Token:    token,
			Password: "pass5",
		})
		assert.ErrorIs(t, err, auth.ErrWeakPassword)

		// Token is still usable afterwards.
		result, err := tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{
			Token:    token,
			Password: "longenough1",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, result.Role)
	})

	t.Run("success verifies user and makes login possible", func(t *testing.T) {
		token := register(t, "dora@example.com")

		result, err := tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{
			Token:    token,
			Password: "longenough1",
		})
		require.NoError(t, err)
		assert.Equal(t, "Email verified and password set successfully", result.Message)

		var user models.User
		require.NoError(t, tc.DB.Where("email = ?", "dora@example.com").First(&user).Error)
		assert.True(t, user.IsVerified)
		assert.NotEmpty(t, user.PasswordHash)

		login, err := tc.AuthService.Login(ctx, auth.LoginInput{
			Email:    "dora@example.com",
			Password: "longenough1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, login.Token)
	})

	t.Run("token is single use", func(t *testing.T) {
		token := register(t, "single@example.com")

		_, err := tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{Token: token, Password: "longenough1"})
		require.NoError(t, err)

		_, err = tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{Token: token, Password: "longenough1"})
		assert.ErrorIs(t, err, auth.ErrTokenInvalidOrExpired)
	})

	t.Run("expired token never validates", func(t *testing.T) {
		user := testutil.CreateUnverifiedUser(t, tc.DB, models.RoleUser)
		rec := models.VerificationToken{
			UserID:    user.ID,
			Token:     "expired-token-value",
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		require.NoError(t, tc.DB.Create(&rec).Error)

		_, err := tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{
			Token:    "expired-token-value",
			Password: "longenough1",
		})
		assert.ErrorIs(t, err, auth.ErrTokenInvalidOrExpired)
	})

	t.Run("already verified user fails", func(t *testing.T) {
		// Valid token whose user has been verified through another path.
		user := testutil.CreateUnverifiedUser(t, tc.DB, models.RoleUser)
		rec := models.VerificationToken{
			UserID:    user.ID,
			Token:     "verified-user-token",
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, tc.DB.Create(&rec).Error)
		require.NoError(t, tc.DB.Model(user).Update("is_verified", true).Error)

		_, err := tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{
			Token:    "verified-user-token",
			Password: "longenough1",
		})
		assert.ErrorIs(t, err, auth.ErrAlreadyVerified)
	})
}

func TestService_Login(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("unknown email, unset password and wrong password are indistinguishable", func(t *testing.T) {
		_, unknownErr := tc.AuthService.Login(ctx, auth.LoginInput{
			Email:    "nobody@example.com",
			Password: "whatever123",
		})

		noPassword := testutil.CreateUnverifiedUser(t, tc.DB, models.RoleUser)
		_, noPassErr := tc.AuthService.Login(ctx, auth.LoginInput{
			Email:    noPassword.Email,
			Password: "whatever123",
		})

		_, wrongErr := tc.AuthService.Login(ctx, auth.LoginInput{
			Email:    tc.User.Email,
			Password: "not-the-password",
		})

		assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, noPassErr, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
		assert.EqualError(t, unknownErr, noPassErr.Error())
		assert.EqualError(t, noPassErr, wrongErr.Error())
	})

	t.Run("unverified user with password fails with not verified", func(t *testing.T) {
		hash, err := auth.HashPassword("somepassword1")
		require.NoError(t, err)
		user := testutil.CreateUnverifiedUser(t, tc.DB, models.RoleUser)
		require.NoError(t, tc.DB.Model(user).Update("password_hash", hash).Error)

		_, err = tc.AuthService.Login(ctx, auth.LoginInput{
			Email:    user.Email,
			Password: "somepassword1",
		})
		assert.ErrorIs(t, err, auth.ErrNotVerified)
	})

	t.Run("success returns bearer token with user claims", func(t *testing.T) {
		result, err := tc.AuthService.Login(ctx, auth.LoginInput{
			Email:    tc.User.Email,
			Password: "testpassword123",
		})
		require.NoError(t, err)
		assert.Equal(t, "Login successful", result.Message)
		assert.Equal(t, models.RoleUser, result.Role)
		assert.True(t, result.IsVerified)

		claims, err := tc.JWTService.ValidateToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, tc.User.ID, claims.UserID)
		assert.Equal(t, tc.User.Email, claims.Email)
		assert.True(t, claims.IsVerified)
	})
}

func TestService_RequestPasswordReset(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("unknown email fails with not found", func(t *testing.T) {
		_, err := tc.AuthService.RequestPasswordReset(ctx, "nope@example.com")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("federated account cannot reset", func(t *testing.T) {
		google := models.User{
			Role:       models.RoleUser,
			Name:       "G User",
			Email:      "google-only@example.com",
			Provider:   models.ProviderGoogle,
			IsVerified: true,
		}
		require.NoError(t, tc.DB.Create(&google).Error)

		_, err := tc.AuthService.RequestPasswordReset(ctx, google.Email)
		assert.ErrorIs(t, err, auth.ErrFederatedAccount)
	})

	t.Run("unverified user fails", func(t *testing.T) {
		user := testutil.CreateUnverifiedUser(t, tc.DB, models.RoleUser)

		_, err := tc.AuthService.RequestPasswordReset(ctx, user.Email)
		assert.ErrorIs(t, err, auth.ErrNotVerified)
	})

	t.Run("success rotates and emails the reset token", func(t *testing.T) {
		msg, err := tc.AuthService.RequestPasswordReset(ctx, tc.User.Email)
		require.NoError(t, err)
		assert.Contains(t, msg, "Password reset email sent")

		last := tc.Mailer.Last()
		require.NotNil(t, last)
		assert.Equal(t, tc.User.Email, last.To)
		assert.Equal(t, auth.TemplateResetPassword, last.Template)

		token := tokenFromEmail(t, tc.Mailer, "ResetURL")
		var rec models.ResetToken
		require.NoError(t, tc.DB.Where("token = ?", token).First(&rec).Error)
		assert.False(t, rec.Used)
		assert.WithinDuration(t, time.Now().Add(time.Hour), rec.ExpiresAt, time.Minute)
	})
}

func TestService_ConfirmPasswordReset(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("short password rejected before touching the token store", func(t *testing.T) {
		err := tc.AuthService.ConfirmPasswordReset(ctx, auth.ConfirmResetInput{
			Token:       "irrelevant",
			NewPassword: "short",
		})
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
	})

	t.Run("unknown token fails", func(t *testing.T) {
		err := tc.AuthService.ConfirmPasswordReset(ctx, auth.ConfirmResetInput{
			Token:       "unknown-token",
			NewPassword: "longenough1",
		})
		assert.ErrorIs(t, err, auth.ErrTokenInvalidOrExpired)
	})

	t.Run("success replaces the password and consumes the token", func(t *testing.T) {
		_, err := tc.AuthService.RequestPasswordReset(ctx, tc.User.Email)
		require.NoError(t, err)
		token := tokenFromEmail(t, tc.Mailer, "ResetURL")

		err = tc.AuthService.ConfirmPasswordReset(ctx, auth.ConfirmResetInput{
			Token:       token,
			NewPassword: "brand-new-pass1",
		})
		require.NoError(t, err)

		_, err = tc.AuthService.Login(ctx, auth.LoginInput{
			Email:    tc.User.Email,
			Password: "brand-new-pass1",
		})
		require.NoError(t, err)

		// Verification state untouched, token spent.
		var user models.User
		require.NoError(t, tc.DB.First(&user, "id = ?", tc.User.ID).Error)
		assert.True(t, user.IsVerified)

		err = tc.AuthService.ConfirmPasswordReset(ctx, auth.ConfirmResetInput{
			Token:       token,
			NewPassword: "another-pass123",
		})
		assert.ErrorIs(t, err, auth.ErrTokenInvalidOrExpired)
	})

	t.Run("superseded token fails", func(t *testing.T) {
		_, err := tc.AuthService.RequestPasswordReset(ctx, tc.User.Email)
		require.NoError(t, err)
		stale := tokenFromEmail(t, tc.Mailer, "ResetURL")

		_, err = tc.AuthService.RequestPasswordReset(ctx, tc.User.Email)
		require.NoError(t, err)

		err = tc.AuthService.ConfirmPasswordReset(ctx, auth.ConfirmResetInput{
			Token:       stale,
			NewPassword: "longenough1",
		})
		assert.ErrorIs(t, err, auth.ErrTokenInvalidOrExpired)
	})
}

// Full journeys mirroring how the frontend drives the service.
func TestService_EndToEnd(t *testing.T) {
	t.Run("register, verify, login", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()
		ctx := context.Background()

		_, err := tc.AuthService.RegisterUser(ctx, auth.RegisterUserInput{Name: "A", Email: "a@x.com"})
		require.NoError(t, err)

		_, err = tc.AuthService.RegisterUser(ctx, auth.RegisterUserInput{Name: "A2", Email: "a@x.com"})
		assert.ErrorIs(t, err, auth.ErrEmailExists)

		token := tokenFromEmail(t, tc.Mailer, "VerifyURL")

		_, err = tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{Token: "wrong", Password: "longenough1"})
		assert.ErrorIs(t, err, auth.ErrTokenInvalidOrExpired)

		_, err = tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{Token: token, Password: "pass5"})
		assert.ErrorIs(t, err, auth.ErrWeakPassword)

		result, err := tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{Token: token, Password: "longenough1"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, result.Role)

		login, err := tc.AuthService.Login(ctx, auth.LoginInput{Email: "a@x.com", Password: "longenough1"})
		require.NoError(t, err)
		assert.NotEmpty(t, login.Token)
	})

	t.Run("reset gated on verification, stale token rejected", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()
		ctx := context.Background()

		_, err := tc.AuthService.RegisterUser(ctx, auth.RegisterUserInput{Name: "B", Email: "b@x.com"})
		require.NoError(t, err)

		_, err = tc.AuthService.RequestPasswordReset(ctx, "b@x.com")
		assert.ErrorIs(t, err, auth.ErrNotVerified)

		verifyToken := tokenFromEmail(t, tc.Mailer, "VerifyURL")
		_, err = tc.AuthService.VerifyEmail(ctx, auth.VerifyEmailInput{Token: verifyToken, Password: "longenough1"})
		require.NoError(t, err)

		_, err = tc.AuthService.RequestPasswordReset(ctx, "b@x.com")
		require.NoError(t, err)
		stale := tokenFromEmail(t, tc.Mailer, "ResetURL")

		_, err = tc.AuthService.RequestPasswordReset(ctx, "b@x.com")
		require.NoError(t, err)

		err = tc.AuthService.ConfirmPasswordReset(ctx, auth.ConfirmResetInput{
			Token:       stale,
			NewPassword: "longenough1",
		})
		assert.ErrorIs(t, err, auth.ErrTokenInvalidOrExpired)
	})
}
