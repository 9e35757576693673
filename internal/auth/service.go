package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stayora/stayora-auth/internal/database/models"
)

// Email template names, rendered by the mailer.
const (
	TemplateRegistration  = "registration"
	TemplateResetPassword = "reset-password"
)

// Service orchestrates registration, verification, login, password reset and
// social sign-in. It holds no state of its own; every mutation goes through
// the injected stores.
type Service struct {
	users              IdentityStore
	tenants            TenantStore
	verificationTokens TokenStore
	resetTokens        TokenStore
	jwt                *JWTService
	mailer             Mailer
	verifier           IdentityVerifier
	baseURL            string
	googleClientID     string
}

// Deps carries the collaborators of the Service. All fields are required
// except Tenants, which only the tenant registration path touches.
type Deps struct {
	Users              IdentityStore
	Tenants            TenantStore
	VerificationTokens TokenStore
	ResetTokens        TokenStore
	JWT                *JWTService
	Mailer             Mailer
	Verifier           IdentityVerifier
	BaseURL            string
	GoogleClientID     string
}

func NewService(d Deps) *Service {
	return &Service{
		users:              d.Users,
		tenants:            d.Tenants,
		verificationTokens: d.VerificationTokens,
		resetTokens:        d.ResetTokens,
		jwt:                d.JWT,
		mailer:             d.Mailer,
		verifier:           d.Verifier,
		baseURL:            d.BaseURL,
		googleClientID:     d.GoogleClientID,
	}
}

type RegisterUserInput struct {
	Name  string
	Email string
}

type RegisterTenantInput struct {
	Name        string
	Email       string
	CompanyName string
	PhoneNumber string
}

type VerifyEmailInput struct {
	Token    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type ConfirmResetInput struct {
	Token       string
	NewPassword string
}

type SocialAuthInput struct {
	Role     models.Role
	Provider string
	Token    string
}

// VerifyResult carries the role so callers can route post-verification UI.
type VerifyResult struct {
	Message string      `json:"message"`
	Role    models.Role `json:"role"`
}

// AuthResult is the shared success payload of login and social sign-in.
type AuthResult struct {
	Message    string      `json:"message"`
	Token      string      `json:"token"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"is_verified"`
}

// RegisterUser creates an unverified USER account with no password and emails
// a verification link. The raw token leaves the service only inside that
// email.
func (s *Service) RegisterUser(ctx context.Context, input RegisterUserInput) (string, error) {
	user, err := s.createEmailAccount(ctx, models.RoleUser, input.Name, input.Email)
	if err != nil {
		return "", err
	}

	if err := s.issueVerification(ctx, user, false); err != nil {
		return "", err
	}

	return "Registration successful. Please check your email to verify your account and set your password.", nil
}

// RegisterTenant is the business-account variant of RegisterUser; it
// additionally creates the linked tenant profile.
func (s *Service) RegisterTenant(ctx context.Context, input RegisterTenantInput) (string, error) {
	user, err := s.createEmailAccount(ctx, models.RoleTenant, input.Name, input.Email)
	if err != nil {
		return "", err
	}

	tenant := models.Tenant{
		UserID:      user.ID,
		CompanyName: input.CompanyName,
		PhoneNumber: input.PhoneNumber,
	}
	if err := s.tenants.Create(ctx, &tenant); err != nil {
		return "", err
	}

	if err := s.issueVerification(ctx, user, false); err != nil {
		return "", err
	}

	return "Tenant registration successful. Please check your email to verify your account and set your password.", nil
}

// ResendVerification rotates the user's active verification token and re-sends
// the verification email. Repeated calls simply keep rotating.
func (s *Service) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	return s.issueVerification(ctx, user, true)
}

// VerifyEmail consumes a verification token, sets the user's first password
// and marks the account verified. Each check is a hard gate; the used and
// expiry re-checks duplicate the store filter on purpose, as a guard against
// a store returning a stale row.
func (s *Service) VerifyEmail(ctx context.Context, input VerifyEmailInput) (*VerifyResult, error) {
	rec, err := s.verificationTokens.FindValid(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrTokenInvalidOrExpired
	}
	if rec.Used {
		return nil, ErrTokenUsed
	}
	if !rec.ExpiresAt.After(time.Now()) {
		return nil, ErrTokenExpired
	}

	user := rec.User
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if len(input.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = hash
	user.IsVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.verificationTokens.MarkUsed(ctx, rec.ID); err != nil {
		return nil, err
	}

	return &VerifyResult{
		Message: "Email verified and password set successfully",
		Role:    user.Role,
	}, nil
}

// Login checks credentials and issues a bearer token. Unknown email, unset
// password and wrong password all return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Message:    "Login successful",
		Token:      token,
		Role:       user.Role,
		IsVerified: user.IsVerified,
	}, nil
}

// RequestPasswordReset rotates the user's active reset token and emails a
// reset link. Federated accounts have no password to reset and unverified
// accounts must verify first.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.Provider != "" && user.Provider != models.ProviderEmail {
		return "", ErrFederatedAccount
	}
	if !user.IsVerified {
		return "", ErrNotVerified
	}

	token, err := RandomToken()
	if err != nil {
		return "", err
	}

	if err := s.resetTokens.Rotate(ctx, user.ID, token, TokenExpiry(time.Now())); err != nil {
		return "", err
	}

	err = s.mailer.Send(ctx, user.Email, "Reset Password", TemplateResetPassword, map[string]any{
		"ResetURL": fmt.Sprintf("%s/reset-password-confirm?token=%s", s.baseURL, token),
	})
	if err != nil {
		return "", err
	}

	return "Password reset email sent. Please check your email.", nil
}

// ConfirmPasswordReset consumes a reset token and replaces the user's
// password. Verification state is untouched. The policy check runs before
// any store access.
func (s *Service) ConfirmPasswordReset(ctx context.Context, input ConfirmResetInput) error {
	if len(input.NewPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	rec, err := s.resetTokens.FindValid(ctx, input.Token)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrTokenInvalidOrExpired
	}

	hash, err := HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user := rec.User
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	return s.resetTokens.MarkUsed(ctx, rec.ID)
}

// GetUserByID loads a user for authenticated profile reads.
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// createEmailAccount is the shared head of both registration variants.
func (s *Service) createEmailAccount(ctx context.Context, role models.Role, name, email string) (*models.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	user := models.User{
		Role:     role,
		Name:     name,
		Email:    email,
		Provider: models.ProviderEmail,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// issueVerification stores a fresh 1-hour verification token and emails the
// verify link. rotate distinguishes re-issuance (supersede siblings) from the
// first issuance on registration, where no siblings can exist.
func (s *Service) issueVerification(ctx context.Context, user *models.User, rotate bool) error {
	token, err := RandomToken()
	if err != nil {
		return err
	}

	expiresAt := TokenExpiry(time.Now())
	if rotate {
		err = s.verificationTokens.Rotate(ctx, user.ID, token, expiresAt)
	} else {
		err = s.verificationTokens.Create(ctx, user.ID, token, expiresAt)
	}
	if err != nil {
		return err
	}

	subject := "Verification Email"
	if !rotate {
		subject = "Verification Email & Set Password"
	}

	return s.mailer.Send(ctx, user.Email, subject, TemplateRegistration, map[string]any{
		"Name":      user.Name,
		"Email":     user.Email,
		"VerifyURL": fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, token),
	})
}
