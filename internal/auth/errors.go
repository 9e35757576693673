package auth

import (
	"errors"
	"fmt"

	"github.com/stayora/stayora-auth/internal/database/models"
)

var (
	// Registration / lookup
	ErrEmailExists  = errors.New("email already exists")
	ErrUserNotFound = errors.New("user not found")

	// Opaque token lifecycle (verification and reset)
	ErrTokenInvalidOrExpired = errors.New("invalid or expired token")
	ErrTokenUsed             = errors.New("token already used")
	ErrTokenExpired          = errors.New("token expired")

	// Verification gating
	ErrAlreadyVerified = errors.New("user already verified")
	ErrNotVerified     = errors.New("email not verified")

	// Credentials. Unknown email, unset password and wrong password all
	// collapse into this one error so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Password policy
	ErrWeakPassword = errors.New("password must be at least 8 characters long")

	// Federated sign-in
	ErrFederatedAccount   = errors.New("account uses social login and cannot reset a password")
	ErrUnknownProvider    = errors.New("provider not supported")
	ErrInvalidSocialToken = errors.New("invalid social token")
	ErrRoleMismatch       = errors.New("email already registered under a different role")
)

// roleMismatch wraps ErrRoleMismatch with the role the email is bound to, so
// the surfaced message matches what the caller needs to show.
func roleMismatch(role models.Role) error {
	return fmt.Errorf("%w: this email is already registered as %s", ErrRoleMismatch, role)
}
