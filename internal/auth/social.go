package auth

import (
	"context"

	"github.com/stayora/stayora-auth/internal/database/models"
	"google.golang.org/api/idtoken"
)

// ProviderGoogleName is the only federated provider the service accepts.
const ProviderGoogleName = "google"

// SocialAuth signs a user in (or up) from a verified provider assertion.
// First sign-in creates a verified account with no password; later sign-ins
// must match the stored role, since an email is bound to exactly one role
// across auth methods.
func (s *Service) SocialAuth(ctx context.Context, input SocialAuthInput) (*AuthResult, error) {
	if input.Provider != ProviderGoogleName {
		return nil, ErrUnknownProvider
	}

	claims, err := s.verifier.Verify(ctx, input.Token, s.googleClientID)
	if err != nil {
		return nil, ErrInvalidSocialToken
	}
	if claims.Email == "" {
		return nil, ErrInvalidSocialToken
	}

	name := claims.Name
	if name == "" {
		name = "Google User"
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &models.User{
			Role:              input.Role,
			Name:              name,
			Email:             claims.Email,
			Provider:          models.ProviderGoogle,
			ProviderAccountID: claims.SubjectID,
			ProfileImage:      claims.Picture,
			IsVerified:        true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if user.Role != input.Role {
		return nil, roleMismatch(user.Role)
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Message:    "Social login successful",
		Token:      token,
		Role:       user.Role,
		IsVerified: user.IsVerified,
	}, nil
}

// GoogleVerifier validates Google ID tokens against the configured client
// audience. It is injected into the Service so tests can swap in a fake.
type GoogleVerifier struct{}

func NewGoogleVerifier() *GoogleVerifier {
	return &GoogleVerifier{}
}

func (v *GoogleVerifier) Verify(ctx context.Context, assertion, audience string) (*SocialClaims, error) {
	payload, err := idtoken.Validate(ctx, assertion, audience)
	if err != nil {
		return nil, err
	}

	claims := &SocialClaims{
		SubjectID: payload.Subject,
	}
	if email, ok := payload.Claims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		claims.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		claims.Picture = picture
	}

	return claims, nil
}

var _ IdentityVerifier = (*GoogleVerifier)(nil)
