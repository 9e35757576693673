package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stayora/stayora-auth/internal/database/models"
)

// IdentityStore is the durable user record store. Lookup methods return
// (nil, nil) when no record matches.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// TenantStore persists the business profile linked to TENANT registrations.
type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
}

// TokenRecord is the store-neutral view of a verification or reset token,
// joined with its owning user.
type TokenRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Used      bool
	User      *models.User
}

// TokenStore is the single-use opaque token store. Both the verification and
// reset token tables implement it.
type TokenStore interface {
	// Create stores a fresh token without touching siblings.
	Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	// Rotate marks every unused token of the user as used and stores a fresh
	// one, atomically. A crash can no longer strand the user between the two
	// writes.
	Rotate(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	// FindValid returns the token matching unused and unexpired, joined with
	// its user, or (nil, nil) when none matches.
	FindValid(ctx context.Context, token string) (*TokenRecord, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

// Mailer delivers a templated email. Implementations may deliver directly
// over SMTP or enqueue a background task.
type Mailer interface {
	Send(ctx context.Context, to, subject, template string, data map[string]any) error
}

// SocialClaims is the claim set extracted from a verified provider assertion.
type SocialClaims struct {
	Email     string
	Name      string
	Picture   string
	SubjectID string
}

// IdentityVerifier validates a third-party identity assertion against the
// configured audience.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion, audience string) (*SocialClaims, error)
}
