package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationToken is a single-use opaque token emailed on registration.
// Valid only while used=false and expires_at is in the future; issuing a new
// one marks every sibling used first.
type VerificationToken struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

// ResetToken has the same shape and lifecycle as VerificationToken, scoped to
// the password-reset flow.
type ResetToken struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ResetToken) TableName() string {
	return "reset_tokens"
}
