package models

// Role is the account role fixed at creation. Social sign-in must match it.
type Role string

const (
	RoleUser   Role = "USER"
	RoleTenant Role = "TENANT"
)

// Provider identifies how the account authenticates.
type Provider string

const (
	ProviderEmail  Provider = "EMAIL"
	ProviderGoogle Provider = "GOOGLE"
)

type User struct {
	Base
	Role              Role     `gorm:"type:varchar(16);not null" json:"role"`
	Name              string   `json:"name"`
	Email             string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string   `json:"-"` // empty until verification sets a password
	Provider          Provider `gorm:"type:varchar(16)" json:"provider,omitempty"`
	ProviderAccountID string   `json:"-"`
	ProfileImage      string   `json:"profile_image,omitempty"`
	IsVerified        bool     `gorm:"default:false" json:"is_verified"`
}

func (User) TableName() string {
	return "users"
}

// HasPassword reports whether a credential login is possible at all.
// Federated-only accounts never set one.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
