package models

import "github.com/google/uuid"

// Tenant is the business profile linked to a TENANT-role user.
type Tenant struct {
	Base
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CompanyName string    `json:"company_name"`
	PhoneNumber string    `json:"phone_number"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Tenant) TableName() string {
	return "tenants"
}
