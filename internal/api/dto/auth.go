package dto

import (
	"github.com/stayora/stayora-auth/internal/api/validation"
	"github.com/stayora/stayora-auth/internal/database/models"
)

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}

	return errors
}

type RegisterTenantRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
	PhoneNumber string `json:"phone_number"`
}

func (r RegisterTenantRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	if r.CompanyName == "" {
		errors["company_name"] = "Company name is required"
	}
	if r.PhoneNumber == "" {
		errors["phone_number"] = "Phone number is required"
	}

	return errors
}

type ResendVerificationRequest struct {
	UserID string `json:"user_id"`
}

func (r ResendVerificationRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.UserID == "" {
		errors["user_id"] = "User id is required"
	} else if !validation.IsValidUUID(r.UserID) {
		errors["user_id"] = "User id must be a UUID"
	}

	return errors
}

type VerifyEmailRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r VerifyEmailRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Token is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type ResetRequest struct {
	Email string `json:"email"`
}

func (r ResetRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}

	return errors
}

type ResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r ResetConfirmRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Token is required"
	}
	if r.NewPassword == "" {
		errors["new_password"] = "New password is required"
	}

	return errors
}

type SocialAuthRequest struct {
	Role     string `json:"role"`
	Provider string `json:"provider"`
	Token    string `json:"token"`
}

func (r SocialAuthRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Role != string(models.RoleUser) && r.Role != string(models.RoleTenant) {
		errors["role"] = "Role must be USER or TENANT"
	}
	if r.Provider == "" {
		errors["provider"] = "Provider is required"
	}
	if r.Token == "" {
		errors["token"] = "Token is required"
	}

	return errors
}

type AuthResponse struct {
	Message    string `json:"message"`
	Token      string `json:"token"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

type VerifyEmailResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

type UserDTO struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Provider     string `json:"provider,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	IsVerified   bool   `json:"is_verified"`
}
