package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/stayora/stayora-auth/internal/api/dto"
	"github.com/stayora/stayora-auth/internal/api/validation"
	"github.com/stayora/stayora-auth/internal/auth"
	"github.com/stayora/stayora-auth/internal/database/models"
)

type AuthHandler struct {
	authService *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	msg, err := h.authService.RegisterUser(r.Context(), auth.RegisterUserInput{
		Name:  validation.SanitizeString(req.Name),
		Email: validation.NormalizeEmail(req.Email),
	})
	if err != nil {
		writeAuthError(w, err, "Registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{Message: msg})
}

func (h *AuthHandler) RegisterTenant(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	msg, err := h.authService.RegisterTenant(r.Context(), auth.RegisterTenantInput{
		Name:        validation.SanitizeString(req.Name),
		Email:       validation.NormalizeEmail(req.Email),
		CompanyName: validation.SanitizeString(req.CompanyName),
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeAuthError(w, err, "Registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{Message: msg})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user id"})
		return
	}

	if err := h.authService.ResendVerification(r.Context(), userID); err != nil {
		writeAuthError(w, err, "Resend failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Verification email sent. Please check your email."})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	result, err := h.authService.VerifyEmail(r.Context(), auth.VerifyEmailInput{
		Token:    req.Token,
		Password: req.Password,
	})
	if err != nil {
		writeAuthError(w, err, "Verification failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyEmailResponse{
		Message: result.Message,
		Role:    string(result.Role),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	result, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    validation.NormalizeEmail(req.Email),
		Password: req.Password,
	})
	if err != nil {
		writeAuthError(w, err, "Login failed")
		return
	}

	setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Message:    result.Message,
		Token:      result.Token,
		Role:       string(result.Role),
		IsVerified: result.IsVerified,
	})
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	msg, err := h.authService.RequestPasswordReset(r.Context(), validation.NormalizeEmail(req.Email))
	if err != nil {
		writeAuthError(w, err, "Password reset request failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: msg})
}

func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	err := h.authService.ConfirmPasswordReset(r.Context(), auth.ConfirmResetInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeAuthError(w, err, "Password reset failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Password reset successful"})
}

func (h *AuthHandler) SocialAuth(w http.ResponseWriter, r *http.Request) {
	var req dto.SocialAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	result, err := h.authService.SocialAuth(r.Context(), auth.SocialAuthInput{
		Role:     models.Role(req.Role),
		Provider: req.Provider,
		Token:    req.Token,
	})
	if err != nil {
		writeAuthError(w, err, "Social login failed")
		return
	}

	setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Message:    result.Message,
		Token:      result.Token,
		Role:       string(result.Role),
		IsVerified: result.IsVerified,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// setTokenCookie mirrors the bearer token into a cookie for the web frontend.
func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   7 * 86400,
	})
}

// writeAuthError maps the service error taxonomy onto HTTP statuses. Unknown
// errors collapse into a 500 with a generic message.
func writeAuthError(w http.ResponseWriter, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, auth.ErrEmailExists):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, auth.ErrUserNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, auth.ErrTokenInvalidOrExpired),
		errors.Is(err, auth.ErrTokenUsed),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrAlreadyVerified),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrFederatedAccount),
		errors.Is(err, auth.ErrUnknownProvider):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidSocialToken):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, auth.ErrNotVerified):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, auth.ErrRoleMismatch):
		status = http.StatusConflict
		message = err.Error()
	}

	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
