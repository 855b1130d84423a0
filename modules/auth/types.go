package auth

import (
	"github.com/amichai1/task-manager-app/domain/apperr"
	domain "github.com/amichai1/task-manager-app/domain/user"
)

// Service names registered by the auth module.
const (
	ServiceRegister      = "register"
	ServiceLogin         = "login"
	ServiceValidateToken = "validate-token"
	ServiceGetUser       = "get-user"
)

// RegisterRequest is the request for user registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login. Failure is set instead of
// the other fields when the request was rejected.
type AuthResponse struct {
	ID      string        `json:"id,omitempty"`
	Name    string        `json:"name,omitempty"`
	Email   string        `json:"email,omitempty"`
	Token   string        `json:"token,omitempty"`
	Failure *apperr.Error `json:"failure,omitempty"`
}

// ValidateTokenRequest is the request for token validation.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse is the response for token validation.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetUserRequest is the request for getting a user.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse carries the user's public profile.
type GetUserResponse struct {
	Profile *domain.Profile `json:"profile,omitempty"`
	Failure *apperr.Error   `json:"failure,omitempty"`
}
