package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/amichai1/task-manager-app/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*domain.Profile, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// Register creates an account. Rejections come back as *apperr.Error.
func (a *AuthAdapter) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceRegister, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", ServiceRegister, err)
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return &resp, nil
}

// Login authenticates a user. Rejections come back as *apperr.Error.
func (a *AuthAdapter) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceLogin, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", ServiceLogin, err)
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return &resp, nil
}

// ValidateToken validates a token and returns claims. A rejected token
// returns ErrExpiredToken or ErrInvalidToken.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceValidateToken, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", ServiceValidateToken, err)
	}

	if !resp.Valid {
		if resp.Error == ErrExpiredToken.Error() {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		UserID: resp.UserID,
		Email:  resp.Email,
	}, nil
}

// GetUser retrieves a user's public profile.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*domain.Profile, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceGetUser, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", ServiceGetUser, err)
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return resp.Profile, nil
}
