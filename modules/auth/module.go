package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/amichai1/task-manager-app/domain/apperr"
	"github.com/amichai1/task-manager-app/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// AuthModule provides registration, login and token services.
type AuthModule struct {
	db       *gorm.DB
	tokens   *JWTManager
	hasher   *PasswordHasher
	service  *AuthService
	eventBus mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)
var _ mono.EventEmitterModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule backed by db.
func NewModule(db *gorm.DB, jwtConfig JWTConfig) *AuthModule {
	return &AuthModule{
		db:     db,
		tokens: NewJWTManager(jwtConfig),
		hasher: NewPasswordHasher(),
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// SetEventBus receives the event bus used to publish user events.
func (m *AuthModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *AuthModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserRegisteredV1.ToBase(),
		events.UserLoggedInV1.ToBase(),
	}
}

// Start migrates the users table and wires the service.
func (m *AuthModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}

	repo := NewUserRepository(m.db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewAuthService(repo, m.hasher, m.tokens)

	log.Printf("[auth] Module started (token lifetime: %s)", m.tokens.Expire())
	return nil
}

// Stop shuts down the module. The database is owned by the storage module.
func (m *AuthModule) Stop(_ context.Context) error {
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"bcrypt_cost":    m.hasher.cost,
			"token_lifetime": m.tokens.Expire().String(),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRegister, json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRegister, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceLogin, json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceLogin, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceValidateToken, json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceValidateToken, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetUser, json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetUser, err)
	}

	log.Printf("[auth] Registered services: %s, %s, %s, %s",
		ServiceRegister, ServiceLogin, ServiceValidateToken, ServiceGetUser)
	return nil
}

// handleRegister handles user registration.
func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (AuthResponse, error) {
	user, token, err := m.service.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return AuthResponse{Failure: apperr.From(err)}, nil
	}

	m.publish(func(bus mono.EventBus) error {
		return events.UserRegisteredV1.Publish(bus, events.UserRegisteredEvent{
			UserID:       user.ID,
			Email:        user.Email,
			Name:         user.Name,
			RegisteredAt: user.CreatedAt,
		}, nil)
	}, "UserRegistered", user.ID)

	return AuthResponse{ID: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}

// handleLogin handles user login.
func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (AuthResponse, error) {
	user, token, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return AuthResponse{Failure: apperr.From(err)}, nil
	}

	m.publish(func(bus mono.EventBus) error {
		return events.UserLoggedInV1.Publish(bus, events.UserLoggedInEvent{
			UserID:     user.ID,
			LoggedInAt: *user.LastLogin,
		}, nil)
	}, "UserLoggedIn", user.ID)

	return AuthResponse{ID: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}

// handleValidateToken reports token problems in the response, not as an error.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := ErrInvalidToken.Error()
		if errors.Is(err, ErrExpiredToken) {
			errMsg = ErrExpiredToken.Error()
		}
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// handleGetUser handles get user requests.
func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{Failure: apperr.From(err)}, nil
	}

	profile := user.Profile()
	return GetUserResponse{Profile: &profile}, nil
}

// publish emits an event best-effort; failures are logged and never fail the request.
func (m *AuthModule) publish(emit func(mono.EventBus) error, name, userID string) {
	if m.eventBus == nil {
		return
	}
	if err := emit(m.eventBus); err != nil {
		log.Printf("[auth] Warning: failed to publish %s event for user %s: %v", name, userID, err)
	}
}
