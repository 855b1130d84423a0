package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amichai1/task-manager-app/domain/apperr"
	domain "github.com/amichai1/task-manager-app/domain/user"
	"github.com/amichai1/task-manager-app/domain/validate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Client-facing messages.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgMissingCredentials = "Please provide email and password"
	MsgInvalidEmail       = "Please provide a valid email address"
	MsgWeakPassword       = "Password must be at least 6 characters long and contain uppercase, lowercase, and number"
	MsgUserExists         = "User already exists with this email"
	MsgUserNotFound       = "User not found"
)

var registerMessages = validate.Messages{
	"Name.required": "Name must be at least 2 characters long",
	"Name.min":      "Name must be at least 2 characters long",
	"Name.max":      "Name cannot exceed 50 characters",
	"Email":         MsgInvalidEmail,
	"Password":      MsgWeakPassword,
}

type registerInput struct {
	Name     string `validate:"required,min=2,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,strongpassword"`
}

// AuthService handles authentication business logic.
type AuthService struct {
	repo     *UserRepository
	hasher   *PasswordHasher
	jwt      *JWTManager
	validate *validator.Validate
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})

	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		jwt:      jwt,
		validate: v,
		now:      time.Now,
	}
}

// Register creates a new user account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	input := registerInput{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: password,
	}
	if err := validate.Struct(s.validate, input, registerMessages); err != nil {
		return nil, "", err
	}

	exists, err := s.repo.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, "", apperr.Conflict("email", MsgUserExists)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
		Preferences:  domain.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, "", apperr.Conflict("email", MsgUserExists)
		}
		return nil, "", err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user. Unknown email, wrong password and inactive
// accounts all produce the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperr.Validation(MsgMissingCredentials)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, "", apperr.Validation(MsgInvalidEmail)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) || !user.IsActive {
		return nil, "", apperr.Unauthorized(MsgInvalidCredentials)
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", err
	}
	user.LastLogin = &now

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// ValidateToken verifies a token and returns its claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	return &domain.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
