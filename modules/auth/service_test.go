package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/amichai1/task-manager-app/domain/apperr"
	domain "github.com/amichai1/task-manager-app/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// Every pooled connection to :memory: would otherwise see its own empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func setupTestService(t *testing.T) (*AuthService, *UserRepository) {
	t.Helper()

	repo := NewUserRepository(setupTestDB(t))
	service := NewAuthService(repo, NewPasswordHasherWithCost(bcrypt.MinCost), NewJWTManager(testJWTConfig()))
	return service, repo
}

func assertKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()

	if err == nil {
		t.Fatalf("error = nil, want kind %q", kind)
	}
	appErr := apperr.From(err)
	if appErr.Kind != kind {
		t.Fatalf("error kind = %q (%v), want %q", appErr.Kind, err, kind)
	}
	return appErr
}

func TestAuthService_Register(t *testing.T) {
	service, repo := setupTestService(t)
	ctx := context.Background()

	user, token, err := service.Register(ctx, "  Alice Smith ", " Alice@Example.COM ", "Secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Name != "Alice Smith" {
		t.Errorf("Name = %q, want %q", user.Name, "Alice Smith")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lowercased %q", user.Email, "alice@example.com")
	}
	if user.PasswordHash == "Secret123" || user.PasswordHash == "" {
		t.Error("password was not hashed")
	}
	if !user.IsActive {
		t.Error("new users should be active")
	}
	if user.Preferences != domain.DefaultPreferences() {
		t.Errorf("Preferences = %+v, want defaults", user.Preferences)
	}

	// The issued token resolves back to the created identity.
	claims, err := service.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, user.ID)
	}

	stored, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if stored.Email != user.Email {
		t.Errorf("stored email = %q, want %q", stored.Email, user.Email)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantMsg  string
	}{
		{"name too short", "A", "a@example.com", "Secret123", "Name must be at least 2 characters long"},
		{"name blank after trim", "   ", "a@example.com", "Secret123", "Name must be at least 2 characters long"},
		{"name too long", strings.Repeat("a", 51), "a@example.com", "Secret123", "Name cannot exceed 50 characters"},
		{"malformed email", "Alice", "not-an-email", "Secret123", MsgInvalidEmail},
		{"weak password", "Alice", "a@example.com", "secret", MsgWeakPassword},
		{"short password", "Alice", "a@example.com", "Ab1", MsgWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.Register(ctx, tt.userName, tt.email, tt.password)
			appErr := assertKind(t, err, apperr.KindValidation)
			if appErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	if _, _, err := service.Register(ctx, "Alice", "alice@example.com", "Secret123"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, _, err := service.Register(ctx, "Alice Again", "ALICE@example.com", "Secret456")
	appErr := assertKind(t, err, apperr.KindConflict)
	if appErr.Field != "email" {
		t.Errorf("Field = %q, want %q", appErr.Field, "email")
	}
	if appErr.Message != MsgUserExists {
		t.Errorf("Message = %q, want %q", appErr.Message, MsgUserExists)
	}
}

func TestAuthService_Login(t *testing.T) {
	service, repo := setupTestService(t)
	ctx := context.Background()

	registered, _, err := service.Register(ctx, "Bob", "bob@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	loginAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return loginAt }

	user, token, err := service.Login(ctx, "BOB@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("user.ID = %q, want %q", user.ID, registered.ID)
	}
	if token == "" {
		t.Error("Login() returned empty token")
	}

	stored, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if stored.LastLogin == nil || !stored.LastLogin.Equal(loginAt) {
		t.Errorf("LastLogin = %v, want %v", stored.LastLogin, loginAt)
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	service, repo := setupTestService(t)
	ctx := context.Background()

	if _, _, err := service.Register(ctx, "Bob", "bob@example.com", "Secret123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	inactive, _, err := service.Register(ctx, "Carol", "carol@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := repo.db.Model(&domain.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"missing email", "", "Secret123", apperr.KindValidation, MsgMissingCredentials},
		{"missing password", "bob@example.com", "", apperr.KindValidation, MsgMissingCredentials},
		{"malformed email", "bob", "Secret123", apperr.KindValidation, MsgInvalidEmail},
		{"unknown email", "nobody@example.com", "Secret123", apperr.KindUnauthorized, MsgInvalidCredentials},
		{"wrong password", "bob@example.com", "Wrong123", apperr.KindUnauthorized, MsgInvalidCredentials},
		{"inactive account", "carol@example.com", "Secret123", apperr.KindUnauthorized, MsgInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.Login(ctx, tt.email, tt.password)
			appErr := assertKind(t, err, tt.wantKind)
			if appErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestAuthService_GetUser(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	created, _, err := service.Register(ctx, "Dana", "dana@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := service.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Email != "dana@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "dana@example.com")
	}

	_, err = service.GetUser(ctx, "missing-id")
	assertKind(t, err, apperr.KindNotFound)
}
