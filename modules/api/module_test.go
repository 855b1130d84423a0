package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amichai1/task-manager-app/config"
	"github.com/amichai1/task-manager-app/domain/apperr"
	domaintask "github.com/amichai1/task-manager-app/domain/task"
	domain "github.com/amichai1/task-manager-app/domain/user"
	"github.com/amichai1/task-manager-app/modules/activity"
	"github.com/amichai1/task-manager-app/modules/auth"
	"github.com/amichai1/task-manager-app/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "5b0c3f4e-8d1a-4c55-9a0e-1f2d3c4b5a69"

type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

// mockAuthPort implements auth.AuthPort. Token "good" belongs to testUserID.
type mockAuthPort struct {
	registerFunc func(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error)
	loginFunc    func(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error)
	getUserFunc  func(ctx context.Context, userID string) (*domain.Profile, error)
}

func (m *mockAuthPort) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	switch token {
	case "good", "orphan":
		return &domain.Claims{UserID: token, Email: "dana@example.com"}, nil
	case "expired":
		return nil, auth.ErrExpiredToken
	case "broken-bus":
		return nil, errors.New("validate-token request failed: nats: timeout")
	default:
		return nil, auth.ErrInvalidToken
	}
}

func (m *mockAuthPort) GetUser(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, userID)
	}
	if userID == "good" {
		return &domain.Profile{ID: testUserID, Name: "Dana", Email: "dana@example.com", IsActive: true}, nil
	}
	return nil, apperr.NotFound("User not found")
}

// mockTaskPort implements task.TaskPort.
type mockTaskPort struct {
	listFunc   func(ctx context.Context, req task.ListTasksRequest) (*task.ListTasksResponse, error)
	getFunc    func(ctx context.Context, ownerID, taskID string) (*task.TaskResponse, error)
	createFunc func(ctx context.Context, req task.CreateTaskRequest) (*task.TaskResponse, error)
	updateFunc func(ctx context.Context, req task.UpdateTaskRequest) (*task.TaskResponse, error)
	toggleFunc func(ctx context.Context, ownerID, taskID string) (*task.TaskResponse, error)
	deleteFunc func(ctx context.Context, ownerID, taskID string) error
	statsFunc  func(ctx context.Context, ownerID string) (*domaintask.Stats, error)
}

func (m *mockTaskPort) ListTasks(ctx context.Context, req task.ListTasksRequest) (*task.ListTasksResponse, error) {
	return m.listFunc(ctx, req)
}

func (m *mockTaskPort) GetTask(ctx context.Context, ownerID, taskID string) (*task.TaskResponse, error) {
	return m.getFunc(ctx, ownerID, taskID)
}

func (m *mockTaskPort) CreateTask(ctx context.Context, req task.CreateTaskRequest) (*task.TaskResponse, error) {
	return m.createFunc(ctx, req)
}

func (m *mockTaskPort) UpdateTask(ctx context.Context, req task.UpdateTaskRequest) (*task.TaskResponse, error) {
	return m.updateFunc(ctx, req)
}

func (m *mockTaskPort) ToggleTask(ctx context.Context, ownerID, taskID string) (*task.TaskResponse, error) {
	return m.toggleFunc(ctx, ownerID, taskID)
}

func (m *mockTaskPort) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	return m.deleteFunc(ctx, ownerID, taskID)
}

func (m *mockTaskPort) Stats(ctx context.Context, ownerID string) (*domaintask.Stats, error) {
	return m.statsFunc(ctx, ownerID)
}

type mockActivityPort struct {
	entries []activity.Entry
	gotUser string
	gotLim  int
}

func (m *mockActivityPort) Recent(_ context.Context, userID string, limit int) ([]activity.Entry, error) {
	m.gotUser = userID
	m.gotLim = limit
	return m.entries, nil
}

type testEnv struct {
	app      *fiber.App
	auth     *mockAuthPort
	tasks    *mockTaskPort
	activity *mockActivityPort
}

func newTestEnv(t *testing.T, env string, opts ...Option) *testEnv {
	t.Helper()

	cfg := &config.Config{Env: env, Port: 5000, Version: "1.0.0"}
	m := NewModule(cfg, &mockLogger{}, opts...)
	te := &testEnv{
		auth:     &mockAuthPort{},
		tasks:    &mockTaskPort{},
		activity: &mockActivityPort{},
	}
	m.authPort = te.auth
	m.taskPort = te.tasks
	m.activityPort = te.activity

	app, err := m.newApp()
	require.NoError(t, err)
	te.app = app
	return te
}

func (te *testEnv) do(t *testing.T, method, path, token, body string) (int, map[string]any, *httptestHeaders) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := te.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out, &httptestHeaders{get: resp.Header.Get}
}

type httptestHeaders struct {
	get func(string) string
}

func sampleTask(title string) *task.TaskResponse {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return &task.TaskResponse{
		Task: domaintask.Task{
			ID:        "0f8e6a52-1d4b-4c3e-9a7f-2b5c6d7e8f90",
			UserID:    testUserID,
			Title:     title,
			Priority:  domaintask.PriorityMedium,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func TestAPIModule_Basics(t *testing.T) {
	m := NewModule(&config.Config{Port: 5000}, &mockLogger{})
	assert.Equal(t, "api", m.Name())
	assert.Equal(t, []string{"auth", "task", "activity"}, m.Dependencies())
	assert.False(t, m.Health(context.Background()).Healthy)
	assert.Error(t, m.Start(context.Background()), "dependencies are required")
	assert.NoError(t, m.Stop(context.Background()))
}

func TestProtect(t *testing.T) {
	te := newTestEnv(t, config.EnvProduction)

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantMsg    string
	}{
		{"no token", "", fiber.StatusUnauthorized, MsgNoToken},
		{"invalid token", "garbage", fiber.StatusUnauthorized, MsgInvalidToken},
		{"expired token", "expired", fiber.StatusUnauthorized, MsgTokenExpired},
		{"user gone", "orphan", fiber.StatusUnauthorized, MsgNoUser},
		{"bus failure", "broken-bus", fiber.StatusUnauthorized, MsgTokenFailed},
		{"valid", "good", fiber.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := te.do(t, fiber.MethodGet, "/api/users/profile", tt.token, "")
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantMsg != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.wantMsg, body["message"])
				return
			}
			data := body["data"].(map[string]any)
			assert.Equal(t, testUserID, data["id"])
			assert.NotContains(t, data, "passwordHash")
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	te := newTestEnv(t, config.EnvProduction)
	te.auth.registerFunc = func(_ context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
		if req.Password == "weak" {
			return nil, apperr.Validation("Validation failed", "Password must be at least 6 characters long and contain uppercase, lowercase, and number")
		}
		if req.Email == "taken@example.com" {
			return nil, apperr.Conflict("email", "User already exists with this email")
		}
		return &auth.AuthResponse{ID: "u1", Name: req.Name, Email: req.Email, Token: "tok"}, nil
	}
	te.auth.loginFunc = func(_ context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	status, body, _ := te.do(t, fiber.MethodPost, "/api/users/register", "",
		`{"name":"Dana","email":"dana@example.com","password":"Secret1"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "tok", data["token"])
	assert.NotContains(t, data, "password")

	status, body, _ = te.do(t, fiber.MethodPost, "/api/users/register", "",
		`{"name":"Dana","email":"dana@example.com","password":"weak"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Len(t, body["errors"], 1)

	status, body, _ = te.do(t, fiber.MethodPost, "/api/users/register", "",
		`{"name":"Dana","email":"taken@example.com","password":"Secret1"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "email", body["field"])

	status, body, _ = te.do(t, fiber.MethodPost, "/api/users/login", "",
		`{"email":"dana@example.com","password":"nope"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", body["message"])

	status, body, _ = te.do(t, fiber.MethodPost, "/api/users/login", "", `{"email":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, MsgInvalidJSON, body["message"])
}

func TestNotImplementedStubs(t *testing.T) {
	te := newTestEnv(t, config.EnvProduction)

	for _, route := range []struct{ method, path, msg string }{
		{fiber.MethodPut, "/api/users/profile", "Update User Profile not implemented yet"},
		{fiber.MethodGet, "/api/users/admin/users", "Get All Users not implemented yet"},
		{fiber.MethodDelete, "/api/users/admin/users/abc", "Delete User not implemented yet"},
	} {
		status, body, _ := te.do(t, route.method, route.path, "good", "")
		assert.Equal(t, fiber.StatusNotImplemented, status, route.path)
		assert.Equal(t, route.msg, body["message"])
	}

	status, _, _ := te.do(t, fiber.MethodGet, "/api/users/admin/users", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status, "stubs still require auth")
}

func TestListTasks(t *testing.T) {
	te := newTestEnv(t, config.EnvProduction)
	var got task.ListTasksRequest
	te.tasks.listFunc = func(_ context.Context, req task.ListTasksRequest) (*task.ListTasksResponse, error) {
		got = req
		return &task.ListTasksResponse{
			Tasks: []task.TaskResponse{*sampleTask("a"), *sampleTask("b")},
			Page:  2, Limit: 2, Total: 5, Pages: 3,
		}, nil
	}

	status, body, _ := te.do(t, fiber.MethodGet, "/api/tasks?page=2&limit=2&completed=false&search=milk&priority=high", "good", "")
	require.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, testUserID, got.OwnerID)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 2, got.Limit)
	require.NotNil(t, got.Completed)
	assert.False(t, *got.Completed)
	assert.Equal(t, "milk", got.Search)
	assert.Equal(t, "high", got.Priority)

	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["count"])
	assert.Len(t, body["data"], 2)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["page"])
	assert.EqualValues(t, 2, pagination["limit"])
	assert.EqualValues(t, 5, pagination["total"])
	assert.EqualValues(t, 3, pagination["pages"])
}

func TestListTasks_EmptyAndDefaults(t *testing.T) {
	te := newTestEnv(t, config.EnvProduction)
	var got task.ListTasksRequest
	te.tasks.listFunc = func(_ context.Context, req task.ListTasksRequest) (*task.ListTasksResponse, error) {
		got = req
		return &task.ListTasksResponse{Page: 1, Limit: 10}, nil
	}

	status, body, _ := te.do(t, fiber.MethodGet, "/api/tasks?completed=maybe", "good", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, got.Completed, "unparseable completed is ignored")
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, task.DefaultLimit, got.Limit)
	assert.Equal(t, []any{}, body["data"])
}

func TestTaskErrors(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"bad id", config.EnvProduction, apperr.Validation("Invalid task id"), fiber.StatusBadRequest, "Invalid task id"},
		{"not found", config.EnvProduction, apperr.NotFound("Task not found"), fiber.StatusNotFound, "Task not found"},
		{"other owner", config.EnvProduction, apperr.Forbidden("Not authorized to access this task"), fiber.StatusForbidden, "Not authorized to access this task"},
		{"internal hidden", config.EnvProduction, apperr.Internal(errors.New("disk full")), fiber.StatusInternalServerError, "Internal Server Error"},
		{"internal shown in development", config.EnvDevelopment, apperr.Internal(errors.New("disk full")), fiber.StatusInternalServerError, "disk full"},
		{"plain error hidden", config.EnvProduction, errors.New("get-task service call failed"), fiber.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, tt.env)
			te.tasks.getFunc = func(context.Context, string, string) (*task.TaskResponse, error) {
				return nil, tt.err
			}

			status, body, _ := te.do(t, fiber.MethodGet, "/api/tasks/xyz", "good", "")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestCreateTask(t *testing.T) {
	te := newTestEnv(t, config.EnvProduction)
	var got task.CreateTaskRequest
	te.tasks.createFunc = func(_ context.Context, req task.CreateTaskRequest) (*task.TaskResponse, error) {
		got = req
		return sampleTask(req.Title), nil
	}

	status, body, _ := te.do(t, fiber.MethodPost, "/api/tasks", "good",
		`{"title":"Buy milk <script>alert(1)</script>","priority":"high","dueDate":"2026-12-01","user":"someone-else"}`)
	require.Equal(t, fiber.StatusCreated, status)

	assert.Equal(t, testUserID, got.OwnerID, "owner always comes from the token")
	assert.Equal(t, "Buy milk", got.Title, "script blocks are stripped")
	assert.Equal(t, "high", got.Priority)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), *got.DueDate)

	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["completed"])
	assert.Nil(t, data["completedAt"])

	status, body, _ = te.do(t, fiber.MethodPost, "/api/tasks", "good", `{"title":"x","dueDate":"next week"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, MsgInvalidDueDate, body["message"])
}

func TestCreateTask_RejectsTrailingData(t *testing.T) {
	te := newTestEnv(t, config.EnvProduction)
	calls := 0
	te.tasks.createFunc = func(_ context.Context, req task.CreateTaskRequest) (*task.TaskResponse, error) {
		calls++
		return sampleTask(req.Title), nil
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"trailing garbage", `{"title":"x"} trailing-garbage`, fiber.StatusBadRequest},
		{"second value", `{"title":"x"}{"title":"y"}`, fiber.StatusBadRequest},
		{"stray brace", `{"title":"x"} }`, fiber.StatusBadRequest},
		{"trailing whitespace", "{\"title\":\"x\"}  \n", fiber.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := te.do(t, fiber.MethodPost, "/api/tasks", "good", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantStatus == fiber.StatusBadRequest {
				assert.Equal(t, MsgInvalidJSON, body["message"])
			}
		})
	}
	assert.Equal(t, 1, calls, "only the well-formed body reaches the task service")
}

func TestUpdateTask_DueDate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantClear bool
		wantDate  bool
	}{
		{"absent leaves it", `{"title":"new"}`, false, false},
		{"null clears it", `{"dueDate":null}`, true, false},
		{"empty string clears it", `{"dueDate":""}`, true, false},
		{"RFC3339 sets it", `{"dueDate":"2026-12-01T09:30:00Z"}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, config.EnvProduction)
			var got task.UpdateTaskRequest
			te.tasks.updateFunc = func(_ context.Context, req task.UpdateTaskRequest) (*task.TaskResponse, error) {
				got = req
				return sampleTask("t"), nil
			}

			status, _, _ := te.do(t, fiber.MethodPut, "/api/tasks/abc", "good", tt.body)
			require.Equal(t, fiber.StatusOK, status)
			assert.Equal(t, "abc", got.TaskID)
			assert.Equal(t, tt.wantClear, got.ClearDueDate)
			assert.Equal(t, tt.wantDate, got.DueDate != nil)
		})
	}
}

func TestToggleDeleteAndStats(t *testing.T) {
	te := newTestEnv(t, config.EnvProduction)
	te.tasks.toggleFunc = func(_ context.Context, ownerID, taskID string) (*task.TaskResponse, error) {
		tr := sampleTask("t")
		tr.Completed = true
		return tr, nil
	}
	var deleted string
	te.tasks.deleteFunc = func(_ context.Context, ownerID, taskID string) error {
		deleted = taskID
		return nil
	}
	te.tasks.statsFunc = func(_ context.Context, ownerID string) (*domaintask.Stats, error) {
		return &domaintask.Stats{Total: 1, Completed: 1, High: 1}, nil
	}

	status, body, _ := te.do(t, fiber.MethodPatch, "/api/tasks/abc/toggle", "good", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["completed"])

	status, body, _ = te.do(t, fiber.MethodDelete, "/api/tasks/abc", "good", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Task removed", body["message"])
	assert.Equal(t, "abc", deleted)

	status, body, _ = te.do(t, fiber.MethodGet, "/api/tasks/stats", "good", "")
	require.Equal(t, fiber.StatusOK, status)
	stats := body["data"].(map[string]any)
	assert.EqualValues(t, 1, stats["total"])
	assert.EqualValues(t, 1, stats["high"])
	assert.EqualValues(t, 0, stats["pending"])
}

func TestActivity(t *testing.T) {
	te := newTestEnv(t, config.EnvProduction)
	te.activity.entries = []activity.Entry{{Type: activity.TypeTaskCreated, Message: "Created task 'a'"}}

	status, body, _ := te.do(t, fiber.MethodGet, "/api/users/activity?limit=5", "good", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, testUserID, te.activity.gotUser)
	assert.Equal(t, 5, te.activity.gotLim)
	assert.EqualValues(t, 1, body["count"])
}

func TestSystemRoutes(t *testing.T) {
	checker := &staticChecker{name: "task", status: mono.HealthStatus{Healthy: true, Message: "operational"}}
	te := newTestEnv(t, config.EnvProduction, WithHealthChecks(checker))

	status, body, headers := te.do(t, fiber.MethodGet, "/api/health", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, config.EnvProduction, body["environment"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Contains(t, body["modules"], "task")
	assert.NotEmpty(t, headers.get(fiber.HeaderXRequestID))
	assert.NotEmpty(t, headers.get("X-Content-Type-Options"), "security headers are set")

	checker.status = mono.HealthStatus{Healthy: false, Message: "down"}
	_, body, _ = te.do(t, fiber.MethodGet, "/api/health", "", "")
	assert.Equal(t, "DEGRADED", body["status"])

	status, body, _ = te.do(t, fiber.MethodGet, "/api", "good", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Task Manager API", body["name"])
	assert.Contains(t, body, "user", "optional auth identifies the caller")

	_, body, _ = te.do(t, fiber.MethodGet, "/api", "garbage", "")
	assert.NotContains(t, body, "user", "optional auth ignores bad tokens")

	for _, path := range []string{"/api/tasksX", "/api/tasks/abc/unknown", "/api/usersX"} {
		status, body, _ = te.do(t, fiber.MethodGet, path, "", "")
		assert.Equal(t, fiber.StatusNotFound, status, path)
		assert.Equal(t, "Route not found", body["message"], path)
	}

	status, body, _ = te.do(t, fiber.MethodGet, "/nope?x=1", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Route not found", body["message"])
	assert.Equal(t, "/nope?x=1", body["path"])
	assert.Equal(t, []any{"/api/users", "/api/tasks", "/api/health"}, body["availableRoutes"])

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := te.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimitsAreApplied(t *testing.T) {
	general := 0
	authAttempts := 0
	te := newTestEnv(t, config.EnvProduction, WithRateLimits(
		func(c *fiber.Ctx) error { general++; return c.Next() },
		func(c *fiber.Ctx) error {
			authAttempts++
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false})
		},
	))

	status, _, _ := te.do(t, fiber.MethodPost, "/api/users/login", "", `{"email":"a@b.co","password":"x"}`)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, 1, authAttempts)

	te.do(t, fiber.MethodGet, "/api/health", "", "")
	assert.Equal(t, 2, general)
}

type staticChecker struct {
	name   string
	status mono.HealthStatus
}

func (s *staticChecker) Name() string                              { return s.name }
func (s *staticChecker) Health(context.Context) mono.HealthStatus { return s.status }

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"  padded  ", "padded"},
		{`<SCRIPT type="x">evil()</script>safe`, "safe"},
		{"a<iframe src=x></iframe>b", "ab"},
		{"javascript:alert(1)", "alert(1)"},
		{`<img onerror = "x">`, `<img  "x">`},
	}

	for _, tt := range tests {
		if got := sanitizeString(tt.in); got != tt.want {
			t.Errorf("sanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
