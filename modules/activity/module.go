package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amichai1/task-manager-app/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// ServiceFeed returns a user's recent activity.
const ServiceFeed = "activity-feed"

// FeedRequest asks for up to Limit entries for UserID.
type FeedRequest struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

// FeedResponse carries the entries, newest first.
type FeedResponse struct {
	Entries []Entry `json:"entries"`
}

// ActivityModule listens to user and task events.
type ActivityModule struct {
	feed    *Feed
	metrics *Metrics
	logger  types.Logger
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)
var _ mono.HealthCheckableModule = (*ActivityModule)(nil)

// NewModule creates the module. metrics may be shared with the /metrics
// endpoint through the default Prometheus registerer.
func NewModule(metrics *Metrics, logger types.Logger) *ActivityModule {
	return &ActivityModule{
		feed:    NewFeed(FeedSize),
		metrics: metrics,
		logger:  logger.WithModule("activity"),
	}
}

// Name returns the module name.
func (m *ActivityModule) Name() string {
	return "activity"
}

// RegisterEventConsumers subscribes to every user and task event.
func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.UserRegisteredV1, m.handleUserRegistered, m); err != nil {
		return fmt.Errorf("failed to register UserRegistered consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.UserLoggedInV1, m.handleUserLoggedIn, m); err != nil {
		return fmt.Errorf("failed to register UserLoggedIn consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskReopenedV1, m.handleTaskReopened, m); err != nil {
		return fmt.Errorf("failed to register TaskReopened consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "count", 7)
	return nil
}

// RegisterServices exposes the feed to the API module.
func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceFeed, json.Unmarshal, json.Marshal, m.handleFeed,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceFeed, err)
	}
	return nil
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Module started", "feed_size", m.feed.size)
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

// Health reports how many users have recorded activity.
func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"users": m.feed.Users(),
		},
	}
}

func (m *ActivityModule) handleFeed(_ context.Context, req FeedRequest, _ *mono.Msg) (FeedResponse, error) {
	return FeedResponse{Entries: m.feed.Recent(req.UserID, req.Limit)}, nil
}

func (m *ActivityModule) handleUserRegistered(_ context.Context, ev events.UserRegisteredEvent, _ *mono.Msg) error {
	m.logger.Info("User registered", "user_id", ev.UserID, "email", ev.Email)
	m.record(ev.UserID, Entry{
		Type:    TypeRegistered,
		Message: fmt.Sprintf("Welcome, %s", ev.Name),
		At:      ev.RegisteredAt,
	})
	return nil
}

func (m *ActivityModule) handleUserLoggedIn(_ context.Context, ev events.UserLoggedInEvent, _ *mono.Msg) error {
	m.logger.Debug("User logged in", "user_id", ev.UserID)
	m.record(ev.UserID, Entry{Type: TypeLoggedIn, Message: "Logged in", At: ev.LoggedInAt})
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, ev events.TaskCreatedEvent, _ *mono.Msg) error {
	m.logger.Info("Task created", "task_id", ev.TaskID, "user_id", ev.UserID, "priority", ev.Priority)
	m.metrics.tasksByPriority.WithLabelValues(ev.Priority).Inc()
	m.record(ev.UserID, Entry{
		Type:    TypeTaskCreated,
		TaskID:  ev.TaskID,
		Message: fmt.Sprintf("Created task '%s'", ev.Title),
		At:      ev.CreatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, ev events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task updated", "task_id", ev.TaskID, "fields", ev.Fields)
	m.metrics.updateFields.Observe(float64(len(ev.Fields)))
	m.record(ev.UserID, Entry{
		Type:    TypeTaskUpdated,
		TaskID:  ev.TaskID,
		Message: fmt.Sprintf("Updated %d field(s)", len(ev.Fields)),
		At:      ev.UpdatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskCompleted(_ context.Context, ev events.TaskCompletedEvent, _ *mono.Msg) error {
	m.logger.Info("Task completed", "task_id", ev.TaskID, "user_id", ev.UserID)
	m.record(ev.UserID, Entry{Type: TypeTaskCompleted, TaskID: ev.TaskID, Message: "Completed a task", At: ev.CompletedAt})
	return nil
}

func (m *ActivityModule) handleTaskReopened(_ context.Context, ev events.TaskReopenedEvent, _ *mono.Msg) error {
	m.logger.Info("Task reopened", "task_id", ev.TaskID, "user_id", ev.UserID)
	m.record(ev.UserID, Entry{Type: TypeTaskReopened, TaskID: ev.TaskID, Message: "Reopened a task", At: ev.ReopenedAt})
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, ev events.TaskDeletedEvent, _ *mono.Msg) error {
	m.logger.Info("Task deleted", "task_id", ev.TaskID, "user_id", ev.UserID)
	m.record(ev.UserID, Entry{Type: TypeTaskDeleted, TaskID: ev.TaskID, Message: "Deleted a task", At: ev.DeletedAt})
	return nil
}

func (m *ActivityModule) record(userID string, e Entry) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	m.metrics.observe(e.Type)
	m.feed.Add(userID, e)
}
