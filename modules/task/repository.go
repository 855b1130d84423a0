package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/amichai1/task-manager-app/domain/task"
	"gorm.io/gorm"
)

// ErrTaskNotFound is returned when a task is not found.
var ErrTaskNotFound = errors.New("task not found")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListFilter selects one page of an owner's tasks.
type ListFilter struct {
	OwnerID   string
	Completed *bool
	Priority  domain.Priority
	Search    string
	Offset    int
	Limit     int
}

// TaskRepository handles task persistence using GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Migrate creates or updates the tasks table.
func (r *TaskRepository) Migrate() error {
	return r.db.AutoMigrate(&domain.Task{})
}

// Create saves a new task.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID regardless of owner.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// List returns the requested page, newest first, and the total match count.
func (r *TaskRepository) List(ctx context.Context, f ListFilter) ([]domain.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Task{}).Where("user_id = ?", f.OwnerID)
	if f.Completed != nil {
		query = query.Where("completed = ?", *f.Completed)
	}
	if f.Priority != "" {
		query = query.Where("priority = ?", f.Priority)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, f.Limit)
	if total == 0 {
		return tasks, 0, nil
	}

	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Save writes every column of an existing task, including cleared ones.
func (r *TaskRepository) Save(ctx context.Context, task *domain.Task) error {
	result := r.db.WithContext(ctx).Model(task).Select("*").Omit("id", "user_id", "created_at").Updates(task)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete permanently removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Stats aggregates an owner's tasks in a single query. Overdue counts open
// tasks whose due date is before now.
func (r *TaskRepository) Stats(ctx context.Context, ownerID string, now time.Time) (*domain.Stats, error) {
	var stats domain.Stats
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN completed = ? THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN completed = ? THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN priority = ? THEN 1 ELSE 0 END), 0) AS high,
			COALESCE(SUM(CASE WHEN priority = ? THEN 1 ELSE 0 END), 0) AS medium,
			COALESCE(SUM(CASE WHEN priority = ? THEN 1 ELSE 0 END), 0) AS low,
			COALESCE(SUM(CASE WHEN completed = ? AND due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue`,
			true, false,
			domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow,
			false, now.UTC(),
		).
		Where("user_id = ?", ownerID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tasks: %w", err)
	}
	return &stats, nil
}
