package task

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/amichai1/task-manager-app/domain/apperr"
	domain "github.com/amichai1/task-manager-app/domain/task"
	"github.com/amichai1/task-manager-app/domain/validate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Client-facing messages.
const (
	MsgInvalidTaskID   = "Invalid task id"
	MsgTaskNotFound    = "Task not found"
	MsgNotAuthorized   = "Not authorized to access this task"
	MsgTitleRequired   = "Task title is required"
	MsgTitleTooLong    = "Title cannot exceed 200 characters"
	MsgDescTooLong     = "Description cannot exceed 1000 characters"
	MsgInvalidPriority = "Priority must be low, medium, or high"
	MsgDueDateInPast   = "Due date cannot be in the past"
)

// DefaultLimit is the list-tasks page size when none is given.
const DefaultLimit = 10

var taskMessages = validate.Messages{
	"Title.required": MsgTitleRequired,
	"Title.max":      MsgTitleTooLong,
	"Description":    MsgDescTooLong,
	"Priority":       MsgInvalidPriority,
}

type taskInput struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=1000"`
	Priority    string `validate:"oneof=low medium high"`
}

// StatsCache is the subset of the Redis cache used for per-owner stats.
// Entries are keyed by a per-owner generation that every mutation bumps, so
// a snapshot computed before a mutation can never be read after it.
type StatsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
	Version(ctx context.Context, key string) (int64, error)
}

// Page is one page of list-tasks results.
type Page struct {
	Tasks []domain.Task
	Page  int
	Limit int
	Total int64
	Pages int
}

// Change describes a successful mutation so callers can emit events.
type Change struct {
	Task         *domain.Task
	Fields       []string
	WasCompleted bool
}

// Completed reports whether the change moved the task to completed.
func (c *Change) Completed() bool {
	return !c.WasCompleted && c.Task.Completed
}

// Reopened reports whether the change moved a completed task back to pending.
func (c *Change) Reopened() bool {
	return c.WasCompleted && !c.Task.Completed
}

// Query holds list-tasks parameters before normalization.
type Query struct {
	Page      int
	Limit     int
	Completed *bool
	Priority  string
	Search    string
}

// CreateInput holds the fields accepted when creating a task.
type CreateInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	Tags        []string
}

// Patch holds the fields of a partial update; nil means "leave unchanged".
type Patch struct {
	Title        *string
	Description  *string
	Completed    *bool
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
	Tags         *[]string
}

// TaskService holds the task business rules. Every operation is scoped to
// the owner it receives.
type TaskService struct {
	repo     *TaskRepository
	validate *validator.Validate
	cache    StatsCache
	sfGroup  singleflight.Group
	now      func() time.Time
}

// NewTaskService creates a TaskService. cache may be nil.
func NewTaskService(repo *TaskRepository, cache StatsCache) *TaskService {
	return &TaskService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cache:    cache,
		now:      time.Now,
	}
}

// List returns one page of the owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, ownerID string, q Query) (*Page, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}

	priority := domain.Priority(strings.ToLower(strings.TrimSpace(q.Priority)))
	if priority != "" && !priority.Valid() {
		return nil, apperr.Validation(MsgInvalidPriority)
	}

	tasks, total, err := s.repo.List(ctx, ListFilter{
		OwnerID:   ownerID,
		Completed: q.Completed,
		Priority:  priority,
		Search:    q.Search,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	return &Page{
		Tasks: tasks,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Get returns a task owned by ownerID.
func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.owned(ctx, ownerID, taskID)
}

// Create validates and stores a new task.
func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateInput) (*domain.Task, error) {
	now := s.now().UTC()

	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	if priority == "" {
		priority = string(domain.PriorityMedium)
	}
	input := taskInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
	}
	if err := validate.Struct(s.validate, input, taskMessages); err != nil {
		return nil, err
	}
	if err := checkDueDate(in.DueDate, now); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    domain.Priority(input.Priority),
		DueDate:     utcPtr(in.DueDate),
		Tags:        normalizeTags(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, ownerID)
	return task, nil
}

// Update applies a partial update. Present fields are validated with the
// create rules; the past due date check is skipped when the same call
// marks the task completed.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, p Patch) (*Change, error) {
	task, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	change := &Change{Task: task, WasCompleted: task.Completed}

	input := taskInput{
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
	}
	if p.Title != nil {
		input.Title = strings.TrimSpace(*p.Title)
		change.Fields = append(change.Fields, "title")
	}
	if p.Description != nil {
		input.Description = strings.TrimSpace(*p.Description)
		change.Fields = append(change.Fields, "description")
	}
	if p.Priority != nil {
		input.Priority = strings.ToLower(strings.TrimSpace(*p.Priority))
		change.Fields = append(change.Fields, "priority")
	}
	if err := validate.Struct(s.validate, input, taskMessages); err != nil {
		return nil, err
	}

	completing := p.Completed != nil && *p.Completed
	switch {
	case p.ClearDueDate:
		task.DueDate = nil
		change.Fields = append(change.Fields, "dueDate")
	case p.DueDate != nil:
		if !completing {
			if err := checkDueDate(p.DueDate, now); err != nil {
				return nil, err
			}
		}
		task.DueDate = utcPtr(p.DueDate)
		change.Fields = append(change.Fields, "dueDate")
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Priority = domain.Priority(input.Priority)
	if p.Tags != nil {
		task.Tags = normalizeTags(*p.Tags)
		change.Fields = append(change.Fields, "tags")
	}
	if p.Completed != nil {
		task.SetCompleted(*p.Completed, now)
		change.Fields = append(change.Fields, "completed")
	}
	task.UpdatedAt = now

	if err := s.save(ctx, task); err != nil {
		return nil, err
	}
	return change, nil
}

// Toggle flips the completion flag of a task.
func (s *TaskService) Toggle(ctx context.Context, ownerID, taskID string) (*Change, error) {
	task, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	change := &Change{Task: task, WasCompleted: task.Completed, Fields: []string{"completed"}}

	task.ToggleComplete(now)
	task.UpdatedAt = now

	if err := s.save(ctx, task); err != nil {
		return nil, err
	}
	return change, nil
}

// Delete permanently removes a task.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, apperr.NotFound(MsgTaskNotFound)
		}
		return nil, err
	}
	s.invalidateStats(ctx, ownerID)
	return task, nil
}

// Stats returns the owner's aggregate counts. The second result reports
// whether they were served from the cache.
func (s *TaskService) Stats(ctx context.Context, ownerID string) (*domain.Stats, bool, error) {
	useCache := s.cache != nil
	key := statsKey(ownerID, 0)

	if useCache {
		gen, err := s.cache.Version(ctx, statsGenKey(ownerID))
		if err != nil {
			log.Printf("[task] Cache error for stats generation of %s: %v", ownerID, err)
			useCache = false
		}
		key = statsKey(ownerID, gen)
	}

	if useCache {
		var cached domain.Stats
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[task] Cache error for stats of %s: %v", ownerID, err)
		}
		if found {
			return &cached, true, nil
		}
	}

	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		return s.repo.Stats(ctx, ownerID, s.now())
	})
	if err != nil {
		return nil, false, err
	}
	stats := val.(*domain.Stats)

	if useCache {
		if err := s.cache.Set(ctx, key, stats); err != nil {
			log.Printf("[task] Warning: failed to cache stats of %s: %v", ownerID, err)
		}
	}
	return stats, false, nil
}

// owned loads a task and enforces existence before ownership.
func (s *TaskService) owned(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, apperr.Validation(MsgInvalidTaskID)
	}

	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, apperr.NotFound(MsgTaskNotFound)
		}
		return nil, err
	}
	if task.UserID != ownerID {
		return nil, apperr.Forbidden(MsgNotAuthorized)
	}
	return task, nil
}

func (s *TaskService) save(ctx context.Context, task *domain.Task) error {
	if err := s.repo.Save(ctx, task); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return apperr.NotFound(MsgTaskNotFound)
		}
		return err
	}
	s.invalidateStats(ctx, task.UserID)
	return nil
}

func (s *TaskService) invalidateStats(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	gen, err := s.cache.Incr(ctx, statsGenKey(ownerID))
	if err != nil {
		log.Printf("[task] Warning: failed to invalidate stats of %s: %v", ownerID, err)
		return
	}
	if err := s.cache.Delete(ctx, statsKey(ownerID, gen-1)); err != nil {
		log.Printf("[task] Warning: failed to drop old stats of %s: %v", ownerID, err)
	}
}

func statsKey(ownerID string, gen int64) string {
	return "stats:" + ownerID + ":" + strconv.FormatInt(gen, 10)
}

func statsGenKey(ownerID string) string {
	return "stats-gen:" + ownerID
}

func checkDueDate(due *time.Time, now time.Time) error {
	if due != nil && due.Before(now) {
		return apperr.Validation(MsgDueDateInPast)
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// normalizeTags trims and lowercases tags, dropping empty ones.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
