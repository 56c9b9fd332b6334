package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/tempo/internal/core/dependency"
	"github.com/example/tempo/internal/core/rule"
	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	taskRepo  secondary.TaskRepository
	depRepo   secondary.DependencyRepository
	publisher primary.EventPublisher
	clock     secondary.Clock
}

// NewTaskService creates a new TaskService with injected dependencies.
func NewTaskService(
	taskRepo secondary.TaskRepository,
	depRepo secondary.DependencyRepository,
	publisher primary.EventPublisher,
	clock secondary.Clock,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		taskRepo:  taskRepo,
		depRepo:   depRepo,
		publisher: publisher,
		clock:     clock,
	}
}

// CreateTask creates a new task and publishes task_created.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.CreateTaskResponse, error) {
	// Validate project exists
	exists, err := s.taskRepo.ProjectExists(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate project: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("project %s: %w", req.ProjectID, models.ErrNotFound)
	}

	if req.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if req.Priority < 0 || req.Priority > 5 {
		return nil, fmt.Errorf("priority must be between 0 and 5, got %d", req.Priority)
	}

	// Get next ID
	nextID, err := s.taskRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	// Create record
	record := &secondary.TaskRecord{
		ID:          nextID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}

	if err := s.taskRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	// Fetch created task so the snapshot carries storage defaults
	created, err := s.taskRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created task: %w", err)
	}

	if err := s.publishTaskEvent(ctx, models.TriggerTaskCreated, created); err != nil {
		return nil, err
	}

	return &primary.CreateTaskResponse{
		TaskID: created.ID,
		Task:   recordToTask(created),
	}, nil
}

// GetTask retrieves a task by ID.
func (s *TaskServiceImpl) GetTask(ctx context.Context, taskID string) (*primary.Task, error) {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return recordToTask(record), nil
}

// ListTasks lists tasks with optional filters.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, filters primary.TaskFilters) ([]*primary.Task, error) {
	records, err := s.taskRepo.List(ctx, secondary.TaskFilters{
		ProjectID:  filters.ProjectID,
		Status:     filters.Status,
		AssigneeID: filters.AssigneeID,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]*primary.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, recordToTask(r))
	}
	return tasks, nil
}

// SetStatus transitions a task after checking its precedence constraints,
// then publishes task_status_changed.
func (s *TaskServiceImpl) SetStatus(ctx context.Context, taskID, status string) error {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if record.Status == status {
		return nil
	}

	preds, err := s.depRepo.ListPredecessors(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load predecessors: %w", err)
	}
	if err := dependency.CanTransition(record.Status, status, predecessors(preds)).Error(); err != nil {
		return err
	}

	setCompleted := status == models.TaskStatusDone
	if err := s.taskRepo.UpdateStatus(ctx, taskID, status, setCompleted); err != nil {
		return err
	}

	updated, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch updated task: %w", err)
	}

	event := s.taskEvent(ctx, models.TriggerTaskStatusChanged, updated)
	event.Snapshot["old_status"] = record.Status
	return s.publisher.Publish(ctx, event)
}

// AssignTask sets the task's assignee and publishes task_assigned.
func (s *TaskServiceImpl) AssignTask(ctx context.Context, taskID, assigneeID string) error {
	if assigneeID == "" {
		return fmt.Errorf("assignee ID is required")
	}
	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Assign(ctx, taskID, assigneeID); err != nil {
		return err
	}

	updated, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch updated task: %w", err)
	}

	return s.publishTaskEvent(ctx, models.TriggerTaskAssigned, updated)
}

// UpdateField sets a single allow-listed field. Field updates do not
// publish events; the triggers cover creation, status, and assignment.
func (s *TaskServiceImpl) UpdateField(ctx context.Context, taskID, field, value string) error {
	if !rule.FieldUpdatable(models.EntityKindTask, field) {
		return fmt.Errorf("field %s is not updatable on tasks", field)
	}
	return s.taskRepo.UpdateField(ctx, taskID, field, value)
}

func (s *TaskServiceImpl) publishTaskEvent(ctx context.Context, eventType string, record *secondary.TaskRecord) error {
	return s.publisher.Publish(ctx, s.taskEvent(ctx, eventType, record))
}

func (s *TaskServiceImpl) taskEvent(ctx context.Context, eventType string, record *secondary.TaskRecord) models.Event {
	return models.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Entity:     models.EntityRef{Kind: models.EntityKindTask, ID: record.ID},
		ProjectID:  record.ProjectID,
		ActorID:    actorFrom(ctx),
		Snapshot:   taskSnapshot(record),
		OccurredAt: s.clock.Now(),
	}
}

// taskSnapshot captures the task's fields at event time. Rules evaluate
// conditions against this map, never against live state.
func taskSnapshot(r *secondary.TaskRecord) map[string]any {
	return map[string]any{
		"project_id":  r.ProjectID,
		"title":       r.Title,
		"description": r.Description,
		"status":      r.Status,
		"priority":    r.Priority,
		"assignee_id": r.AssigneeID,
		"due_date":    r.DueDate,
		"progress":    r.Progress,
	}
}

func predecessors(records []*secondary.PredecessorRecord) []dependency.Predecessor {
	preds := make([]dependency.Predecessor, 0, len(records))
	for _, r := range records {
		preds = append(preds, dependency.Predecessor{TaskID: r.TaskID, Type: r.Type, Status: r.Status})
	}
	return preds
}

func recordToTask(r *secondary.TaskRecord) *primary.Task {
	return &primary.Task{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		AssigneeID:  r.AssigneeID,
		DueDate:     r.DueDate,
		Progress:    r.Progress,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CompletedAt: r.CompletedAt,
	}
}

// Ensure TaskServiceImpl implements the interface
var _ primary.TaskService = (*TaskServiceImpl)(nil)
