// Package primary defines the primary ports (driving interfaces) of the
// engine: the APIs the surrounding CRUD layer calls in-process.
package primary

import "context"

// TaskService defines the primary port for task operations.
type TaskService interface {
	// CreateTask creates a new task in todo status and publishes
	// task_created.
	CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResponse, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// ListTasks lists tasks with optional filters.
	ListTasks(ctx context.Context, filters TaskFilters) ([]*Task, error)

	// SetStatus transitions a task, validating dependency constraints
	// first, and publishes task_status_changed.
	SetStatus(ctx context.Context, taskID, status string) error

	// AssignTask sets the task's assignee and publishes task_assigned.
	AssignTask(ctx context.Context, taskID, assigneeID string) error

	// UpdateField sets a single allow-listed field.
	UpdateField(ctx context.Context, taskID, field, value string) error
}

// CreateTaskRequest contains parameters for creating a task.
type CreateTaskRequest struct {
	ProjectID   string
	Title       string
	Description string
	Priority    int
	AssigneeID  string // Optional
	DueDate     string // Optional, RFC3339
}

// CreateTaskResponse contains the result of creating a task.
type CreateTaskResponse struct {
	TaskID string
	Task   *Task
}

// Task represents a task entity at the port boundary.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      string
	Priority    int
	AssigneeID  string
	DueDate     string
	Progress    int
	CreatedAt   string
	UpdatedAt   string
	CompletedAt string
}

// TaskFilters contains filter options for listing tasks.
type TaskFilters struct {
	ProjectID  string
	Status     string
	AssigneeID string
	Limit      int
}
