package models

import (
	"database/sql"
	"time"
)

// Task represents a task entity.
// For persistence, use the repository interfaces in ports/secondary.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description sql.NullString
	Status      string
	Priority    int
	AssigneeID  sql.NullString
	DueDate     sql.NullTime
	Progress    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt sql.NullTime
}

// Task status constants
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusDone       = "done"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

// Dependency type constants describing the temporal relationship between
// a task and the task it depends on.
const (
	DepFinishToStart  = "finish_to_start"
	DepStartToStart   = "start_to_start"
	DepFinishToFinish = "finish_to_finish"
	DepStartToFinish  = "start_to_finish"
)

// ValidDependencyType reports whether t is a known dependency type.
func ValidDependencyType(t string) bool {
	switch t {
	case DepFinishToStart, DepStartToStart, DepFinishToFinish, DepStartToFinish:
		return true
	}
	return false
}
