// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite.
type TaskRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewTaskRepository creates a new SQLite task repository.
// logWriter is optional - if nil, no audit logging is performed.
func NewTaskRepository(db *sql.DB, logWriter secondary.LogWriter) *TaskRepository {
	return &TaskRepository{db: db, logWriter: logWriter}
}

const taskColumns = `id, project_id, title, description, status, priority, assignee_id, due_date, progress, created_at, updated_at, completed_at`

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, description, status, priority, assignee_id, due_date, progress) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.ProjectID,
		task.Title,
		nullString(task.Description),
		task.Status,
		task.Priority,
		nullString(task.AssigneeID),
		nullTime(task.DueDate),
		task.Progress,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctx, "task", task.ID)
	}

	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	record, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return record, nil
}

// List retrieves tasks matching the given filters.
func (r *TaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}

	if filters.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, filters.ProjectID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.AssigneeID != "" {
		query += " AND assignee_id = ?"
		args = append(args, filters.AssigneeID)
	}

	query += " ORDER BY id"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}

	return tasks, rows.Err()
}

// UpdateStatus updates the status and optionally completed_at timestamp.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id, status string, setCompleted bool) error {
	query := `UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP`
	args := []any{status}
	if setCompleted {
		query += `, completed_at = CURRENT_TIMESTAMP, progress = 100`
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctx, "task", id, "status", "", status)
	}

	return nil
}

// Assign sets the task's assignee.
func (r *TaskRepository) Assign(ctx context.Context, id, assigneeID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET assignee_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nullString(assigneeID), id)
	if err != nil {
		return fmt.Errorf("failed to assign task: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctx, "task", id, "assignee_id", "", assigneeID)
	}

	return nil
}

// taskFieldColumns maps allow-listed field names to columns. The allow-list
// itself is enforced by core/rule; this map only prevents SQL injection via
// field names.
var taskFieldColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"priority":    "priority",
	"due_date":    "due_date",
	"progress":    "progress",
}

// UpdateField performs a generic single-field update.
func (r *TaskRepository) UpdateField(ctx context.Context, id, field, value string) error {
	column, ok := taskFieldColumns[field]
	if !ok {
		return fmt.Errorf("field %s is not updatable", field)
	}

	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE tasks SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, column),
		value, id)
	if err != nil {
		return fmt.Errorf("failed to update task field: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctx, "task", id, field, "", value)
	}

	return nil
}

// ListDueBefore retrieves unfinished tasks due at or before the cutoff.
func (r *TaskRepository) ListDueBefore(ctx context.Context, cutoff string) ([]*secondary.TaskRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE due_date IS NOT NULL AND due_date <= ? AND status != 'done' ORDER BY due_date`,
		cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}

	return tasks, rows.Err()
}

// GetNextID returns the next available task ID.
func (r *TaskRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("TASK-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM tasks", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next task ID: %w", err)
	}

	return fmt.Sprintf("TASK-%03d", maxID+1), nil
}

// ProjectExists checks if a project exists.
func (r *TaskRepository) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects WHERE id = ?", projectID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check project existence: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*secondary.TaskRecord, error) {
	var (
		description sql.NullString
		assigneeID  sql.NullString
		dueDate     sql.NullTime
		createdAt   time.Time
		updatedAt   time.Time
		completedAt sql.NullTime
	)

	record := &secondary.TaskRecord{}
	err := row.Scan(&record.ID, &record.ProjectID, &record.Title, &description,
		&record.Status, &record.Priority, &assigneeID, &dueDate, &record.Progress,
		&createdAt, &updatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	record.Description = description.String
	record.AssigneeID = assigneeID.String
	if dueDate.Valid {
		record.DueDate = dueDate.Time.Format(time.RFC3339)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(rfc3339 string) any {
	if rfc3339 == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, rfc3339); err == nil {
		return t.UTC()
	}
	return rfc3339
}

// Ensure TaskRepository implements the interface
var _ secondary.TaskRepository = (*TaskRepository)(nil)
