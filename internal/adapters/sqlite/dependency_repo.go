package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/secondary"
)

// DependencyRepository implements secondary.DependencyRepository with SQLite.
type DependencyRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewDependencyRepository creates a new SQLite dependency repository.
func NewDependencyRepository(db *sql.DB, logWriter secondary.LogWriter) *DependencyRepository {
	return &DependencyRepository{db: db, logWriter: logWriter}
}

// Add persists a new edge.
func (r *DependencyRepository) Add(ctx context.Context, edge *secondary.DependencyRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO task_dependencies (task_id, depends_on_task_id, dependency_type) VALUES (?, ?, ?)`,
		edge.TaskID, edge.DependsOnID, edge.Type)
	if err != nil {
		return fmt.Errorf("failed to add dependency: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctx, "task_dependency", edge.TaskID+"->"+edge.DependsOnID)
	}

	return nil
}

// Remove deletes the edge for the ordered pair.
func (r *DependencyRepository) Remove(ctx context.Context, taskID, dependsOnID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM task_dependencies WHERE task_id = ? AND depends_on_task_id = ?`,
		taskID, dependsOnID)
	if err != nil {
		return fmt.Errorf("failed to remove dependency: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("dependency %s->%s: %w", taskID, dependsOnID, models.ErrNotFound)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogDelete(ctx, "task_dependency", taskID+"->"+dependsOnID)
	}

	return nil
}

// ListByProject retrieves all edges between tasks of a project.
func (r *DependencyRepository) ListByProject(ctx context.Context, projectID string) ([]*secondary.DependencyRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.task_id, d.depends_on_task_id, d.dependency_type, d.created_at
		 FROM task_dependencies d
		 JOIN tasks t ON t.id = d.task_id
		 WHERE t.project_id = ?
		 ORDER BY d.task_id, d.depends_on_task_id`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	defer rows.Close()

	return scanDependencies(rows)
}

// ListForTask retrieves the edges where the given task is the dependent side.
func (r *DependencyRepository) ListForTask(ctx context.Context, taskID string) ([]*secondary.DependencyRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id, depends_on_task_id, dependency_type, created_at
		 FROM task_dependencies WHERE task_id = ? ORDER BY depends_on_task_id`,
		taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	defer rows.Close()

	return scanDependencies(rows)
}

// ListPredecessors retrieves each prerequisite of the task with its status.
func (r *DependencyRepository) ListPredecessors(ctx context.Context, taskID string) ([]*secondary.PredecessorRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.depends_on_task_id, d.dependency_type, t.status
		 FROM task_dependencies d
		 JOIN tasks t ON t.id = d.depends_on_task_id
		 WHERE d.task_id = ?
		 ORDER BY d.depends_on_task_id`,
		taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predecessors: %w", err)
	}
	defer rows.Close()

	var preds []*secondary.PredecessorRecord
	for rows.Next() {
		p := &secondary.PredecessorRecord{}
		if err := rows.Scan(&p.TaskID, &p.Type, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan predecessor: %w", err)
		}
		preds = append(preds, p)
	}

	return preds, rows.Err()
}

func scanDependencies(rows *sql.Rows) ([]*secondary.DependencyRecord, error) {
	var edges []*secondary.DependencyRecord
	for rows.Next() {
		var createdAt time.Time
		record := &secondary.DependencyRecord{}
		if err := rows.Scan(&record.TaskID, &record.DependsOnID, &record.Type, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)
		edges = append(edges, record)
	}
	return edges, rows.Err()
}

// Ensure DependencyRepository implements the interface
var _ secondary.DependencyRepository = (*DependencyRepository)(nil)
