package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/secondary"
)

// ProjectRepository implements secondary.ProjectRepository with SQLite.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new SQLite project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create persists a new project.
func (r *ProjectRepository) Create(ctx context.Context, project *secondary.ProjectRecord) error {
	status := project.Status
	if status == "" {
		status = "active"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, status) VALUES (?, ?, ?)`,
		project.ID, project.Name, status)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by its ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	var createdAt time.Time
	record := &secondary.ProjectRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, status, created_at FROM projects WHERE id = ?`, id,
	).Scan(&record.ID, &record.Name, &record.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

// List retrieves all projects.
func (r *ProjectRepository) List(ctx context.Context) ([]*secondary.ProjectRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, status, created_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*secondary.ProjectRecord
	for rows.Next() {
		var createdAt time.Time
		record := &secondary.ProjectRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &record.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)
		projects = append(projects, record)
	}

	return projects, rows.Err()
}

// GetNextID returns the next available project ID.
func (r *ProjectRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("PROJ-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM projects", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next project ID: %w", err)
	}

	return fmt.Sprintf("PROJ-%03d", maxID+1), nil
}

// Ensure ProjectRepository implements the interface
var _ secondary.ProjectRepository = (*ProjectRepository)(nil)
