package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/secondary"
)

// EventRepository implements secondary.EventRepository with SQLite.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite event log.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append persists an event row.
func (r *EventRepository) Append(ctx context.Context, event *secondary.EventRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, type, entity_type, entity_id, project_id, actor_id, snapshot_json) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Type,
		string(event.EntityKind),
		event.EntityID,
		nullString(event.ProjectID),
		nullString(event.ActorID),
		nullString(event.SnapshotJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// ListByEntity retrieves events for an entity in publish order.
func (r *EventRepository) ListByEntity(ctx context.Context, kind models.EntityKind, entityID string, limit int) ([]*secondary.EventRecord, error) {
	query := `SELECT id, type, entity_type, entity_id, project_id, actor_id, snapshot_json, created_at
		FROM events WHERE entity_type = ? AND entity_id = ? ORDER BY created_at, id`
	args := []any{string(kind), entityID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.EventRecord
	for rows.Next() {
		var (
			entityKind string
			projectID  sql.NullString
			actorID    sql.NullString
			snapshot   sql.NullString
			createdAt  time.Time
		)
		record := &secondary.EventRecord{}
		err := rows.Scan(&record.ID, &record.Type, &entityKind, &record.EntityID,
			&projectID, &actorID, &snapshot, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		record.EntityKind = models.EntityKind(entityKind)
		record.ProjectID = projectID.String
		record.ActorID = actorID.String
		record.SnapshotJSON = snapshot.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		events = append(events, record)
	}

	return events, rows.Err()
}

// Ensure EventRepository implements the interface
var _ secondary.EventRepository = (*EventRepository)(nil)
