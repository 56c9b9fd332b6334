package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/tempo/internal/ctxutil"
	"github.com/example/tempo/internal/ports/secondary"
)

// LogWriterAdapter implements secondary.LogWriter against the audit_log
// table. The actor comes from context; rule-driven mutations run with the
// rule's ID as actor, so the audit trail distinguishes human edits from
// automation effects.
type LogWriterAdapter struct {
	db *sql.DB
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
func NewLogWriterAdapter(db *sql.DB) *LogWriterAdapter {
	return &LogWriterAdapter{db: db}
}

// LogCreate logs a create operation for an entity.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "create", "", "", "")
}

// LogUpdate logs an update operation for an entity field.
func (w *LogWriterAdapter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, entityType, entityID, "update", fieldName, oldValue, newValue)
}

// LogDelete logs a delete operation for an entity.
func (w *LogWriterAdapter) LogDelete(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "delete", "", "", "")
}

func (w *LogWriterAdapter) writeLog(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) error {
	actorID := ctxutil.ActorFromContext(ctx)

	_, err := w.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor_id, entity_type, entity_id, action, field_name, old_value, new_value) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullString(actorID),
		entityType,
		entityID,
		action,
		nullString(fieldName),
		nullString(oldValue),
		nullString(newValue),
	)
	return err
}

// Ensure LogWriterAdapter implements the interface
var _ secondary.LogWriter = (*LogWriterAdapter)(nil)
