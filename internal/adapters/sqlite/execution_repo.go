package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/secondary"
)

// ExecutionRepository implements secondary.ExecutionRepository with SQLite.
// The automation_executions table is the engine's idempotency ledger:
// append-only, uniquely keyed by (rule, entity, event).
type ExecutionRepository struct {
	db *sql.DB
}

// NewExecutionRepository creates a new SQLite execution ledger.
func NewExecutionRepository(db *sql.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

const executionColumns = `id, rule_id, entity_type, entity_id, event_id, outcome, error_message, executed_at`

// Exists reports whether the ledger already holds a row for the key.
func (r *ExecutionRepository) Exists(ctx context.Context, key secondary.ExecutionKey) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM automation_executions WHERE rule_id = ? AND entity_type = ? AND entity_id = ? AND event_id = ?`,
		key.RuleID, string(key.EntityKind), key.EntityID, key.EventID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check execution: %w", err)
	}
	return count > 0, nil
}

// Append writes a ledger row. When bumpRule is true, execution_count and
// last_executed_at on the rule row are updated in the same transaction so
// the counters can never drift from the ledger under concurrent events.
func (r *ExecutionRepository) Append(ctx context.Context, record *secondary.ExecutionRecord, bumpRule bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO automation_executions (id, rule_id, entity_type, entity_id, event_id, outcome, error_message, executed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.RuleID,
		string(record.EntityKind),
		record.EntityID,
		record.EventID,
		record.Outcome,
		nullString(record.Error),
		nullTime(record.ExecutedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append execution: %w", err)
	}

	if bumpRule {
		_, err = tx.ExecContext(ctx,
			`UPDATE automation_rules SET execution_count = execution_count + 1, last_executed_at = ? WHERE id = ?`,
			nullTime(record.ExecutedAt), record.RuleID)
		if err != nil {
			return fmt.Errorf("failed to bump rule counters: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger append: %w", err)
	}

	return nil
}

// ListByRule retrieves ledger rows for a rule, newest first.
func (r *ExecutionRepository) ListByRule(ctx context.Context, ruleID string, limit int) ([]*secondary.ExecutionRecord, error) {
	return r.list(ctx,
		`SELECT `+executionColumns+` FROM automation_executions WHERE rule_id = ? ORDER BY executed_at DESC, id DESC`,
		[]any{ruleID}, limit)
}

// ListByEntity retrieves ledger rows for an entity, newest first.
func (r *ExecutionRepository) ListByEntity(ctx context.Context, kind models.EntityKind, entityID string, limit int) ([]*secondary.ExecutionRecord, error) {
	return r.list(ctx,
		`SELECT `+executionColumns+` FROM automation_executions WHERE entity_type = ? AND entity_id = ? ORDER BY executed_at DESC, id DESC`,
		[]any{string(kind), entityID}, limit)
}

func (r *ExecutionRepository) list(ctx context.Context, query string, args []any, limit int) ([]*secondary.ExecutionRecord, error) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var records []*secondary.ExecutionRecord
	for rows.Next() {
		var (
			entityKind string
			errMsg     sql.NullString
			executedAt time.Time
		)
		record := &secondary.ExecutionRecord{}
		err := rows.Scan(&record.ID, &record.RuleID, &entityKind, &record.EntityID,
			&record.EventID, &record.Outcome, &errMsg, &executedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		record.EntityKind = models.EntityKind(entityKind)
		record.Error = errMsg.String
		record.ExecutedAt = executedAt.Format(time.RFC3339)
		records = append(records, record)
	}

	return records, rows.Err()
}

// Ensure ExecutionRepository implements the interface
var _ secondary.ExecutionRepository = (*ExecutionRepository)(nil)
