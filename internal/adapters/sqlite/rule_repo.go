package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/secondary"
)

// RuleRepository implements secondary.RuleRepository with SQLite.
type RuleRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewRuleRepository creates a new SQLite rule repository.
func NewRuleRepository(db *sql.DB, logWriter secondary.LogWriter) *RuleRepository {
	return &RuleRepository{db: db, logWriter: logWriter}
}

const ruleColumns = `id, name, trigger_type, trigger_conditions, action_type, action_params, is_active, cooldown_seconds, execution_count, last_executed_at, created_at, updated_at`

// Create persists a new rule.
func (r *RuleRepository) Create(ctx context.Context, rule *secondary.RuleRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO automation_rules (id, name, trigger_type, trigger_conditions, action_type, action_params, is_active, cooldown_seconds) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.Name,
		rule.TriggerType,
		nullString(rule.ConditionsJSON),
		rule.ActionType,
		nullString(rule.ActionParams),
		rule.IsActive,
		rule.CooldownSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctx, "automation_rule", rule.ID)
	}

	return nil
}

// GetByID retrieves a rule by its ID.
func (r *RuleRepository) GetByID(ctx context.Context, id string) (*secondary.RuleRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules WHERE id = ?`, id)

	record, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("rule %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return record, nil
}

// Update updates a rule's definition fields.
func (r *RuleRepository) Update(ctx context.Context, rule *secondary.RuleRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE automation_rules SET name = ?, trigger_conditions = ?, action_params = ?, cooldown_seconds = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		rule.Name,
		nullString(rule.ConditionsJSON),
		nullString(rule.ActionParams),
		rule.CooldownSeconds,
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s: %w", rule.ID, models.ErrNotFound)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctx, "automation_rule", rule.ID, "definition", "", rule.Name)
	}

	return nil
}

// SetActive toggles a rule without deleting it.
func (r *RuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE automation_rules SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, id)
	if err != nil {
		return fmt.Errorf("failed to toggle rule: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s: %w", id, models.ErrNotFound)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctx, "automation_rule", id, "is_active", "", fmt.Sprintf("%t", active))
	}

	return nil
}

// ListActiveByTrigger retrieves active rules for a trigger type in
// ascending rule-id order. The ordering is the engine's deterministic
// tie-break, so it lives in the query, not in callers.
func (r *RuleRepository) ListActiveByTrigger(ctx context.Context, triggerType string) ([]*secondary.RuleRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules WHERE is_active = 1 AND trigger_type = ? ORDER BY id`,
		triggerType)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

// List retrieves rules matching the given filters.
func (r *RuleRepository) List(ctx context.Context, filters secondary.RuleFilters) ([]*secondary.RuleRecord, error) {
	query := `SELECT ` + ruleColumns + ` FROM automation_rules WHERE 1=1`
	args := []any{}

	if filters.TriggerType != "" {
		query += " AND trigger_type = ?"
		args = append(args, filters.TriggerType)
	}
	if filters.ActiveOnly {
		query += " AND is_active = 1"
	}

	query += " ORDER BY id"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

// GetNextID returns the next available rule ID.
func (r *RuleRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("RULE-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM automation_rules", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next rule ID: %w", err)
	}

	return fmt.Sprintf("RULE-%03d", maxID+1), nil
}

func collectRules(rows *sql.Rows) ([]*secondary.RuleRecord, error) {
	var rules []*secondary.RuleRecord
	for rows.Next() {
		record, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, record)
	}
	return rules, rows.Err()
}

func scanRule(row rowScanner) (*secondary.RuleRecord, error) {
	var (
		conditions     sql.NullString
		params         sql.NullString
		lastExecutedAt sql.NullTime
		createdAt      time.Time
		updatedAt      time.Time
	)

	record := &secondary.RuleRecord{}
	err := row.Scan(&record.ID, &record.Name, &record.TriggerType, &conditions,
		&record.ActionType, &params, &record.IsActive, &record.CooldownSeconds,
		&record.ExecutionCount, &lastExecutedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	record.ConditionsJSON = conditions.String
	record.ActionParams = params.String
	if lastExecutedAt.Valid {
		record.LastExecutedAt = lastExecutedAt.Time.Format(time.RFC3339)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

// Ensure RuleRepository implements the interface
var _ secondary.RuleRepository = (*RuleRepository)(nil)
