package primary

import (
	"context"

	"github.com/example/tempo/internal/models"
)

// AutomationService defines the primary port for rule administration and
// execution history.
type AutomationService interface {
	// CreateRule creates a new automation rule.
	CreateRule(ctx context.Context, req CreateRuleRequest) (*CreateRuleResponse, error)

	// UpdateRule updates a rule's definition. Changes take effect for
	// events published after the write completes.
	UpdateRule(ctx context.Context, req UpdateRuleRequest) error

	// DeactivateRule retires a rule without deleting it, preserving the
	// execution ledger's referential integrity.
	DeactivateRule(ctx context.Context, ruleID string) error

	// ActivateRule re-enables a deactivated rule.
	ActivateRule(ctx context.Context, ruleID string) error

	// GetRule retrieves a rule by ID.
	GetRule(ctx context.Context, ruleID string) (*Rule, error)

	// ListRules lists rules with optional filters.
	ListRules(ctx context.Context, filters RuleFilters) ([]*Rule, error)

	// ListExecutions retrieves ledger rows for a rule, newest first.
	ListExecutions(ctx context.Context, ruleID string, limit int) ([]*Execution, error)
}

// CreateRuleRequest contains parameters for creating a rule.
type CreateRuleRequest struct {
	Name            string
	TriggerType     string
	ConditionsJSON  string // condition tree, empty matches unconditionally
	ActionType      string
	ActionParams    string // JSON, may reference $event fields
	CooldownSeconds int    // 0 disables rate limiting
}

// CreateRuleResponse contains the result of creating a rule.
type CreateRuleResponse struct {
	RuleID string
	Rule   *Rule
}

// UpdateRuleRequest contains parameters for updating a rule. Empty fields
// are left unchanged.
type UpdateRuleRequest struct {
	RuleID          string
	Name            string
	ConditionsJSON  string
	ActionParams    string
	CooldownSeconds *int
}

// Rule represents an automation rule at the port boundary.
type Rule struct {
	ID              string
	Name            string
	TriggerType     string
	ConditionsJSON  string
	ActionType      string
	ActionParams    string
	IsActive        bool
	CooldownSeconds int
	ExecutionCount  int
	LastExecutedAt  string
	CreatedAt       string
	UpdatedAt       string
}

// RuleFilters contains filter options for listing rules.
type RuleFilters struct {
	TriggerType string
	ActiveOnly  bool
	Limit       int
}

// Execution represents an execution ledger row at the port boundary.
type Execution struct {
	ID         string
	RuleID     string
	Entity     models.EntityRef
	EventID    string
	Outcome    string
	Error      string
	ExecutedAt string
}
