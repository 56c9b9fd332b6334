// Package secondary defines the secondary ports (driven adapters) for the
// engine. These are the interfaces through which the application drives
// external systems: the entity store, the execution ledger, notification
// delivery, and the clock.
package secondary

import (
	"context"

	"github.com/example/tempo/internal/models"
)

// TaskRepository defines the secondary port for task persistence.
type TaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *TaskRecord) error

	// GetByID retrieves a task by its ID.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// List retrieves tasks matching the given filters.
	List(ctx context.Context, filters TaskFilters) ([]*TaskRecord, error)

	// UpdateStatus updates the status and optionally completed_at timestamp.
	UpdateStatus(ctx context.Context, id, status string, setCompleted bool) error

	// Assign sets the task's assignee.
	Assign(ctx context.Context, id, assigneeID string) error

	// UpdateField performs a generic single-field update. Callers must
	// check the allow-list first; the adapter only maps field names to
	// columns.
	UpdateField(ctx context.Context, id, field, value string) error

	// ListDueBefore retrieves unfinished tasks with a due date at or
	// before the cutoff (RFC3339). Used by the due-date scanner.
	ListDueBefore(ctx context.Context, cutoff string) ([]*TaskRecord, error)

	// GetNextID returns the next available task ID.
	GetNextID(ctx context.Context) (string, error)

	// ProjectExists checks if a project exists (for validation).
	ProjectExists(ctx context.Context, projectID string) (bool, error)
}

// TaskRecord represents a task as stored in persistence.
type TaskRecord struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      string
	Priority    int
	AssigneeID  string
	DueDate     string // RFC3339, empty when unset
	Progress    int
	CreatedAt   string
	UpdatedAt   string
	CompletedAt string
}

// TaskFilters contains filter options for querying tasks.
type TaskFilters struct {
	ProjectID  string
	Status     string
	AssigneeID string
	Limit      int
}

// DependencyRepository defines the secondary port for precedence edges.
type DependencyRepository interface {
	// Add persists a new edge.
	Add(ctx context.Context, edge *DependencyRecord) error

	// Remove deletes the edge for the ordered pair.
	Remove(ctx context.Context, taskID, dependsOnID string) error

	// ListByProject retrieves all edges between tasks of a project.
	ListByProject(ctx context.Context, projectID string) ([]*DependencyRecord, error)

	// ListForTask retrieves the edges where the given task is the
	// dependent side.
	ListForTask(ctx context.Context, taskID string) ([]*DependencyRecord, error)

	// ListPredecessors retrieves each prerequisite of the task together
	// with its current status.
	ListPredecessors(ctx context.Context, taskID string) ([]*PredecessorRecord, error)
}

// DependencyRecord represents a precedence edge as stored in persistence.
type DependencyRecord struct {
	TaskID      string
	DependsOnID string
	Type        string
	CreatedAt   string
}

// PredecessorRecord joins an edge with the prerequisite task's status.
type PredecessorRecord struct {
	TaskID string // the prerequisite task
	Type   string
	Status string
}

// ApprovalRepository defines the secondary port for approval-bearing
// entities (time entries and expenses). Kind routes to the right table.
type ApprovalRepository interface {
	// Create persists a new pending entry.
	Create(ctx context.Context, entry *ApprovalEntryRecord) error

	// GetByID retrieves an entry by kind and ID.
	GetByID(ctx context.Context, kind models.EntityKind, id string) (*ApprovalEntryRecord, error)

	// UpdateApproval writes the approval fields of an entry.
	UpdateApproval(ctx context.Context, kind models.EntityKind, id string, fields ApprovalFields) error

	// UpdateField performs a generic single-field update. Callers must
	// check the allow-list first.
	UpdateField(ctx context.Context, kind models.EntityKind, id, field, value string) error

	// List retrieves entries matching the given filters.
	List(ctx context.Context, kind models.EntityKind, filters ApprovalFilters) ([]*ApprovalEntryRecord, error)

	// GetNextID returns the next available ID for the kind.
	GetNextID(ctx context.Context, kind models.EntityKind) (string, error)
}

// ApprovalEntryRecord represents a time entry or expense as stored in
// persistence. Quantity is minutes for time entries and cents for expenses.
type ApprovalEntryRecord struct {
	Kind            models.EntityKind
	ID              string
	ProjectID       string
	TaskID          string // time entries only, optional
	UserID          string
	Quantity        int
	EntryDate       string // YYYY-MM-DD
	Description     string
	ApprovalStatus  string
	ApprovedBy      string
	ApprovedAt      string // RFC3339, empty when unset
	RejectionReason string
	CreatedAt       string
	UpdatedAt       string
}

// ApprovalFields is the writable approval slice of an entry.
type ApprovalFields struct {
	Status          string
	ApprovedBy      string
	ApprovedAt      string
	RejectionReason string
}

// ApprovalFilters contains filter options for querying entries.
type ApprovalFilters struct {
	ProjectID string
	UserID    string
	Status    string
	Limit     int
}

// RuleRepository defines the secondary port for the automation-rule catalog.
type RuleRepository interface {
	// Create persists a new rule.
	Create(ctx context.Context, rule *RuleRecord) error

	// GetByID retrieves a rule by its ID.
	GetByID(ctx context.Context, id string) (*RuleRecord, error)

	// Update updates a rule's definition fields.
	Update(ctx context.Context, rule *RuleRecord) error

	// SetActive toggles a rule without deleting it, preserving ledger
	// referential integrity.
	SetActive(ctx context.Context, id string, active bool) error

	// ListActiveByTrigger retrieves active rules for a trigger type in
	// ascending rule-id order.
	ListActiveByTrigger(ctx context.Context, triggerType string) ([]*RuleRecord, error)

	// List retrieves rules matching the given filters.
	List(ctx context.Context, filters RuleFilters) ([]*RuleRecord, error)

	// GetNextID returns the next available rule ID.
	GetNextID(ctx context.Context) (string, error)
}

// RuleRecord represents an automation rule as stored in persistence.
type RuleRecord struct {
	ID              string
	Name            string
	TriggerType     string
	ConditionsJSON  string
	ActionType      string
	ActionParams    string
	IsActive        bool
	CooldownSeconds int
	ExecutionCount  int
	LastExecutedAt  string // RFC3339, empty when never executed
	CreatedAt       string
	UpdatedAt       string
}

// RuleFilters contains filter options for querying rules.
type RuleFilters struct {
	TriggerType string
	ActiveOnly  bool
	Limit       int
}

// ExecutionRepository defines the secondary port for the execution ledger.
// The ledger is append-only; (rule, entity, event) is the idempotency key.
type ExecutionRepository interface {
	// Exists reports whether the ledger already holds a row for the key.
	Exists(ctx context.Context, key ExecutionKey) (bool, error)

	// Append writes a ledger row. When bumpRule is true the rule's
	// execution_count and last_executed_at are updated in the same
	// transaction, so counters can never drift from the ledger.
	Append(ctx context.Context, record *ExecutionRecord, bumpRule bool) error

	// ListByRule retrieves ledger rows for a rule, newest first.
	ListByRule(ctx context.Context, ruleID string, limit int) ([]*ExecutionRecord, error)

	// ListByEntity retrieves ledger rows for an entity, newest first.
	ListByEntity(ctx context.Context, kind models.EntityKind, entityID string, limit int) ([]*ExecutionRecord, error)
}

// ExecutionKey is the idempotency key of a ledger row.
type ExecutionKey struct {
	RuleID     string
	EntityKind models.EntityKind
	EntityID   string
	EventID    string
}

// ExecutionRecord represents an execution outcome as stored in the ledger.
type ExecutionRecord struct {
	ID         string
	RuleID     string
	EntityKind models.EntityKind
	EntityID   string
	EventID    string
	Outcome    string
	Error      string
	ExecutedAt string
}

// EventRepository defines the secondary port for the lifecycle event log.
// Rows are appended in the same transaction as the mutation they describe.
type EventRepository interface {
	// Append persists an event row.
	Append(ctx context.Context, event *EventRecord) error

	// ListByEntity retrieves events for an entity in publish order.
	ListByEntity(ctx context.Context, kind models.EntityKind, entityID string, limit int) ([]*EventRecord, error)
}

// EventRecord represents a lifecycle event as stored in persistence.
type EventRecord struct {
	ID           string
	Type         string
	EntityKind   models.EntityKind
	EntityID     string
	ProjectID    string
	ActorID      string
	SnapshotJSON string
	CreatedAt    string
}

// ProjectRepository defines the secondary port for project reference data.
type ProjectRepository interface {
	// Create persists a new project.
	Create(ctx context.Context, project *ProjectRecord) error

	// GetByID retrieves a project by its ID.
	GetByID(ctx context.Context, id string) (*ProjectRecord, error)

	// List retrieves all projects.
	List(ctx context.Context) ([]*ProjectRecord, error)

	// GetNextID returns the next available project ID.
	GetNextID(ctx context.Context) (string, error)
}

// ProjectRecord represents a project as stored in persistence.
type ProjectRecord struct {
	ID        string
	Name      string
	Status    string
	CreatedAt string
}
