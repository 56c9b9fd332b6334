package db

// SchemaSQL is the complete schema for fresh tempo installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// it via GetSchemaSQL(), so repository code referencing a column that does
// not exist here fails immediately with "no such column" at test time.
const SchemaSQL = `
-- Projects (reference data; tasks and entries cascade with their project)
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('active', 'archived')) DEFAULT 'active',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Tasks
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL CHECK(status IN ('todo', 'in_progress', 'review', 'done')) DEFAULT 'todo',
	priority INTEGER NOT NULL DEFAULT 0 CHECK(priority BETWEEN 0 AND 5),
	assignee_id TEXT,
	due_date DATETIME,
	progress INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

-- Task precedence edges. Acyclicity is enforced by the dependency service
-- on every insert; the table only guards the pair uniqueness and self-edge.
CREATE TABLE IF NOT EXISTS task_dependencies (
	task_id TEXT NOT NULL,
	depends_on_task_id TEXT NOT NULL CHECK(depends_on_task_id != task_id),
	dependency_type TEXT NOT NULL CHECK(dependency_type IN ('finish_to_start', 'start_to_start', 'finish_to_finish', 'start_to_finish')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (task_id, depends_on_task_id),
	FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE,
	FOREIGN KEY (depends_on_task_id) REFERENCES tasks(id) ON DELETE CASCADE
);

-- Time entries (quantity = minutes)
CREATE TABLE IF NOT EXISTS time_entries (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	task_id TEXT,
	user_id TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	entry_date TEXT NOT NULL,
	description TEXT,
	approval_status TEXT NOT NULL CHECK(approval_status IN ('pending', 'approved', 'rejected', 'changes_requested')) DEFAULT 'pending',
	approved_by TEXT,
	approved_at DATETIME,
	rejection_reason TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

-- Expenses (quantity = cents)
CREATE TABLE IF NOT EXISTS expenses (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	task_id TEXT,
	user_id TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	entry_date TEXT NOT NULL,
	description TEXT,
	approval_status TEXT NOT NULL CHECK(approval_status IN ('pending', 'approved', 'rejected', 'changes_requested')) DEFAULT 'pending',
	approved_by TEXT,
	approved_at DATETIME,
	rejection_reason TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

-- Automation rule catalog. Rules are deactivated, never deleted, so the
-- execution ledger keeps valid references.
CREATE TABLE IF NOT EXISTS automation_rules (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	trigger_type TEXT NOT NULL,
	trigger_conditions TEXT,
	action_type TEXT NOT NULL CHECK(action_type IN ('assign_user', 'change_status', 'create_task', 'send_notification', 'update_field')),
	action_params TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	cooldown_seconds INTEGER NOT NULL DEFAULT 0,
	execution_count INTEGER NOT NULL DEFAULT 0,
	last_executed_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Execution ledger: append-only, one row per (rule, entity, event).
CREATE TABLE IF NOT EXISTS automation_executions (
	id TEXT PRIMARY KEY,
	rule_id TEXT NOT NULL,
	entity_type TEXT NOT NULL CHECK(entity_type IN ('task', 'project', 'time_entry', 'expense')),
	entity_id TEXT NOT NULL,
	event_id TEXT NOT NULL,
	outcome TEXT NOT NULL CHECK(outcome IN ('success', 'failed', 'skipped')),
	error_message TEXT,
	executed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(rule_id, entity_type, entity_id, event_id),
	FOREIGN KEY (rule_id) REFERENCES automation_rules(id)
);

-- Lifecycle event log, appended in the same transaction as the mutation.
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	project_id TEXT,
	actor_id TEXT,
	snapshot_json TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_executions_rule ON automation_executions(rule_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date);

-- Audit log for entity mutations.
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the authoritative schema SQL for tests and installs.
func GetSchemaSQL() string {
	return SchemaSQL
}
