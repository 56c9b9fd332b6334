package models

// Trigger type constants. Every lifecycle event published on the bus uses
// one of these as its event type.
const (
	TriggerTaskCreated        = "task_created"
	TriggerTaskStatusChanged  = "task_status_changed"
	TriggerTaskAssigned       = "task_assigned"
	TriggerTimeEntryCreated   = "time_entry_created"
	TriggerTimeEntryApproved  = "time_entry_approved"
	TriggerTimeEntryRejected  = "time_entry_rejected"
	TriggerExpenseCreated     = "expense_created"
	TriggerExpenseApproved    = "expense_approved"
	TriggerExpenseRejected    = "expense_rejected"
	TriggerDueDateApproaching = "due_date_approaching"
)

// ValidTriggerType reports whether t is a known trigger type.
func ValidTriggerType(t string) bool {
	switch t {
	case TriggerTaskCreated, TriggerTaskStatusChanged, TriggerTaskAssigned,
		TriggerTimeEntryCreated, TriggerTimeEntryApproved, TriggerTimeEntryRejected,
		TriggerExpenseCreated, TriggerExpenseApproved, TriggerExpenseRejected,
		TriggerDueDateApproaching:
		return true
	}
	return false
}

// Action type constants.
const (
	ActionAssignUser       = "assign_user"
	ActionChangeStatus     = "change_status"
	ActionCreateTask       = "create_task"
	ActionSendNotification = "send_notification"
	ActionUpdateField      = "update_field"
)

// ValidActionType reports whether t is a known action type.
func ValidActionType(t string) bool {
	switch t {
	case ActionAssignUser, ActionChangeStatus, ActionCreateTask,
		ActionSendNotification, ActionUpdateField:
		return true
	}
	return false
}

// Execution outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)
