package models

import "time"

// Event is a lifecycle event published after an entity mutation commits.
// Snapshot holds the fields of the entity as they were at event time; the
// rule engine evaluates conditions against the snapshot, never against
// live entity state.
type Event struct {
	ID         string
	Type       string
	Entity     EntityRef
	ProjectID  string
	ActorID    string
	Snapshot   map[string]any
	OccurredAt time.Time
}

// Lifecycle event types outside the rule trigger set. Reviewer round-trips
// are recorded and fan out on the bus like any other transition, but rules
// cannot target them: ValidTriggerType stays the closed set rule creation
// accepts.
const (
	EventTimeEntryChangesRequested = "time_entry_changes_requested"
	EventExpenseChangesRequested   = "expense_changes_requested"
	EventTimeEntryResubmitted      = "time_entry_resubmitted"
	EventExpenseResubmitted        = "expense_resubmitted"
)

// SnapshotString returns the named snapshot field as a string, with ok=false
// when the field is absent or not a string.
func (e Event) SnapshotString(field string) (string, bool) {
	v, ok := e.Snapshot[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
