package models

import "errors"

// Sentinel errors surfaced to API callers. Automation failures are recorded
// in the execution ledger instead of being returned from PublishEvent.
var (
	// ErrCycleDetected is returned when inserting a dependency edge would
	// close a cycle in the project's precedence graph.
	ErrCycleDetected = errors.New("dependency cycle detected")

	// ErrDependencyNotSatisfied is returned when a status transition is
	// blocked by an unsatisfied predecessor.
	ErrDependencyNotSatisfied = errors.New("dependency not satisfied")

	// ErrInvalidTransition is returned for approval transitions from a
	// state that does not permit them.
	ErrInvalidTransition = errors.New("invalid approval transition")

	// ErrMissingReason is returned when a rejection or change request
	// omits its reason.
	ErrMissingReason = errors.New("reason is required")

	// ErrRuleActionFailed wraps an action execution failure.
	ErrRuleActionFailed = errors.New("rule action failed")

	// ErrActionTimeout marks an action that exceeded its time budget.
	ErrActionTimeout = errors.New("action timed out")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)
