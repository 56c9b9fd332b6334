// Package approval contains the pure business logic for the approval state
// machine on time entries and expenses. Guards evaluate preconditions
// without side effects; the app layer applies the field mutations.
package approval

import (
	"fmt"
	"strings"

	"github.com/example/tempo/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Err     error
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Err != nil {
		return fmt.Errorf("%w: %s", r.Err, r.Reason)
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanApprove evaluates whether an entry can be approved.
// Rules:
// - Status must be pending
func CanApprove(status string) GuardResult {
	if status != models.ApprovalPending {
		return invalidFrom(status, "approve")
	}
	return GuardResult{Allowed: true}
}

// CanReject evaluates whether an entry can be rejected.
// Rules:
// - Status must be pending
// - A non-empty reason is required
func CanReject(status, reason string) GuardResult {
	if status != models.ApprovalPending {
		return invalidFrom(status, "reject")
	}
	if strings.TrimSpace(reason) == "" {
		return GuardResult{
			Reason: "rejection requires a reason",
			Err:    models.ErrMissingReason,
		}
	}
	return GuardResult{Allowed: true}
}

// CanRequestChanges evaluates whether changes can be requested on an entry.
// Same preconditions as reject.
func CanRequestChanges(status, reason string) GuardResult {
	if status != models.ApprovalPending {
		return invalidFrom(status, "request changes on")
	}
	if strings.TrimSpace(reason) == "" {
		return GuardResult{
			Reason: "change request requires a reason",
			Err:    models.ErrMissingReason,
		}
	}
	return GuardResult{Allowed: true}
}

// CanResubmit evaluates whether an entry can be resubmitted.
// Rules:
// - Status must be changes_requested
func CanResubmit(status string) GuardResult {
	if status != models.ApprovalChangesRequested {
		return invalidFrom(status, "resubmit")
	}
	return GuardResult{Allowed: true}
}

func invalidFrom(status, verb string) GuardResult {
	return GuardResult{
		Reason: fmt.Sprintf("cannot %s an entry in status %s", verb, status),
		Err:    models.ErrInvalidTransition,
	}
}
