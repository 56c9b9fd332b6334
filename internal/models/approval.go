package models

// Approval status constants shared by time entries and expenses.
const (
	ApprovalPending          = "pending"
	ApprovalApproved         = "approved"
	ApprovalRejected         = "rejected"
	ApprovalChangesRequested = "changes_requested"
)

// ValidApprovalStatus reports whether s is a known approval status.
func ValidApprovalStatus(s string) bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalChangesRequested:
		return true
	}
	return false
}
