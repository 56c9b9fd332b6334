package primary

import (
	"context"

	"github.com/example/tempo/internal/models"
)

// ApprovalService defines the primary port for the approval state machine
// on time entries and expenses.
type ApprovalService interface {
	// Submit creates a new entry in pending status and publishes the
	// corresponding *_created event.
	Submit(ctx context.Context, req SubmitEntryRequest) (*SubmitEntryResponse, error)

	// Approve transitions a pending entry to approved.
	Approve(ctx context.Context, ref models.EntityRef, reviewerID string) error

	// Reject transitions a pending entry to rejected. Reason is required.
	Reject(ctx context.Context, ref models.EntityRef, reviewerID, reason string) error

	// RequestChanges transitions a pending entry to changes_requested.
	// Reason is required.
	RequestChanges(ctx context.Context, ref models.EntityRef, reviewerID, reason string) error

	// Resubmit returns a changes_requested entry to pending, clearing
	// the rejection fields.
	Resubmit(ctx context.Context, ref models.EntityRef) error

	// CorrectApproval records an administrative correction of a terminal
	// entry as a new audit event rather than an in-place rewrite.
	CorrectApproval(ctx context.Context, req CorrectApprovalRequest) error

	// GetEntry retrieves an entry by reference.
	GetEntry(ctx context.Context, ref models.EntityRef) (*ApprovalEntry, error)

	// ListEntries lists entries of a kind with optional filters.
	ListEntries(ctx context.Context, kind models.EntityKind, filters ApprovalFilters) ([]*ApprovalEntry, error)
}

// SubmitEntryRequest contains parameters for submitting a time entry or
// expense. Quantity is minutes for time entries and cents for expenses.
type SubmitEntryRequest struct {
	Kind        models.EntityKind
	ProjectID   string
	TaskID      string // time entries only, optional
	UserID      string
	Quantity    int
	EntryDate   string // YYYY-MM-DD
	Description string
}

// SubmitEntryResponse contains the result of submitting an entry.
type SubmitEntryResponse struct {
	EntryID string
	Entry   *ApprovalEntry
}

// CorrectApprovalRequest contains parameters for an administrative
// correction of an already-decided entry.
type CorrectApprovalRequest struct {
	Ref       models.EntityRef
	AdminID   string
	NewStatus string // approved or rejected
	Reason    string
}

// ApprovalEntry represents a time entry or expense at the port boundary.
type ApprovalEntry struct {
	Kind            models.EntityKind
	ID              string
	ProjectID       string
	TaskID          string
	UserID          string
	Quantity        int
	EntryDate       string
	Description     string
	ApprovalStatus  string
	ApprovedBy      string
	ApprovedAt      string
	RejectionReason string
	CreatedAt       string
	UpdatedAt       string
}

// ApprovalFilters contains filter options for listing entries.
type ApprovalFilters struct {
	ProjectID string
	UserID    string
	Status    string
	Limit     int
}
