package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/tempo/internal/core/approval"
	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

// ApprovalServiceImpl implements the ApprovalService interface for time
// entries and expenses.
type ApprovalServiceImpl struct {
	approvalRepo secondary.ApprovalRepository
	publisher    primary.EventPublisher
	clock        secondary.Clock
}

// NewApprovalService creates a new ApprovalService with injected dependencies.
func NewApprovalService(
	approvalRepo secondary.ApprovalRepository,
	publisher primary.EventPublisher,
	clock secondary.Clock,
) *ApprovalServiceImpl {
	return &ApprovalServiceImpl{
		approvalRepo: approvalRepo,
		publisher:    publisher,
		clock:        clock,
	}
}

// Submit creates a new entry in pending status and publishes the
// corresponding *_created event.
func (s *ApprovalServiceImpl) Submit(ctx context.Context, req primary.SubmitEntryRequest) (*primary.SubmitEntryResponse, error) {
	if req.Kind != models.EntityKindTimeEntry && req.Kind != models.EntityKindExpense {
		return nil, fmt.Errorf("kind %s does not carry approval state", req.Kind)
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}
	if _, err := time.Parse("2006-01-02", req.EntryDate); err != nil {
		return nil, fmt.Errorf("entry date must be YYYY-MM-DD: %w", err)
	}

	// Get next ID
	nextID, err := s.approvalRepo.GetNextID(ctx, req.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s ID: %w", req.Kind, err)
	}

	// Create record
	record := &secondary.ApprovalEntryRecord{
		Kind:           req.Kind,
		ID:             nextID,
		ProjectID:      req.ProjectID,
		TaskID:         req.TaskID,
		UserID:         req.UserID,
		Quantity:       req.Quantity,
		EntryDate:      req.EntryDate,
		Description:    req.Description,
		ApprovalStatus: models.ApprovalPending,
	}

	if err := s.approvalRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", req.Kind, err)
	}

	created, err := s.approvalRepo.GetByID(ctx, req.Kind, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created %s: %w", req.Kind, err)
	}

	eventType := models.TriggerTimeEntryCreated
	if req.Kind == models.EntityKindExpense {
		eventType = models.TriggerExpenseCreated
	}
	if err := s.publishEntryEvent(ctx, eventType, created); err != nil {
		return nil, err
	}

	return &primary.SubmitEntryResponse{
		EntryID: created.ID,
		Entry:   recordToEntry(created),
	}, nil
}

// Approve transitions a pending entry to approved.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, ref models.EntityRef, reviewerID string) error {
	entry, err := s.approvalRepo.GetByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	if err := approval.CanApprove(entry.ApprovalStatus).Error(); err != nil {
		return err
	}

	fields := secondary.ApprovalFields{
		Status:     models.ApprovalApproved,
		ApprovedBy: reviewerID,
		ApprovedAt: s.clock.Now().Format(time.RFC3339),
	}
	return s.applyDecision(ctx, ref, fields, approvedEventType(ref.Kind))
}

// Reject transitions a pending entry to rejected. Reason is required.
func (s *ApprovalServiceImpl) Reject(ctx context.Context, ref models.EntityRef, reviewerID, reason string) error {
	entry, err := s.approvalRepo.GetByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	if err := approval.CanReject(entry.ApprovalStatus, reason).Error(); err != nil {
		return err
	}

	fields := secondary.ApprovalFields{
		Status:          models.ApprovalRejected,
		ApprovedBy:      reviewerID,
		ApprovedAt:      s.clock.Now().Format(time.RFC3339),
		RejectionReason: strings.TrimSpace(reason),
	}
	return s.applyDecision(ctx, ref, fields, rejectedEventType(ref.Kind))
}

// RequestChanges transitions a pending entry to changes_requested. The
// reason shares the rejection_reason column; status disambiguates.
func (s *ApprovalServiceImpl) RequestChanges(ctx context.Context, ref models.EntityRef, reviewerID, reason string) error {
	entry, err := s.approvalRepo.GetByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	if err := approval.CanRequestChanges(entry.ApprovalStatus, reason).Error(); err != nil {
		return err
	}

	fields := secondary.ApprovalFields{
		Status:          models.ApprovalChangesRequested,
		RejectionReason: strings.TrimSpace(reason),
	}
	return s.applyDecision(ctx, ref, fields, changesRequestedEventType(ref.Kind))
}

// Resubmit returns a changes_requested entry to pending, clearing the
// review fields.
func (s *ApprovalServiceImpl) Resubmit(ctx context.Context, ref models.EntityRef) error {
	entry, err := s.approvalRepo.GetByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	if err := approval.CanResubmit(entry.ApprovalStatus).Error(); err != nil {
		return err
	}

	return s.applyDecision(ctx, ref, secondary.ApprovalFields{
		Status: models.ApprovalPending,
	}, resubmittedEventType(ref.Kind))
}

// CorrectApproval records an administrative correction of an entry already
// in a terminal status. The normal guards do not apply; the correction is
// always published as an event so the trail shows who overrode what.
func (s *ApprovalServiceImpl) CorrectApproval(ctx context.Context, req primary.CorrectApprovalRequest) error {
	if req.NewStatus != models.ApprovalApproved && req.NewStatus != models.ApprovalRejected {
		return fmt.Errorf("correction status must be approved or rejected, got %q", req.NewStatus)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return fmt.Errorf("correction requires a reason: %w", models.ErrMissingReason)
	}

	entry, err := s.approvalRepo.GetByID(ctx, req.Ref.Kind, req.Ref.ID)
	if err != nil {
		return err
	}
	if entry.ApprovalStatus != models.ApprovalApproved && entry.ApprovalStatus != models.ApprovalRejected {
		return fmt.Errorf("%w: only decided entries can be corrected, status is %s",
			models.ErrInvalidTransition, entry.ApprovalStatus)
	}

	fields := secondary.ApprovalFields{
		Status:     req.NewStatus,
		ApprovedBy: req.AdminID,
		ApprovedAt: s.clock.Now().Format(time.RFC3339),
	}
	if req.NewStatus == models.ApprovalRejected {
		fields.RejectionReason = strings.TrimSpace(req.Reason)
	}

	eventType := approvedEventType(req.Ref.Kind)
	if req.NewStatus == models.ApprovalRejected {
		eventType = rejectedEventType(req.Ref.Kind)
	}
	if err := s.applyDecision(ctx, req.Ref, fields, eventType); err != nil {
		return err
	}
	return nil
}

// GetEntry retrieves an entry by reference.
func (s *ApprovalServiceImpl) GetEntry(ctx context.Context, ref models.EntityRef) (*primary.ApprovalEntry, error) {
	record, err := s.approvalRepo.GetByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	return recordToEntry(record), nil
}

// ListEntries lists entries of a kind with optional filters.
func (s *ApprovalServiceImpl) ListEntries(ctx context.Context, kind models.EntityKind, filters primary.ApprovalFilters) ([]*primary.ApprovalEntry, error) {
	records, err := s.approvalRepo.List(ctx, kind, secondary.ApprovalFilters{
		ProjectID: filters.ProjectID,
		UserID:    filters.UserID,
		Status:    filters.Status,
		Limit:     filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*primary.ApprovalEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, recordToEntry(r))
	}
	return entries, nil
}

// applyDecision writes the approval fields, then publishes the decision
// event with a fresh post-write snapshot.
func (s *ApprovalServiceImpl) applyDecision(ctx context.Context, ref models.EntityRef, fields secondary.ApprovalFields, eventType string) error {
	if err := s.approvalRepo.UpdateApproval(ctx, ref.Kind, ref.ID, fields); err != nil {
		return err
	}

	updated, err := s.approvalRepo.GetByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch updated %s: %w", ref.Kind, err)
	}
	return s.publishEntryEvent(ctx, eventType, updated)
}

func (s *ApprovalServiceImpl) publishEntryEvent(ctx context.Context, eventType string, record *secondary.ApprovalEntryRecord) error {
	return s.publisher.Publish(ctx, models.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Entity:     models.EntityRef{Kind: record.Kind, ID: record.ID},
		ProjectID:  record.ProjectID,
		ActorID:    actorFrom(ctx),
		Snapshot:   entrySnapshot(record),
		OccurredAt: s.clock.Now(),
	})
}

func entrySnapshot(r *secondary.ApprovalEntryRecord) map[string]any {
	return map[string]any{
		"project_id":       r.ProjectID,
		"task_id":          r.TaskID,
		"user_id":          r.UserID,
		"quantity":         r.Quantity,
		"entry_date":       r.EntryDate,
		"description":      r.Description,
		"approval_status":  r.ApprovalStatus,
		"approved_by":      r.ApprovedBy,
		"rejection_reason": r.RejectionReason,
	}
}

func approvedEventType(kind models.EntityKind) string {
	if kind == models.EntityKindExpense {
		return models.TriggerExpenseApproved
	}
	return models.TriggerTimeEntryApproved
}

func rejectedEventType(kind models.EntityKind) string {
	if kind == models.EntityKindExpense {
		return models.TriggerExpenseRejected
	}
	return models.TriggerTimeEntryRejected
}

func changesRequestedEventType(kind models.EntityKind) string {
	if kind == models.EntityKindExpense {
		return models.EventExpenseChangesRequested
	}
	return models.EventTimeEntryChangesRequested
}

func resubmittedEventType(kind models.EntityKind) string {
	if kind == models.EntityKindExpense {
		return models.EventExpenseResubmitted
	}
	return models.EventTimeEntryResubmitted
}

func recordToEntry(r *secondary.ApprovalEntryRecord) *primary.ApprovalEntry {
	return &primary.ApprovalEntry{
		Kind:            r.Kind,
		ID:              r.ID,
		ProjectID:       r.ProjectID,
		TaskID:          r.TaskID,
		UserID:          r.UserID,
		Quantity:        r.Quantity,
		EntryDate:       r.EntryDate,
		Description:     r.Description,
		ApprovalStatus:  r.ApprovalStatus,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Ensure ApprovalServiceImpl implements the interface
var _ primary.ApprovalService = (*ApprovalServiceImpl)(nil)
