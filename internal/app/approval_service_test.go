package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

func newTestApprovalService() (*ApprovalServiceImpl, *mockApprovalRepository, *capturingPublisher) {
	approvalRepo := newMockApprovalRepository()
	publisher := newCapturingPublisher()
	svc := NewApprovalService(approvalRepo, publisher, newFixedClock())
	return svc, approvalRepo, publisher
}

func seedEntry(repo *mockApprovalRepository, kind models.EntityKind, id, status string) {
	repo.entries[id] = &secondary.ApprovalEntryRecord{
		Kind:           kind,
		ID:             id,
		ProjectID:      "PROJ-001",
		UserID:         "USER-001",
		Quantity:       120,
		EntryDate:      "2026-03-09",
		ApprovalStatus: status,
	}
}

func entryRef(id string) models.EntityRef {
	return models.EntityRef{Kind: models.EntityKindTimeEntry, ID: id}
}

func TestSubmit(t *testing.T) {
	svc, repo, publisher := newTestApprovalService()

	resp, err := svc.Submit(context.Background(), primary.SubmitEntryRequest{
		Kind:      models.EntityKindTimeEntry,
		ProjectID: "PROJ-001",
		UserID:    "USER-001",
		Quantity:  480,
		EntryDate: "2026-03-09",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.EntryID != "ENTRY-001" {
		t.Errorf("expected ENTRY-001, got %s", resp.EntryID)
	}
	if resp.Entry.ApprovalStatus != models.ApprovalPending {
		t.Errorf("expected pending, got %s", resp.Entry.ApprovalStatus)
	}
	if repo.entries["ENTRY-001"] == nil {
		t.Fatal("expected entry persisted")
	}

	events := publisher.published()
	if len(events) != 1 || events[0].Type != models.TriggerTimeEntryCreated {
		t.Fatalf("expected one time_entry_created event, got %v", events)
	}
}

func TestSubmit_ExpenseEvent(t *testing.T) {
	svc, _, publisher := newTestApprovalService()

	_, err := svc.Submit(context.Background(), primary.SubmitEntryRequest{
		Kind:      models.EntityKindExpense,
		ProjectID: "PROJ-001",
		UserID:    "USER-001",
		Quantity:  2500,
		EntryDate: "2026-03-09",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	events := publisher.published()
	if len(events) != 1 || events[0].Type != models.TriggerExpenseCreated {
		t.Fatalf("expected one expense_created event, got %v", events)
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc, _, _ := newTestApprovalService()
	ctx := context.Background()

	cases := []primary.SubmitEntryRequest{
		{Kind: models.EntityKindTask, ProjectID: "PROJ-001", UserID: "U", Quantity: 1, EntryDate: "2026-03-09"},
		{Kind: models.EntityKindTimeEntry, ProjectID: "PROJ-001", Quantity: 1, EntryDate: "2026-03-09"},
		{Kind: models.EntityKindTimeEntry, ProjectID: "PROJ-001", UserID: "U", Quantity: 0, EntryDate: "2026-03-09"},
		{Kind: models.EntityKindTimeEntry, ProjectID: "PROJ-001", UserID: "U", Quantity: 1, EntryDate: "not-a-date"},
	}
	for i, req := range cases {
		if _, err := svc.Submit(ctx, req); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestApprove(t *testing.T) {
	svc, repo, publisher := newTestApprovalService()
	seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", models.ApprovalPending)

	if err := svc.Approve(context.Background(), entryRef("ENTRY-001"), "MGR-001"); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	entry := repo.entries["ENTRY-001"]
	if entry.ApprovalStatus != models.ApprovalApproved {
		t.Errorf("expected approved, got %s", entry.ApprovalStatus)
	}
	if entry.ApprovedBy != "MGR-001" {
		t.Errorf("expected approver MGR-001, got %s", entry.ApprovedBy)
	}
	if entry.ApprovedAt == "" {
		t.Error("expected approved_at to be set")
	}

	events := publisher.published()
	if len(events) != 1 || events[0].Type != models.TriggerTimeEntryApproved {
		t.Fatalf("expected one time_entry_approved event, got %v", events)
	}
	if events[0].Snapshot["approval_status"] != models.ApprovalApproved {
		t.Errorf("expected post-decision snapshot, got %v", events[0].Snapshot["approval_status"])
	}
}

func TestApprove_InvalidFrom(t *testing.T) {
	svc, repo, _ := newTestApprovalService()

	for _, status := range []string{models.ApprovalApproved, models.ApprovalRejected, models.ApprovalChangesRequested} {
		seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", status)
		err := svc.Approve(context.Background(), entryRef("ENTRY-001"), "MGR-001")
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("status %s: expected ErrInvalidTransition, got %v", status, err)
		}
	}
}

func TestReject(t *testing.T) {
	svc, repo, publisher := newTestApprovalService()
	seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", models.ApprovalPending)

	if err := svc.Reject(context.Background(), entryRef("ENTRY-001"), "MGR-001", "wrong project code"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	entry := repo.entries["ENTRY-001"]
	if entry.ApprovalStatus != models.ApprovalRejected {
		t.Errorf("expected rejected, got %s", entry.ApprovalStatus)
	}
	if entry.RejectionReason != "wrong project code" {
		t.Errorf("expected reason stored, got %q", entry.RejectionReason)
	}
	if entry.ApprovedBy != "MGR-001" {
		t.Errorf("expected rejecting reviewer recorded, got %q", entry.ApprovedBy)
	}
	if entry.ApprovedAt == "" {
		t.Error("expected decision time recorded on rejection")
	}

	events := publisher.published()
	if len(events) != 1 || events[0].Type != models.TriggerTimeEntryRejected {
		t.Fatalf("expected one time_entry_rejected event, got %v", events)
	}
}

func TestReject_RequiresReason(t *testing.T) {
	svc, repo, publisher := newTestApprovalService()
	seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", models.ApprovalPending)

	err := svc.Reject(context.Background(), entryRef("ENTRY-001"), "MGR-001", "   ")
	if !errors.Is(err, models.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
	if repo.entries["ENTRY-001"].ApprovalStatus != models.ApprovalPending {
		t.Error("expected status unchanged")
	}
	if len(publisher.published()) != 0 {
		t.Error("expected no event for rejected guard")
	}
}

func TestRequestChanges(t *testing.T) {
	svc, repo, publisher := newTestApprovalService()
	seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", models.ApprovalPending)

	if err := svc.RequestChanges(context.Background(), entryRef("ENTRY-001"), "MGR-001", "split by day"); err != nil {
		t.Fatalf("RequestChanges failed: %v", err)
	}

	entry := repo.entries["ENTRY-001"]
	if entry.ApprovalStatus != models.ApprovalChangesRequested {
		t.Errorf("expected changes_requested, got %s", entry.ApprovalStatus)
	}
	if entry.RejectionReason != "split by day" {
		t.Errorf("expected reason stored, got %q", entry.RejectionReason)
	}
	if entry.ApprovedBy != "" || entry.ApprovedAt != "" {
		t.Error("expected no approver fields on a reviewer round-trip")
	}

	events := publisher.published()
	if len(events) != 1 || events[0].Type != models.EventTimeEntryChangesRequested {
		t.Fatalf("expected one time_entry_changes_requested event, got %v", events)
	}

	err := svc.RequestChanges(context.Background(), entryRef("ENTRY-001"), "MGR-001", "")
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from changes_requested, got %v", err)
	}
}

func TestResubmit(t *testing.T) {
	svc, repo, publisher := newTestApprovalService()
	seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", models.ApprovalChangesRequested)
	repo.entries["ENTRY-001"].RejectionReason = "split by day"

	if err := svc.Resubmit(context.Background(), entryRef("ENTRY-001")); err != nil {
		t.Fatalf("Resubmit failed: %v", err)
	}

	entry := repo.entries["ENTRY-001"]
	if entry.ApprovalStatus != models.ApprovalPending {
		t.Errorf("expected pending, got %s", entry.ApprovalStatus)
	}
	if entry.RejectionReason != "" {
		t.Errorf("expected reason cleared, got %q", entry.RejectionReason)
	}
	if entry.ApprovedBy != "" || entry.ApprovedAt != "" {
		t.Error("expected approver fields cleared on resubmit")
	}

	events := publisher.published()
	if len(events) != 1 || events[0].Type != models.EventTimeEntryResubmitted {
		t.Fatalf("expected one time_entry_resubmitted event, got %v", events)
	}
}

func TestResubmit_OnlyFromChangesRequested(t *testing.T) {
	svc, repo, _ := newTestApprovalService()

	for _, status := range []string{models.ApprovalPending, models.ApprovalApproved, models.ApprovalRejected} {
		seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", status)
		err := svc.Resubmit(context.Background(), entryRef("ENTRY-001"))
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("status %s: expected ErrInvalidTransition, got %v", status, err)
		}
	}
}

func TestCorrectApproval(t *testing.T) {
	svc, repo, publisher := newTestApprovalService()
	seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", models.ApprovalRejected)

	err := svc.CorrectApproval(context.Background(), primary.CorrectApprovalRequest{
		Ref:       entryRef("ENTRY-001"),
		AdminID:   "ADMIN-001",
		NewStatus: models.ApprovalApproved,
		Reason:    "rejected in error",
	})
	if err != nil {
		t.Fatalf("CorrectApproval failed: %v", err)
	}

	entry := repo.entries["ENTRY-001"]
	if entry.ApprovalStatus != models.ApprovalApproved {
		t.Errorf("expected approved, got %s", entry.ApprovalStatus)
	}
	if entry.ApprovedBy != "ADMIN-001" {
		t.Errorf("expected admin as approver, got %s", entry.ApprovedBy)
	}

	events := publisher.published()
	if len(events) != 1 || events[0].Type != models.TriggerTimeEntryApproved {
		t.Fatalf("expected time_entry_approved event, got %v", events)
	}
}

func TestCorrectApproval_RejectionRecordsAdmin(t *testing.T) {
	svc, repo, publisher := newTestApprovalService()
	seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", models.ApprovalApproved)

	err := svc.CorrectApproval(context.Background(), primary.CorrectApprovalRequest{
		Ref:       entryRef("ENTRY-001"),
		AdminID:   "ADMIN-001",
		NewStatus: models.ApprovalRejected,
		Reason:    "approved in error",
	})
	if err != nil {
		t.Fatalf("CorrectApproval failed: %v", err)
	}

	entry := repo.entries["ENTRY-001"]
	if entry.ApprovalStatus != models.ApprovalRejected {
		t.Errorf("expected rejected, got %s", entry.ApprovalStatus)
	}
	if entry.ApprovedBy != "ADMIN-001" {
		t.Errorf("expected admin recorded as decider, got %q", entry.ApprovedBy)
	}
	if entry.ApprovedAt == "" {
		t.Error("expected decision time recorded")
	}
	if entry.RejectionReason != "approved in error" {
		t.Errorf("expected reason stored, got %q", entry.RejectionReason)
	}

	events := publisher.published()
	if len(events) != 1 || events[0].Type != models.TriggerTimeEntryRejected {
		t.Fatalf("expected time_entry_rejected event, got %v", events)
	}
}

func TestCorrectApproval_Guards(t *testing.T) {
	svc, repo, _ := newTestApprovalService()
	ctx := context.Background()

	seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", models.ApprovalPending)
	err := svc.CorrectApproval(ctx, primary.CorrectApprovalRequest{
		Ref: entryRef("ENTRY-001"), AdminID: "A", NewStatus: models.ApprovalApproved, Reason: "r",
	})
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for pending entry, got %v", err)
	}

	seedEntry(repo, models.EntityKindTimeEntry, "ENTRY-001", models.ApprovalApproved)
	err = svc.CorrectApproval(ctx, primary.CorrectApprovalRequest{
		Ref: entryRef("ENTRY-001"), AdminID: "A", NewStatus: models.ApprovalRejected, Reason: "",
	})
	if !errors.Is(err, models.ErrMissingReason) {
		t.Errorf("expected ErrMissingReason, got %v", err)
	}

	err = svc.CorrectApproval(ctx, primary.CorrectApprovalRequest{
		Ref: entryRef("ENTRY-001"), AdminID: "A", NewStatus: models.ApprovalPending, Reason: "r",
	})
	if err == nil {
		t.Error("expected error for non-terminal correction status")
	}
}
