package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/wire"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage time entries and expenses",
	Long:  "Submit time entries and expenses and walk them through the approval workflow",
}

var entrySubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a time entry or expense for approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		kind, _ := cmd.Flags().GetString("kind")
		projectID, _ := cmd.Flags().GetString("project")
		taskID, _ := cmd.Flags().GetString("task")
		userID, _ := cmd.Flags().GetString("user")
		quantity, _ := cmd.Flags().GetInt("quantity")
		entryDate, _ := cmd.Flags().GetString("date")
		description, _ := cmd.Flags().GetString("description")

		resp, err := wire.ApprovalService().Submit(ctx, primary.SubmitEntryRequest{
			Kind:        models.EntityKind(kind),
			ProjectID:   projectID,
			TaskID:      taskID,
			UserID:      userID,
			Quantity:    quantity,
			EntryDate:   entryDate,
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("failed to submit: %w", err)
		}

		unit := "minutes"
		if resp.Entry.Kind == models.EntityKindExpense {
			unit = "cents"
		}
		fmt.Printf("✓ Submitted %s %s (%d %s, %s)\n", kind, resp.EntryID, resp.Entry.Quantity, unit, resp.Entry.EntryDate)
		fmt.Println("  Status: pending")
		return nil
	},
}

var entryShowCmd = &cobra.Command{
	Use:   "show [entry-id]",
	Short: "Show entry details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := entryRef(args[0])
		if err != nil {
			return err
		}

		entry, err := wire.ApprovalService().GetEntry(context.Background(), ref)
		if err != nil {
			return fmt.Errorf("entry not found: %w", err)
		}

		fmt.Printf("Entry: %s (%s)\n", entry.ID, entry.Kind)
		fmt.Printf("Project: %s\n", entry.ProjectID)
		if entry.TaskID != "" {
			fmt.Printf("Task: %s\n", entry.TaskID)
		}
		fmt.Printf("User: %s\n", entry.UserID)
		fmt.Printf("Quantity: %d\n", entry.Quantity)
		fmt.Printf("Date: %s\n", entry.EntryDate)
		if entry.Description != "" {
			fmt.Printf("Description: %s\n", entry.Description)
		}
		fmt.Printf("Status: %s\n", entry.ApprovalStatus)
		if entry.ApprovedBy != "" {
			fmt.Printf("Reviewed by: %s at %s\n", entry.ApprovedBy, entry.ApprovedAt)
		}
		if entry.RejectionReason != "" {
			fmt.Printf("Reason: %s\n", entry.RejectionReason)
		}
		return nil
	},
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries or expenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		projectID, _ := cmd.Flags().GetString("project")
		userID, _ := cmd.Flags().GetString("user")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := wire.ApprovalService().ListEntries(context.Background(),
			models.EntityKind(kind), primary.ApprovalFilters{
				ProjectID: projectID,
				UserID:    userID,
				Status:    status,
				Limit:     limit,
			})
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}

		fmt.Printf("Found %d entr(ies):\n\n", len(entries))
		for _, e := range entries {
			fmt.Printf("%s: %s by %s, %d on %s [%s]\n",
				e.ID, e.ProjectID, e.UserID, e.Quantity, e.EntryDate, e.ApprovalStatus)
		}
		return nil
	},
}

var entryApproveCmd = &cobra.Command{
	Use:   "approve [entry-id]",
	Short: "Approve a pending entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := entryRef(args[0])
		if err != nil {
			return err
		}
		reviewer, _ := cmd.Flags().GetString("reviewer")

		if err := wire.ApprovalService().Approve(context.Background(), ref, reviewer); err != nil {
			return fmt.Errorf("failed to approve: %w", err)
		}

		fmt.Printf("✓ %s approved by %s\n", ref.ID, reviewer)
		return nil
	},
}

var entryRejectCmd = &cobra.Command{
	Use:   "reject [entry-id]",
	Short: "Reject a pending entry (reason required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := entryRef(args[0])
		if err != nil {
			return err
		}
		reviewer, _ := cmd.Flags().GetString("reviewer")
		reason, _ := cmd.Flags().GetString("reason")

		if err := wire.ApprovalService().Reject(context.Background(), ref, reviewer, reason); err != nil {
			return fmt.Errorf("failed to reject: %w", err)
		}

		fmt.Printf("✓ %s rejected by %s\n", ref.ID, reviewer)
		return nil
	},
}

var entryRequestChangesCmd = &cobra.Command{
	Use:   "request-changes [entry-id]",
	Short: "Send a pending entry back for changes (reason required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := entryRef(args[0])
		if err != nil {
			return err
		}
		reviewer, _ := cmd.Flags().GetString("reviewer")
		reason, _ := cmd.Flags().GetString("reason")

		if err := wire.ApprovalService().RequestChanges(context.Background(), ref, reviewer, reason); err != nil {
			return fmt.Errorf("failed to request changes: %w", err)
		}

		fmt.Printf("✓ %s sent back for changes\n", ref.ID)
		return nil
	},
}

var entryResubmitCmd = &cobra.Command{
	Use:   "resubmit [entry-id]",
	Short: "Resubmit an entry after changes were requested",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := entryRef(args[0])
		if err != nil {
			return err
		}

		if err := wire.ApprovalService().Resubmit(context.Background(), ref); err != nil {
			return fmt.Errorf("failed to resubmit: %w", err)
		}

		fmt.Printf("✓ %s resubmitted, pending review\n", ref.ID)
		return nil
	},
}

var entryCorrectCmd = &cobra.Command{
	Use:   "correct [entry-id] [new-status]",
	Short: "Administratively correct a decided entry (approved or rejected)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := entryRef(args[0])
		if err != nil {
			return err
		}
		admin, _ := cmd.Flags().GetString("admin")
		reason, _ := cmd.Flags().GetString("reason")

		err = wire.ApprovalService().CorrectApproval(context.Background(), primary.CorrectApprovalRequest{
			Ref:       ref,
			AdminID:   admin,
			NewStatus: args[1],
			Reason:    reason,
		})
		if err != nil {
			return fmt.Errorf("failed to correct: %w", err)
		}

		fmt.Printf("✓ %s corrected to %s\n", ref.ID, args[1])
		return nil
	},
}

// entryRef derives the entity kind from the ID prefix.
func entryRef(id string) (models.EntityRef, error) {
	switch {
	case strings.HasPrefix(id, "ENTRY-"):
		return models.EntityRef{Kind: models.EntityKindTimeEntry, ID: id}, nil
	case strings.HasPrefix(id, "EXP-"):
		return models.EntityRef{Kind: models.EntityKindExpense, ID: id}, nil
	}
	return models.EntityRef{}, fmt.Errorf("unrecognized entry ID %q (expected ENTRY-xxx or EXP-xxx)", id)
}

func init() {
	entrySubmitCmd.Flags().StringP("kind", "k", string(models.EntityKindTimeEntry), "Entry kind (time_entry, expense)")
	entrySubmitCmd.Flags().StringP("project", "p", "", "Project ID")
	entrySubmitCmd.Flags().String("task", "", "Task ID (time entries only)")
	entrySubmitCmd.Flags().StringP("user", "u", "", "Submitting user ID")
	entrySubmitCmd.Flags().IntP("quantity", "q", 0, "Minutes for time entries, cents for expenses")
	entrySubmitCmd.Flags().String("date", "", "Entry date (YYYY-MM-DD)")
	entrySubmitCmd.Flags().StringP("description", "d", "", "Description")

	entryListCmd.Flags().StringP("kind", "k", string(models.EntityKindTimeEntry), "Entry kind (time_entry, expense)")
	entryListCmd.Flags().StringP("project", "p", "", "Filter by project")
	entryListCmd.Flags().StringP("user", "u", "", "Filter by user")
	entryListCmd.Flags().StringP("status", "s", "", "Filter by approval status")
	entryListCmd.Flags().Int("limit", 0, "Limit results")

	entryApproveCmd.Flags().String("reviewer", "", "Reviewer user ID")
	entryRejectCmd.Flags().String("reviewer", "", "Reviewer user ID")
	entryRejectCmd.Flags().String("reason", "", "Rejection reason")
	entryRequestChangesCmd.Flags().String("reviewer", "", "Reviewer user ID")
	entryRequestChangesCmd.Flags().String("reason", "", "What needs to change")
	entryCorrectCmd.Flags().String("admin", "", "Administrator user ID")
	entryCorrectCmd.Flags().String("reason", "", "Correction reason")

	entryCmd.AddCommand(entrySubmitCmd)
	entryCmd.AddCommand(entryShowCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryApproveCmd)
	entryCmd.AddCommand(entryRejectCmd)
	entryCmd.AddCommand(entryRequestChangesCmd)
	entryCmd.AddCommand(entryResubmitCmd)
	entryCmd.AddCommand(entryCorrectCmd)
}

// EntryCmd returns the entry command
func EntryCmd() *cobra.Command {
	return entryCmd
}
