package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/wire"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  "Create, list, assign, and transition tasks through the workflow",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		title := args[0]
		projectID, _ := cmd.Flags().GetString("project")
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetInt("priority")
		assignee, _ := cmd.Flags().GetString("assignee")
		dueDate, _ := cmd.Flags().GetString("due")

		if projectID == "" {
			return fmt.Errorf("no project specified\nHint: Use --project PROJ-001")
		}

		resp, err := wire.TaskService().CreateTask(ctx, primary.CreateTaskRequest{
			ProjectID:   projectID,
			Title:       title,
			Description: description,
			Priority:    priority,
			AssigneeID:  assignee,
			DueDate:     dueDate,
		})
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		task := resp.Task
		fmt.Printf("✓ Created task %s: %s\n", task.ID, task.Title)
		fmt.Printf("  Project: %s\n", task.ProjectID)
		if task.AssigneeID != "" {
			fmt.Printf("  Assignee: %s\n", task.AssigneeID)
		}
		if task.DueDate != "" {
			fmt.Printf("  Due: %s\n", task.DueDate)
		}
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		projectID, _ := cmd.Flags().GetString("project")
		status, _ := cmd.Flags().GetString("status")
		assignee, _ := cmd.Flags().GetString("assignee")
		limit, _ := cmd.Flags().GetInt("limit")

		tasks, err := wire.TaskService().ListTasks(ctx, primary.TaskFilters{
			ProjectID:  projectID,
			Status:     status,
			AssigneeID: assignee,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		fmt.Printf("Found %d task(s):\n\n", len(tasks))
		for _, task := range tasks {
			fmt.Printf("%s %s: %s [%s] p%d\n", getStatusIcon(task.Status), task.ID, task.Title, task.Status, task.Priority)
			if task.AssigneeID != "" {
				fmt.Printf("   Assignee: %s\n", task.AssigneeID)
			}
			if task.DueDate != "" {
				fmt.Printf("   Due: %s\n", task.DueDate)
			}
		}
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		taskID := args[0]

		task, err := wire.TaskService().GetTask(ctx, taskID)
		if err != nil {
			return fmt.Errorf("task not found: %w", err)
		}

		fmt.Printf("Task: %s\n", task.ID)
		fmt.Printf("Title: %s\n", task.Title)
		if task.Description != "" {
			fmt.Printf("Description: %s\n", task.Description)
		}
		fmt.Printf("Status: %s\n", task.Status)
		fmt.Printf("Priority: %d\n", task.Priority)
		fmt.Printf("Project: %s\n", task.ProjectID)
		if task.AssigneeID != "" {
			fmt.Printf("Assignee: %s\n", task.AssigneeID)
		}
		if task.DueDate != "" {
			fmt.Printf("Due: %s\n", task.DueDate)
		}
		fmt.Printf("Progress: %d%%\n", task.Progress)
		fmt.Printf("Created: %s\n", task.CreatedAt)
		if task.CompletedAt != "" {
			fmt.Printf("Completed: %s\n", task.CompletedAt)
		}

		deps, err := wire.DependencyService().ListDependencies(ctx, taskID)
		if err == nil && len(deps) > 0 {
			fmt.Println("Depends on:")
			for _, dep := range deps {
				fmt.Printf("  %s (%s)\n", dep.DependsOnID, dep.Type)
			}
		}
		return nil
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status [task-id] [status]",
	Short: "Transition a task (todo, in_progress, review, done)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, status := args[0], args[1]

		if err := wire.TaskService().SetStatus(context.Background(), taskID, status); err != nil {
			return fmt.Errorf("failed to set status: %w", err)
		}

		fmt.Printf("✓ Task %s → %s\n", taskID, status)
		return nil
	},
}

var taskAssignCmd = &cobra.Command{
	Use:   "assign [task-id] [user-id]",
	Short: "Assign a task to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, userID := args[0], args[1]

		if err := wire.TaskService().AssignTask(context.Background(), taskID, userID); err != nil {
			return fmt.Errorf("failed to assign task: %w", err)
		}

		fmt.Printf("✓ Task %s assigned to %s\n", taskID, userID)
		return nil
	},
}

var taskSetCmd = &cobra.Command{
	Use:   "set [task-id] [field] [value]",
	Short: "Update a single task field (title, description, due_date, priority, progress)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, field, value := args[0], args[1], args[2]

		if err := wire.TaskService().UpdateField(context.Background(), taskID, field, value); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		fmt.Printf("✓ Task %s: %s updated\n", taskID, field)
		return nil
	},
}

func init() {
	taskCreateCmd.Flags().StringP("project", "p", "", "Project ID")
	taskCreateCmd.Flags().StringP("description", "d", "", "Task description")
	taskCreateCmd.Flags().Int("priority", 0, "Priority (0-5)")
	taskCreateCmd.Flags().String("assignee", "", "Assignee user ID")
	taskCreateCmd.Flags().String("due", "", "Due date (RFC3339)")

	taskListCmd.Flags().StringP("project", "p", "", "Filter by project")
	taskListCmd.Flags().StringP("status", "s", "", "Filter by status")
	taskListCmd.Flags().String("assignee", "", "Filter by assignee")
	taskListCmd.Flags().Int("limit", 0, "Limit results")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskAssignCmd)
	taskCmd.AddCommand(taskSetCmd)
}

// TaskCmd returns the task command
func TaskCmd() *cobra.Command {
	return taskCmd
}

// getStatusIcon returns an icon for a task status
func getStatusIcon(status string) string {
	switch status {
	case "todo":
		return "📋"
	case "in_progress":
		return "🔧"
	case "review":
		return "👀"
	case "done":
		return "✅"
	default:
		return "•"
	}
}
