package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/wire"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage task dependencies",
	Long:  "Add, remove, and inspect precedence edges between tasks",
}

var depAddCmd = &cobra.Command{
	Use:   "add [task-id] [depends-on-id]",
	Short: "Add a dependency edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, dependsOnID := args[0], args[1]
		depType, _ := cmd.Flags().GetString("type")

		err := wire.DependencyService().AddDependency(context.Background(), primary.AddDependencyRequest{
			TaskID:      taskID,
			DependsOnID: dependsOnID,
			Type:        depType,
		})
		if err != nil {
			return fmt.Errorf("failed to add dependency: %w", err)
		}

		fmt.Printf("✓ %s now depends on %s (%s)\n", taskID, dependsOnID, depType)
		return nil
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove [task-id] [depends-on-id]",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, dependsOnID := args[0], args[1]

		if err := wire.DependencyService().RemoveDependency(context.Background(), taskID, dependsOnID); err != nil {
			return fmt.Errorf("failed to remove dependency: %w", err)
		}

		fmt.Printf("✓ Removed dependency %s → %s\n", taskID, dependsOnID)
		return nil
	},
}

var depListCmd = &cobra.Command{
	Use:   "list [task-id]",
	Short: "List what a task depends on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID := args[0]

		deps, err := wire.DependencyService().ListDependencies(context.Background(), taskID)
		if err != nil {
			return fmt.Errorf("failed to list dependencies: %w", err)
		}

		if len(deps) == 0 {
			fmt.Printf("%s has no dependencies.\n", taskID)
			return nil
		}

		fmt.Printf("%s depends on %d task(s):\n\n", taskID, len(deps))
		for _, dep := range deps {
			fmt.Printf("  %s (%s)\n", dep.DependsOnID, dep.Type)
		}
		return nil
	},
}

var depCheckCmd = &cobra.Command{
	Use:   "check [task-id] [status]",
	Short: "Check whether a status transition is allowed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, status := args[0], args[1]

		err := wire.DependencyService().ValidateStatusTransition(context.Background(), taskID, status)
		if err == nil {
			fmt.Printf("✓ %s may move to %s\n", taskID, status)
			return nil
		}

		fmt.Printf("✗ %s may not move to %s: %v\n", taskID, status, err)
		return fmt.Errorf("transition blocked")
	},
}

func init() {
	depAddCmd.Flags().StringP("type", "t", models.DepFinishToStart,
		"Dependency type (finish_to_start, start_to_start, finish_to_finish, start_to_finish)")

	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
	depCmd.AddCommand(depCheckCmd)
}

// DepCmd returns the dep command
func DepCmd() *cobra.Command {
	return depCmd
}
