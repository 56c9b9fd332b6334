package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tempo/internal/ports/secondary"
	"github.com/example/tempo/internal/wire"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  "Create and list the projects that tasks, time entries, and expenses belong to",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		name := args[0]

		repo := wire.ProjectRepository()
		id, err := repo.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate project ID: %w", err)
		}

		if err := repo.Create(ctx, &secondary.ProjectRecord{ID: id, Name: name}); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		fmt.Printf("✓ Created project %s: %s\n", id, name)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := wire.ProjectRepository().List(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		if len(projects) == 0 {
			fmt.Println("No projects found.")
			return nil
		}

		fmt.Printf("Found %d project(s):\n\n", len(projects))
		for _, p := range projects {
			fmt.Printf("%s: %s [%s]\n", p.ID, p.Name, p.Status)
		}
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show project details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := wire.ProjectRepository().GetByID(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("project not found: %w", err)
		}

		fmt.Printf("Project: %s\n", p.ID)
		fmt.Printf("Name: %s\n", p.Name)
		fmt.Printf("Status: %s\n", p.Status)
		fmt.Printf("Created: %s\n", p.CreatedAt)
		return nil
	},
}

func init() {
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
}

// ProjectCmd returns the project command
func ProjectCmd() *cobra.Command {
	return projectCmd
}
