package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tempo/internal/config"
	"github.com/example/tempo/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the tempo database",
		Long:  `Initialize the tempo database at ~/.tempo/tempo.db with the required schema and write a default config.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing tempo database at %s\n", dbPath)

			// Opening the connection runs schema creation and migrations
			if _, err := db.GetDBAt(dbPath); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")

			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Println("✓ Config written to .tempo/config.json")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  tempod project create \"My First Project\"")
			fmt.Println("  tempod rule create \"Escalate urgent tasks\" --trigger task_created --action send_notification --params '{\"user_id\":\"MGR-001\",\"template\":\"urgent_task\"}'")
			fmt.Println("  tempod watch")

			return nil
		},
	}
}

// initConfig writes a default .tempo/config.json in the working directory,
// leaving an existing file untouched.
func initConfig() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	if _, err := config.LoadConfig(cwd); err == nil {
		return nil // already configured
	}

	return config.SaveConfig(cwd, config.Default())
}
