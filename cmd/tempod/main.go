package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tempo/internal/cli"
	"github.com/example/tempo/internal/version"
	"github.com/example/tempo/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "tempod",
		Short:   "tempo - workflow automation for tasks, time entries, and expenses",
		Version: version.String(),
		Long: `tempo runs an approval workflow and automation engine over projects.
Tasks carry dependency constraints, time entries and expenses move through
an approval state machine, and automation rules react to lifecycle events.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.ProjectCmd())
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.DepCmd())
	rootCmd.AddCommand(cli.EntryCmd())
	rootCmd.AddCommand(cli.RuleCmd())
	rootCmd.AddCommand(cli.WatchCmd())

	err := rootCmd.Execute()

	// Drain queued rule evaluations before exiting
	wire.Shutdown()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
