package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/tempo/internal/wire"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the due-date scanner",
		Long: `Run the periodic due-date scanner alongside the event bus.

Without flags, schedules scans per the configured cron expression and
runs until interrupted. With --once, runs a single scan and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner := wire.Scanner()

			if once {
				if err := scanner.Scan(context.Background()); err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				fmt.Println("✓ Scan complete")
				return nil
			}

			if err := scanner.Start(); err != nil {
				return fmt.Errorf("failed to start scanner: %w", err)
			}

			cfg := wire.Config()
			fmt.Printf("Watching: scanning on %q with a %d-day window. Ctrl-C to stop.\n",
				cfg.ScanSchedule, cfg.DueSoonDays)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			fmt.Println("\nStopping...")
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single scan and exit")

	return cmd
}
