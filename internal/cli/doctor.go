package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tempo/internal/config"
	"github.com/example/tempo/internal/db"
	"github.com/example/tempo/internal/version"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the tempo environment",
		Long: `Environment health check for tempo.

Validates:
- Data directory (~/.tempo/)
- Database file and schema
- Config file (.tempo/config.json)
- Binary installation and PATH

Examples:
  tempod doctor              # Run full health check
  tempod doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkDataDir(),
				checkDatabase(),
				checkConfig(),
				checkBinary(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, statusColor(r.Status))
				}
				fmt.Println()

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Printf("\n%s Issues found. Run 'tempod init' to set up.\n", color.New(color.FgYellow).Sprint("⚠"))
				} else {
					fmt.Println(color.New(color.FgGreen).Sprint("All checks passed."))
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// statusColor renders a check verdict with the usual traffic colors
func statusColor(status string) string {
	switch status {
	case "✓":
		return color.New(color.FgGreen).Sprint(status)
	case "⚠":
		return color.New(color.FgYellow).Sprint(status)
	case "✗":
		return color.New(color.FgRed).Sprint(status)
	default:
		return status
	}
}

// checkDataDir validates the ~/.tempo directory exists
func checkDataDir() CheckResult {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return CheckResult{Name: "Data Dir", Status: "✗", Details: "  Cannot get home directory"}
	}

	tempoDir := filepath.Join(homeDir, ".tempo")
	if _, err := os.Stat(tempoDir); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Data Dir",
			Status:  "✗",
			Details: "  ~/.tempo/ not found\n  Run: tempod init",
		}
	}

	return CheckResult{Name: "Data Dir", Status: "✓"}
}

// checkDatabase validates the database opens and carries the schema
func checkDatabase() CheckResult {
	dbPath, err := db.GetDBPath()
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  Cannot resolve database path"}
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Database",
			Status:  "✗",
			Details: "  ~/.tempo/tempo.db not found\n  Run: tempod init",
		}
	}

	conn, err := db.GetDBAt(dbPath)
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
	}

	var tables int
	err = conn.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN
		 ('projects', 'tasks', 'task_dependencies', 'time_entries', 'expenses',
		  'automation_rules', 'automation_executions', 'events')`,
	).Scan(&tables)
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  Schema query failed: " + err.Error()}
	}
	if tables < 8 {
		return CheckResult{
			Name:    "Database",
			Status:  "✗",
			Details: fmt.Sprintf("  Only %d of 8 core tables present\n  Run: tempod init", tables),
		}
	}

	return CheckResult{Name: "Database", Status: "✓"}
}

// checkConfig validates .tempo/config.json parses
func checkConfig() CheckResult {
	cwd, err := os.Getwd()
	if err != nil {
		return CheckResult{Name: "Config", Status: "⚠", Details: "  Cannot get working directory"}
	}

	if _, err := os.Stat(filepath.Join(cwd, ".tempo", "config.json")); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Config",
			Status:  "⚠",
			Details: "  No .tempo/config.json in working directory, defaults apply",
		}
	}

	if _, err := config.LoadConfig(cwd); err != nil {
		return CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}
	}

	return CheckResult{Name: "Config", Status: "✓"}
}

// checkBinary validates tempod is installed in PATH
func checkBinary() CheckResult {
	binPath, err := exec.LookPath("tempod")
	if err != nil {
		return CheckResult{
			Name:    "Binary",
			Status:  "⚠",
			Details: "  'tempod' not found in PATH\n  Run: make install",
		}
	}

	return CheckResult{Name: "Binary", Status: "✓", Details: fmt.Sprintf("  %s (%s)", binPath, version.String())}
}
