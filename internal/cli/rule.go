package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/wire"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage automation rules",
	Long:  "Create, inspect, and toggle the rules the engine evaluates against published events",
}

var ruleCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new automation rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		trigger, _ := cmd.Flags().GetString("trigger")
		conditions, _ := cmd.Flags().GetString("conditions")
		action, _ := cmd.Flags().GetString("action")
		params, _ := cmd.Flags().GetString("params")
		cooldown, _ := cmd.Flags().GetInt("cooldown")

		resp, err := wire.AutomationService().CreateRule(context.Background(), primary.CreateRuleRequest{
			Name:            name,
			TriggerType:     trigger,
			ConditionsJSON:  conditions,
			ActionType:      action,
			ActionParams:    params,
			CooldownSeconds: cooldown,
		})
		if err != nil {
			return fmt.Errorf("failed to create rule: %w", err)
		}

		fmt.Printf("✓ Created rule %s: %s\n", resp.RuleID, name)
		fmt.Printf("  On %s → %s\n", trigger, action)
		if cooldown > 0 {
			fmt.Printf("  Cooldown: %ds\n", cooldown)
		}
		return nil
	},
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List automation rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		trigger, _ := cmd.Flags().GetString("trigger")
		activeOnly, _ := cmd.Flags().GetBool("active")
		limit, _ := cmd.Flags().GetInt("limit")

		rules, err := wire.AutomationService().ListRules(context.Background(), primary.RuleFilters{
			TriggerType: trigger,
			ActiveOnly:  activeOnly,
			Limit:       limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list rules: %w", err)
		}

		if len(rules) == 0 {
			fmt.Println("No rules found.")
			return nil
		}

		fmt.Printf("Found %d rule(s):\n\n", len(rules))
		for _, r := range rules {
			state := "active"
			if !r.IsActive {
				state = "inactive"
			}
			fmt.Printf("%s: %s [%s]\n", r.ID, r.Name, state)
			fmt.Printf("   On %s → %s, ran %d time(s)\n", r.TriggerType, r.ActionType, r.ExecutionCount)
		}
		return nil
	},
}

var ruleShowCmd = &cobra.Command{
	Use:   "show [rule-id]",
	Short: "Show rule details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := wire.AutomationService().GetRule(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("rule not found: %w", err)
		}

		fmt.Printf("Rule: %s\n", r.ID)
		fmt.Printf("Name: %s\n", r.Name)
		fmt.Printf("Trigger: %s\n", r.TriggerType)
		if r.ConditionsJSON != "" {
			fmt.Printf("Conditions: %s\n", r.ConditionsJSON)
		}
		fmt.Printf("Action: %s\n", r.ActionType)
		if r.ActionParams != "" {
			fmt.Printf("Params: %s\n", r.ActionParams)
		}
		fmt.Printf("Active: %t\n", r.IsActive)
		if r.CooldownSeconds > 0 {
			fmt.Printf("Cooldown: %ds\n", r.CooldownSeconds)
		}
		fmt.Printf("Executions: %d\n", r.ExecutionCount)
		if r.LastExecutedAt != "" {
			fmt.Printf("Last executed: %s\n", r.LastExecutedAt)
		}
		fmt.Printf("Created: %s\n", r.CreatedAt)
		return nil
	},
}

var ruleUpdateCmd = &cobra.Command{
	Use:   "update [rule-id]",
	Short: "Update a rule's name, conditions, params, or cooldown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		conditions, _ := cmd.Flags().GetString("conditions")
		params, _ := cmd.Flags().GetString("params")

		req := primary.UpdateRuleRequest{
			RuleID:         args[0],
			Name:           name,
			ConditionsJSON: conditions,
			ActionParams:   params,
		}
		if cmd.Flags().Changed("cooldown") {
			cooldown, _ := cmd.Flags().GetInt("cooldown")
			req.CooldownSeconds = &cooldown
		}

		if err := wire.AutomationService().UpdateRule(context.Background(), req); err != nil {
			return fmt.Errorf("failed to update rule: %w", err)
		}

		fmt.Printf("✓ Rule %s updated\n", args[0])
		return nil
	},
}

var ruleActivateCmd = &cobra.Command{
	Use:   "activate [rule-id]",
	Short: "Re-enable a deactivated rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.AutomationService().ActivateRule(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to activate rule: %w", err)
		}
		fmt.Printf("✓ Rule %s activated\n", args[0])
		return nil
	},
}

var ruleDeactivateCmd = &cobra.Command{
	Use:   "deactivate [rule-id]",
	Short: "Retire a rule without deleting its execution history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.AutomationService().DeactivateRule(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to deactivate rule: %w", err)
		}
		fmt.Printf("✓ Rule %s deactivated\n", args[0])
		return nil
	},
}

var ruleExecutionsCmd = &cobra.Command{
	Use:   "executions [rule-id]",
	Short: "Show a rule's execution ledger, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		execs, err := wire.AutomationService().ListExecutions(context.Background(), args[0], limit)
		if err != nil {
			return fmt.Errorf("failed to list executions: %w", err)
		}

		if len(execs) == 0 {
			fmt.Println("No executions recorded.")
			return nil
		}

		fmt.Printf("Found %d execution(s):\n\n", len(execs))
		for _, e := range execs {
			fmt.Printf("%s  %s  %s  event=%s  [%s]\n",
				e.ExecutedAt, e.Entity.Kind, e.Entity.ID, e.EventID, e.Outcome)
			if e.Error != "" {
				fmt.Printf("   %s\n", e.Error)
			}
		}
		return nil
	},
}

func init() {
	ruleCreateCmd.Flags().StringP("trigger", "t", "", "Trigger type (e.g. task_created)")
	ruleCreateCmd.Flags().StringP("conditions", "c", "", "Condition tree JSON (empty matches unconditionally)")
	ruleCreateCmd.Flags().StringP("action", "a", "", "Action type (e.g. send_notification)")
	ruleCreateCmd.Flags().String("params", "", "Action params JSON (may reference $event fields)")
	ruleCreateCmd.Flags().Int("cooldown", 0, "Minimum seconds between executions (0 disables)")

	ruleListCmd.Flags().StringP("trigger", "t", "", "Filter by trigger type")
	ruleListCmd.Flags().Bool("active", false, "Only active rules")
	ruleListCmd.Flags().Int("limit", 0, "Limit results")

	ruleUpdateCmd.Flags().String("name", "", "New name")
	ruleUpdateCmd.Flags().StringP("conditions", "c", "", "New condition tree JSON")
	ruleUpdateCmd.Flags().String("params", "", "New action params JSON")
	ruleUpdateCmd.Flags().Int("cooldown", 0, "New cooldown in seconds")

	ruleExecutionsCmd.Flags().Int("limit", 20, "Limit results")

	ruleCmd.AddCommand(ruleCreateCmd)
	ruleCmd.AddCommand(ruleListCmd)
	ruleCmd.AddCommand(ruleShowCmd)
	ruleCmd.AddCommand(ruleUpdateCmd)
	ruleCmd.AddCommand(ruleActivateCmd)
	ruleCmd.AddCommand(ruleDeactivateCmd)
	ruleCmd.AddCommand(ruleExecutionsCmd)
}

// RuleCmd returns the rule command
func RuleCmd() *cobra.Command {
	return ruleCmd
}
