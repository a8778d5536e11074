package cli

import (
	"fmt"
	"os"

	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/rules"
	"github.com/spf13/cobra"
)

// rulesCmd groups rule-set management commands
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate the rule set",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := rules.Load(model.RulesConfig{
			Path:       rulesPath,
			UseBuiltin: !noBuiltin,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%-24s %-12s %-10s %-5s %s\n", "ID", "CATEGORY", "SEVERITY", "RISK", "AI")
		for _, r := range store.Rules() {
			ai := "-"
			if r.AIVerification {
				ai = "yes"
			}
			fmt.Printf("%-24s %-12s %-10s %-5d %s\n", r.ID, r.Category, r.Severity, r.RiskScore, ai)
		}
		if store.Skipped() > 0 {
			fmt.Fprintf(os.Stderr, "\n%d rule(s) skipped for pattern compile errors (see warnings above)\n", store.Skipped())
		}
		return nil
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a YAML rule file or directory",
	Long: `Validate loads external rules and reports configuration errors:
threshold ordering, weight ranges, missing triggers, bad required logic.
Pattern compile failures are reported as warnings (those rules would be
skipped at runtime, not rejected).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := rules.Load(model.RulesConfig{Path: args[0]})
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Printf("✓ %d rule(s) valid", len(store.Rules()))
		if store.Skipped() > 0 {
			fmt.Printf(", %d skipped for pattern errors", store.Skipped())
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesValidateCmd)

	rulesListCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rule file or directory (extends builtins)")
	rulesListCmd.Flags().BoolVar(&noBuiltin, "no-builtin-rules", false, "disable the builtin rule set")
}
