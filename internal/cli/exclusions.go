package cli

import (
	"fmt"
	"sort"

	"github.com/medwatch/claimscan/internal/exclusions"
	"github.com/medwatch/claimscan/internal/model"
	"github.com/spf13/cobra"
)

var (
	exclRule   string
	exclDomain string
	exclReason string
	exclNote   string
)

// exclusionsCmd groups exclusion-store commands
var exclusionsCmd = &cobra.Command{
	Use:   "exclusions",
	Short: "Inspect and extend the learned false-positive store",
	Long: `The exclusion store records phrases that were flagged and then
overturned as false positives. It is append-only: entries are never
edited or deleted, only aggregated. Phrases overturned across enough
distinct rules and domains are promoted to global exclusions.`,
}

var exclusionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learned exclusions, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openExclusions()
		if err != nil {
			return err
		}

		for _, e := range store.Entries() {
			rule := e.RuleID
			if rule == "" {
				rule = "(global)"
			}
			fmt.Printf("%s  %-18s %-22s %-20s %q\n",
				e.CreatedAt.Format("2006-01-02"), e.Reason, rule, e.Domain, e.Phrase)
		}
		return nil
	},
}

var exclusionsAddCmd = &cobra.Command{
	Use:   "add <phrase>",
	Short: "Record a reviewer-determined false positive",
	Long: `Add appends a manual exclusion, typically after a human reviewer
overturns a reported violation.

Example:
  claimscan exclusions add "pain-free dentistry" --rule cure-guarantee --domain clinic.example.com --reason context_negative`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openExclusions()
		if err != nil {
			return err
		}

		learner := exclusions.NewLearner(store)
		if err := learner.RecordManual(args[0], exclRule, domainArg(exclDomain), model.ExclusionReason(exclReason), exclNote); err != nil {
			return fmt.Errorf("record exclusion: %w", err)
		}
		fmt.Printf("✓ Recorded exclusion %q (%s)\n", args[0], exclReason)
		return nil
	},
}

var exclusionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate exclusion-store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openExclusions()
		if err != nil {
			return err
		}

		stats := store.Stats()
		fmt.Printf("Total entries:     %d\n", stats.Total)
		fmt.Printf("Global exclusions: %d\n\n", stats.Global)

		printCounts("By reason", reasonCounts(stats.ByReason))
		printCounts("By rule", stats.ByRule)
		printCounts("By domain", stats.ByDomain)
		return nil
	},
}

func openExclusions() (*exclusions.Store, error) {
	cfg := model.DefaultConfig()
	resolvePaths(cfg)
	store, err := exclusions.Open(cfg.Exclusions)
	if err != nil {
		return nil, fmt.Errorf("open exclusion store: %w", err)
	}
	return store, nil
}

func reasonCounts(in map[model.ExclusionReason]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-28s %d\n", k, counts[k])
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(exclusionsCmd)
	exclusionsCmd.AddCommand(exclusionsListCmd)
	exclusionsCmd.AddCommand(exclusionsAddCmd)
	exclusionsCmd.AddCommand(exclusionsStatsCmd)

	exclusionsAddCmd.Flags().StringVar(&exclRule, "rule", "", "rule id the phrase was flagged by")
	exclusionsAddCmd.Flags().StringVar(&exclDomain, "domain", "", "source domain of the false positive")
	exclusionsAddCmd.Flags().StringVar(&exclReason, "reason", string(model.ReasonContextNegative),
		"reason code (menu_text, context_negative, login_protected, info_only)")
	exclusionsAddCmd.Flags().StringVar(&exclNote, "note", "", "free-text note")
}
