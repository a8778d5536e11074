package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/medwatch/claimscan/internal/model"
)

// Renderer writes analysis results as JSON, Markdown and console summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full result as indented JSON
func (r *Renderer) RenderJSON(result *model.AnalysisResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a reviewer-oriented Markdown report
func (r *Renderer) RenderMarkdown(result *model.AnalysisResult, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Compliance Report: %s\n\n", result.SourceLabel)
	fmt.Fprintf(&b, "- **Score:** %d/100\n", result.Score)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n", result.AnalyzedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "- **Violations:** %d · **Warnings:** %d · **Filtered:** %d\n\n",
		len(result.Violations), len(result.Warnings), result.FilterStats.ViolationsFiltered)

	writeFindings := func(title string, findings []model.Finding) {
		if len(findings) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for i, f := range findings {
			fmt.Fprintf(&b, "### %d. %s (%s, risk %d)\n\n", i+1, f.RuleID, f.Severity, f.RiskScore)
			fmt.Fprintf(&b, "> …%s**%s**%s…\n\n", truncate(f.ContextBefore, 120, true), f.Matched, truncate(f.ContextAfter, 120, false))
			fmt.Fprintf(&b, "- Confidence: %.2f (trigger %.2f, aggravating %.2f, mitigating %.2f)\n",
				f.Confidence, f.Scores.TriggerScore, f.Scores.AggravatingScore, f.Scores.MitigatingScore)
			fmt.Fprintf(&b, "- Legal basis: %s\n", f.Legal.Citation)
			if f.AIVerification != nil {
				fmt.Fprintf(&b, "- AI verification: %s (%s)\n", f.AIVerification.Verdict, f.AIVerification.Provider)
			}
			fmt.Fprintf(&b, "- Fix: %s\n", f.Recommendation.Action)
			if f.Recommendation.GoodExample != "" {
				fmt.Fprintf(&b, "  - Instead of: %q\n", f.Recommendation.BadExample)
				fmt.Fprintf(&b, "  - Write: %q\n", f.Recommendation.GoodExample)
			}
			fmt.Fprintf(&b, "\n")
		}
	}

	writeFindings("Violations", result.Violations)
	writeFindings("Warnings", result.Warnings)

	if len(result.FilterStats.ByReason) > 0 {
		fmt.Fprintf(&b, "## Filtered candidates\n\n")
		for reason, n := range result.FilterStats.ByReason {
			fmt.Fprintf(&b, "- %s: %d\n", reason, n)
		}
		fmt.Fprintf(&b, "\n")
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\nGenerated by claimscan. Findings describe advertising-law exposure, not medical facts.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a short console summary
func (r *Renderer) RenderSummary(result *model.AnalysisResult) {
	fmt.Printf("\n%s\n", result.SourceLabel)
	fmt.Printf("  Score:      %d/100\n", result.Score)
	fmt.Printf("  Violations: %d\n", len(result.Violations))
	fmt.Printf("  Warnings:   %d\n", len(result.Warnings))
	if result.FilterStats.ViolationsFiltered > 0 {
		fmt.Printf("  Filtered:   %d (learned exclusions)\n", result.FilterStats.ViolationsFiltered)
	}
	if result.TimedOut {
		fmt.Printf("  Note:       analysis timed out; results are partial\n")
	}
}

// truncate clips context text for the Markdown excerpt, keeping the side
// nearest the match
func truncate(s string, max int, keepTail bool) string {
	if len(s) <= max {
		return s
	}
	if keepTail {
		return s[len(s)-max:]
	}
	return s[:max]
}
