package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/medwatch/claimscan/internal/exclusions"
	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/pipeline"
	"github.com/medwatch/claimscan/internal/rules"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	insecureTLS bool
	noRobots    bool
	rulesPath   string
	noBuiltin   bool
	httpProxy   string
	httpsProxy  string
	aiEnabled   bool
	aiProvider  string
	aiModel     string
	textInput   bool
	menuRegion  bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url|file>",
	Short: "Analyze a single page or text file for regulated claims",
	Long: `Analyze screens one page for regulated medical-advertising claims:
- Extract text regions (navigation and boilerplate flagged separately)
- Match rule triggers and score each candidate in context
- Escalate ambiguous candidates to an AI verifier (optional)
- Emit a compliance score with explainable evidence and fixes

Example:
  claimscan analyze https://clinic.example.com/lasik
  claimscan analyze https://clinic.example.com --json report.json --md report.md
  claimscan analyze page.txt --text
  claimscan analyze https://clinic.example.com --ai openai --ai-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// HTTP flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&userAgent, "ua", "Claimscan/0.3 (+https://github.com/medwatch/claimscan)", "HTTP User-Agent")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	analyzeCmd.Flags().BoolVar(&noRobots, "no-robots", false, "ignore robots.txt")
	analyzeCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	analyzeCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Rule flags
	analyzeCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rule file or directory (extends builtins)")
	analyzeCmd.Flags().BoolVar(&noBuiltin, "no-builtin-rules", false, "disable the builtin rule set")

	// Input flags
	analyzeCmd.Flags().BoolVar(&textInput, "text", false, "treat the argument as a local text file, not a URL")
	analyzeCmd.Flags().BoolVar(&menuRegion, "menu-region", false, "with --text: mark the input as a navigation/menu region")

	// AI flags
	analyzeCmd.Flags().BoolVar(&aiEnabled, "ai", false, "enable AI verification of ambiguous candidates")
	analyzeCmd.Flags().StringVar(&aiProvider, "ai-provider", "openai", "AI provider (openai, ollama)")
	analyzeCmd.Flags().StringVar(&aiModel, "ai-model", "gpt-4o-mini", "AI model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	target := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, ruleStore, exclStore, err := buildRuntime()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", target)
		fmt.Fprintf(os.Stderr, "Rules: %d active, %d skipped\n", len(ruleStore.Rules()), ruleStore.Skipped())
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, ruleStore, exclStore)

	var result *model.AnalysisResult
	if textInput {
		data, err := os.ReadFile(target)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		result = p.AnalyzeText(ctx, model.Document{
			Text:         string(data),
			SourceLabel:  target,
			IsMenuRegion: menuRegion,
		})
	} else {
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Fetching page...\n")
		}
		result, err = p.AnalyzeURL(ctx, target)
		if err != nil {
			return fmt.Errorf("analyze failed: %w", err)
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Found %d violations, %d warnings\n", len(result.Violations), len(result.Warnings))
		fmt.Fprintf(os.Stderr, "✓ Suppressed %d known false positives\n", result.FilterStats.ViolationsFiltered)
		fmt.Fprintf(os.Stderr, "✓ Compliance score: %d/100\n", result.Score)
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderResult(result, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// buildRuntime builds configuration and stores from flags and environment
func buildRuntime() (*model.Config, *rules.Store, *exclusions.Store, error) {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = timeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.HTTP.RespectRobots = !noRobots
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	cfg.Rules.Path = rulesPath
	cfg.Rules.UseBuiltin = !noBuiltin
	resolvePaths(cfg)

	if aiEnabled {
		if err := configureAI(cfg, aiProvider, aiModel); err != nil {
			return nil, nil, nil, err
		}
	}

	ruleStore, err := rules.Load(cfg.Rules)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load rules: %w", err)
	}

	exclStore, err := exclusions.Open(cfg.Exclusions)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open exclusion store: %w", err)
	}

	return cfg, ruleStore, exclStore, nil
}

// domainArg trims a bare host argument for exclusion bookkeeping
func domainArg(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
