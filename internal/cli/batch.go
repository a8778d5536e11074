package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/medwatch/claimscan/internal/pipeline"
	"github.com/medwatch/claimscan/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	docTimeout   time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple URLs from a file in parallel",
	Long: `Batch analyzes multiple pages concurrently:
- Read URLs from input file (one per line)
- Analyze pages in parallel with a bounded worker count
- A page hitting its per-document timeout is recorded as timed out,
  never failing the rest of the batch
- Generate individual reports for each URL

Example:
  claimscan batch urls.txt
  claimscan batch urls.txt --concurrency 8 --output-dir ./reports
  claimscan batch urls.txt --ai openai --doc-timeout 90s`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimscan-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().DurationVar(&docTimeout, "doc-timeout", 2*time.Minute, "per-document timeout")

	// Shared flags
	batchCmd.Flags().StringVar(&userAgent, "ua", "Claimscan/0.3 (+https://github.com/medwatch/claimscan)", "HTTP User-Agent")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&noRobots, "no-robots", false, "ignore robots.txt")
	batchCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rule file or directory (extends builtins)")
	batchCmd.Flags().BoolVar(&noBuiltin, "no-builtin-rules", false, "disable the builtin rule set")
	batchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// AI flags
	batchCmd.Flags().BoolVar(&aiEnabled, "ai", false, "enable AI verification of ambiguous candidates")
	batchCmd.Flags().StringVar(&aiProvider, "ai-provider", "openai", "AI provider (openai, ollama)")
	batchCmd.Flags().StringVar(&aiModel, "ai-model", "gpt-4o-mini", "AI model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Claimscan Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v (%v per page)\n", batchTimeout, docTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	timeout = docTimeout // shared fetch timeout per page
	cfg, ruleStore, exclStore, err := buildRuntime()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.NewPipeline(cfg, ruleStore, exclStore)
	processor := worker.NewBatchProcessor(p, concurrency, docTimeout)

	start := time.Now()
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	// Write per-page reports and tally outcomes
	var succeeded, failed, timedOut int
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.URL, r.Error)
			continue
		}
		if r.Result.TimedOut {
			timedOut++
		} else {
			succeeded++
		}

		base := filepath.Join(outputDir, slugify(r.URL))
		if err := p.RenderResult(r.Result, base+".json", base+".md", verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: render %s: %v\n", r.URL, err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Completed in %v: %d analyzed, %d timed out, %d failed\n",
		time.Since(start).Round(time.Second), succeeded, timedOut, failed)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")

	return nil
}

// slugify turns a URL into a safe report filename
func slugify(url string) string {
	s := strings.TrimPrefix(url, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
