package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/medwatch/claimscan/internal/model"
)

// Analyzer defines the interface for analyzing a single page
type Analyzer interface {
	AnalyzeURL(ctx context.Context, url string) (*model.AnalysisResult, error)
}

// AnalyzeJob represents one page analysis in a batch run
type AnalyzeJob struct {
	URL      string
	Analyzer Analyzer
	Timeout  time.Duration // per-document deadline; zero means no extra deadline
}

// Execute runs the analysis. A per-document timeout is recorded as a
// distinct outcome on the result: one slow page must not fail the batch.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	result, err := j.Analyzer.AnalyzeURL(ctx, j.URL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			timedOut := model.EmptyResult(j.URL)
			timedOut.TimedOut = true
			return &AnalyzeResult{URL: j.URL, Result: timedOut}
		}
		return &AnalyzeResult{URL: j.URL, Error: err}
	}
	return &AnalyzeResult{URL: j.URL, Result: result}
}

// AnalyzeResult represents the result of one batch job
type AnalyzeResult struct {
	URL    string
	Result *model.AnalysisResult
	Error  error
}

// GetError returns the error from the analysis
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple pages concurrently
type BatchProcessor struct {
	analyzer      Analyzer
	concurrency   int
	perDocTimeout time.Duration
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int, perDocTimeout time.Duration) *BatchProcessor {
	return &BatchProcessor{
		analyzer:      analyzer,
		concurrency:   concurrency,
		perDocTimeout: perDocTimeout,
	}
}

// ProcessURLs analyzes multiple URLs concurrently
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*AnalyzeResult {
	if len(urls) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, url := range urls {
		pool.Submit(&AnalyzeJob{
			URL:      url,
			Analyzer: b.analyzer,
			Timeout:  b.perDocTimeout,
		})
	}

	results := pool.Wait()

	analyzeResults := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		analyzeResults[i] = result.(*AnalyzeResult)
	}

	return analyzeResults
}

// ProcessFile reads URLs from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
