package pipeline

import (
	"context"
	"fmt"

	"github.com/medwatch/claimscan/internal/exclusions"
	"github.com/medwatch/claimscan/internal/extract"
	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/rules"
)

// Pipeline orchestrates the complete analysis of a page: fetch, region
// extraction, and the detection pipeline
type Pipeline struct {
	fetcher  *Fetcher
	regions  *extract.RegionExtractor
	analyzer *Analyzer
	renderer *Renderer
	config   *model.Config
}

// NewPipeline creates a pipeline with the given configuration and stores
func NewPipeline(cfg *model.Config, ruleStore *rules.Store, exclStore *exclusions.Store) *Pipeline {
	return &Pipeline{
		fetcher:  NewFetcher(cfg.HTTP, cfg.Cache),
		regions:  extract.NewRegionExtractor(),
		analyzer: NewAnalyzer(cfg, ruleStore, exclStore),
		renderer: NewRenderer(cfg.Output.IncludeFooter),
		config:   cfg,
	}
}

// AnalyzeURL fetches a page, splits it into regions and analyzes them.
// Fetch failures are errors; a fetched page always yields a result.
func (p *Pipeline) AnalyzeURL(ctx context.Context, url string) (*model.AnalysisResult, error) {
	fetchResult, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	docs, err := p.regions.Extract(fetchResult.HTML, fetchResult.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("extract regions: %w", err)
	}

	return p.analyzer.AnalyzeDocuments(ctx, docs, fetchResult.FinalURL), nil
}

// AnalyzeText analyzes pre-extracted text directly, the crawler-tuple
// entry point: callers supply the region flag themselves.
func (p *Pipeline) AnalyzeText(ctx context.Context, doc model.Document) *model.AnalysisResult {
	return p.analyzer.AnalyzeDocument(ctx, doc)
}

// RenderResult renders the result to the configured outputs
func (p *Pipeline) RenderResult(result *model.AnalysisResult, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(result)

	return nil
}
