package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/medwatch/claimscan/internal/cache"
	"github.com/medwatch/claimscan/internal/exclusions"
	"github.com/medwatch/claimscan/internal/extract"
	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/rules"
	"github.com/medwatch/claimscan/internal/score"
	"github.com/medwatch/claimscan/internal/verify"
	"github.com/medwatch/claimscan/internal/worker"
)

// Analyzer runs the full detection pipeline for documents:
// candidate extraction, context scoring, decision banding, optional AI
// escalation, and evidence assembly. Documents never produce errors,
// only results; hard failures are reserved for configuration time.
type Analyzer struct {
	ruleStore *rules.Store
	exclStore *exclusions.Store
	snapshot  *exclusions.Snapshot

	extractor *extract.CandidateExtractor
	scorer    *score.ContextScorer
	engine    *score.DecisionEngine
	assembler *Assembler
	learner   *exclusions.Learner

	verifier     verify.Provider
	verdictCache cache.Cache
	aiLimiter    *worker.Limiter
	aiTimeout    time.Duration

	cfg *model.Config
}

// NewAnalyzer wires the pipeline. The exclusion snapshot is taken here:
// appends made while a run is in flight do not change its decisions.
func NewAnalyzer(cfg *model.Config, ruleStore *rules.Store, exclStore *exclusions.Store) *Analyzer {
	snapshot := exclStore.Snapshot()

	var verifier verify.Provider
	if cfg.AI.Provider != "" {
		v, err := verify.NewProvider(verify.ConfigFromModel(cfg.AI))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize AI verifier: %v\n", err)
		} else {
			verifier = v
		}
	}

	var verdictCache cache.Cache
	if cfg.AI.CacheVerdicts && cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		verdictCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	aiTimeout := cfg.AI.Timeout
	if aiTimeout == 0 {
		aiTimeout = 20 * time.Second
	}

	return &Analyzer{
		ruleStore:    ruleStore,
		exclStore:    exclStore,
		snapshot:     snapshot,
		extractor:    extract.NewCandidateExtractor(),
		scorer:       score.NewContextScorer(snapshot),
		engine:       score.NewDecisionEngine(),
		assembler:    NewAssembler(),
		learner:      exclusions.NewLearner(exclStore),
		verifier:     verifier,
		verdictCache: verdictCache,
		aiLimiter:    worker.NewLimiter(cfg.AI.RequestsPerSecond, 1),
		aiTimeout:    aiTimeout,
		cfg:          cfg,
	}
}

// ruleOutcome collects one rule's scored candidates, kept per-rule so the
// concurrent fan-out writes no shared state
type ruleOutcome struct {
	rule    *rules.CompiledRule
	results []model.ContextAnalysisResult
}

// AnalyzeDocument runs every rule against one document. Rules are
// independent, so they fan out over a bounded worker set; only the
// exclusion-learning append path is serialized.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc model.Document) *model.AnalysisResult {
	result := model.EmptyResult(doc.SourceLabel)
	result.RulesEvaluated = len(a.ruleStore.Rules())
	result.RulesSkipped = a.ruleStore.Skipped()

	if doc.Text == "" {
		return result
	}

	activeRules := a.ruleStore.Rules()
	outcomes := make([]ruleOutcome, len(activeRules))

	workers := a.cfg.Concurrency.RuleWorkers
	if workers <= 0 {
		workers = 1
	}
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, rule := range activeRules {
		wg.Add(1)
		go func(idx int, r *rules.CompiledRule) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			outcomes[idx] = a.evaluateRule(doc.Text, r)
		}(i, rule)
	}
	wg.Wait()

	// Escalate the ambiguous band, then assemble findings in document
	// order so identical inputs yield identical output.
	a.escalate(ctx, doc, outcomes)

	var findings []model.Finding
	for _, outcome := range outcomes {
		for _, scored := range outcome.results {
			if scored.Excluded {
				result.FilterStats.Add(scored.ExclusionReason)
				continue
			}
			if scored.Decision == model.DecisionPass {
				continue
			}
			findings = append(findings, a.assembler.Assemble(doc.Text, scored, outcome.rule))
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Start != findings[j].Start {
			return findings[i].Start < findings[j].Start
		}
		return findings[i].RuleID < findings[j].RuleID
	})

	for _, f := range findings {
		if f.Decision == model.DecisionViolation {
			result.Violations = append(result.Violations, f)
		} else {
			result.Warnings = append(result.Warnings, f)
		}
	}

	result.Score = a.aggregateScore(result.Violations, result.Warnings)
	return result
}

// AnalyzeDocuments analyzes a set of regions from one page and merges them
// into a single result labeled with the page source.
func (a *Analyzer) AnalyzeDocuments(ctx context.Context, docs []model.Document, sourceLabel string) *model.AnalysisResult {
	merged := model.EmptyResult(sourceLabel)
	merged.RulesEvaluated = len(a.ruleStore.Rules())
	merged.RulesSkipped = a.ruleStore.Skipped()

	for _, doc := range docs {
		regionResult := a.AnalyzeDocument(ctx, doc)
		merged.Violations = append(merged.Violations, regionResult.Violations...)
		merged.Warnings = append(merged.Warnings, regionResult.Warnings...)
		merged.FilterStats.ViolationsFiltered += regionResult.FilterStats.ViolationsFiltered
		for reason, n := range regionResult.FilterStats.ByReason {
			merged.FilterStats.ByReason[reason] += n
		}
	}

	merged.Score = a.aggregateScore(merged.Violations, merged.Warnings)
	return merged
}

// evaluateRule extracts and scores all candidates for one rule. Pure: no
// writes, no network.
func (a *Analyzer) evaluateRule(text string, rule *rules.CompiledRule) ruleOutcome {
	outcome := ruleOutcome{rule: rule}

	for _, candidate := range a.extractor.Extract(text, rule) {
		scored := a.scorer.Score(candidate, rule)
		a.engine.Decide(&scored, rule)
		outcome.results = append(outcome.results, scored)
	}

	return outcome
}

// escalate resolves every needs_ai candidate through the verifier with a
// bounded concurrency limit. Verifier failure degrades a candidate to a
// warning; it never fails the pipeline.
func (a *Analyzer) escalate(ctx context.Context, doc model.Document, outcomes []ruleOutcome) {
	type pending struct {
		outcome int
		result  int
	}
	var queue []pending
	for i := range outcomes {
		for j := range outcomes[i].results {
			if outcomes[i].results[j].Decision == model.DecisionNeedsAI {
				queue = append(queue, pending{outcome: i, result: j})
			}
		}
	}
	if len(queue) == 0 {
		return
	}

	if a.verifier == nil {
		// Escalation configured off: the ambiguous band degrades to warning
		for _, p := range queue {
			scored := &outcomes[p.outcome].results[p.result]
			scored.Decision = model.DecisionWarning
			scored.Confidence = scored.Scores.FinalScore
		}
		return
	}

	workers := a.cfg.Concurrency.AIWorkers
	if workers <= 0 {
		workers = 1
	}
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, p := range queue {
		wg.Add(1)
		go func(outcome *ruleOutcome, scored *model.ContextAnalysisResult) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				a.engine.ApplyVerdict(scored, &model.AIVerification{
					Provider: a.verifier.Name(),
					Failed:   true,
				})
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			verification := a.verifyCandidate(ctx, outcome.rule, scored.Candidate)
			a.engine.ApplyVerdict(scored, verification)

			// An overturn is a learned false positive
			if !verification.Failed && verification.Verdict == model.VerdictConfirmPass {
				if err := a.learner.RecordOverturn(scored.Candidate, doc, "ai_verifier", verification.Reasoning); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to record exclusion: %v\n", err)
				}
			}
		}(&outcomes[p.outcome], &outcomes[p.outcome].results[p.result])
	}
	wg.Wait()
}

// verifyCandidate calls the provider, consulting the verdict cache first
func (a *Analyzer) verifyCandidate(ctx context.Context, rule *rules.CompiledRule, candidate model.MatchCandidate) *model.AIVerification {
	key := cache.VerdictKey(rule.ID, candidate.Matched, candidate.Window)
	if a.verdictCache != nil {
		if data, found := a.verdictCache.Get(key); found {
			var cached model.AIVerification
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.Cached = true
				return &cached
			}
		}
	}

	if err := a.aiLimiter.WaitHost(ctx, a.verifier.Name()); err != nil {
		return &model.AIVerification{Provider: a.verifier.Name(), Failed: true}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.aiTimeout)
	defer cancel()

	resp, err := a.verifier.Verify(callCtx, verify.Request{
		MatchedText:     candidate.Matched,
		ContextWindow:   candidate.Window,
		RuleID:          rule.ID,
		RuleDescription: fmt.Sprintf("%s/%s: %s", rule.Category, rule.Subcategory, rule.Recommendation.Action),
		LegalBasis:      fmt.Sprintf("%s — %s", rule.Legal.Citation, rule.Legal.Statute),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: AI verification failed for rule %s: %v\n", rule.ID, err)
		return &model.AIVerification{Provider: a.verifier.Name(), Failed: true}
	}

	verification := &model.AIVerification{
		Provider:  a.verifier.Name(),
		Model:     resp.Model,
		Verdict:   resp.Verdict,
		Reasoning: resp.Reasoning,
		CostUSD:   resp.CostUSD,
	}

	if a.verdictCache != nil {
		if data, err := json.Marshal(verification); err == nil {
			_ = a.verdictCache.Set(key, data, 0)
		}
	}

	return verification
}

// aggregateScore derives the 0-100 document compliance score from findings.
// The formula is policy, not algorithm: all factors come from configuration.
func (a *Analyzer) aggregateScore(violations, warnings []model.Finding) int {
	deduct := func(f model.Finding) float64 {
		switch f.Severity {
		case model.SeverityCritical:
			return float64(f.RiskScore) * a.cfg.Scoring.CriticalFactor
		case model.SeverityWarning:
			return float64(f.RiskScore) * a.cfg.Scoring.WarningFactor
		default:
			return float64(f.RiskScore) * a.cfg.Scoring.InfoFactor
		}
	}

	total := 100.0
	for _, f := range violations {
		total -= deduct(f)
	}
	for _, f := range warnings {
		total -= deduct(f) / 2 // warnings weigh half their violation deduction
	}

	scoreValue := int(total)
	if scoreValue < a.cfg.Scoring.Floor {
		scoreValue = a.cfg.Scoring.Floor
	}
	if scoreValue > 100 {
		scoreValue = 100
	}
	return scoreValue
}
