package extract

import (
	"sort"

	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/rules"
)

// CandidateExtractor scans document text against rule triggers
type CandidateExtractor struct{}

// NewCandidateExtractor creates a new candidate extractor
func NewCandidateExtractor() *CandidateExtractor {
	return &CandidateExtractor{}
}

// Extract produces every trigger hit for the rule, ordered by position.
// This stage never filters: overlapping matches and matches that will later
// be excluded all come out, suppression happens downstream in scoring.
func (e *CandidateExtractor) Extract(text string, rule *rules.CompiledRule) []model.MatchCandidate {
	if text == "" {
		return nil
	}

	var candidates []model.MatchCandidate

	for i, re := range rule.KeywordPatterns {
		if re == nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			candidates = append(candidates, newCandidate(text, loc[0], loc[1], rule, rule.Triggers.Keywords[i], false))
		}
	}
	for i, re := range rule.SemanticPatterns {
		if re == nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			candidates = append(candidates, newCandidate(text, loc[0], loc[1], rule, rule.Triggers.Semantic[i], true))
		}
	}
	for i, re := range rule.TriggerPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			candidates = append(candidates, newCandidate(text, loc[0], loc[1], rule, rule.Triggers.Patterns[i], false))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].End < candidates[j].End
	})

	return candidates
}

func newCandidate(text string, start, end int, rule *rules.CompiledRule, trigger string, semantic bool) model.MatchCandidate {
	return model.MatchCandidate{
		RuleID:   rule.ID,
		Matched:  text[start:end],
		Start:    start,
		End:      end,
		Window:   Window(text, start, end, rule.Context.WindowSize),
		Semantic: semantic,
		Trigger:  trigger,
	}
}

// Window returns size characters of context centered on [start,end),
// clipped to document bounds. A zero size yields just the match itself.
func Window(text string, start, end, size int) string {
	half := size / 2
	from := start - half
	if from < 0 {
		from = 0
	}
	to := end + half
	if to > len(text) {
		to = len(text)
	}
	return text[from:to]
}

// BeforeAfter returns two independently sized context slices around a match,
// used for the extended context on emitted findings.
func BeforeAfter(text string, start, end, beforeSize, afterSize int) (string, string) {
	from := start - beforeSize
	if from < 0 {
		from = 0
	}
	to := end + afterSize
	if to > len(text) {
		to = len(text)
	}
	return text[from:start], text[end:to]
}
